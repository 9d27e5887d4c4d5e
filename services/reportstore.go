package services

import (
	"context"
	"errors"
	"fmt"
	"georeport/model"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportExists   = errors.New("report already exists")
)

// ReportStore is the read side the map and exports pull from, plus the few
// writes the admin panel performs. Implementations hand out copies.
type ReportStore interface {
	ListReports(ctx context.Context) ([]model.Report, error)
	GetReport(ctx context.Context, id string) (*model.Report, error)
	CreateReport(ctx context.Context, report model.Report) (*model.Report, error)
	UpdateStatus(ctx context.Context, id string, status model.Status, assignedTo *string) (*model.Report, error)
	DeleteReport(ctx context.Context, id string) error
	// Import adds reports whose ID is not yet stored and returns how many
	// were added.
	Import(ctx context.Context, reports []model.Report) (int, error)
}

// MemoryStore keeps reports in a slice that is replaced, never patched, on
// every write.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []model.Report
	now     func() time.Time
}

func NewMemoryStore(seed []model.Report) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	s.reports = append(s.reports, seed...)
	return s
}

func (s *MemoryStore) ListReports(ctx context.Context) ([]model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Report, len(s.reports))
	copy(out, s.reports)
	return out, nil
}

func (s *MemoryStore) GetReport(ctx context.Context, id string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return nil, ErrReportNotFound
	}
	r := s.reports[i]
	return &r, nil
}

func (s *MemoryStore) CreateReport(ctx context.Context, report model.Report) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prepareNew(&report, s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(report.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrReportExists, report.ID)
	}
	next := make([]model.Report, len(s.reports), len(s.reports)+1)
	copy(next, s.reports)
	s.reports = append(next, report)
	return &report, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status model.Status, assignedTo *string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, ErrReportNotFound
	}
	r := s.reports[i]
	r.Status = status
	if assignedTo != nil {
		r.AssignedTo = *assignedTo
	}
	now := s.now()
	r.UpdatedAt = &now

	next := make([]model.Report, len(s.reports))
	copy(next, s.reports)
	next[i] = r
	s.reports = next
	return &r, nil
}

func (s *MemoryStore) DeleteReport(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrReportNotFound
	}
	next := make([]model.Report, 0, len(s.reports)-1)
	next = append(next, s.reports[:i]...)
	s.reports = append(next, s.reports[i+1:]...)
	return nil
}

func (s *MemoryStore) Import(ctx context.Context, reports []model.Report) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.reports))
	for _, r := range s.reports {
		seen[r.ID] = struct{}{}
	}
	next := make([]model.Report, len(s.reports), len(s.reports)+len(reports))
	copy(next, s.reports)
	added := 0
	for _, r := range reports {
		prepareNew(&r, s.now())
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		next = append(next, r)
		added++
	}
	s.reports = next
	return added, nil
}

func (s *MemoryStore) index(id string) int {
	for i, r := range s.reports {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// prepareNew fills the defaults a freshly filed report gets.
func prepareNew(r *model.Report, now time.Time) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}
