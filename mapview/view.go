package mapview

import (
	"context"
	"errors"
	"fmt"
	"georeport/model"
	"georeport/scheduler"
	"georeport/services"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrViewClosed = errors.New("view closed")

// Marker is one pin on the map.
type Marker struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Status      model.Status `json:"status"`
	StatusLabel string       `json:"status_label"`
	Color       string       `json:"color"`
	Location    string       `json:"location"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
}

type Options struct {
	Clock    clockwork.Clock
	Interval time.Duration
	Timeout  time.Duration
	Retries  uint64
}

// View is one open map: a filter, the latest snapshot of reports and the
// refresher keeping that snapshot current.
type View struct {
	ID string

	store     services.ReportStore
	resolver  *services.Resolver
	notifier  services.Notifier
	refresher *scheduler.Refresher

	mu       sync.RWMutex
	state    services.FilterState
	snapshot []model.Report
	loaded   bool
	closed   bool
	subs     map[int]chan []Marker
	nextSub  int
}

func NewView(id string, store services.ReportStore, resolver *services.Resolver, notifier services.Notifier, state services.FilterState, opts Options) *View {
	v := &View{
		ID:       id,
		store:    store,
		resolver: resolver,
		notifier: notifier,
		state:    state,
		subs:     make(map[int]chan []Marker),
	}
	v.refresher = scheduler.NewRefresher(opts.Clock, opts.Interval, store.ListReports, v.replace)
	if opts.Timeout > 0 {
		v.refresher.Timeout = opts.Timeout
	}
	v.refresher.Retries = opts.Retries
	return v
}

// Open starts the live refresh. It returns once the refresher is running;
// the first snapshot arrives asynchronously.
func (v *View) Open(ctx context.Context) error {
	return v.refresher.Start(ctx)
}

// Close stops the refresher, then closes every subscription. No snapshot is
// applied once Close has begun.
func (v *View) Close() {
	v.refresher.Stop()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		close(ch)
		delete(v.subs, id)
	}
}

func (v *View) Live() bool {
	return v.refresher.Active()
}

func (v *View) replace(reports []model.Report) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.snapshot = reports
	v.loaded = true
	v.publishLocked()
}

func (v *View) Filter() services.FilterState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// SetFilter replaces the filter and pushes the new marker set to
// subscribers.
func (v *View) SetFilter(state services.FilterState) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}
	v.state = state
	if v.loaded {
		v.publishLocked()
	}
	return nil
}

// Reports returns the visible reports of the current snapshot. Before the
// first refresh lands it reads the store directly.
func (v *View) Reports(ctx context.Context) ([]model.Report, error) {
	v.mu.RLock()
	snapshot, loaded, state, closed := v.snapshot, v.loaded, v.state, v.closed
	v.mu.RUnlock()
	if closed {
		return nil, ErrViewClosed
	}
	if !loaded {
		var err error
		snapshot, err = v.store.ListReports(ctx)
		if err != nil {
			return nil, fmt.Errorf("load reports: %w", err)
		}
	}
	return services.Apply(snapshot, state), nil
}

func (v *View) Markers(ctx context.Context) ([]Marker, error) {
	visible, err := v.Reports(ctx)
	if err != nil {
		return nil, err
	}
	return toMarkers(visible, v.resolver), nil
}

// Subscribe returns a channel that receives the marker set after every
// refresh and filter change. Only the latest set is kept for a slow reader.
func (v *View) Subscribe() (<-chan []Marker, func(), error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, nil, ErrViewClosed
	}
	id := v.nextSub
	v.nextSub++
	ch := make(chan []Marker, 1)
	v.subs[id] = ch
	if v.loaded {
		ch <- toMarkers(services.Apply(v.snapshot, v.state), v.resolver)
	}
	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if c, ok := v.subs[id]; ok {
			close(c)
			delete(v.subs, id)
		}
	}
	return ch, cancel, nil
}

func (v *View) publishLocked() {
	if len(v.subs) == 0 {
		return
	}
	markers := toMarkers(services.Apply(v.snapshot, v.state), v.resolver)
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- markers
	}
}

// Export serializes what the view currently shows. An empty result produces
// a notice and ErrNothingToExport instead of a file.
func (v *View) Export(ctx context.Context, format services.Format) (*services.Artifact, error) {
	visible, err := v.Reports(ctx)
	if err != nil {
		return nil, err
	}
	art, err := services.Encode(visible, v.Filter(), format, v.resolver)
	if errors.Is(err, services.ErrNothingToExport) {
		v.notify(ctx, services.NothingToExportNotice())
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	v.notify(ctx, services.ExportedNotice(art))
	return art, nil
}

func (v *View) notify(ctx context.Context, n services.Notice) {
	if v.notifier == nil {
		return
	}
	if err := v.notifier.Notify(ctx, n); err != nil {
		log.Printf("view %s: notice failed: %v", v.ID, err)
	}
}

func toMarkers(reports []model.Report, resolver *services.Resolver) []Marker {
	out := make([]Marker, 0, len(reports))
	for _, r := range reports {
		c := resolver.ResolveReport(r)
		out = append(out, Marker{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Category:    r.Category,
			Status:      r.Status,
			StatusLabel: r.Status.Label(),
			Color:       r.Status.Color(),
			Location:    r.Location.Name,
			Lat:         c.Lat,
			Lng:         c.Lng,
		})
	}
	return out
}
