package services

import (
	"context"
	"errors"
	"fmt"
	"georeport/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps reports in the reports table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Migrate creates the reports and categories tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&model.Report{}, &model.Category{})
}

// Seed loads the mock data into empty tables.
func (s *GormStore) Seed(ctx context.Context, reports []model.Report, categories []model.Category) error {
	db := s.db.WithContext(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		if len(reports) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&reports).Error; err != nil {
				return fmt.Errorf("seed reports: %w", err)
			}
		}
		if len(categories) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
		return nil
	})
}

func (s *GormStore) ListReports(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := s.db.WithContext(ctx).Order("created_at").Order("report_id").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (s *GormStore) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	if err := s.db.WithContext(ctx).Where("report_id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return &report, nil
}

func (s *GormStore) CreateReport(ctx context.Context, report model.Report) (*model.Report, error) {
	prepareNew(&report, s.now())
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&report)
	if res.Error != nil {
		return nil, fmt.Errorf("create report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrReportExists, report.ID)
	}
	return &report, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id string, status model.Status, assignedTo *string) (*model.Report, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	}
	if assignedTo != nil {
		updates["assigned_to"] = *assignedTo
	}

	var report model.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Report{}).Where("report_id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReportNotFound
		}
		return tx.Where("report_id = ?", id).First(&report).Error
	})
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update report %s: %w", id, err)
	}
	return &report, nil
}

func (s *GormStore) DeleteReport(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("report_id = ?", id).Delete(&model.Report{})
	if res.Error != nil {
		return fmt.Errorf("delete report %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *GormStore) Import(ctx context.Context, reports []model.Report) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}
	batch := make([]model.Report, 0, len(reports))
	seen := make(map[string]struct{}, len(reports))
	for _, r := range reports {
		prepareNew(&r, s.now())
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		batch = append(batch, r)
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
	if res.Error != nil {
		return 0, fmt.Errorf("import reports: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
