package services

import (
	"context"
	"errors"
	"fmt"
	"georeport/model"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

// MergeAll concatenates the lists in argument order and drops any category
// whose ID was already seen. The first occurrence wins.
func MergeAll(lists ...[]model.Category) []model.Category {
	seen := make(map[string]struct{})
	var out []model.Category
	for _, list := range lists {
		for _, c := range list {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	if out == nil {
		out = []model.Category{}
	}
	return out
}

type CategorySource interface {
	Name() string
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type StaticCategorySource struct {
	Label      string
	Categories []model.Category
}

func (s StaticCategorySource) Name() string { return s.Label }

func (s StaticCategorySource) ListCategories(context.Context) ([]model.Category, error) {
	out := make([]model.Category, len(s.Categories))
	copy(out, s.Categories)
	return out, nil
}

type GormCategorySource struct {
	DB *gorm.DB
}

func (GormCategorySource) Name() string { return "database" }

func (s GormCategorySource) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.DB.WithContext(ctx).Order("category_id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FirestoreCategorySource reads the Categories collection. Listing returns
// active categories only; Get resolves any document. The document ID is used
// when a document has no id field.
type FirestoreCategorySource struct {
	Client     *firestore.Client
	Collection string
}

func (FirestoreCategorySource) Name() string { return "firestore" }

func (s FirestoreCategorySource) collection() string {
	if s.Collection == "" {
		return "Categories"
	}
	return s.Collection
}

func (s FirestoreCategorySource) ListCategories(ctx context.Context) ([]model.Category, error) {
	iter := s.Client.Collection(s.collection()).Where("active", "==", true).Documents(ctx)
	defer iter.Stop()

	var categories []model.Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate categories: %w", err)
		}
		var c model.Category
		if err := doc.DataTo(&c); err != nil {
			log.Printf("firestore category %s skipped: %v", doc.Ref.ID, err)
			continue
		}
		if c.ID == "" {
			c.ID = doc.Ref.ID
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// Get fetches a single category document.
func (s FirestoreCategorySource) Get(ctx context.Context, id string) (*model.Category, error) {
	doc, err := s.Client.Collection(s.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	var c model.Category
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", id, err)
	}
	if c.ID == "" {
		c.ID = doc.Ref.ID
	}
	return &c, nil
}

type CategoryService struct {
	sources []CategorySource
	reports ReportStore
}

// NewCategoryService merges sources in the given order, so earlier sources
// take precedence on duplicate IDs.
func NewCategoryService(reports ReportStore, sources ...CategorySource) *CategoryService {
	return &CategoryService{sources: sources, reports: reports}
}

// ListAll merges every source. A source that fails is logged and skipped.
func (s *CategoryService) ListAll(ctx context.Context) []model.Category {
	lists := make([][]model.Category, 0, len(s.sources))
	for _, src := range s.sources {
		list, err := src.ListCategories(ctx)
		if err != nil {
			log.Printf("category source %s failed: %v", src.Name(), err)
			continue
		}
		lists = append(lists, list)
	}
	return MergeAll(lists...)
}

type categoryGetter interface {
	Get(ctx context.Context, id string) (*model.Category, error)
}

// GetByID looks the id up in the merged list, then asks sources that can
// fetch a single category directly.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*model.Category, error) {
	for _, c := range s.ListAll(ctx) {
		if c.ID == id {
			return &c, nil
		}
	}
	for _, src := range s.sources {
		getter, ok := src.(categoryGetter)
		if !ok {
			continue
		}
		c, err := getter.Get(ctx, id)
		if errors.Is(err, ErrCategoryNotFound) {
			continue
		}
		if err != nil {
			log.Printf("category source %s lookup failed: %v", src.Name(), err)
			continue
		}
		return c, nil
	}
	return nil, ErrCategoryNotFound
}

// ReportsByCategory returns the reports whose category label matches the
// category's name or its id.
func (s *CategoryService) ReportsByCategory(ctx context.Context, id string) (*model.Category, []model.Report, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.reports.ListReports(ctx)
	if err != nil {
		return nil, nil, err
	}
	out := []model.Report{}
	for _, r := range all {
		if r.Category == category.ID || strings.EqualFold(r.Category, category.Name) {
			out = append(out, r)
		}
	}
	return category, out, nil
}
