package services

import (
	"context"
	"fmt"

	"meloon/internal/core"
	"meloon/internal/storage"
)

type CategoryService struct {
	storage *storage.SQLiteRepository
	reports ReportInvalidator
}

// NewCategoryService takes the report cache to flush on renames; reports may
// be nil.
func NewCategoryService(repo *storage.SQLiteRepository, reports ReportInvalidator) *CategoryService {
	return &CategoryService{storage: repo, reports: reports}
}

func (s *CategoryService) Add(ctx context.Context, owner int64, cmd core.CategoryCreate) (core.Category, error) {
	if err := cmd.Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.storage.Queries().CreateCategory(ctx, core.Category{
		OwnerID: owner,
		Name:    cmd.Name,
		Type:    cmd.Type,
		Icon:    cmd.Icon,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	return c, nil
}

// Update renames or re-icons a category. Its type is fixed so existing
// transactions keep a consistent classification.
func (s *CategoryService) Update(ctx context.Context, owner int64, cmd core.CategoryUpdate) (core.Category, error) {
	if err := cmd.Validate(); err != nil {
		return core.Category{}, err
	}
	var c core.Category
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if c, err = q.GetCategory(ctx, owner, cmd.ID); err != nil {
			return err
		}
		if cmd.Name != nil {
			c.Name = *cmd.Name
		}
		if cmd.Icon != nil {
			c.Icon = *cmd.Icon
		}
		return q.UpdateCategory(ctx, c)
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	// Reports group expenses by category name, in any period.
	if s.reports != nil {
		s.reports.InvalidateOwner(owner)
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, owner int64, req core.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.storage.WithTx(ctx, func(q *storage.Queries) error {
		return q.DeleteCategory(ctx, owner, req.ID)
	})
}

// List returns system categories first; typ may be empty for all types.
func (s *CategoryService) List(ctx context.Context, owner int64, typ core.TxType) ([]core.Category, error) {
	if typ != "" && !typ.Valid() {
		return nil, core.ErrInvalidType
	}
	return s.storage.Queries().ListCategories(ctx, owner, typ)
}

// Seed creates the default system categories for a new owner.
func (s *CategoryService) Seed(ctx context.Context, owner int64) (int, error) {
	return s.storage.SeedCategories(ctx, owner, core.DefaultCategories())
}
