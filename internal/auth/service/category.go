package service

import (
	"context"
	"errors"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/domain"
	"github.com/boxlabs/storagebox/internal/auth/store"
	"github.com/boxlabs/storagebox/pkg/idx"
)

var ErrCategoryNameTaken = errors.New("category_name_taken")

type CategoryService struct {
	Store store.Store
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	return s.Store.Categories().GetCategoryByID(ctx, id)
}

// CreateCategory creates a category owned by the given user. Category names
// are globally unique.
func (s *CategoryService) CreateCategory(
	ctx context.Context,
	name, description, userID string,
) (domain.Category, error) {
	taken, err := s.Store.Categories().ExistsCategoryByName(ctx, name)
	if err != nil {
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, ErrCategoryNameTaken
	}

	c := domain.Category{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		UserID:      userID,
	}
	if err := s.Store.Categories().CreateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}

	return s.Store.Categories().GetCategoryByID(ctx, c.ID)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.Store.Categories().DeleteCategory(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Categories().ListCategories(ctx)
}

type FeeService struct {
	Store store.Store
}

func (s *FeeService) GetFeeByID(ctx context.Context, id string) (domain.Fee, error) {
	return s.Store.Fees().GetFeeByID(ctx, id)
}

func (s *FeeService) CreateFee(
	ctx context.Context,
	name string,
	price float64,
	description string,
	date time.Time,
	categoryName, userID string,
) (domain.Fee, error) {
	f := domain.Fee{
		ID:           idx.New().String(),
		Name:         name,
		Price:        price,
		Description:  description,
		Date:         date,
		CategoryName: categoryName,
		UserID:       userID,
	}
	if err := s.Store.Fees().CreateFee(ctx, f); err != nil {
		return domain.Fee{}, err
	}

	return s.Store.Fees().GetFeeByID(ctx, f.ID)
}

func (s *FeeService) UpdateFee(ctx context.Context, f domain.Fee) (domain.Fee, error) {
	if err := s.Store.Fees().UpdateFee(ctx, f); err != nil {
		return domain.Fee{}, err
	}
	return s.Store.Fees().GetFeeByID(ctx, f.ID)
}

func (s *FeeService) DeleteFee(ctx context.Context, id string) error {
	return s.Store.Fees().DeleteFee(ctx, id)
}

func (s *FeeService) ListFees(ctx context.Context) ([]domain.Fee, error) {
	return s.Store.Fees().ListFees(ctx)
}
