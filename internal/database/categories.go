package database

import (
	"context"
	"fmt"

	"family-fund-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, queryListCategories)
	if err != nil {
		return nil, fmt.Errorf("unable to query categories: %w", err)
	}
	defer closeRows(rows)

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Id, &c.Name, &c.Type, &c.Color, &c.Icon, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("unable to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	if category.Id == "" {
		category.Id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, queryInsertCategory,
		category.Id, category.Name, category.Type, category.Color, category.Icon, category.IsDefault)
	if err != nil {
		return nil, fmt.Errorf("unable to create category: %w", err)
	}
	zap.L().Info("Created category", zap.String("category_id", category.Id), zap.String("name", category.Name))
	return &category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, category models.Category) error {
	_, err := s.db.ExecContext(ctx, queryUpdateCategory,
		category.Name, category.Type, category.Color, category.Icon, category.IsDefault, category.Id)
	if err != nil {
		return fmt.Errorf("unable to update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category without touching transactions that
// reference it; they fall back to an uncategorized label downstream.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteCategory, id); err != nil {
		return fmt.Errorf("unable to delete category: %w", err)
	}
	zap.L().Info("Deleted category", zap.String("category_id", id))
	return nil
}
