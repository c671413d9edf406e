package repositories

import (
	"context"
	"fmt"

	"pennywise/internal/models"

	"gorm.io/gorm"
)

type categoryTree struct {
	db *gorm.DB
}

// NewCategoryTree creates a CategoryTree over the categories table.
func NewCategoryTree(db *gorm.DB) CategoryTree {
	return &categoryTree{db: db}
}

func (r *categoryTree) Categories(ctx context.Context, userID string, includeInactive bool) ([]CategoryNode, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var rows []models.Category
	if err := q.Order("sort_order ASC, name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	nodes := make([]CategoryNode, 0, len(rows))
	for _, c := range rows {
		nodes = append(nodes, CategoryNode{
			ID:        c.ID,
			Name:      c.Name,
			ParentID:  c.ParentID,
			Active:    c.IsActive,
			Type:      c.Type,
			SortOrder: c.SortOrder,
		})
	}
	return nodes, nil
}
