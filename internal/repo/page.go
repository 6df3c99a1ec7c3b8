package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/utils"
)

// ErrInvalidSort is returned when a page request names a column that is not
// sortable for the entity.
var ErrInvalidSort = errors.New("invalid sort field")

// sortColumns maps API field names onto qualified SQL columns.
type sortColumns map[string]string

func (s sortColumns) order(p utils.Pageable, fallback string) (string, error) {
	col := s[fallback]
	if p.SortBy != "" {
		c, ok := s[p.SortBy]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidSort, p.SortBy)
		}
		col = c
	}
	if p.Desc {
		return col + " DESC", nil
	}
	return col + " ASC", nil
}

// findPage counts the rows matched by q and loads the requested slice.
// q must already carry the Model and filters.
func findPage[T any](ctx context.Context, q *gorm.DB, p utils.Pageable, cols sortColumns, fallback string) (utils.Page[T], error) {
	order, err := cols.order(p, fallback)
	if err != nil {
		return utils.Page[T]{}, err
	}
	base := q.WithContext(ctx).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return utils.Page[T]{}, err
	}

	items := make([]T, 0, max(p.Size, 0))
	if total > 0 {
		// Secondary key keeps ordering stable across pages.
		if err := base.Order(order).Order(cols["id"]).Offset(p.Offset()).Limit(p.Size).Find(&items).Error; err != nil {
			return utils.Page[T]{}, err
		}
	}
	return utils.NewPage(items, p, total), nil
}
