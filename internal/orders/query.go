package orders

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/pedro5g/forfly/internal/models"
	"github.com/pedro5g/forfly/internal/repo"
)

const PageSize = 10

type ListParams struct {
	OrderID      string
	CustomerName string
	Status       models.OrderStatus
	PageIndex    int
}

type ListResult struct {
	Orders     []repo.OrderSummary `json:"orders"`
	TotalCount int64               `json:"totalCount"`
}

// OrderLister is the part of the order store the query service needs.
type OrderLister interface {
	ListOrders(ctx context.Context, restaurantID string, f repo.OrderFilter, limit, offset int) ([]repo.OrderSummary, error)
	CountOrders(ctx context.Context, restaurantID string, f repo.OrderFilter) (int64, error)
}

type QueryService struct {
	store OrderLister
}

func NewQueryService(store OrderLister) *QueryService {
	return &QueryService{store: store}
}

// ListOrders pages through the restaurant's orders. TotalCount is the size of
// the whole filtered set, so a page past the end is empty but still reports it.
func (s *QueryService) ListOrders(ctx context.Context, restaurantID string, p ListParams) (*ListResult, error) {
	page := p.PageIndex
	if page < 1 {
		page = 1
	}

	// ids are uuids; anything else cannot match and would upset Postgres
	if p.OrderID != "" {
		if _, err := uuid.Parse(p.OrderID); err != nil {
			return &ListResult{Orders: []repo.OrderSummary{}, TotalCount: 0}, nil
		}
	}

	filter := repo.OrderFilter{
		OrderID:      p.OrderID,
		CustomerName: p.CustomerName,
		Status:       p.Status,
	}

	total, err := s.store.CountOrders(ctx, restaurantID, filter)
	if err != nil {
		return nil, err
	}
	// (page-1)*PageSize would overflow; no such page can hold rows
	if page-1 > math.MaxInt/PageSize {
		return &ListResult{Orders: []repo.OrderSummary{}, TotalCount: total}, nil
	}
	rows, err := s.store.ListOrders(ctx, restaurantID, filter, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return &ListResult{Orders: rows, TotalCount: total}, nil
}
