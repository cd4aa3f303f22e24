package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/models"
)

type Service struct {
	DB *gorm.DB
}

// Totals is the staff dashboard snapshot, recomputed from scratch on every
// view.
type Totals struct {
	SalesGeneral float64 `json:"sales_general"`
	SalesFraming float64 `json:"sales_framing"`
	SalesPlaque  float64 `json:"sales_plaque"`
	GrandTotal   float64 `json:"grand_total"`
	TotalOrders  int64   `json:"total_orders"`
	PendingCount int64   `json:"pending_count"`
}

func (s *Service) paidSum(ctx context.Context, model interface{}, column string) (float64, error) {
	var v float64
	err := s.DB.WithContext(ctx).Model(model).
		Where("status IN ?", models.PaidStatuses).
		Select("COALESCE(SUM(" + column + "), 0)").
		Scan(&v).Error
	return v, err
}

func (s *Service) count(ctx context.Context, model interface{}, pendingOnly bool) (int64, error) {
	q := s.DB.WithContext(ctx).Model(model)
	if pendingOnly {
		q = q.Where("status = ?", models.StatusPending)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Compute sums realized revenue per order kind over the paid statuses,
// counts orders of any status, and counts pending orders awaiting staff
// attention.
func (s *Service) Compute(ctx context.Context) (*Totals, error) {
	t := &Totals{}

	var err error
	if t.SalesGeneral, err = s.paidSum(ctx, &models.Order{}, "total_price"); err != nil {
		return nil, err
	}
	if t.SalesFraming, err = s.paidSum(ctx, &models.FrameOrder{}, "total_price"); err != nil {
		return nil, err
	}
	if t.SalesPlaque, err = s.paidSum(ctx, &models.PlaqueOrder{}, "final_price"); err != nil {
		return nil, err
	}
	t.GrandTotal = t.SalesGeneral + t.SalesFraming + t.SalesPlaque

	for _, m := range []interface{}{&models.Order{}, &models.FrameOrder{}, &models.PlaqueOrder{}} {
		n, err := s.count(ctx, m, false)
		if err != nil {
			return nil, err
		}
		t.TotalOrders += n

		p, err := s.count(ctx, m, true)
		if err != nil {
			return nil, err
		}
		t.PendingCount += p
	}

	return t, nil
}
