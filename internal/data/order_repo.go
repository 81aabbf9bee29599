package data

import (
	"context"
	"errors"
	"time"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

type orderRepo struct {
	data *Data
	log  *log.Helper
}

// NewOrderRepo creates the order repository.
func NewOrderRepo(data *Data, logger log.Logger) biz.OrderRepo {
	return &orderRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, order *biz.Order) error {
	if err := r.data.DB(ctx).Create(toOrderModel(order)).Error; err != nil {
		r.log.Errorf("Failed to create order %s: %v", order.ID, err)
		return err
	}
	return nil
}

func (r *orderRepo) GetOrderByToken(ctx context.Context, token string) (*biz.Order, error) {
	var m model.Order
	err := r.data.DB(ctx).First(&m, "purchase_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get order by token: %v", err)
		return nil, err
	}
	return toOrderEntity(&m), nil
}

func (r *orderRepo) GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*biz.Order, error) {
	var m model.Order
	err := r.data.DB(ctx).First(&m, "payment_ref = ?", paymentRef).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get order by payment ref %s: %v", paymentRef, err)
		return nil, err
	}
	return toOrderEntity(&m), nil
}

func (r *orderRepo) UpdateOrder(ctx context.Context, order *biz.Order) error {
	if err := r.data.DB(ctx).Save(toOrderModel(order)).Error; err != nil {
		r.log.Errorf("Failed to update order %s: %v", order.ID, err)
		return err
	}
	return nil
}

func (r *orderRepo) MarkStalePendingFailed(ctx context.Context, cutoff time.Time) (int, []string, error) {
	var ids []string
	err := r.data.DB(ctx).Model(&model.Order{}).
		Where("status = ? AND created_at < ?", constants.OrderStatusPending, cutoff).
		Pluck("order_id", &ids).Error
	if err != nil {
		return 0, nil, err
	}
	if len(ids) == 0 {
		return 0, nil, nil
	}

	res := r.data.DB(ctx).Model(&model.Order{}).
		Where("order_id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     constants.OrderStatusFailed,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, nil, res.Error
	}
	return int(res.RowsAffected), ids, nil
}

func toOrderModel(o *biz.Order) *model.Order {
	return &model.Order{
		ID:            o.ID,
		Email:         o.Email,
		PaymentRef:    o.PaymentRef,
		Status:        o.Status,
		Amount:        o.Amount,
		Currency:      o.Currency,
		PurchaseToken: o.PurchaseToken,
		MemorialID:    o.MemorialID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderEntity(m *model.Order) *biz.Order {
	return &biz.Order{
		ID:            m.ID,
		Email:         m.Email,
		PaymentRef:    m.PaymentRef,
		Status:        m.Status,
		Amount:        m.Amount,
		Currency:      m.Currency,
		PurchaseToken: m.PurchaseToken,
		MemorialID:    m.MemorialID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
