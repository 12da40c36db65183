package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirasurf/order-service/internal/entities"
	"github.com/kirasurf/order-service/pkg/trm"
	"github.com/kirasurf/order-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) error
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (entities.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]entities.Order, error)
	OrdersByShop(ctx context.Context, shopID string) ([]entities.Order, error)
	AdminOrders(ctx context.Context) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, o entities.Order) error
}

type InventoryLedger interface {
	ApplyDelta(ctx context.Context, productID string, deltaStock, deltaSold int) error
}

type ShopLedger interface {
	GetShop(ctx context.Context, shopID string) (entities.Shop, error)
	Credit(ctx context.Context, shopID string, amount decimal.Decimal) error
}

type Notifier interface {
	Send(ctx context.Context, n entities.Notification) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

// CreateOrderInput is one checkout submission. The cart may span shops; it is
// split into one order per shop.
type CreateOrderInput struct {
	Cart       []entities.CartItem
	Shipping   entities.ShippingAddress
	Buyer      entities.Buyer
	Payment    entities.PaymentInfo
	TotalPrice decimal.Decimal
}

type orderService struct {
	logger     *slog.Logger
	txManager  trm.Manager
	orders     OrderRepo
	inventory  InventoryLedger
	shops      ShopLedger
	notifier   Notifier
	cache      Cache
	chargeRate decimal.Decimal
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	inventory InventoryLedger,
	shops ShopLedger,
	notifier Notifier,
	cache Cache,
	chargeRate float64,
) *orderService {
	return &orderService{
		logger:     logger.With(slog.String("service", "order")),
		txManager:  txManager,
		orders:     orders,
		inventory:  inventory,
		shops:      shops,
		notifier:   notifier,
		cache:      cache,
		chargeRate: decimal.NewFromFloat(chargeRate),
	}
}

// CreateOrders splits the cart per shop and persists one order per group.
// Each order is created in its own transaction (order row plus items), and
// notifications fire only after the order is durable. A notification failure
// never fails the creation.
func (s *orderService) CreateOrders(ctx context.Context, input CreateOrderInput) ([]entities.Order, error) {
	groups, err := SplitCart(input.Cart)
	if err != nil {
		return nil, err
	}

	payment := input.Payment
	if payment.Status == "" {
		payment.Status = entities.PaymentPending
	}

	created := make([]entities.Order, 0, len(groups))
	submitted := decimal.Zero

	for _, group := range groups {
		order := entities.Order{
			ID:         uuid.NewString(),
			ShopID:     group.ShopID,
			Cart:       group.Items,
			Shipping:   input.Shipping,
			Buyer:      input.Buyer,
			TotalPrice: group.Total(),
			Payment:    payment,
			Status:     entities.StatusProcessing,
			CreatedAt:  time.Now().UTC(),
		}
		submitted = submitted.Add(order.TotalPrice)

		err := s.txManager.Do(ctx, func(ctx context.Context) error {
			return s.orders.CreateOrder(ctx, order)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create order for shop %s: %w", group.ShopID, err)
		}

		ordersCreated.Inc()
		s.logger.Debug("order created",
			slog.String("order_id", order.ID), slog.String("shop_id", order.ShopID))

		s.notifyOrderCreated(ctx, order)
		created = append(created, order)
	}

	if !input.TotalPrice.IsZero() && !submitted.Equal(input.TotalPrice) {
		s.logger.Warn("submitted cart total does not match sum of sub-orders",
			slog.String("submitted", input.TotalPrice.String()),
			slog.String("computed", submitted.String()),
			slog.String("user_id", input.Buyer.ID))
	}

	return created, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	if data, ok := s.cache.Get(orderID); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err != nil {
			s.logger.Error("failed to unmarshal cached order", slog.Any("error", err))
			return entities.Order{}, err
		}
		return order, nil
	}

	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.orders.GetOrderByID(ctx, orderID)
		return err
	}
	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  5,
		Multiplier:   2,
	}
	if err := utils.Retry(ctx, cfg, fn, entities.ErrOrderNotFound); err != nil {
		return entities.Order{}, err
	}

	data, err := order.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal order", slog.Any("error", err))
		return entities.Order{}, err
	}
	s.cache.Set(orderID, data)
	return order, nil
}

func (s *orderService) UserOrders(ctx context.Context, userID string) ([]entities.Order, error) {
	return s.orders.OrdersByUser(ctx, userID)
}

func (s *orderService) ShopOrders(ctx context.Context, shopID string) ([]entities.Order, error) {
	return s.orders.OrdersByShop(ctx, shopID)
}

func (s *orderService) AdminOrders(ctx context.Context, actor entities.Actor) ([]entities.Order, error) {
	if !actor.IsAdmin() {
		return nil, entities.ErrForbidden
	}
	return s.orders.AdminOrders(ctx)
}

// UpdateStatus applies a seller-driven transition. The status write and every
// ledger side effect run in one transaction: a failure on any cart item rolls
// back the whole batch. The order row is locked for the duration, so retried
// or concurrent calls observe the new state and are rejected as invalid
// transitions rather than double-applying side effects.
func (s *orderService) UpdateStatus(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
	if !actor.IsSeller() {
		return entities.Order{}, entities.ErrForbidden
	}
	if target == entities.StatusRefundRequested {
		// buyer-initiated, see RequestRefund
		return entities.Order{}, entities.ErrForbidden
	}

	var updated entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.ShopID != actor.ID {
			return entities.ErrForbidden
		}

		updated, err = s.applyTransition(ctx, order, target)
		return err
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.finishTransition(orderID, target)
	return updated, nil
}

// RequestRefund is the buyer-side transition to Refund Requested. It has no
// ledger side effects.
func (s *orderService) RequestRefund(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
	if !actor.IsBuyer() {
		return entities.Order{}, entities.ErrForbidden
	}
	if target != entities.StatusRefundRequested {
		return entities.Order{}, fmt.Errorf("%w: buyers may only request refunds", entities.ErrInvalidTransition)
	}

	var updated entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Buyer.ID != actor.ID {
			return entities.ErrForbidden
		}

		updated, err = s.applyTransition(ctx, order, target)
		return err
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.finishTransition(orderID, target)
	return updated, nil
}

// applyTransition validates legality against the current state and applies
// the side effects keyed on the target status. Must run inside a transaction.
func (s *orderService) applyTransition(ctx context.Context, order entities.Order, target entities.Status) (entities.Order, error) {
	if !entities.CanTransition(order.Status, target) {
		return entities.Order{}, fmt.Errorf("%w: %q -> %q", entities.ErrInvalidTransition, order.Status, target)
	}

	switch target {
	case entities.StatusTransferred:
		if err := s.adjustStock(ctx, order.Cart, -1); err != nil {
			return entities.Order{}, err
		}
		order.StockApplied = true

	case entities.StatusDelivered:
		now := time.Now().UTC()
		order.DeliveredAt = &now
		order.Payment.Status = entities.PaymentSucceeded

		serviceCharge := order.TotalPrice.Mul(s.chargeRate)
		if err := s.shops.Credit(ctx, order.ShopID, order.TotalPrice.Sub(serviceCharge)); err != nil {
			return entities.Order{}, fmt.Errorf("failed to credit seller: %w", err)
		}

	case entities.StatusRefundSuccess:
		// Reverse the inventory decrement only if it actually fired.
		if order.StockApplied {
			if err := s.adjustStock(ctx, order.Cart, 1); err != nil {
				return entities.Order{}, err
			}
			order.StockApplied = false
		}

	case entities.StatusRefundRequested:
		// status write only
	}

	order.Status = target
	if err := s.orders.UpdateOrderStatus(ctx, order); err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

// adjustStock applies the per-item stock deltas for a cart. direction -1
// ships the order (stock down, sold-count up), +1 reverses it. The first
// failing item aborts the batch; the enclosing transaction rolls back the
// items already applied.
func (s *orderService) adjustStock(ctx context.Context, cart []entities.CartItem, direction int) error {
	for _, item := range cart {
		err := s.inventory.ApplyDelta(ctx, item.ProductID, direction*item.Qty, -direction*item.Qty)
		if err != nil {
			if direction < 0 {
				stockRejections.Inc()
			}
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *orderService) finishTransition(orderID string, target entities.Status) {
	s.cache.Remove(orderID)
	transitionsTotal.WithLabelValues(string(target)).Inc()
}

func (s *orderService) notifyOrderCreated(ctx context.Context, order entities.Order) {
	names := make([]string, len(order.Cart))
	for i, item := range order.Cart {
		names[i] = fmt.Sprintf("%s x%d", item.Name, item.Qty)
	}
	itemList := strings.Join(names, ", ")

	buyerNote := entities.Notification{
		Recipient: order.Buyer.Email,
		Subject:   "Your order has been placed",
		Body: fmt.Sprintf("Dear %s, your order %s is being processed. Items: %s.",
			order.Buyer.Name, order.ID, itemList),
	}
	s.send(ctx, buyerNote)

	shop, err := s.shops.GetShop(ctx, order.ShopID)
	if err != nil {
		s.logger.Error("failed to look up shop for notification",
			slog.String("shop_id", order.ShopID), slog.Any("error", err))
		notificationFailures.Inc()
		return
	}

	sellerNote := entities.Notification{
		Recipient: shop.Email,
		Subject:   "New order received",
		Body: fmt.Sprintf("Dear %s, you received order %s. Please prepare for shipment: %s.",
			shop.Name, order.ID, itemList),
	}
	s.send(ctx, sellerNote)
}

func (s *orderService) send(ctx context.Context, n entities.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("failed to send notification",
			slog.String("recipient", n.Recipient), slog.Any("error", err))
		notificationFailures.Inc()
	}
}
