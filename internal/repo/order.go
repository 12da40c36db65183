package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirasurf/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var orderColumns = []string{
	"order_id", "shop_id", "user_id", "user_name", "user_email",
	"address1", "address2", "city", "country", "zip_code",
	"total_price", "payment_id", "payment_type", "payment_status",
	"status", "stock_applied", "delivered_at", "created_at",
}

var itemColumns = []string{
	"order_id", "position", "product_id", "shop_id", "name", "qty", "unit_price",
}

type orderRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewOrderRepo(db *sqlx.DB) *orderRepo {
	return &orderRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID, o.ShopID, o.Buyer.ID, o.Buyer.Name, o.Buyer.Email,
			o.Shipping.Address1, nullString(o.Shipping.Address2),
			nullString(o.Shipping.City), nullString(o.Shipping.Country),
			nullString(o.Shipping.ZipCode),
			o.TotalPrice, nullString(o.Payment.ID), nullString(o.Payment.Type),
			string(o.Payment.Status),
			string(o.Status), o.StockApplied, nullTime(o.DeliveredAt), o.CreatedAt,
		).
		MustSql()

	if _, err := execContext(ctx, r.db, query, args...); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	if len(o.Cart) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").Columns(itemColumns...)
	for i, it := range o.Cart {
		q = q.Values(o.ID, i, it.ProductID, it.ShopID, it.Name, it.Qty, it.UnitPrice)
	}

	query, args = q.MustSql()
	if _, err := execContext(ctx, r.db, query, args...); err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}
	return nil
}

func (r *orderRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

// GetOrderForUpdate locks the order row for the rest of the transaction, so
// concurrent transitions on the same order serialize.
func (r *orderRepo) GetOrderForUpdate(ctx context.Context, orderID string) (entities.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *orderRepo) getOrder(ctx context.Context, orderID string, forUpdate bool) (entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"order_id": orderID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	query, args := q.MustSql()

	var order Order
	err := getContext(ctx, r.db, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsByOrder(ctx, []string{orderID})
	if err != nil {
		return entities.Order{}, err
	}

	return OrderToEntity(order, items[orderID]), nil
}

func (r *orderRepo) OrdersByUser(ctx context.Context, userID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		MustSql()

	return r.selectOrders(ctx, query, args)
}

func (r *orderRepo) OrdersByShop(ctx context.Context, shopID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"shop_id": shopID}).
		OrderBy("created_at DESC").
		MustSql()

	return r.selectOrders(ctx, query, args)
}

// AdminOrders lists every order, delivered ones first (most recent delivery
// leading), then the rest by creation time.
func (r *orderRepo) AdminOrders(ctx context.Context) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		OrderBy("delivered_at DESC NULLS LAST", "created_at DESC").
		MustSql()

	return r.selectOrders(ctx, query, args)
}

func (r *orderRepo) UpdateOrderStatus(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Update("orders").
		Set("status", string(o.Status)).
		Set("payment_status", string(o.Payment.Status)).
		Set("stock_applied", o.StockApplied).
		Set("delivered_at", nullTime(o.DeliveredAt)).
		Where(sq.Eq{"order_id": o.ID}).
		MustSql()

	res, err := execContext(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) selectOrders(ctx context.Context, query string, args []any) ([]entities.Order, error) {
	var orders []Order
	if err := selectContext(ctx, r.db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}

	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.OrderID
	}

	itemsMap, err := r.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]entities.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, OrderToEntity(order, itemsMap[order.OrderID]))
	}
	return result, nil
}

func (r *orderRepo) itemsByOrder(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	query, args := r.qb.Select(itemColumns...).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position").
		MustSql()

	var items []OrderItem
	if err := selectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}

	itemsMap := make(map[string][]OrderItem, len(orderIDs))
	for _, item := range items {
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	return itemsMap, nil
}
