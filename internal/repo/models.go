package repo

import (
	"database/sql"
	"time"

	"github.com/kirasurf/order-service/internal/entities"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID       string          `db:"order_id"`
	ShopID        string          `db:"shop_id"`
	UserID        string          `db:"user_id"`
	UserName      string          `db:"user_name"`
	UserEmail     string          `db:"user_email"`
	Address1      string          `db:"address1"`
	Address2      sql.NullString  `db:"address2"`
	City          sql.NullString  `db:"city"`
	Country       sql.NullString  `db:"country"`
	ZipCode       sql.NullString  `db:"zip_code"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	PaymentID     sql.NullString  `db:"payment_id"`
	PaymentType   sql.NullString  `db:"payment_type"`
	PaymentStatus string          `db:"payment_status"`
	Status        string          `db:"status"`
	StockApplied  bool            `db:"stock_applied"`
	DeliveredAt   sql.NullTime    `db:"delivered_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

type OrderItem struct {
	OrderID   string          `db:"order_id"`
	Position  int             `db:"position"`
	ProductID string          `db:"product_id"`
	ShopID    string          `db:"shop_id"`
	Name      string          `db:"name"`
	Qty       int             `db:"qty"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

type Shop struct {
	ShopID           string          `db:"shop_id"`
	Name             string          `db:"name"`
	Email            string          `db:"email"`
	AvailableBalance decimal.Decimal `db:"available_balance"`
}

func ItemToEntity(i OrderItem) entities.CartItem {
	return entities.CartItem{
		ProductID: i.ProductID,
		ShopID:    i.ShopID,
		Name:      i.Name,
		Qty:       i.Qty,
		UnitPrice: i.UnitPrice,
	}
}

func OrderToEntity(o Order, items []OrderItem) entities.Order {
	order := entities.Order{
		ID:     o.OrderID,
		ShopID: o.ShopID,
		Buyer: entities.Buyer{
			ID:    o.UserID,
			Name:  o.UserName,
			Email: o.UserEmail,
		},
		Shipping: entities.ShippingAddress{
			Address1: o.Address1,
			Address2: nullStringToString(o.Address2),
			City:     nullStringToString(o.City),
			Country:  nullStringToString(o.Country),
			ZipCode:  nullStringToString(o.ZipCode),
		},
		TotalPrice: o.TotalPrice,
		Payment: entities.PaymentInfo{
			ID:     nullStringToString(o.PaymentID),
			Type:   nullStringToString(o.PaymentType),
			Status: entities.PaymentStatus(o.PaymentStatus),
		},
		Status:       entities.Status(o.Status),
		StockApplied: o.StockApplied,
		CreatedAt:    o.CreatedAt,
	}

	if o.DeliveredAt.Valid {
		t := o.DeliveredAt.Time
		order.DeliveredAt = &t
	}

	if len(items) > 0 {
		order.Cart = make([]entities.CartItem, 0, len(items))
		for _, it := range items {
			order.Cart = append(order.Cart, ItemToEntity(it))
		}
	}

	return order
}

func ShopToEntity(s Shop) entities.Shop {
	return entities.Shop{
		ID:               s.ShopID,
		Name:             s.Name,
		Email:            s.Email,
		AvailableBalance: s.AvailableBalance,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
