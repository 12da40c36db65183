package handler

import (
	"time"

	"github.com/kirasurf/order-service/internal/entities"
	"github.com/kirasurf/order-service/internal/service"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CartItem is a checkout line as submitted by the storefront.
type CartItem struct {
	ProductID string          `json:"productId" validate:"required"`
	ShopID    string          `json:"shopId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Qty       int             `json:"qty" validate:"required,gte=1"`
	Price     decimal.Decimal `json:"price" validate:"required"`
}

type ShippingAddress struct {
	Address1 string `json:"address1" validate:"required"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
}

type User struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type PaymentInfo struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=Pending Succeeded Failed"`
}

type CreateOrderRequest struct {
	Cart            []CartItem      `json:"cart" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress" validate:"required"`
	User            User            `json:"user" validate:"required"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Order is the response shape for a persisted order.
type Order struct {
	ID              string          `json:"id"`
	ShopID          string          `json:"shopId"`
	Cart            []CartItem      `json:"cart"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	User            User            `json:"user"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	Status          string          `json:"status"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrdersResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
}

type OrderResponse struct {
	Success bool  `json:"success"`
	Order   Order `json:"order"`
}

type RefundResponse struct {
	Success bool   `json:"success"`
	Order   Order  `json:"order"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func CartItemJSONToEntity(i CartItem) entities.CartItem {
	return entities.CartItem{
		ProductID: i.ProductID,
		ShopID:    i.ShopID,
		Name:      i.Name,
		Qty:       i.Qty,
		UnitPrice: i.Price,
	}
}

func CartItemEntityToJSON(i entities.CartItem) CartItem {
	return CartItem{
		ProductID: i.ProductID,
		ShopID:    i.ShopID,
		Name:      i.Name,
		Qty:       i.Qty,
		Price:     i.UnitPrice,
	}
}

func CreateOrderRequestToInput(req CreateOrderRequest) service.CreateOrderInput {
	return service.CreateOrderInput{
		Cart: lo.Map(req.Cart, func(i CartItem, _ int) entities.CartItem {
			return CartItemJSONToEntity(i)
		}),
		Shipping: entities.ShippingAddress{
			Address1: req.ShippingAddress.Address1,
			Address2: req.ShippingAddress.Address2,
			City:     req.ShippingAddress.City,
			Country:  req.ShippingAddress.Country,
			ZipCode:  req.ShippingAddress.ZipCode,
		},
		Buyer: entities.Buyer{
			ID:    req.User.ID,
			Name:  req.User.Name,
			Email: req.User.Email,
		},
		Payment: entities.PaymentInfo{
			ID:     req.PaymentInfo.ID,
			Type:   req.PaymentInfo.Type,
			Status: entities.PaymentStatus(req.PaymentInfo.Status),
		},
		TotalPrice: req.TotalPrice,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	return Order{
		ID:     o.ID,
		ShopID: o.ShopID,
		Cart: lo.Map(o.Cart, func(i entities.CartItem, _ int) CartItem {
			return CartItemEntityToJSON(i)
		}),
		ShippingAddress: ShippingAddress{
			Address1: o.Shipping.Address1,
			Address2: o.Shipping.Address2,
			City:     o.Shipping.City,
			Country:  o.Shipping.Country,
			ZipCode:  o.Shipping.ZipCode,
		},
		User: User{
			ID:    o.Buyer.ID,
			Name:  o.Buyer.Name,
			Email: o.Buyer.Email,
		},
		TotalPrice: o.TotalPrice,
		PaymentInfo: PaymentInfo{
			ID:     o.Payment.ID,
			Type:   o.Payment.Type,
			Status: string(o.Payment.Status),
		},
		Status:      string(o.Status),
		DeliveredAt: o.DeliveredAt,
		CreatedAt:   o.CreatedAt,
	}
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	return lo.Map(orders, func(o entities.Order, _ int) Order {
		return OrderEntityToJSON(o)
	})
}
