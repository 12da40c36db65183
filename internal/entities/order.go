package entities

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a snapshot of a product at the moment the buyer checked out.
// Once embedded in an order it is never mutated.
type CartItem struct {
	ProductID string
	ShopID    string
	Name      string
	Qty       int
	UnitPrice decimal.Decimal
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

type ShippingAddress struct {
	Address1 string
	Address2 string
	City     string
	Country  string
	ZipCode  string
}

// Buyer is the snapshot of the purchasing user stored on the order.
type Buyer struct {
	ID    string
	Name  string
	Email string
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentSucceeded PaymentStatus = "Succeeded"
	PaymentFailed    PaymentStatus = "Failed"
)

type PaymentInfo struct {
	ID     string
	Type   string
	Status PaymentStatus
}

// Order is one per-shop partition of a checkout. Cart, shipping, buyer and
// payment-intent fields are immutable after creation; only status transitions
// mutate the record.
type Order struct {
	ID         string
	ShopID     string
	Cart       []CartItem
	Shipping   ShippingAddress
	Buyer      Buyer
	TotalPrice decimal.Decimal
	Payment    PaymentInfo

	Status Status
	// StockApplied records whether the inventory decrement for this order has
	// fired, so a refund of a never-shipped order does not increment stock.
	StockApplied bool
	DeliveredAt  *time.Time
	CreatedAt    time.Time
}

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrShopNotFound      = errors.New("shop not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrForbidden         = errors.New("forbidden")
)

func (o *Order) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Order) Unmarshal(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	return dec.Decode(o)
}

func init() {
	gob.Register(Order{})
	gob.Register(CartItem{})
	gob.Register(ShippingAddress{})
	gob.Register(PaymentInfo{})
}
