package entities

import "github.com/shopspring/decimal"

// Shop holds the seller fields this service reads and mutates. The full shop
// profile is owned by the seller subsystem.
type Shop struct {
	ID               string
	Name             string
	Email            string
	AvailableBalance decimal.Decimal
}

// Product is the inventory view of a catalog product.
type Product struct {
	ID      string
	Stock   int
	SoldOut int
}

// Notification is an email envelope handed to the external mailer.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}
