package service

import (
	"fmt"

	"github.com/kirasurf/order-service/internal/entities"

	"github.com/shopspring/decimal"
)

// ShopGroup is the per-shop partition of a checkout cart.
type ShopGroup struct {
	ShopID string
	Items  []entities.CartItem
}

// InvalidCartItemError points at the cart index that could not be assigned to
// a shop.
type InvalidCartItemError struct {
	Index int
}

func (e *InvalidCartItemError) Error() string {
	return fmt.Sprintf("cart item %d has no shop id", e.Index)
}

// SplitCart partitions a flat cart into one group per shop. The partition is
// stable: groups appear in first-seen shop order and items keep their relative
// order within a group. Every input item lands in exactly one group.
func SplitCart(cart []entities.CartItem) ([]ShopGroup, error) {
	groups := make([]ShopGroup, 0, len(cart))
	index := make(map[string]int, len(cart))

	for i, item := range cart {
		if item.ShopID == "" {
			return nil, &InvalidCartItemError{Index: i}
		}

		at, ok := index[item.ShopID]
		if !ok {
			at = len(groups)
			index[item.ShopID] = at
			groups = append(groups, ShopGroup{ShopID: item.ShopID})
		}
		groups[at].Items = append(groups[at].Items, item)
	}

	return groups, nil
}

// Total is the sub-order total: the sum of qty times unit price over the
// group's items. Stored on the order so later transitions never recompute it
// from a different scope.
func (g ShopGroup) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
