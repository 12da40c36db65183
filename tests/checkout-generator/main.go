package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publishes synthetic checkout submissions to the checkouts topic.

type CartItem struct {
	ProductID string  `json:"productId"`
	ShopID    string  `json:"shopId"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
}

type ShippingAddress struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Country  string `json:"country"`
	ZipCode  string `json:"zipCode"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Checkout struct {
	Cart            []CartItem      `json:"cart"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	User            User            `json:"user"`
	TotalPrice      float64         `json:"totalPrice"`
}

var shops = []string{"shop-1", "shop-2", "shop-3"}
var products = []string{"prod-1", "prod-2", "prod-3", "prod-4", "prod-5"}

func main() {
	writer := &kafka.Writer{
		Addr:     kafka.TCP("localhost:9092"),
		Topic:    "checkouts",
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		checkout := randomCheckout(i)
		value, err := json.Marshal(checkout)
		if err != nil {
			log.Fatal(err)
		}

		err = writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(checkout.User.ID),
			Value: value,
		})
		if err != nil {
			log.Printf("failed to write message: %v", err)
		}

		time.Sleep(200 * time.Millisecond)
	}
}

func randomCheckout(n int) Checkout {
	itemCount := 1 + rand.Intn(4)
	cart := make([]CartItem, 0, itemCount)
	total := 0.0

	for i := 0; i < itemCount; i++ {
		price := float64(5+rand.Intn(95)) + 0.99
		qty := 1 + rand.Intn(3)
		cart = append(cart, CartItem{
			ProductID: products[rand.Intn(len(products))],
			ShopID:    shops[rand.Intn(len(shops))],
			Name:      fmt.Sprintf("Item %d-%d", n, i),
			Qty:       qty,
			Price:     price,
		})
		total += price * float64(qty)
	}

	return Checkout{
		Cart: cart,
		ShippingAddress: ShippingAddress{
			Address1: "1 Test Street",
			City:     "Lagos",
			Country:  "NG",
			ZipCode:  "100001",
		},
		User: User{
			ID:    fmt.Sprintf("user-%d", rand.Intn(50)),
			Name:  "Load Tester",
			Email: "load@example.com",
		},
		TotalPrice: total,
	}
}
