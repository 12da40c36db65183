package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirasurf/order-service/internal/entities"
	"github.com/kirasurf/order-service/internal/handler"
	"github.com/kirasurf/order-service/internal/middleware"
	"github.com/kirasurf/order-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	createOrders  func(ctx context.Context, input service.CreateOrderInput) ([]entities.Order, error)
	getOrderByID  func(ctx context.Context, orderID string) (entities.Order, error)
	userOrders    func(ctx context.Context, userID string) ([]entities.Order, error)
	shopOrders    func(ctx context.Context, shopID string) ([]entities.Order, error)
	adminOrders   func(ctx context.Context, actor entities.Actor) ([]entities.Order, error)
	updateStatus  func(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error)
	requestRefund func(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error)
}

func (f *fakeOrderService) CreateOrders(ctx context.Context, input service.CreateOrderInput) ([]entities.Order, error) {
	return f.createOrders(ctx, input)
}

func (f *fakeOrderService) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	return f.getOrderByID(ctx, orderID)
}

func (f *fakeOrderService) UserOrders(ctx context.Context, userID string) ([]entities.Order, error) {
	return f.userOrders(ctx, userID)
}

func (f *fakeOrderService) ShopOrders(ctx context.Context, shopID string) ([]entities.Order, error) {
	return f.shopOrders(ctx, shopID)
}

func (f *fakeOrderService) AdminOrders(ctx context.Context, actor entities.Actor) ([]entities.Order, error) {
	return f.adminOrders(ctx, actor)
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
	return f.updateStatus(ctx, actor, orderID, target)
}

func (f *fakeOrderService) RequestRefund(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
	return f.requestRefund(ctx, actor, orderID, target)
}

func newRouter(svc *fakeOrderService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHTTPHandler(logger, svc)

	r := chi.NewRouter()
	r.Use(middleware.Actor)
	h.Init(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	res := rr.Result()
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(data)
}

func sampleOrder(id string) entities.Order {
	return entities.Order{
		ID:     id,
		ShopID: "S1",
		Cart: []entities.CartItem{{
			ProductID: "P1",
			ShopID:    "S1",
			Name:      "Widget",
			Qty:       2,
			UnitPrice: decimal.NewFromInt(50),
		}},
		Shipping:   entities.ShippingAddress{Address1: "1 Test Street"},
		Buyer:      entities.Buyer{ID: "U1", Name: "Ada", Email: "ada@example.com"},
		TotalPrice: decimal.NewFromInt(100),
		Payment:    entities.PaymentInfo{Status: entities.PaymentPending},
		Status:     entities.StatusProcessing,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

const validCreateBody = `{
	"cart": [
		{"productId": "P1", "shopId": "S1", "name": "Widget", "qty": 2, "price": 50},
		{"productId": "P2", "shopId": "S2", "name": "Gadget", "qty": 1, "price": 30}
	],
	"shippingAddress": {"address1": "1 Test Street", "city": "Lagos"},
	"user": {"id": "U1", "name": "Ada", "email": "ada@example.com"},
	"totalPrice": 130,
	"paymentInfo": {"id": "pi_1", "type": "card"}
}`

func TestHTTPHandler_CreateOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotInput service.CreateOrderInput
		svc := &fakeOrderService{
			createOrders: func(_ context.Context, input service.CreateOrderInput) ([]entities.Order, error) {
				gotInput = input
				return []entities.Order{sampleOrder("o1"), sampleOrder("o2")}, nil
			},
		}

		status, body := doRequest(t, newRouter(svc), http.MethodPost, "/order/create-order", validCreateBody, nil)

		assert.Equal(t, http.StatusCreated, status)
		assert.Contains(t, body, `"success":true`)
		assert.Contains(t, body, `"o1"`)
		assert.Contains(t, body, `"o2"`)

		require.Len(t, gotInput.Cart, 2)
		assert.Equal(t, "S1", gotInput.Cart[0].ShopID)
		assert.Equal(t, "U1", gotInput.Buyer.ID)
		assert.True(t, gotInput.TotalPrice.Equal(decimal.NewFromInt(130)))
	})

	t.Run("empty cart rejected by validation", func(t *testing.T) {
		svc := &fakeOrderService{
			createOrders: func(context.Context, service.CreateOrderInput) ([]entities.Order, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}

		body := `{"cart": [], "shippingAddress": {"address1": "a"}, "user": {"id": "U1", "name": "Ada", "email": "ada@example.com"}}`
		status, resp := doRequest(t, newRouter(svc), http.MethodPost, "/order/create-order", body, nil)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp, `"success":false`)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := &fakeOrderService{}
		status, _ := doRequest(t, newRouter(svc), http.MethodPost, "/order/create-order", "{not json", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("invalid cart item maps to 400", func(t *testing.T) {
		svc := &fakeOrderService{
			createOrders: func(context.Context, service.CreateOrderInput) ([]entities.Order, error) {
				return nil, &service.InvalidCartItemError{Index: 1}
			},
		}

		status, _ := doRequest(t, newRouter(svc), http.MethodPost, "/order/create-order", validCreateBody, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestHTTPHandler_GetOrderByID(t *testing.T) {
	testCases := []struct {
		name       string
		orderID    string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			orderID:    "o1",
			wantStatus: http.StatusOK,
			wantBody:   `"id":"o1"`,
		},
		{
			name:       "not found",
			orderID:    "missing",
			svcErr:     entities.ErrOrderNotFound,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Order not found with this id",
		},
		{
			name:       "internal error",
			orderID:    "o1",
			svcErr:     errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeOrderService{
				getOrderByID: func(_ context.Context, orderID string) (entities.Order, error) {
					assert.Equal(t, tc.orderID, orderID)
					if tc.svcErr != nil {
						return entities.Order{}, tc.svcErr
					}
					return sampleOrder(orderID), nil
				},
			}

			status, body := doRequest(t, newRouter(svc), http.MethodGet, "/order/"+tc.orderID, "", nil)

			assert.Equal(t, tc.wantStatus, status)
			assert.Contains(t, body, tc.wantBody)
		})
	}
}

func TestHTTPHandler_UserAndShopOrders(t *testing.T) {
	svc := &fakeOrderService{
		userOrders: func(_ context.Context, userID string) ([]entities.Order, error) {
			assert.Equal(t, "U1", userID)
			return []entities.Order{sampleOrder("o1")}, nil
		},
		shopOrders: func(_ context.Context, shopID string) ([]entities.Order, error) {
			assert.Equal(t, "S1", shopID)
			return []entities.Order{sampleOrder("o1"), sampleOrder("o2")}, nil
		},
	}
	router := newRouter(svc)

	status, body := doRequest(t, router, http.MethodGet, "/order/get-all-orders/U1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"success":true`)

	status, body = doRequest(t, router, http.MethodGet, "/order/get-seller-all-orders/S1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"o2"`)
}

func TestHTTPHandler_AdminOrders(t *testing.T) {
	t.Run("admin gets 201 with orders", func(t *testing.T) {
		svc := &fakeOrderService{
			adminOrders: func(_ context.Context, actor entities.Actor) ([]entities.Order, error) {
				assert.Equal(t, entities.RoleAdmin, actor.Role)
				return []entities.Order{sampleOrder("o1")}, nil
			},
		}

		headers := map[string]string{"X-Actor-Id": "root", "X-Actor-Role": "admin"}
		status, body := doRequest(t, newRouter(svc), http.MethodGet, "/order/admin-all-orders", "", headers)

		assert.Equal(t, http.StatusCreated, status)
		assert.Contains(t, body, `"success":true`)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc := &fakeOrderService{
			adminOrders: func(_ context.Context, actor entities.Actor) ([]entities.Order, error) {
				return nil, entities.ErrForbidden
			},
		}

		headers := map[string]string{"X-Actor-Id": "U1", "X-Actor-Role": "buyer"}
		status, body := doRequest(t, newRouter(svc), http.MethodGet, "/order/admin-all-orders", "", headers)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Contains(t, body, "not allowed")
	})
}

func TestHTTPHandler_UpdateStatus(t *testing.T) {
	sellerHeaders := map[string]string{"X-Actor-Id": "S1", "X-Actor-Role": "seller"}

	t.Run("success passes actor and parsed status", func(t *testing.T) {
		svc := &fakeOrderService{
			updateStatus: func(_ context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
				assert.Equal(t, entities.Actor{ID: "S1", Role: entities.RoleSeller}, actor)
				assert.Equal(t, "o1", orderID)
				assert.Equal(t, entities.StatusTransferred, target)

				o := sampleOrder(orderID)
				o.Status = target
				return o, nil
			},
		}

		body := `{"status": "Transferred to delivery partner"}`
		status, resp := doRequest(t, newRouter(svc), http.MethodPut, "/order/update-order-status/o1", body, sellerHeaders)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, resp, "Transferred to delivery partner")
	})

	t.Run("unknown status rejected before service", func(t *testing.T) {
		svc := &fakeOrderService{
			updateStatus: func(context.Context, entities.Actor, string, entities.Status) (entities.Order, error) {
				t.Fatal("service must not be called")
				return entities.Order{}, nil
			},
		}

		status, resp := doRequest(t, newRouter(svc), http.MethodPut, "/order/update-order-status/o1", `{"status": "Shipped"}`, sellerHeaders)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp, "unknown order status")
	})

	t.Run("invalid transition maps to 400", func(t *testing.T) {
		svc := &fakeOrderService{
			updateStatus: func(context.Context, entities.Actor, string, entities.Status) (entities.Order, error) {
				return entities.Order{}, entities.ErrInvalidTransition
			},
		}

		status, _ := doRequest(t, newRouter(svc), http.MethodPut, "/order/update-order-status/o1", `{"status": "Delivered"}`, sellerHeaders)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("insufficient stock maps to 409", func(t *testing.T) {
		svc := &fakeOrderService{
			updateStatus: func(context.Context, entities.Actor, string, entities.Status) (entities.Order, error) {
				return entities.Order{}, entities.ErrInsufficientStock
			},
		}

		body := `{"status": "Transferred to delivery partner"}`
		status, resp := doRequest(t, newRouter(svc), http.MethodPut, "/order/update-order-status/o1", body, sellerHeaders)

		assert.Equal(t, http.StatusConflict, status)
		assert.Contains(t, resp, "Insufficient stock")
	})
}

func TestHTTPHandler_Refund(t *testing.T) {
	buyerHeaders := map[string]string{"X-Actor-Id": "U1", "X-Actor-Role": "buyer"}
	sellerHeaders := map[string]string{"X-Actor-Id": "S1", "X-Actor-Role": "seller"}

	t.Run("buyer requests refund", func(t *testing.T) {
		svc := &fakeOrderService{
			requestRefund: func(_ context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
				assert.Equal(t, entities.Actor{ID: "U1", Role: entities.RoleBuyer}, actor)
				assert.Equal(t, entities.StatusRefundRequested, target)

				o := sampleOrder(orderID)
				o.Status = target
				return o, nil
			},
		}

		body := `{"status": "Refund Requested"}`
		status, resp := doRequest(t, newRouter(svc), http.MethodPut, "/order/order-refund/o1", body, buyerHeaders)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, resp, "Order refund requested successfully!")
	})

	t.Run("seller accepts refund", func(t *testing.T) {
		svc := &fakeOrderService{
			updateStatus: func(_ context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error) {
				assert.Equal(t, entities.StatusRefundSuccess, target)
				o := sampleOrder(orderID)
				o.Status = target
				return o, nil
			},
		}

		status, resp := doRequest(t, newRouter(svc), http.MethodPut, "/order/order-refund-success/o1", "", sellerHeaders)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, resp, "Order refund successful!")
	})

	t.Run("missing actor headers yield forbidden", func(t *testing.T) {
		svc := &fakeOrderService{
			requestRefund: func(context.Context, entities.Actor, string, entities.Status) (entities.Order, error) {
				return entities.Order{}, entities.ErrForbidden
			},
		}

		body := `{"status": "Refund Requested"}`
		status, _ := doRequest(t, newRouter(svc), http.MethodPut, "/order/order-refund/o1", body, nil)

		assert.Equal(t, http.StatusForbidden, status)
	})
}
