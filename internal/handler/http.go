package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirasurf/order-service/internal/entities"
	"github.com/kirasurf/order-service/internal/middleware"
	"github.com/kirasurf/order-service/internal/service"
	"github.com/kirasurf/order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	CreateOrders(ctx context.Context, input service.CreateOrderInput) ([]entities.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	UserOrders(ctx context.Context, userID string) ([]entities.Order, error)
	ShopOrders(ctx context.Context, shopID string) ([]entities.Order, error)
	AdminOrders(ctx context.Context, actor entities.Actor) ([]entities.Order, error)
	UpdateStatus(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error)
	RequestRefund(ctx context.Context, actor entities.Actor, orderID string, target entities.Status) (entities.Order, error)
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/order", func(r chi.Router) {
		r.Post("/create-order", h.CreateOrder)
		r.Get("/get-all-orders/{userId}", h.UserOrders)
		r.Get("/get-seller-all-orders/{shopId}", h.ShopOrders)
		r.Get("/admin-all-orders", h.AdminOrders)
		r.Put("/update-order-status/{id}", h.UpdateStatus)
		r.Put("/order-refund/{id}", h.RequestRefund)
		r.Put("/order-refund-success/{id}", h.AcceptRefund)
		r.Get("/{id}", h.GetOrderByID)
	})
}

// CreateOrder splits the submitted cart by shop and creates one order per
// shop group.
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	orders, err := h.svc.CreateOrders(ctx, CreateOrderRequestToInput(req))
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersResponse{Success: true, Orders: OrdersEntityToJSON(orders)}, http.StatusCreated)
}

func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "id")

	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.GetOrderByID(ctx, orderID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderResponse{Success: true, Order: OrderEntityToJSON(order)}, http.StatusOK)
}

func (h *HTTPHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	orders, err := h.svc.UserOrders(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersResponse{Success: true, Orders: OrdersEntityToJSON(orders)}, http.StatusOK)
}

func (h *HTTPHandler) ShopOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopID := chi.URLParam(r, "shopId")

	orders, err := h.svc.ShopOrders(ctx, shopID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersResponse{Success: true, Orders: OrdersEntityToJSON(orders)}, http.StatusOK)
}

// AdminOrders lists every order, delivered first. Responds 201 because the
// storefront depends on that quirk.
func (h *HTTPHandler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	orders, err := h.svc.AdminOrders(ctx, actor)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrdersResponse{Success: true, Orders: OrdersEntityToJSON(orders)}, http.StatusCreated)
}

func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)
	orderID := chi.URLParam(r, "id")

	target, ok := h.decodeStatus(w, r)
	if !ok {
		return
	}

	order, err := h.svc.UpdateStatus(ctx, actor, orderID, target)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, OrderResponse{Success: true, Order: OrderEntityToJSON(order)}, http.StatusOK)
}

func (h *HTTPHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)
	orderID := chi.URLParam(r, "id")

	target, ok := h.decodeStatus(w, r)
	if !ok {
		return
	}

	order, err := h.svc.RequestRefund(ctx, actor, orderID, target)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, RefundResponse{
		Success: true,
		Order:   OrderEntityToJSON(order),
		Message: "Order refund requested successfully!",
	}, http.StatusOK)
}

// AcceptRefund is the seller side of the refund path; it reverses the stock
// decrement if the order had shipped.
func (h *HTTPHandler) AcceptRefund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)
	orderID := chi.URLParam(r, "id")

	_, err := h.svc.UpdateStatus(ctx, actor, orderID, entities.StatusRefundSuccess)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	utils.WriteJSON(w, MessageResponse{Success: true, Message: "Order refund successful!"}, http.StatusOK)
}

func (h *HTTPHandler) decodeStatus(w http.ResponseWriter, r *http.Request) (entities.Status, bool) {
	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return "", false
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return "", false
	}

	target, err := entities.ParseStatus(req.Status)
	if err != nil {
		utils.WriteError(w, "unknown order status", http.StatusBadRequest)
		return "", false
	}
	return target, true
}

func (h *HTTPHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var invalidItem *service.InvalidCartItemError

	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "Order not found with this id", http.StatusBadRequest)
	case errors.Is(err, entities.ErrProductNotFound):
		utils.WriteError(w, "Product not found with this id", http.StatusBadRequest)
	case errors.Is(err, entities.ErrShopNotFound):
		utils.WriteError(w, "Shop not found with this id", http.StatusBadRequest)
	case errors.Is(err, entities.ErrInsufficientStock):
		utils.WriteError(w, "Insufficient stock for this order", http.StatusConflict)
	case errors.Is(err, entities.ErrInvalidTransition):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrForbidden):
		utils.WriteError(w, "You are not allowed to perform this action", http.StatusForbidden)
	case errors.As(err, &invalidItem):
		utils.WriteError(w, invalidItem.Error(), http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
