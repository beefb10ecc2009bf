package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

type orderLineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type createOrderRequest struct {
	SellerID uuid.UUID          `json:"seller_id"`
	Items    []orderLineRequest `json:"items"`
}

type advanceOrderRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

type orderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

type orderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	UserID             uuid.UUID           `json:"user_id"`
	SellerID           uuid.UUID           `json:"seller_id"`
	Items              []orderItemResponse `json:"items"`
	Total              string              `json:"total"`
	Currency           string              `json:"currency"`
	Status             string              `json:"status"`
	PaymentID          string              `json:"payment_id,omitempty"`
	TrackingNumber     string              `json:"tracking_number,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	PaidAt             *time.Time          `json:"paid_at,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	DeliveredAt        *time.Time          `json:"delivered_at,omitempty"`
	RequiresRefund     *bool               `json:"requires_refund,omitempty"`
	Version            int                 `json:"version"`
	CreatedAt          time.Time           `json:"created_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := o.Items()
	lines := make([]orderItemResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.Amount().StringFixed(2),
		})
	}
	return orderResponse{
		ID:                 o.ID(),
		UserID:             o.UserID(),
		SellerID:           o.SellerID(),
		Items:              lines,
		Total:              o.Total().Amount().StringFixed(2),
		Currency:           o.Total().Currency(),
		Status:             string(o.Status()),
		PaymentID:          o.PaymentID(),
		TrackingNumber:     o.TrackingNumber(),
		CancellationReason: o.CancellationReason(),
		PaidAt:             o.PaidAt(),
		CancelledAt:        o.CancelledAt(),
		DeliveredAt:        o.DeliveredAt(),
		Version:            o.Version(),
		CreatedAt:          o.CreatedAt(),
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := h.orders.CreateOrder(r.Context(), services.CreateOrderRequest{
		UserID:   userID,
		SellerID: req.SellerID,
		Items:    lines,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid order id")
		return
	}
	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid order id")
		return
	}
	var req reasonRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	res, err := h.orders.CancelOrder(r.Context(), services.CancelOrderRequest{
		OrderID: id,
		ActorID: userID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := toOrderResponse(res.Order)
	resp.RequiresRefund = &res.RequiresRefund
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid order id")
		return
	}
	var req advanceOrderRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	o, err := h.orders.AdvanceFulfilment(r.Context(), services.AdvanceFulfilmentRequest{
		OrderID:        id,
		SellerID:       userID,
		To:             domain.OrderStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) processOrderPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid order id")
		return
	}
	var req paymentRequest
	if err := decode(r, &req); err != nil || req.PaymentID == "" {
		writeBadRequest(w, "payment_id is required")
		return
	}
	o, err := h.payments.ProcessOrderPayment(r.Context(), id, req.PaymentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
