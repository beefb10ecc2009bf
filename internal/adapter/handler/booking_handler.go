package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

type createBookingRequest struct {
	ExperienceID uuid.UUID `json:"experience_id"`
	TimeSlotID   uuid.UUID `json:"time_slot_id"`
	GuestCount   int       `json:"guest_count"`
	Notes        string    `json:"notes"`
}

type paymentRequest struct {
	PaymentID string `json:"payment_id"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type bookingResponse struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	ExperienceID       uuid.UUID  `json:"experience_id"`
	TimeSlotID         uuid.UUID  `json:"time_slot_id"`
	GuestCount         int        `json:"guest_count"`
	TotalPrice         string     `json:"total_price"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"`
	PaymentID          string     `json:"payment_id,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	RequiresRefund     *bool      `json:"requires_refund,omitempty"`
	Version            int        `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                 b.ID(),
		UserID:             b.UserID(),
		ExperienceID:       b.ExperienceID(),
		TimeSlotID:         b.TimeSlotID(),
		GuestCount:         b.GuestCount(),
		TotalPrice:         b.TotalPrice().Amount().StringFixed(2),
		Currency:           b.TotalPrice().Currency(),
		Status:             string(b.Status()),
		PaymentID:          b.PaymentID(),
		Notes:              b.Notes(),
		CancellationReason: b.CancellationReason(),
		ConfirmedAt:        b.ConfirmedAt(),
		CancelledAt:        b.CancelledAt(),
		CompletedAt:        b.CompletedAt(),
		Version:            b.Version(),
		CreatedAt:          b.CreatedAt(),
	}
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req createBookingRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	b, err := h.bookings.CreateBooking(r.Context(), services.CreateBookingRequest{
		UserID:       userID,
		ExperienceID: req.ExperienceID,
		TimeSlotID:   req.TimeSlotID,
		GuestCount:   req.GuestCount,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid booking id")
		return
	}
	b, err := h.bookings.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid booking id")
		return
	}
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	b, err := h.bookings.ConfirmBooking(r.Context(), id, req.PaymentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid booking id")
		return
	}
	var req reasonRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	res, err := h.bookings.CancelBooking(r.Context(), services.CancelBookingRequest{
		BookingID: id,
		ActorID:   userID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := toBookingResponse(res.Booking)
	resp.RequiresRefund = &res.RequiresRefund
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) completeBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid booking id")
		return
	}
	b, err := h.bookings.CompleteBooking(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// processBookingPayment applies the gateway's current view of the payment to
// the booking. The gateway is asked, the request body is not trusted.
func (h *Handler) processBookingPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid booking id")
		return
	}
	var req paymentRequest
	if err := decode(r, &req); err != nil || req.PaymentID == "" {
		writeBadRequest(w, "payment_id is required")
		return
	}
	b, err := h.payments.ProcessBookingPayment(r.Context(), id, req.PaymentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid experience id")
		return
	}
	slots, err := h.bookings.ListAvailableSlots(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}
