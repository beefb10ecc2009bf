package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

// UserHeader carries the authenticated caller. Authentication happens
// upstream of this service.
const UserHeader = "X-User-ID"

type Handler struct {
	log       *slog.Logger
	bookings  *services.BookingService
	orders    *services.OrderService
	payments  *services.PaymentService
	catalog   *services.CatalogService
	reconcile *services.ReconciliationService
}

type Services struct {
	Bookings       *services.BookingService
	Orders         *services.OrderService
	Payments       *services.PaymentService
	Catalog        *services.CatalogService
	Reconciliation *services.ReconciliationService
}

func NewHandler(log *slog.Logger, svc Services) *Handler {
	return &Handler{
		log:       log,
		bookings:  svc.Bookings,
		orders:    svc.Orders,
		payments:  svc.Payments,
		catalog:   svc.Catalog,
		reconcile: svc.Reconciliation,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/experiences", func(r chi.Router) {
		r.Post("/", h.createExperience)
		r.Patch("/{id}", h.updateExperience)
		r.Post("/{id}/reviews", h.rateExperience)
		r.Post("/{id}/slots", h.createTimeSlot)
		r.Get("/{id}/slots", h.listSlots)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.createBooking)
		r.Get("/{id}", h.getBooking)
		r.Post("/{id}/confirm", h.confirmBooking)
		r.Post("/{id}/cancel", h.cancelBooking)
		r.Post("/{id}/complete", h.completeBooking)
		r.Post("/{id}/payment", h.processBookingPayment)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Post("/{id}/archive", h.archiveProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/cancel", h.cancelOrder)
		r.Post("/{id}/fulfilment", h.advanceOrder)
		r.Post("/{id}/payment", h.processOrderPayment)
	})

	r.Post("/admin/cleanup", h.runCleanup)
	r.Post("/admin/payments/sync", h.syncPayments)

	return r
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Error: msg})
}

// writeError maps a use-case failure to a status code. Internal errors are
// logged and never echoed to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: code, Error: err.Error()})
	case domain.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Code: code, Error: err.Error()})
	case domain.KindForbidden:
		writeJSON(w, http.StatusForbidden, errorResponse{Code: code, Error: err.Error()})
	case domain.KindConflict:
		writeJSON(w, http.StatusConflict, errorResponse{Code: code, Error: "conflict, please retry"})
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: code, Error: "internal server error"})
	}
}

var errMissingUser = errors.New("missing or invalid " + UserHeader + " header")

func actorID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get(UserHeader))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errMissingUser
	}
	return id, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
