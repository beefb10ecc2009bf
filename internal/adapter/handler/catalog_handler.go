package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/services"
)

type createExperienceRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	MaxCapacity     int             `json:"max_capacity"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
}

type updateExperienceRequest struct {
	Price       *decimal.Decimal `json:"price"`
	MaxCapacity *int             `json:"max_capacity"`
	Active      *bool            `json:"active"`
}

type rateExperienceRequest struct {
	Score float64 `json:"score"`
}

type createTimeSlotRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Capacity  int       `json:"capacity"`
}

type createProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Stock    int             `json:"stock"`
}

type experienceResponse struct {
	ID              uuid.UUID `json:"id"`
	HostID          uuid.UUID `json:"host_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxCapacity     int       `json:"max_capacity"`
	Price           string    `json:"price"`
	Currency        string    `json:"currency"`
	Active          bool      `json:"active"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	Version         int       `json:"version"`
}

func toExperienceResponse(e *domain.Experience) experienceResponse {
	return experienceResponse{
		ID:              e.ID(),
		HostID:          e.HostID(),
		Title:           e.Title(),
		Description:     e.Description(),
		DurationMinutes: e.DurationMinutes(),
		MaxCapacity:     e.MaxCapacity(),
		Price:           e.Price().Amount().StringFixed(2),
		Currency:        e.Price().Currency(),
		Active:          e.IsActive(),
		Rating:          e.Rating(),
		ReviewCount:     e.ReviewCount(),
		Version:         e.Version(),
	}
}

type productResponse struct {
	ID       uuid.UUID `json:"id"`
	SellerID uuid.UUID `json:"seller_id"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Currency string    `json:"currency"`
	Stock    int       `json:"stock"`
	Status   string    `json:"status"`
	Version  int       `json:"version"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:       p.ID(),
		SellerID: p.SellerID(),
		Name:     p.Name(),
		Price:    p.Price().Amount().StringFixed(2),
		Currency: p.Price().Currency(),
		Stock:    p.Stock().Quantity(),
		Status:   string(p.Status()),
		Version:  p.Version(),
	}
}

func (h *Handler) createExperience(w http.ResponseWriter, r *http.Request) {
	hostID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req createExperienceRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	price, err := domain.NewMoney(req.Price, req.Currency)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	exp, err := h.catalog.CreateExperience(r.Context(), domain.NewExperienceParams{
		HostID:          hostID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		MaxCapacity:     req.MaxCapacity,
		Price:           price,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExperienceResponse(exp))
}

func (h *Handler) updateExperience(w http.ResponseWriter, r *http.Request) {
	hostID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid experience id")
		return
	}
	var req updateExperienceRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	exp, err := h.catalog.UpdateExperience(r.Context(), services.UpdateExperienceRequest{
		ExperienceID: id,
		HostID:       hostID,
		Price:        req.Price,
		MaxCapacity:  req.MaxCapacity,
		Active:       req.Active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExperienceResponse(exp))
}

func (h *Handler) rateExperience(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid experience id")
		return
	}
	var req rateExperienceRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	exp, err := h.catalog.RateExperience(r.Context(), id, req.Score)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExperienceResponse(exp))
}

func (h *Handler) createTimeSlot(w http.ResponseWriter, r *http.Request) {
	hostID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid experience id")
		return
	}
	var req createTimeSlotRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	slot, err := h.catalog.CreateTimeSlot(r.Context(), services.CreateTimeSlotRequest{
		HostID:       hostID,
		ExperienceID: id,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Capacity:     req.Capacity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, services.SlotViewOf(slot))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req createProductRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), services.CreateProductRequest{
		SellerID: sellerID,
		Name:     req.Name,
		Price:    req.Price,
		Currency: req.Currency,
		Stock:    req.Stock,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) archiveProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, err := actorID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, "invalid product id")
		return
	}
	p, err := h.catalog.ArchiveProduct(r.Context(), id, sellerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}
