package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

type CreateTimeSlotRequest struct {
	HostID       uuid.UUID
	ExperienceID uuid.UUID
	StartTime    time.Time
	EndTime      time.Time
	Capacity     int
}

type UpdateExperienceRequest struct {
	ExperienceID uuid.UUID
	HostID       uuid.UUID
	Price        *decimal.Decimal
	MaxCapacity  *int
	Active       *bool
}

type CreateProductRequest struct {
	SellerID uuid.UUID
	Name     string
	Price    decimal.Decimal
	Currency string
	Stock    int
}

// CatalogService manages the inventory side: experiences with their time
// slots, and marketplace products.
type CatalogService struct {
	base
	currency string
}

func NewCatalogService(repo ports.Repository, currency string, opts ...Option) *CatalogService {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &CatalogService{base: newBase(repo, opts), currency: currency}
}

func (s *CatalogService) CreateExperience(ctx context.Context, p domain.NewExperienceParams) (*domain.Experience, error) {
	exp, err := domain.NewExperience(p)
	if err != nil {
		return nil, fmt.Errorf("create experience: %w", err)
	}
	if err := s.repo.SaveExperience(ctx, exp); err != nil {
		return nil, fmt.Errorf("create experience: %w", err)
	}
	s.log.Info("experience created", "experience_id", exp.ID(), "host_id", exp.HostID())
	return exp, nil
}

// UpdateExperience applies the non-nil fields of req. Only the host may.
func (s *CatalogService) UpdateExperience(ctx context.Context, req UpdateExperienceRequest) (*domain.Experience, error) {
	var exp *domain.Experience
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		e, err := tx.FindExperienceByID(ctx, req.ExperienceID)
		if err != nil {
			return err
		}
		if !e.IsHostedBy(req.HostID) {
			return fmt.Errorf("%w: only the host can edit experience %s", domain.ErrForbidden, e.ID())
		}
		if req.Price != nil {
			price, err := domain.NewMoney(*req.Price, e.Price().Currency())
			if err != nil {
				return err
			}
			if err := e.UpdatePrice(price); err != nil {
				return err
			}
		}
		if req.MaxCapacity != nil {
			if err := e.UpdateMaxCapacity(*req.MaxCapacity); err != nil {
				return err
			}
		}
		if req.Active != nil {
			if *req.Active {
				e.Activate()
			} else {
				e.Deactivate()
			}
		}
		if err := tx.SaveExperience(ctx, e); err != nil {
			return err
		}
		exp = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update experience: %w", err)
	}
	return exp, nil
}

// RateExperience folds one review score into the running rating.
func (s *CatalogService) RateExperience(ctx context.Context, experienceID uuid.UUID, score float64) (*domain.Experience, error) {
	var exp *domain.Experience
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		e, err := tx.FindExperienceByID(ctx, experienceID)
		if err != nil {
			return err
		}
		if err := e.AddReview(score); err != nil {
			return err
		}
		if err := tx.SaveExperience(ctx, e); err != nil {
			return err
		}
		exp = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate experience: %w", err)
	}
	return exp, nil
}

func (s *CatalogService) CreateTimeSlot(ctx context.Context, req CreateTimeSlotRequest) (*domain.TimeSlot, error) {
	exp, err := s.repo.FindExperienceByID(ctx, req.ExperienceID)
	if err != nil {
		return nil, fmt.Errorf("create time slot: %w", err)
	}
	if !exp.IsHostedBy(req.HostID) {
		return nil, fmt.Errorf("create time slot: %w: experience %s belongs to another host", domain.ErrForbidden, exp.ID())
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = exp.MaxCapacity()
	}
	start := req.StartTime.UTC()
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	slot, err := domain.NewTimeSlot(exp.ID(), date, start, req.EndTime.UTC(), capacity)
	if err != nil {
		return nil, fmt.Errorf("create time slot: %w", err)
	}
	if err := s.repo.SaveTimeSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("create time slot: %w", err)
	}
	s.invalidateSlots(ctx, exp.ID())
	return slot, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}
	price, err := domain.NewMoney(req.Price, currency)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	stock, err := domain.NewStock(req.Stock)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	p, err := domain.NewProduct(req.SellerID, req.Name, price, stock)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) ArchiveProduct(ctx context.Context, productID, sellerID uuid.UUID) (*domain.Product, error) {
	var product *domain.Product
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		p, err := tx.FindProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if p.SellerID() != sellerID {
			return fmt.Errorf("%w: product %s belongs to another seller", domain.ErrForbidden, p.ID())
		}
		if err := p.Archive(); err != nil {
			return err
		}
		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive product: %w", err)
	}
	return product, nil
}
