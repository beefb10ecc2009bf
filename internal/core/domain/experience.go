package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	minTitleLength       = 3
	minDescriptionLength = 10
	minDurationMinutes   = 15
	maxRating            = 5.0
)

// Experience is a bookable activity offered by a host.
type Experience struct {
	aggregate

	hostID          uuid.UUID
	title           string
	description     string
	durationMinutes int
	maxCapacity     int
	price           Money
	isActive        bool
	rating          float64
	reviewCount     int
}

type ExperienceAttrs struct {
	ID              uuid.UUID
	HostID          uuid.UUID
	Title           string
	Description     string
	DurationMinutes int
	MaxCapacity     int
	Price           Money
	IsActive        bool
	Rating          float64
	ReviewCount     int
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewExperienceParams groups the host-supplied fields of a new experience.
type NewExperienceParams struct {
	HostID          uuid.UUID
	Title           string
	Description     string
	DurationMinutes int
	MaxCapacity     int
	Price           Money
}

func NewExperience(p NewExperienceParams) (*Experience, error) {
	e := &Experience{
		aggregate:       newAggregate(),
		hostID:          p.HostID,
		title:           strings.TrimSpace(p.Title),
		description:     strings.TrimSpace(p.Description),
		durationMinutes: p.DurationMinutes,
		maxCapacity:     p.MaxCapacity,
		price:           p.Price,
		isActive:        true,
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func RestoreExperience(a ExperienceAttrs) (*Experience, error) {
	if err := checkRestoredVersion("experience", a.ID, a.Version); err != nil {
		return nil, err
	}
	e := &Experience{
		aggregate:       restoredAggregate(a.ID, a.Version, a.CreatedAt, a.UpdatedAt),
		hostID:          a.HostID,
		title:           a.Title,
		description:     a.Description,
		durationMinutes: a.DurationMinutes,
		maxCapacity:     a.MaxCapacity,
		price:           a.Price,
		isActive:        a.IsActive,
		rating:          a.Rating,
		reviewCount:     a.ReviewCount,
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experience) validate() error {
	if e.hostID == uuid.Nil {
		return validationf("experience requires a host")
	}
	if len([]rune(e.title)) < minTitleLength {
		return validationf("title must be at least %d characters", minTitleLength)
	}
	if len([]rune(e.description)) < minDescriptionLength {
		return validationf("description must be at least %d characters", minDescriptionLength)
	}
	if e.durationMinutes < minDurationMinutes {
		return validationf("duration must be at least %d minutes, got %d", minDurationMinutes, e.durationMinutes)
	}
	if e.maxCapacity < 1 {
		return validationf("max capacity must be at least 1, got %d", e.maxCapacity)
	}
	if e.rating < 0 || e.rating > maxRating {
		return validationf("rating must be within [0, %.0f], got %.2f", maxRating, e.rating)
	}
	return nil
}

func (e *Experience) HostID() uuid.UUID    { return e.hostID }
func (e *Experience) Title() string        { return e.title }
func (e *Experience) Description() string  { return e.description }
func (e *Experience) DurationMinutes() int { return e.durationMinutes }
func (e *Experience) MaxCapacity() int     { return e.maxCapacity }
func (e *Experience) Price() Money         { return e.price }
func (e *Experience) IsActive() bool       { return e.isActive }
func (e *Experience) Rating() float64      { return e.rating }
func (e *Experience) ReviewCount() int     { return e.reviewCount }

func (e *Experience) IsHostedBy(userID uuid.UUID) bool { return e.hostID == userID }

func (e *Experience) Activate() {
	if e.isActive {
		return
	}
	e.isActive = true
	e.bump()
}

func (e *Experience) Deactivate() {
	if !e.isActive {
		return
	}
	e.isActive = false
	e.bump()
}

func (e *Experience) UpdatePrice(price Money) error {
	if price.Currency() != e.price.Currency() {
		return fmt.Errorf("%w: experience is priced in %s, got %s", ErrCurrencyMismatch, e.price.Currency(), price.Currency())
	}
	e.price = price
	e.bump()
	return nil
}

func (e *Experience) UpdateMaxCapacity(capacity int) error {
	if capacity < 1 {
		return validationf("max capacity must be at least 1, got %d", capacity)
	}
	e.maxCapacity = capacity
	e.bump()
	return nil
}

// AddReview folds a new review score into the running average.
func (e *Experience) AddReview(score float64) error {
	if score < 0 || score > maxRating {
		return validationf("review score must be within [0, %.0f], got %.2f", maxRating, score)
	}
	total := e.rating*float64(e.reviewCount) + score
	e.reviewCount++
	e.rating = total / float64(e.reviewCount)
	e.bump()
	return nil
}

func (e *Experience) Attrs() ExperienceAttrs {
	return ExperienceAttrs{
		ID:              e.id,
		HostID:          e.hostID,
		Title:           e.title,
		Description:     e.description,
		DurationMinutes: e.durationMinutes,
		MaxCapacity:     e.maxCapacity,
		Price:           e.price,
		IsActive:        e.isActive,
		Rating:          e.rating,
		ReviewCount:     e.reviewCount,
		Version:         e.version,
		CreatedAt:       e.createdAt,
		UpdatedAt:       e.updatedAt,
	}
}
