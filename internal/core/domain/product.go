package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductSoldOut  ProductStatus = "SOLD_OUT"
	ProductArchived ProductStatus = "ARCHIVED"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductSoldOut, ProductArchived:
		return true
	}
	return false
}

// Product is a capacity holder: a seller's item with a finite stock.
type Product struct {
	aggregate

	sellerID uuid.UUID
	name     string
	price    Money
	stock    Stock
	status   ProductStatus
}

type ProductAttrs struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Name      string
	Price     Money
	Stock     int
	Status    ProductStatus
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProduct(sellerID uuid.UUID, name string, price Money, stock Stock) (*Product, error) {
	status := ProductActive
	if stock.IsEmpty() {
		status = ProductSoldOut
	}
	p := &Product{
		aggregate: newAggregate(),
		sellerID:  sellerID,
		name:      strings.TrimSpace(name),
		price:     price,
		stock:     stock,
		status:    status,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func RestoreProduct(a ProductAttrs) (*Product, error) {
	if err := checkRestoredVersion("product", a.ID, a.Version); err != nil {
		return nil, err
	}
	stock, err := NewStock(a.Stock)
	if err != nil {
		return nil, err
	}
	p := &Product{
		aggregate: restoredAggregate(a.ID, a.Version, a.CreatedAt, a.UpdatedAt),
		sellerID:  a.SellerID,
		name:      a.Name,
		price:     a.Price,
		stock:     stock,
		status:    a.Status,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) validate() error {
	if p.sellerID == uuid.Nil {
		return validationf("product requires a seller")
	}
	if p.name == "" {
		return validationf("product name is required")
	}
	if !p.status.Valid() {
		return validationf("unknown product status %q", p.status)
	}
	if p.status == ProductActive && p.stock.IsEmpty() {
		return validationf("active product %s has no stock", p.id)
	}
	if p.status == ProductSoldOut && !p.stock.IsEmpty() {
		return validationf("sold out product %s still has %d units", p.id, p.stock.Quantity())
	}
	return nil
}

func (p *Product) SellerID() uuid.UUID   { return p.sellerID }
func (p *Product) Name() string          { return p.name }
func (p *Product) Price() Money          { return p.price }
func (p *Product) Stock() Stock          { return p.stock }
func (p *Product) Status() ProductStatus { return p.status }
func (p *Product) IsActive() bool        { return p.status == ProductActive }
func (p *Product) CanReserve(n int) bool { return p.IsActive() && p.stock.CanReserve(n) }

// ReserveStock takes n units and flips the product to SOLD_OUT when none remain.
func (p *Product) ReserveStock(n int) error {
	if !p.IsActive() {
		return &inactiveProductError{id: p.id, status: p.status}
	}
	next, err := p.stock.Reserve(n)
	if err != nil {
		return err
	}
	p.stock = next
	if p.stock.IsEmpty() {
		p.status = ProductSoldOut
	}
	p.bump()
	return nil
}

// ReleaseStock returns n units. A SOLD_OUT product becomes ACTIVE again; an
// archived product keeps its status.
func (p *Product) ReleaseStock(n int) error {
	if n <= 0 {
		return validationf("release amount must be positive, got %d", n)
	}
	p.stock = p.stock.Release(n)
	if p.status == ProductSoldOut {
		p.status = ProductActive
	}
	p.bump()
	return nil
}

func (p *Product) Archive() error {
	if p.status == ProductArchived {
		return &TransitionError{Entity: "product", From: string(p.status), To: string(ProductArchived)}
	}
	p.status = ProductArchived
	p.bump()
	return nil
}

func (p *Product) Attrs() ProductAttrs {
	return ProductAttrs{
		ID:        p.id,
		SellerID:  p.sellerID,
		Name:      p.name,
		Price:     p.price,
		Stock:     p.stock.Quantity(),
		Status:    p.status,
		Version:   p.version,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
	}
}

type inactiveProductError struct {
	id     uuid.UUID
	status ProductStatus
}

func (e *inactiveProductError) Error() string {
	return "product " + e.id.String() + " is not active (" + string(e.status) + ")"
}

func (e *inactiveProductError) Is(target error) bool { return target == ErrInactiveProduct }
