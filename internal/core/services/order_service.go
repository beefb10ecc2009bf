package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderRequest struct {
	UserID   uuid.UUID
	SellerID uuid.UUID
	Items    []OrderLine
}

type CancelOrderRequest struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Reason  string
}

type CancelOrderResult struct {
	Order          *domain.Order
	RequiresRefund bool
}

type AdvanceFulfilmentRequest struct {
	OrderID        uuid.UUID
	SellerID       uuid.UUID
	To             domain.OrderStatus
	TrackingNumber string
}

type OrderService struct {
	base
}

func NewOrderService(repo ports.Repository, opts ...Option) *OrderService {
	return &OrderService{base: newBase(repo, opts)}
}

// CreateOrder reserves stock on every product of one seller and records an
// order awaiting payment, all in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var order *domain.Order
	err = s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		items := make([]domain.OrderItem, 0, len(lines))
		products := make([]*domain.Product, 0, len(lines))
		for _, line := range lines {
			p, err := tx.FindProductByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p.SellerID() != req.SellerID {
				return fmt.Errorf("%w: product %s is sold by %s", domain.ErrMixedSellers, p.ID(), p.SellerID())
			}
			if err := p.ReserveStock(line.Quantity); err != nil {
				return fmt.Errorf("product %s: %w", p.ID(), err)
			}
			items = append(items, domain.OrderItem{ProductID: p.ID(), Quantity: line.Quantity, UnitPrice: p.Price()})
			products = append(products, p)
		}
		o, err := domain.NewOrder(req.UserID, req.SellerID, items)
		if err != nil {
			return err
		}
		for _, p := range products {
			if err := tx.SaveProduct(ctx, p); err != nil {
				return err
			}
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created", "order_id", order.ID(), "seller_id", order.SellerID(), "items", len(lines))
	s.publish(ctx, ports.EventOrderCreated, order.ID(), map[string]any{
		"user_id":   order.UserID(),
		"seller_id": order.SellerID(),
		"total":     order.Total().Amount().String(),
		"currency":  order.Total().Currency(),
	})
	return order, nil
}

// CancelOrder cancels on behalf of the buyer or the seller and restocks
// every line in the same transaction.
func (s *OrderService) CancelOrder(ctx context.Context, req CancelOrderRequest) (*CancelOrderResult, error) {
	var result CancelOrderResult
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		o, err := tx.FindOrderByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if o.UserID() != req.ActorID && o.SellerID() != req.ActorID {
			return fmt.Errorf("%w: user %s cannot cancel order %s", domain.ErrForbidden, req.ActorID, o.ID())
		}
		if !o.CanBeCancelled() {
			return &domain.TransitionError{Entity: "order", From: string(o.Status()), To: string(domain.OrderCancelled)}
		}
		refund := o.RequiresRefund()
		now := s.now()
		if err := releaseOrderHold(ctx, tx, o, func(o *domain.Order) error {
			return o.Cancel(req.Reason, now)
		}); err != nil {
			return err
		}
		result = CancelOrderResult{Order: o, RequiresRefund: refund}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	o := result.Order
	s.log.Info("order cancelled", "order_id", o.ID(), "requires_refund", result.RequiresRefund)
	s.publish(ctx, ports.EventOrderCancelled, o.ID(), map[string]any{
		"user_id":         o.UserID(),
		"reason":          o.CancellationReason(),
		"requires_refund": result.RequiresRefund,
		"payment_id":      o.PaymentID(),
	})
	return &result, nil
}

// AdvanceFulfilment moves a paid order along PROCESSING, SHIPPED, DELIVERED.
func (s *OrderService) AdvanceFulfilment(ctx context.Context, req AdvanceFulfilmentRequest) (*domain.Order, error) {
	var order *domain.Order
	var from domain.OrderStatus
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Repository) error {
		o, err := tx.FindOrderByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if o.SellerID() != req.SellerID {
			return fmt.Errorf("%w: only the seller can fulfil order %s", domain.ErrForbidden, o.ID())
		}
		from = o.Status()
		switch req.To {
		case domain.OrderProcessing:
			err = o.StartProcessing()
		case domain.OrderShipped:
			err = o.Ship(req.TrackingNumber)
		case domain.OrderDelivered:
			err = o.Deliver(s.now())
		default:
			err = &domain.TransitionError{Entity: "order", From: string(o.Status()), To: string(req.To)}
		}
		if err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("advance order: %w", err)
	}

	s.publish(ctx, ports.EventOrderStatusChanged, order.ID(), map[string]any{
		"from":            from,
		"to":              order.Status(),
		"tracking_number": order.TrackingNumber(),
	})
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.repo.FindOrderByID(ctx, orderID)
}

// mergeLines folds repeated products into one line and orders lines by
// product id so concurrent orders touch rows in the same order.
func mergeLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order requires at least one item", domain.ErrValidation)
	}
	qty := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", domain.ErrInvalidQuantity, l.ProductID)
		}
		qty[l.ProductID] += l.Quantity
	}
	merged := make([]OrderLine, 0, len(qty))
	for id, q := range qty {
		merged = append(merged, OrderLine{ProductID: id, Quantity: q})
	}
	sort.Slice(merged, func(i, j int) bool {
		return bytes.Compare(merged[i].ProductID[:], merged[j].ProductID[:]) < 0
	})
	return merged, nil
}

func sortedItems(items []domain.OrderItem) []domain.OrderItem {
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
	})
	return items
}
