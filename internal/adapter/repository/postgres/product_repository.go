package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
)

const productColumns = `id, seller_id, name, price, currency, stock, status, version, created_at, updated_at`

func scanProduct(row scanner) (*domain.Product, error) {
	var (
		a        domain.ProductAttrs
		price    decimal.Decimal
		currency string
	)
	if err := row.Scan(&a.ID, &a.SellerID, &a.Name, &price, &currency, &a.Stock, &a.Status,
		&a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	money, err := domain.NewMoney(price, currency)
	if err != nil {
		return nil, err
	}
	a.Price = money
	return domain.RestoreProduct(a)
}

func (s *Store) FindProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *domain.Product) error {
	now := s.now()
	if p.IsNew() {
		p.AssignIdentity(uuid.New(), now)
		a := p.Attrs()
		query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		`
		if _, err := s.conn(ctx).ExecContext(ctx, query, a.ID, a.SellerID, a.Name, a.Price.Amount(), a.Price.Currency(),
			a.Stock, a.Status, a.Version, now); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		p.MarkPersisted(now)
		return nil
	}

	a := p.Attrs()
	query := `
	UPDATE products
	SET name = $1, price = $2, currency = $3, stock = $4, status = $5, version = $6, updated_at = $7
	WHERE id = $8 AND version = $9
	`
	if err := s.execVersioned(ctx, "product", a.ID, p.PersistedVersion(), query,
		a.Name, a.Price.Amount(), a.Price.Currency(), a.Stock, a.Status, a.Version, now, a.ID, p.PersistedVersion()); err != nil {
		return err
	}
	p.MarkPersisted(now)
	return nil
}
