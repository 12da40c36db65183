package repo

import (
	"context"
	"fmt"

	"github.com/kirasurf/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type inventoryRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewInventoryRepo(db *sqlx.DB) *inventoryRepo {
	return &inventoryRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ApplyDelta adjusts stock and sold-count in a single guarded UPDATE. The
// stock guard lives in the WHERE clause so the row never goes negative; the
// row lock taken by UPDATE serializes concurrent deltas for the same product.
func (r *inventoryRepo) ApplyDelta(ctx context.Context, productID string, deltaStock, deltaSold int) error {
	query, args := r.qb.Update("products").
		Set("stock", sq.Expr("stock + ?", deltaStock)).
		Set("sold_out", sq.Expr("sold_out + ?", deltaSold)).
		Where(sq.Eq{"product_id": productID}).
		Where(sq.Expr("stock + ? >= 0", deltaStock)).
		MustSql()

	res, err := execContext(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply stock delta: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Distinguish a missing product from a rejected delta.
	query, args = r.qb.Select("1").
		From("products").
		Where(sq.Eq{"product_id": productID}).
		MustSql()

	var one int
	if err := getContext(ctx, r.db, &one, query, args...); err != nil {
		return entities.ErrProductNotFound
	}
	return entities.ErrInsufficientStock
}
