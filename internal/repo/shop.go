package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirasurf/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type shopRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewShopRepo(db *sqlx.DB) *shopRepo {
	return &shopRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *shopRepo) GetShop(ctx context.Context, shopID string) (entities.Shop, error) {
	query, args := r.qb.Select("shop_id", "name", "email", "available_balance").
		From("shops").
		Where(sq.Eq{"shop_id": shopID}).
		MustSql()

	var shop Shop
	err := getContext(ctx, r.db, &shop, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Shop{}, entities.ErrShopNotFound
	}
	if err != nil {
		return entities.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}

	return ShopToEntity(shop), nil
}

// Credit accumulates into available_balance atomically. An overwrite here
// would lose earlier credits.
func (r *shopRepo) Credit(ctx context.Context, shopID string, amount decimal.Decimal) error {
	query, args := r.qb.Update("shops").
		Set("available_balance", sq.Expr("available_balance + ?", amount)).
		Where(sq.Eq{"shop_id": shopID}).
		MustSql()

	res, err := execContext(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("failed to credit shop: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entities.ErrShopNotFound
	}
	return nil
}
