package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

type ShopRepo struct {
	db *bun.DB
}

func NewShopRepo(db *bun.DB) *ShopRepo {
	return &ShopRepo{db: db}
}

func (r *ShopRepo) FindShop(ctx context.Context, shopID string) (domain.Shop, error) {
	return r.findOne(ctx, "id = ?", shopID)
}

func (r *ShopRepo) FindShopByJoinCode(ctx context.Context, code string) (domain.Shop, error) {
	return r.findOne(ctx, "join_code = ?", code)
}

func (r *ShopRepo) findOne(ctx context.Context, where string, arg any) (domain.Shop, error) {
	var shop domain.Shop
	err := r.db.NewSelect().Model(&shop).Where(where, arg).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shop{}, store.ErrNotFound
		}
		return domain.Shop{}, err
	}
	return shop, nil
}

func (r *ShopRepo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	var rows []domain.Shop
	if err := r.db.NewSelect().Model(&rows).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ShopRepo) CreateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	m := shop
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Shop{}, err
	}
	return m, nil
}

func (r *ShopRepo) UpdateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	m := shop
	res, err := r.db.NewUpdate().Model(&m).WherePK().ExcludeColumn("created_at").Exec(ctx)
	if err != nil {
		return domain.Shop{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Shop{}, err
	}
	if affected == 0 {
		return domain.Shop{}, store.ErrNotFound
	}
	return m, nil
}

func (r *ShopRepo) DeleteShop(ctx context.Context, shopID string) error {
	res, err := r.db.NewDelete().Model((*domain.Shop)(nil)).Where("id = ?", shopID).Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
