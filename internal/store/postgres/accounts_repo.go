package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

type AccountRepo struct {
	db *bun.DB
}

func NewAccountRepo(db *bun.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) FindAccount(ctx context.Context, accountID string) (domain.Account, error) {
	var acc domain.Account
	err := r.db.NewSelect().Model(&acc).Where("id = ?", accountID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, store.ErrNotFound
		}
		return domain.Account{}, err
	}
	return acc, nil
}

func (r *AccountRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var rows []domain.Account
	if err := r.db.NewSelect().Model(&rows).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}
