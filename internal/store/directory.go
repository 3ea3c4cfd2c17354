package store

import (
	"context"

	"barberbook/backend/internal/domain"
)

type ShopDirectory interface {
	FindShop(ctx context.Context, shopID string) (domain.Shop, error)
	FindShopByJoinCode(ctx context.Context, code string) (domain.Shop, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
	CreateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error)
	UpdateShop(ctx context.Context, shop domain.Shop) (domain.Shop, error)
	DeleteShop(ctx context.Context, shopID string) error
}

type AccountDirectory interface {
	FindAccount(ctx context.Context, accountID string) (domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}
