package repository

import (
	"context"

	"github.com/soukly/payments/internal/seller/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBySellerID(ctx context.Context, db *gorm.DB, sellerID string) (*domain.SellerAccount, error) {
	var account domain.SellerAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, seller_id, account_id, display_name, active, created_at, updated_at
		 FROM seller_accounts
		 WHERE seller_id = ? AND active
		 LIMIT 1`,
		sellerID,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, account *domain.SellerAccount) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO seller_accounts (
			id, seller_id, account_id, display_name, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (seller_id) DO UPDATE SET
			account_id = excluded.account_id,
			display_name = excluded.display_name,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		account.ID,
		account.SellerID,
		account.AccountID,
		account.DisplayName,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}
