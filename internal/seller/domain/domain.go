package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("seller_account_not_found")

// SellerAccount maps a marketplace seller to its connected gateway
// account. Settlement looks the destination account up here; a missing
// row fails only that seller's transfer, never the whole settlement.
type SellerAccount struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	SellerID    string       `json:"seller_id" gorm:"type:text;not null;uniqueIndex:ux_seller_accounts_seller_id"`
	AccountID   string       `json:"account_id" gorm:"type:text;not null"`
	DisplayName string       `json:"display_name,omitempty" gorm:"type:text"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (SellerAccount) TableName() string { return "seller_accounts" }

type Repository interface {
	FindBySellerID(ctx context.Context, db *gorm.DB, sellerID string) (*SellerAccount, error)
	Upsert(ctx context.Context, db *gorm.DB, account *SellerAccount) error
}
