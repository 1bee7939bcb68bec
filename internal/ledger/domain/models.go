package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ChargeTransaction is the aggregate root of the settlement ledger: one
// row per buyer order, owning its order items and seller transfers.
type ChargeTransaction struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrderID         string          `json:"order_id" gorm:"type:text;not null;uniqueIndex:ux_charge_transactions_order_id"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty" gorm:"type:text;index"`
	GatewayChargeID string          `json:"gateway_charge_id,omitempty" gorm:"type:text"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	Currency        string          `json:"currency" gorm:"type:text;not null"`
	Status          ChargeStatus    `json:"status" gorm:"type:text;not null"`
	IdempotencyKey  string          `json:"-" gorm:"type:text;not null;uniqueIndex:ux_charge_transactions_idempotency_key"`
	ErrorMessage    string          `json:"error_message,omitempty" gorm:"type:text"`
	Refunded        bool            `json:"refunded" gorm:"not null;default:false"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`

	Items     []OrderItem           `json:"items" gorm:"foreignKey:ChargeTransactionID;constraint:OnDelete:CASCADE"`
	Transfers []TransferTransaction `json:"transfers,omitempty" gorm:"foreignKey:ChargeTransactionID;constraint:OnDelete:CASCADE"`
}

func (ChargeTransaction) TableName() string { return "charge_transactions" }

// OrderItem is one (seller, amount) line of an order. Immutable after
// creation.
type OrderItem struct {
	ID                  snowflake.ID    `json:"id" gorm:"primaryKey"`
	ChargeTransactionID snowflake.ID    `json:"-" gorm:"not null;index"`
	SellerID            string          `json:"seller_id" gorm:"type:text;not null"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// TransferTransaction records one attempted payout to a seller for a
// charge. At most one row exists per (charge, seller); the idempotency
// key is derived from both so a replayed settlement cannot double-pay.
type TransferTransaction struct {
	ID                  snowflake.ID    `json:"id" gorm:"primaryKey"`
	ChargeTransactionID snowflake.ID    `json:"-" gorm:"not null;index;uniqueIndex:ux_transfer_transactions_charge_seller,priority:1"`
	SellerID            string          `json:"seller_id" gorm:"type:text;not null;uniqueIndex:ux_transfer_transactions_charge_seller,priority:2"`
	SellerAccountID     string          `json:"seller_account_id" gorm:"type:text;not null"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:numeric(20,4);not null"`
	Currency            string          `json:"currency" gorm:"type:text;not null"`
	Status              TransferStatus  `json:"status" gorm:"type:text;not null"`
	TransferID          string          `json:"transfer_id,omitempty" gorm:"type:text"`
	IdempotencyKey      string          `json:"-" gorm:"type:text;not null"`
	ErrorMessage        string          `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"not null"`
}

func (TransferTransaction) TableName() string { return "transfer_transactions" }
