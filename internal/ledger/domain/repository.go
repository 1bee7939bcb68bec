package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/soukly/payments/pkg/db/pagination"
	"gorm.io/gorm"
)

// ChargeUpdate carries the mutable fields of a guarded status update.
// Zero-valued fields are left untouched.
type ChargeUpdate struct {
	Status          ChargeStatus
	PaymentIntentID string
	GatewayChargeID string
	ErrorMessage    string
	Refunded        bool
}

type ListChargeFilter struct {
	Status   ChargeStatus
	Currency string
	From     *time.Time
	To       *time.Time
}

type Repository interface {
	InsertCharge(ctx context.Context, db *gorm.DB, charge *ChargeTransaction) error
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*ChargeTransaction, error)
	FindByOrderIDForUpdate(ctx context.Context, tx *gorm.DB, orderID string) (*ChargeTransaction, error)
	FindByPaymentIntentID(ctx context.Context, db *gorm.DB, intentID string) (*ChargeTransaction, error)

	// UpdateChargeGuarded applies update iff the row's current status is
	// one of allowedFrom. Returns false when the precondition did not
	// hold, which callers treat as either an idempotent replay or a lost
	// race depending on the row's observed state.
	UpdateChargeGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, allowedFrom []ChargeStatus, update ChargeUpdate) (bool, error)

	// InsertTransfer inserts a transfer attempt row; returns false when a
	// row for the same (charge, seller) pair already exists.
	InsertTransfer(ctx context.Context, db *gorm.DB, transfer *TransferTransaction) (bool, error)

	// UpdateTransferStatus moves one transfer from one status to another;
	// returns false when the transfer was not in the expected status.
	UpdateTransferStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to TransferStatus, at time.Time) (bool, error)

	List(ctx context.Context, db *gorm.DB, filter ListChargeFilter, page pagination.Pagination) ([]*ChargeTransaction, error)
}
