package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/soukly/payments/internal/ledger/domain"
	pkgdb "github.com/soukly/payments/pkg/db"
	"github.com/soukly/payments/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// lockSuffix returns the row-lock clause for dialects that support it.
// The sqlite driver used in tests has no FOR UPDATE; its writes are
// serialized by the database itself.
func lockSuffix(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return ""
	}
	return " FOR UPDATE"
}

func (r *repo) InsertCharge(ctx context.Context, db *gorm.DB, charge *domain.ChargeTransaction) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO charge_transactions (
				id, order_id, payment_intent_id, gateway_charge_id, amount, currency,
				status, idempotency_key, error_message, refunded, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (order_id) DO NOTHING`,
			charge.ID,
			charge.OrderID,
			charge.PaymentIntentID,
			charge.GatewayChargeID,
			charge.Amount,
			charge.Currency,
			charge.Status,
			charge.IdempotencyKey,
			charge.ErrorMessage,
			charge.Refunded,
			charge.CreatedAt,
			charge.UpdatedAt,
		)
		if res.Error != nil {
			// ON CONFLICT only covers order_id; a clash on the idempotency
			// key unique index surfaces as a raw duplicate error.
			if pkgdb.IsDuplicateKeyErr(res.Error) {
				return domain.ErrOrderExists
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderExists
		}

		for i := range charge.Items {
			item := &charge.Items[i]
			item.ChargeTransactionID = charge.ID
			if err := tx.Exec(
				`INSERT INTO order_items (
					id, charge_transaction_id, seller_id, amount, created_at
				) VALUES (?, ?, ?, ?, ?)`,
				item.ID,
				item.ChargeTransactionID,
				item.SellerID,
				item.Amount,
				item.CreatedAt,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.ChargeTransaction, error) {
	return r.findOne(ctx, db, `order_id = ?`, orderID, "")
}

func (r *repo) FindByOrderIDForUpdate(ctx context.Context, tx *gorm.DB, orderID string) (*domain.ChargeTransaction, error) {
	return r.findOne(ctx, tx, `order_id = ?`, orderID, lockSuffix(tx))
}

func (r *repo) FindByPaymentIntentID(ctx context.Context, db *gorm.DB, intentID string) (*domain.ChargeTransaction, error) {
	return r.findOne(ctx, db, `payment_intent_id = ?`, intentID, "")
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, where string, arg any, suffix string) (*domain.ChargeTransaction, error) {
	var charge domain.ChargeTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, payment_intent_id, gateway_charge_id, amount, currency,
			status, idempotency_key, error_message, refunded, created_at, updated_at
		 FROM charge_transactions
		 WHERE `+where+`
		 LIMIT 1`+suffix,
		arg,
	).Scan(&charge).Error
	if err != nil {
		return nil, err
	}
	if charge.ID == 0 {
		return nil, domain.ErrNotFound
	}

	if err := db.WithContext(ctx).Raw(
		`SELECT id, charge_transaction_id, seller_id, amount, created_at
		 FROM order_items
		 WHERE charge_transaction_id = ?
		 ORDER BY id`,
		charge.ID,
	).Scan(&charge.Items).Error; err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Raw(
		`SELECT id, charge_transaction_id, seller_id, seller_account_id, amount,
			currency, status, transfer_id, idempotency_key, error_message,
			created_at, updated_at
		 FROM transfer_transactions
		 WHERE charge_transaction_id = ?
		 ORDER BY id`,
		charge.ID,
	).Scan(&charge.Transfers).Error; err != nil {
		return nil, err
	}

	return &charge, nil
}

func (r *repo) UpdateChargeGuarded(ctx context.Context, db *gorm.DB, id snowflake.ID, allowedFrom []domain.ChargeStatus, update domain.ChargeUpdate) (bool, error) {
	set := []string{"status = ?", "updated_at = ?"}
	args := []any{update.Status, time.Now().UTC()}

	if update.PaymentIntentID != "" {
		set = append(set, "payment_intent_id = ?")
		args = append(args, update.PaymentIntentID)
	}
	if update.GatewayChargeID != "" {
		set = append(set, "gateway_charge_id = ?")
		args = append(args, update.GatewayChargeID)
	}
	if update.ErrorMessage != "" {
		set = append(set, "error_message = ?")
		args = append(args, update.ErrorMessage)
	}
	if update.Refunded {
		set = append(set, "refunded = ?")
		args = append(args, true)
	}

	args = append(args, id)
	args = append(args, statusValues(allowedFrom))

	res := db.WithContext(ctx).Exec(
		`UPDATE charge_transactions
		 SET `+strings.Join(set, ", ")+`
		 WHERE id = ? AND status IN (?)`,
		args...,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func statusValues(statuses []domain.ChargeStatus) []string {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return values
}

func (r *repo) InsertTransfer(ctx context.Context, db *gorm.DB, transfer *domain.TransferTransaction) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO transfer_transactions (
			id, charge_transaction_id, seller_id, seller_account_id, amount,
			currency, status, transfer_id, idempotency_key, error_message,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (charge_transaction_id, seller_id) DO NOTHING`,
		transfer.ID,
		transfer.ChargeTransactionID,
		transfer.SellerID,
		transfer.SellerAccountID,
		transfer.Amount,
		transfer.Currency,
		transfer.Status,
		transfer.TransferID,
		transfer.IdempotencyKey,
		transfer.ErrorMessage,
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) UpdateTransferStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.TransferStatus, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE transfer_transactions
		 SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		to,
		at,
		id,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListChargeFilter, page pagination.Pagination) ([]*domain.ChargeTransaction, error) {
	where := []string{"1 = 1"}
	args := []any{}

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Currency != "" {
		where = append(where, "currency = ?")
		args = append(args, filter.Currency)
	}
	if filter.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "created_at < ?")
		args = append(args, *filter.To)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		lastID, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, err
		}
		where = append(where, "id < ?")
		args = append(args, lastID)
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit+1)

	var charges []*domain.ChargeTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, payment_intent_id, gateway_charge_id, amount, currency,
			status, idempotency_key, error_message, refunded, created_at, updated_at
		 FROM charge_transactions
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY id DESC
		 LIMIT ?`,
		args...,
	).Scan(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}
