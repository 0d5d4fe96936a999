package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

const transactionColumns = `id, reference, external_reference, gateway_reference, user_id, type, amount,
    currency, status, method, phone, COALESCE(campaign_id, ''), COALESCE(ambassador_id, ''),
    COALESCE(publication_id, ''), error_message, timed_out, ussd_code, operator, created_at, updated_at`

// TransactionRepository implements port.TransactionRepository using pgxpool.
// Balance debits and refunds run in the same transaction as the status
// change they belong to.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.Reference,
		&t.ExternalReference,
		&t.GatewayReference,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Method,
		&t.Phone,
		&t.CampaignID,
		&t.AmbassadorID,
		&t.PublicationID,
		&t.ErrorMessage,
		&t.TimedOut,
		&t.USSDCode,
		&t.Operator,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// execer is satisfied by the pool and by pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertTransaction(ctx context.Context, db execer, t *domain.Transaction) error {
	_, err := db.Exec(ctx, `INSERT INTO transactions
    (id, reference, external_reference, gateway_reference, user_id, type, amount, currency, status,
     method, phone, campaign_id, ambassador_id, publication_id, error_message, timed_out,
     ussd_code, operator, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		t.ID, t.Reference, t.ExternalReference, t.GatewayReference, t.UserID, t.Type, t.Amount, t.Currency, t.Status,
		t.Method, t.Phone, nullable(t.CampaignID), nullable(t.AmbassadorID), nullable(t.PublicationID), t.ErrorMessage,
		t.TimedOut, t.USSDCode, t.Operator, t.CreatedAt, t.UpdatedAt)
	if hasCode(err, uniqueViolation) {
		return port.ErrDuplicateTransaction
	}
	return err
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	return insertTransaction(ctx, r.pool, t)
}

func (r *TransactionRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) FindActiveDeposit(ctx context.Context, campaignID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions
WHERE campaign_id = $1 AND type = 'deposit'
  AND (status IN ('pending', 'confirmed') OR (status = 'failed' AND timed_out))`, campaignID)
}

func (r *TransactionRepository) FindPendingWithdrawal(ctx context.Context, userID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions
WHERE user_id = $1 AND type = 'withdrawal' AND status = 'pending'`, userID)
}

func (r *TransactionRepository) GetTransactionByReference(ctx context.Context, ref string) (*domain.Transaction, error) {
	if ref == "" {
		return nil, port.ErrTransactionNotFound
	}
	t, err := r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions
WHERE reference = $1 OR external_reference = $1 OR gateway_reference = $1
ORDER BY (reference = $1) DESC, created_at DESC
LIMIT 1`, ref)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, port.ErrTransactionNotFound
	}
	return t, nil
}

func (r *TransactionRepository) SetGatewayReference(ctx context.Context, id, gatewayRef, ussdCode, operator string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transactions
SET gateway_reference = $2, ussd_code = $3, operator = $4, updated_at = now()
WHERE id = $1`, id, gatewayRef, ussdCode, operator)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrTransactionNotFound
	}
	return nil
}

func lockTransaction(ctx context.Context, tx pgx.Tx, id string) (domain.Transaction, error) {
	t, err := scanTransaction(tx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, port.ErrTransactionNotFound
	}
	return t, err
}

// debit charges a withdrawal to its owner with a conditional update, so the
// balance can never go negative.
func debit(ctx context.Context, tx pgx.Tx, t domain.Transaction) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `UPDATE users SET balance = balance - $2, updated_at = now()
WHERE id = $1 AND balance >= $2 RETURNING balance`, t.UserID, t.Amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, port.ErrInsufficientBalance
	}
	return balance, err
}

// AcceptWithdrawal stores the gateway reference and debits the balance. The
// gateway verdict may overtake its acknowledgement: a failed row was never
// debited and a confirmed one was debited by the confirmation, so both only
// report the balance.
func (r *TransactionRepository) AcceptWithdrawal(ctx context.Context, id, gatewayRef string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := lockTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.Type != domain.TransactionWithdrawal {
			return port.ErrInvalidInput
		}
		if t.Status != domain.TransactionPending || t.GatewayReference != "" {
			if err = tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, t.UserID).Scan(&balance); err != nil {
				return err
			}
			if t.Status != domain.TransactionConfirmed || t.GatewayReference != "" {
				return nil
			}
		} else if balance, err = debit(ctx, tx, t); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE transactions SET gateway_reference = $2, updated_at = now() WHERE id = $1`, id, gatewayRef)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// ConfirmTransaction confirms a pending or timed-out transaction. A
// withdrawal confirmed before its acknowledgement is debited here.
func (r *TransactionRepository) ConfirmTransaction(ctx context.Context, id string) (bool, error) {
	var changed bool
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := lockTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.Status != domain.TransactionPending && !(t.Status == domain.TransactionFailed && t.TimedOut) {
			return nil
		}
		if t.Type == domain.TransactionWithdrawal && !t.Debited() {
			if _, err = debit(ctx, tx, t); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `UPDATE transactions
SET status = 'confirmed', timed_out = false, error_message = '', updated_at = now()
WHERE id = $1`, id)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if hasCode(err, uniqueViolation) {
		return false, port.ErrDuplicateTransaction
	}
	return changed, err
}

// FailTransaction fails a pending transaction and refunds a debited
// withdrawal in the same unit of work. A timed-out transaction is settled as
// failed once the gateway reports a definitive failure.
func (r *TransactionRepository) FailTransaction(ctx context.Context, id, reason string, timedOut bool) (bool, error) {
	var changed bool
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		t, err := lockTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.Status != domain.TransactionPending && !(t.Status == domain.TransactionFailed && t.TimedOut && !timedOut) {
			return nil
		}
		if t.Status == domain.TransactionPending && t.Debited() {
			if _, err = tx.Exec(ctx, `UPDATE users SET balance = balance + $2, updated_at = now() WHERE id = $1`, t.UserID, t.Amount); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `UPDATE transactions
SET status = 'failed', error_message = $2, timed_out = $3, updated_at = now()
WHERE id = $1`, id, reason, timedOut)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

func (r *TransactionRepository) ListUserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		return scanTransaction(row)
	})
}
