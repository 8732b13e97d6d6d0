package bank

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"golang.org/x/exp/slog"
)

// Archiver receives every committed ledger entry together with its sequence
// number. Implementations must tolerate out-of-order and replayed calls; the
// sequence number carries the ordering.
type Archiver interface {
	Append(seq int64, t *Transaction)
}

// LedgerArchive mirrors the in-process ledger into Postgres, one row per
// committed transaction keyed by its ledger sequence number. Writes are
// best-effort: the in-process ledger is the source of truth and a failed
// archive write never fails the operation that produced the transaction.
type LedgerArchive struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLedgerArchive(db *sql.DB, logger *slog.Logger) *LedgerArchive {
	return &LedgerArchive{db: db, logger: logger}
}

// Append inserts the transaction under its ledger sequence number. A
// duplicate sequence (replayed write-through) is ignored; other failures are
// logged and dropped.
func (a *LedgerArchive) Append(seq int64, t *Transaction) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO bank.ledger(seq, ts, type, from_card, to_card, amount, mcc, cashback, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, seq, t.Timestamp, string(t.Type), nullableCardID(t.FromCard), nullableCardID(t.ToCard),
		t.Amount.StringFixed(2), nullableString(t.MCC), t.Cashback.StringFixed(2), t.Description)
	if err == nil || isUniqueViolation(err) {
		return
	}
	a.logger.Error("archiving ledger entry", slog.Int64("seq", seq), slog.Any("err", err))
}

// Ping reports archive readiness.
func (a *LedgerArchive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func nullableCardID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
