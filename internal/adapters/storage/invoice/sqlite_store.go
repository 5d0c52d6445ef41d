package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"courtside/internal/adapters/storage"
	"courtside/internal/domain/apperr"
	domain "courtside/internal/domain/invoice"
)

const invoiceColumns = `id, coach_id, month, year, status, notes, subtotal, deductions, total,
	rejection_reason, created_at, updated_at, submitted_at, approved_at, rejected_at, paid_at, version`

const itemColumns = "id, item_type, is_deduction, description, date, hours, rate, amount"

// queryer is satisfied by both storage.SQLDB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new invoice store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Invoice and its line items.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	return getOne(ctx, s.db, "SELECT "+invoiceColumns+" FROM invoice WHERE id = ?", id)
}

// GetByPeriod retrieves the invoice for a coach and month.
// POST: Returns the entity or a not-found error
func (s *SQLiteStore) GetByPeriod(ctx context.Context, coachID string, month, year int) (domain.Invoice, error) {
	return getOne(ctx, s.db,
		"SELECT "+invoiceColumns+" FROM invoice WHERE coach_id = ? AND month = ? AND year = ?",
		coachID, month, year)
}

// CreateIfAbsent inserts value unless an invoice already exists for its
// (coach, month, year), then returns whichever invoice is stored.
// PRE: value has been validated
// POST: created reports whether value was inserted; the returned invoice is the stored one
func (s *SQLiteStore) CreateIfAbsent(ctx context.Context, inv domain.Invoice) (domain.Invoice, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Invoice{}, false, err
	}
	defer tx.Rollback()

	if inv.Version == 0 {
		inv.Version = 1
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO invoice ("+invoiceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(coach_id, month, year) DO NOTHING",
		invoiceArgs(inv)...,
	)
	if err != nil {
		return domain.Invoice{}, false, fmt.Errorf("insert invoice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Invoice{}, false, err
	}
	created := n == 1
	if created {
		if err := insertItems(ctx, tx, inv.ID, inv.LineItems); err != nil {
			return domain.Invoice{}, false, err
		}
	}

	stored, err := getOne(ctx, tx,
		"SELECT "+invoiceColumns+" FROM invoice WHERE coach_id = ? AND month = ? AND year = ?",
		inv.CoachID, inv.Month, inv.Year)
	if err != nil {
		return domain.Invoice{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Invoice{}, false, err
	}
	return stored, created, nil
}

// Update writes the invoice if its stored version equals value.Version.
// PRE: value has been validated; value.Version is the version that was read
// POST: Stored version is value.Version+1, or ErrStaleInvoice and nothing changed
func (s *SQLiteStore) Update(ctx context.Context, inv domain.Invoice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE invoice SET status = ?, notes = ?, subtotal = ?, deductions = ?, total = ?,
			rejection_reason = ?, updated_at = ?, submitted_at = ?, approved_at = ?, rejected_at = ?, paid_at = ?,
			version = version + 1
		WHERE id = ? AND version = ?`,
		string(inv.Status), inv.Notes, inv.Subtotal.String(), inv.Deductions.String(), inv.Total.String(),
		inv.RejectionReason, storage.FormatTime(inv.UpdatedAt), storage.FormatTime(inv.SubmittedAt),
		storage.FormatTime(inv.ApprovedAt), storage.FormatTime(inv.RejectedAt), storage.FormatTime(inv.PaidAt),
		inv.ID, inv.Version,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("invoice %s version %d: %w", inv.ID, inv.Version, ErrStaleInvoice)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_line_item WHERE invoice_id = ?", inv.ID); err != nil {
		return fmt.Errorf("clear line items: %w", err)
	}
	if err := insertItems(ctx, tx, inv.ID, inv.LineItems); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an invoice and, by cascade, its line items.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invoice WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("invoice %s", id)
	}
	return nil
}

// List retrieves invoice headers matching filter, newest period first.
// Line items are not loaded; totals are.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Invoice, error) {
	var where []string
	var args []any
	if filter.CoachID != "" {
		where = append(where, "coach_id = ?")
		args = append(args, filter.CoachID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Month != 0 {
		where = append(where, "month = ?")
		args = append(args, filter.Month)
	}

	query := "SELECT " + invoiceColumns + " FROM invoice"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, month DESC, coach_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, inv)
	}
	return results, rows.Err()
}

func getOne(ctx context.Context, q queryer, query string, args ...any) (domain.Invoice, error) {
	inv, err := scanInvoice(q.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, apperr.NotFound("invoice")
	}
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv.LineItems, err = loadItems(ctx, q, inv.ID); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func loadItems(ctx context.Context, q queryer, invoiceID string) ([]domain.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM invoice_line_item WHERE invoice_id = ? ORDER BY position", invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.LineItem{}
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.ID, &li.ItemType, &li.IsDeduction, &li.Description, &li.Date, &li.Hours, &li.Rate, &li.Amount); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, invoiceID string, items []domain.LineItem) error {
	for i, li := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO invoice_line_item (invoice_id, position, "+itemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			invoiceID, i, li.ID, li.ItemType, li.IsDeduction, li.Description, li.Date,
			li.Hours.String(), li.Rate.String(), li.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("insert line item %d: %w", i, err)
		}
	}
	return nil
}

func invoiceArgs(inv domain.Invoice) []any {
	return []any{
		inv.ID, inv.CoachID, inv.Month, inv.Year, string(inv.Status), inv.Notes,
		inv.Subtotal.String(), inv.Deductions.String(), inv.Total.String(),
		inv.RejectionReason,
		storage.FormatTime(inv.CreatedAt), storage.FormatTime(inv.UpdatedAt),
		storage.FormatTime(inv.SubmittedAt), storage.FormatTime(inv.ApprovedAt),
		storage.FormatTime(inv.RejectedAt), storage.FormatTime(inv.PaidAt),
		inv.Version,
	}
}

func scanInvoice(scan func(dest ...any) error) (domain.Invoice, error) {
	var inv domain.Invoice
	var status string
	var created, updated, submitted, approved, rejected, paid sql.NullString
	err := scan(
		&inv.ID, &inv.CoachID, &inv.Month, &inv.Year, &status, &inv.Notes,
		&inv.Subtotal, &inv.Deductions, &inv.Total,
		&inv.RejectionReason, &created, &updated, &submitted, &approved, &rejected, &paid,
		&inv.Version,
	)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Status = domain.Status(status)
	for _, ts := range []struct {
		src sql.NullString
		dst *time.Time
	}{
		{created, &inv.CreatedAt},
		{updated, &inv.UpdatedAt},
		{submitted, &inv.SubmittedAt},
		{approved, &inv.ApprovedAt},
		{rejected, &inv.RejectedAt},
		{paid, &inv.PaidAt},
	} {
		if *ts.dst, err = storage.ParseTime(ts.src); err != nil {
			return domain.Invoice{}, err
		}
	}
	return inv, nil
}
