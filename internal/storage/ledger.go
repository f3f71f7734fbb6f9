package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
)

const ledgerColumns = `id_registro, tipo_registro, id_usuario, descricao, valor,
	data_registro, recorrente, pendente, id_categoria, id_subcategoria, criado_em`

// CreateRecord inserts a ledger record and returns it with its id.
func (r *Repository) CreateRecord(ctx context.Context, rec core.LedgerRecord) (core.LedgerRecord, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO registro_financeiro
		 (tipo_registro, id_usuario, descricao, valor, data_registro, recorrente, pendente, id_categoria, id_subcategoria, criado_em)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.Kind), rec.OwnerID, rec.Description, rec.Amount.String(),
		rec.Date.String(), boolToInt(rec.Recurring), boolToInt(rec.Pending),
		rec.CategoryID, rec.SubcategoryID, formatTime(rec.CreatedAt))
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("insert ledger record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("record id: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Ledger record created",
		applog.FieldRecordID, rec.ID,
		applog.FieldRecordKind, string(rec.Kind),
		applog.FieldUserID, rec.OwnerID,
		"amount", rec.Amount.String(),
		"date", rec.Date.String(),
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpCreate)
	return rec, nil
}

// GetRecord loads one record of the given kind. Ownership is checked by the
// service layer so it can distinguish Forbidden from NotFound.
func (r *Repository) GetRecord(ctx context.Context, kind core.RecordKind, id int64) (core.LedgerRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM registro_financeiro WHERE tipo_registro = ? AND id_registro = ?`,
		string(kind), id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerRecord{}, core.NotFoundf("registro não encontrado com ID: %d", id)
	}
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("query ledger record: %w", err)
	}
	return rec, nil
}

// ListRecordsByOwner returns every record of the owner in persistence order.
func (r *Repository) ListRecordsByOwner(ctx context.Context, kind core.RecordKind, ownerID int64) ([]core.LedgerRecord, error) {
	return r.queryRecords(ctx,
		`SELECT `+ledgerColumns+` FROM registro_financeiro
		 WHERE tipo_registro = ? AND id_usuario = ? ORDER BY id_registro`,
		string(kind), ownerID)
}

// ListRecords applies the optional filter predicates on top of the
// mandatory owner predicate, ordered by the date field descending.
func (r *Repository) ListRecords(ctx context.Context, kind core.RecordKind, ownerID int64, f core.LedgerFilter) ([]core.LedgerRecord, error) {
	query, args := buildFilterQuery(`SELECT `+ledgerColumns+` FROM registro_financeiro`, kind, ownerID, f)
	query += ` ORDER BY data_registro DESC`
	return r.queryRecords(ctx, query, args...)
}

// ListRecordsPage is ListRecords with limit/offset pagination plus a total
// count computed under the same predicates.
func (r *Repository) ListRecordsPage(ctx context.Context, kind core.RecordKind, ownerID int64, f core.LedgerFilter, page, size int) (core.LedgerPage, error) {
	countQuery, countArgs := buildFilterQuery(`SELECT COUNT(*) FROM registro_financeiro`, kind, ownerID, f)

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return core.LedgerPage{}, fmt.Errorf("count ledger records: %w", err)
	}

	query, args := buildFilterQuery(`SELECT `+ledgerColumns+` FROM registro_financeiro`, kind, ownerID, f)
	query += ` ORDER BY data_registro DESC LIMIT ? OFFSET ?`
	args = append(args, size, page*size)

	items, err := r.queryRecords(ctx, query, args...)
	if err != nil {
		return core.LedgerPage{}, err
	}

	return core.LedgerPage{Items: items, Total: total, Page: page, Size: size}, nil
}

// UpdateRecord persists the mutable fields of a record. The owner column is
// deliberately absent from the SET list; ownership never changes.
func (r *Repository) UpdateRecord(ctx context.Context, rec core.LedgerRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registro_financeiro
		 SET descricao = ?, valor = ?, data_registro = ?, recorrente = ?, pendente = ?, id_categoria = ?, id_subcategoria = ?
		 WHERE tipo_registro = ? AND id_registro = ?`,
		rec.Description, rec.Amount.String(), rec.Date.String(),
		boolToInt(rec.Recurring), boolToInt(rec.Pending),
		rec.CategoryID, rec.SubcategoryID,
		string(rec.Kind), rec.ID)
	if err != nil {
		return fmt.Errorf("update ledger record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("registro não encontrado com ID: %d", rec.ID)
	}
	return nil
}

// DeleteRecord removes one record of the given kind.
func (r *Repository) DeleteRecord(ctx context.Context, kind core.RecordKind, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM registro_financeiro WHERE tipo_registro = ? AND id_registro = ?`,
		string(kind), id)
	if err != nil {
		return fmt.Errorf("delete ledger record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.NotFoundf("registro não encontrado com ID: %d", id)
	}

	slog.InfoContext(ctx, "Ledger record deleted",
		applog.FieldRecordID, id,
		applog.FieldRecordKind, string(kind),
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// buildFilterQuery appends one WHERE clause per supplied predicate. Date
// bounds are inclusive on both ends.
func buildFilterQuery(prefix string, kind core.RecordKind, ownerID int64, f core.LedgerFilter) (string, []any) {
	query := prefix + ` WHERE tipo_registro = ? AND id_usuario = ?`
	args := []any{string(kind), ownerID}

	if f.Start != nil {
		query += ` AND data_registro >= ?`
		args = append(args, f.Start.String())
	}
	if f.End != nil {
		query += ` AND data_registro <= ?`
		args = append(args, f.End.String())
	}
	if f.CategoryID != nil {
		query += ` AND id_categoria = ?`
		args = append(args, *f.CategoryID)
	}
	if f.Pending != nil {
		query += ` AND pendente = ?`
		args = append(args, boolToInt(*f.Pending))
	}

	return query, args
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]core.LedgerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger records: %w", err)
	}
	defer rows.Close()

	var records []core.LedgerRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan ledger record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger records: %w", err)
	}
	return records, nil
}

func scanRecord(scan func(...any) error) (core.LedgerRecord, error) {
	var (
		rec        core.LedgerRecord
		kind       string
		amount     string
		date       string
		recurring  int
		pending    int
		categoryID sql.NullInt64
		subID      sql.NullInt64
		created    string
	)
	err := scan(&rec.ID, &kind, &rec.OwnerID, &rec.Description, &amount,
		&date, &recurring, &pending, &categoryID, &subID, &created)
	if err != nil {
		return core.LedgerRecord{}, err
	}

	rec.Kind = core.RecordKind(kind)
	rec.Recurring = recurring != 0
	rec.Pending = pending != 0
	rec.CreatedAt = parseTime(created)

	rec.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	rec.Date, err = core.ParseDate(date)
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	if categoryID.Valid {
		rec.CategoryID = &categoryID.Int64
	}
	if subID.Valid {
		rec.SubcategoryID = &subID.Int64
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
