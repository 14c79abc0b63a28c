// Package storage persists budget facts and narrative excerpts in SQLite
// and serves the aggregate views the answering pipeline reads.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/landover-agents/server/internal/agent/model"
	errx "github.com/landover-agents/server/internal/core/error"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at dbPath
// and applies pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertFacts loads raw budget rows in one transaction.
func (r *Repository) InsertFacts(ctx context.Context, facts []model.BudgetFact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapStore(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO budget_facts (fiscal_year, department, line_item, amount) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errx.WrapStore(err)
	}
	defer stmt.Close()

	for _, f := range facts {
		var department, lineItem any
		if f.Department != "" {
			department = f.Department
		}
		if f.LineItem != "" {
			lineItem = f.LineItem
		}
		if _, err := stmt.ExecContext(ctx, int(f.FiscalYear), department, lineItem, f.Amount); err != nil {
			return errx.WrapStore(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// FactCount reports how many facts are loaded, for seed-once startup.
func (r *Repository) FactCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM budget_facts`).Scan(&n); err != nil {
		return 0, errx.WrapStore(err)
	}
	return n, nil
}

func (r *Repository) YearTotal(ctx context.Context, year model.FiscalYear) (float64, bool, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT total FROM v_year_totals WHERE fiscal_year = ?`, int(year)).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errx.WrapStore(err)
	}
	return total, true, nil
}

func (r *Repository) YearYoY(ctx context.Context) ([]model.YearYoYRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fiscal_year, total, change_amount FROM v_year_yoy ORDER BY fiscal_year`)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var out []model.YearYoYRow
	for rows.Next() {
		var row model.YearYoYRow
		var year int
		var change sql.NullFloat64
		if err := rows.Scan(&year, &row.Total, &change); err != nil {
			return nil, errx.WrapStore(err)
		}
		row.Year = model.FiscalYear(year)
		if change.Valid {
			row.Change = model.Float64Ptr(change.Float64)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

func (r *Repository) CategoryTotals(ctx context.Context, year model.FiscalYear) ([]model.CategoryTotalRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fiscal_year, category, total FROM v_category_totals
		 WHERE fiscal_year = ? ORDER BY total DESC, category ASC`, int(year))
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var out []model.CategoryTotalRow
	for rows.Next() {
		var row model.CategoryTotalRow
		var y int
		if err := rows.Scan(&y, &row.Category, &row.Total); err != nil {
			return nil, errx.WrapStore(err)
		}
		row.Year = model.FiscalYear(y)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

func (r *Repository) CategoryTotal(ctx context.Context, year model.FiscalYear, category string) (float64, bool, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT total FROM v_category_totals WHERE fiscal_year = ? AND UPPER(category) = UPPER(?)`,
		int(year), category).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errx.WrapStore(err)
	}
	return total, true, nil
}

func (r *Repository) CategoryShare(ctx context.Context, year model.FiscalYear, category string) (*model.CategoryShareRow, error) {
	row := &model.CategoryShareRow{Year: year}
	err := r.db.QueryRowContext(ctx,
		`SELECT category, total, pct_of_year FROM v_category_shares
		 WHERE fiscal_year = ? AND UPPER(category) = UPPER(?)`,
		int(year), category).Scan(&row.Category, &row.Total, &row.PctOfYear)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return row, nil
}

func (r *Repository) LineItemTotal(ctx context.Context, year model.FiscalYear, category, lineItem string) (float64, bool, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT total FROM v_line_items
		 WHERE fiscal_year = ? AND UPPER(category) = UPPER(?) AND UPPER(line_item) = UPPER(?)`,
		int(year), category, lineItem).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errx.WrapStore(err)
	}
	return total, true, nil
}

func (r *Repository) CategoryYoY(ctx context.Context, year model.FiscalYear, category string) (*model.CategoryYoYRow, error) {
	row := &model.CategoryYoYRow{Year: year}
	var changePct sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT category, total, prev_total, change_amount, change_pct FROM v_category_yoy
		 WHERE fiscal_year = ? AND UPPER(category) = UPPER(?)`,
		int(year), category).Scan(&row.Category, &row.Total, &row.PrevTotal, &row.ChangeAmount, &changePct)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	if changePct.Valid {
		row.ChangePct = model.Float64Ptr(changePct.Float64)
	}
	return row, nil
}

// SumFacts aggregates raw facts under a conjunctive filter and returns the
// five largest matching rows as evidence.
func (r *Repository) SumFacts(ctx context.Context, f model.FilterSet) (float64, int, []model.Evidence, error) {
	where := []string{"department IS NOT NULL"}
	var args []any
	if f.FiscalYear != nil {
		where = append(where, "fiscal_year = ?")
		args = append(args, int(*f.FiscalYear))
	}
	if f.Department != "" {
		where = append(where, "UPPER(department) = UPPER(?)")
		args = append(args, f.Department)
	}
	if f.LineItem != "" {
		where = append(where, "LOWER(line_item) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.LineItem)
	}
	cond := strings.Join(where, " AND ")

	var total float64
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM budget_facts WHERE `+cond, args...).
		Scan(&total, &count)
	if err != nil {
		return 0, 0, nil, errx.WrapStore(err)
	}
	if count == 0 {
		return 0, 0, nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT fiscal_year, department, COALESCE(line_item, ''), amount
		 FROM budget_facts WHERE `+cond+` ORDER BY amount DESC LIMIT 5`, args...)
	if err != nil {
		return 0, 0, nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var top []model.Evidence
	for rows.Next() {
		var year int
		var ev model.Evidence
		if err := rows.Scan(&year, &ev.Category, &ev.LineItem, &ev.Amount); err != nil {
			return 0, 0, nil, errx.WrapStore(err)
		}
		ev.FiscalYear = model.FiscalYear(year).Label()
		ev.Source = "budget_facts"
		top = append(top, ev)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, nil, errx.WrapStore(err)
	}
	return total, count, top, nil
}

// Departments lists the distinct departments present in the facts.
func (r *Repository) Departments(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT department FROM budget_facts WHERE department IS NOT NULL ORDER BY department`)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, errx.WrapStore(err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

// Years lists the distinct fiscal years present in the facts.
func (r *Repository) Years(ctx context.Context) ([]model.FiscalYear, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT fiscal_year FROM budget_facts ORDER BY fiscal_year`)
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	defer rows.Close()

	var out []model.FiscalYear
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, errx.WrapStore(err)
		}
		out = append(out, model.FiscalYear(y))
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

var (
	_ model.AggregateStore = (*Repository)(nil)
	_ model.FactStore      = (*Repository)(nil)
	_ model.ExcerptStore   = (*Repository)(nil)
)
