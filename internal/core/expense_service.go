package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseService records miscellaneous operating costs.
type ExpenseService interface {
	CreateExpense(ctx context.Context, in ExpenseInput) (*Expense, error)
	GetExpense(ctx context.Context, id int) (*Expense, error)
	// ListExpenses returns expenses dated within the window, newest first.
	ListExpenses(ctx context.Context, window DateRange) ([]Expense, error)
	// UpdateExpense changes description and amount. The date is never changed.
	UpdateExpense(ctx context.Context, id int, in ExpenseInput) (*Expense, error)
	DeleteExpense(ctx context.Context, id int) error
}

type expenseService struct {
	pool *pgxpool.Pool
}

func NewExpenseService(pool *pgxpool.Pool) ExpenseService {
	return &expenseService{pool: pool}
}

// nullTime maps the zero time to NULL so the column default (NOW()) applies.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *expenseService) CreateExpense(ctx context.Context, in ExpenseInput) (*Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var e Expense
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (description, amount, date)
		VALUES ($1, $2, COALESCE($3::timestamptz, NOW()))
		RETURNING id, description, amount, date
	`, strings.TrimSpace(in.Description), in.Amount, nullTime(in.Date)).Scan(&e.ID, &e.Description, &e.Amount, &e.Date)
	if err != nil {
		return nil, classifyWriteError(err, "create expense")
	}
	return &e, nil
}

func (s *expenseService) GetExpense(ctx context.Context, id int) (*Expense, error) {
	var e Expense
	err := s.pool.QueryRow(ctx, `
		SELECT id, description, amount, date FROM expenses WHERE id = $1
	`, id).Scan(&e.ID, &e.Description, &e.Amount, &e.Date)
	if err != nil {
		return nil, notFoundf(err, "expense %d", id)
	}
	return &e, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, window DateRange) ([]Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, description, amount, date
		FROM expenses
		WHERE date::date BETWEEN $1::date AND $2::date
		ORDER BY date DESC, id DESC
	`, window.StartDate(), window.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *expenseService) UpdateExpense(ctx context.Context, id int, in ExpenseInput) (*Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var e Expense
	err := s.pool.QueryRow(ctx, `
		UPDATE expenses SET description = $1, amount = $2 WHERE id = $3
		RETURNING id, description, amount, date
	`, strings.TrimSpace(in.Description), in.Amount, id).Scan(&e.ID, &e.Description, &e.Amount, &e.Date)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf(err, "expense %d", id)
		}
		return nil, classifyWriteError(err, "update expense")
	}
	return &e, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "expenses", "expense", id)
}
