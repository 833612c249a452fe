package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockEngine applies stock deltas to raw materials and finished products.
// Every adjustment runs inside the caller's transaction as a single
// UPDATE ... SET current_stock_kg = current_stock_kg + delta, so concurrent
// writers never lose an update and a failed save leaves no partial change.
//
// With allowNegative false, a decrement that would drive a balance below
// zero fails with ErrInsufficientStock and the caller rolls back.
type StockEngine struct {
	allowNegative bool
	log           *zap.Logger
}

// NewStockEngine returns an engine with the given negative-balance policy.
func NewStockEngine(allowNegative bool, log *zap.Logger) *StockEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &StockEngine{allowNegative: allowNegative, log: log}
}

// AllowsNegative reports whether balances may go below zero.
func (e *StockEngine) AllowsNegative() bool { return e.allowNegative }

// AdjustRawMaterialTx adds delta (possibly negative) to a raw material balance
// and returns the new balance.
func (e *StockEngine) AdjustRawMaterialTx(ctx context.Context, tx pgx.Tx, id int, delta decimal.Decimal) (decimal.Decimal, error) {
	return e.adjustTx(ctx, tx, "raw_materials", "raw material", id, delta)
}

// AdjustFinishedProductTx adds delta (possibly negative) to a finished product
// balance and returns the new balance.
func (e *StockEngine) AdjustFinishedProductTx(ctx context.Context, tx pgx.Tx, id int, delta decimal.Decimal) (decimal.Decimal, error) {
	return e.adjustTx(ctx, tx, "finished_products", "finished product", id, delta)
}

func (e *StockEngine) adjustTx(ctx context.Context, tx pgx.Tx, table, label string, id int, delta decimal.Decimal) (decimal.Decimal, error) {
	unguarded := e.allowNegative || !delta.IsNegative()

	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE `+table+`
		SET current_stock_kg = current_stock_kg + $1
		WHERE id = $2 AND ($3 OR current_stock_kg + $1 >= 0)
		RETURNING current_stock_kg
	`, delta, id, unguarded).Scan(&balance)
	if err == nil {
		e.log.Debug("stock adjusted",
			zap.String("item", label),
			zap.Int("id", id),
			zap.String("delta_kg", delta.StringFixed(2)),
			zap.String("balance_kg", balance.StringFixed(2)),
		)
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("failed to adjust %s %d stock: %w", label, id, err)
	}

	// No row updated: either the item is missing or the guard rejected the decrement.
	var name string
	var current decimal.Decimal
	err = tx.QueryRow(ctx, "SELECT name, current_stock_kg FROM "+table+" WHERE id = $1", id).Scan(&name, &current)
	if err != nil {
		return decimal.Zero, notFoundf(err, "%s %d", label, id)
	}
	return decimal.Zero, fmt.Errorf("%w: %s %q has %s kg, needs %s kg",
		ErrInsufficientStock, label, name, current.StringFixed(2), delta.Neg().StringFixed(2))
}

// stockPlan accumulates net deltas per item so that a multi-line save touches
// each row once, in ascending id order.
type stockPlan struct {
	raw      map[int]decimal.Decimal
	finished map[int]decimal.Decimal
}

func newStockPlan() *stockPlan {
	return &stockPlan{raw: map[int]decimal.Decimal{}, finished: map[int]decimal.Decimal{}}
}

func (p *stockPlan) addRaw(id int, delta decimal.Decimal) {
	p.raw[id] = p.raw[id].Add(delta)
}

func (p *stockPlan) addFinished(id int, delta decimal.Decimal) {
	p.finished[id] = p.finished[id].Add(delta)
}

// applyTx runs the plan, raw materials first, each table in ascending id order.
// A row whose net delta is zero is not touched.
func (p *stockPlan) applyTx(ctx context.Context, tx pgx.Tx, e *StockEngine) error {
	for _, id := range orderedIDs(p.raw) {
		if _, err := e.AdjustRawMaterialTx(ctx, tx, id, p.raw[id]); err != nil {
			return err
		}
	}
	for _, id := range orderedIDs(p.finished) {
		if _, err := e.AdjustFinishedProductTx(ctx, tx, id, p.finished[id]); err != nil {
			return err
		}
	}
	return nil
}

// orderedIDs returns the ids with a non-zero delta, ascending.
func orderedIDs(deltas map[int]decimal.Decimal) []int {
	ids := make([]int, 0, len(deltas))
	for id, d := range deltas {
		if !d.IsZero() {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
