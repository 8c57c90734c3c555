// Package sequence issues document numbers such as PO202401-0001.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmadist/pharmadist/internal/platform/db"
)

// Document types share the numbering table, one counter per type and month.
const (
	PurchaseOrder = "purchase_order"
	SalesOrder    = "sales_order"
	StockTransfer = "stock_transfer"
)

// Next atomically increments the counter for docType in the month of at and
// returns the new value. It must run inside the caller's transaction so the
// number is released again when the document insert rolls back.
func Next(ctx context.Context, q db.Querier, docType string, at time.Time) (int64, error) {
	if docType == "" {
		return 0, errors.New("sequence: doc type required")
	}
	var value int64
	err := q.QueryRow(ctx, `INSERT INTO document_sequences (doc_type, year, month, value)
VALUES ($1, $2, $3, 1)
ON CONFLICT (doc_type, year, month) DO UPDATE SET value = document_sequences.value + 1
RETURNING value`, docType, at.Year(), int(at.Month())).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("sequence: next %s: %w", docType, err)
	}
	return value, nil
}

// Format renders {prefix}{YYYY}{MM}-{NNNN}. Values past 9999 widen naturally.
func Format(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d%02d-%04d", prefix, at.Year(), int(at.Month()), seq)
}

// Counter is an in-process sequence keyed like the database table. It backs
// the in-memory repositories used by service tests.
type Counter struct {
	values map[string]int64
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{values: make(map[string]int64)}
}

// Next increments and returns the counter for docType in the month of at.
func (c *Counter) Next(docType string, at time.Time) int64 {
	key := fmt.Sprintf("%s:%04d%02d", docType, at.Year(), int(at.Month()))
	c.values[key]++
	return c.values[key]
}
