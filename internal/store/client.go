// Package store exposes the narrow request/response surface the record layer
// uses against the relational store: table-addressed selects, inserts,
// updates, and deletes carrying plain column-keyed rows. Table and column
// names always come from compiled-in entity specs, never from callers.
package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row is a single store-shaped record: column name to value.
type Row = map[string]any

// Filter is an equality predicate on one column. CaseInsensitive matches the
// store's case-insensitive pattern filter (used for card-number lookups).
type Filter struct {
	Column          string
	Value           any
	CaseInsensitive bool
}

// Order describes one ordering column.
type Order struct {
	Column     string
	Descending bool
}

// Eq builds a plain equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// ILike builds a case-insensitive equality filter.
func ILike(column string, value any) Filter {
	return Filter{Column: column, Value: value, CaseInsensitive: true}
}

// Client issues single round-trip operations against the store. There is no
// session state and no transaction spanning more than one call.
type Client struct {
	db *gorm.DB
}

// New binds a client to the provided GORM connection.
func New(db *gorm.DB) *Client {
	return &Client{db: db}
}

// Init probes the store with a minimal read so a broken connection surfaces
// at boot rather than on the first user request.
func (c *Client) Init(ctx context.Context) error {
	var rows []Row
	if err := c.query(ctx, "users", []string{"id"}, nil, nil, 1).Find(&rows).Error; err != nil {
		return fmt.Errorf("store connection check: %w", err)
	}
	return nil
}

// Select returns zero or more rows. columns limits the projection; empty
// means all columns.
func (c *Client) Select(ctx context.Context, table string, columns []string, filters []Filter, orders []Order) ([]Row, error) {
	var rows []Row
	if err := c.query(ctx, table, columns, filters, orders, 0).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("selecting from %s: %w", table, err)
	}
	return rows, nil
}

// SelectOne returns at most one row; the boolean reports presence. A missing
// row is not an error.
func (c *Client) SelectOne(ctx context.Context, table string, columns []string, filters []Filter) (Row, bool, error) {
	var rows []Row
	if err := c.query(ctx, table, columns, filters, nil, 1).Find(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("selecting from %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

// Insert writes one row.
func (c *Client) Insert(ctx context.Context, table string, payload Row) error {
	if len(payload) == 0 {
		return fmt.Errorf("inserting into %s: empty payload", table)
	}
	if err := c.db.WithContext(ctx).Table(table).Create(payload).Error; err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}
	return nil
}

// Update applies the payload to every row matching filters and returns the
// number of rows touched.
func (c *Client) Update(ctx context.Context, table string, filters []Filter, payload Row) (int64, error) {
	if len(payload) == 0 {
		return 0, fmt.Errorf("updating %s: empty payload", table)
	}
	if len(filters) == 0 {
		return 0, fmt.Errorf("updating %s: refusing unfiltered update", table)
	}
	query := c.db.WithContext(ctx).Table(table)
	query = applyFilters(query, filters)
	result := query.Updates(payload)
	if result.Error != nil {
		return 0, fmt.Errorf("updating %s: %w", table, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes every row matching filters. Deleting nothing is not an
// error.
func (c *Client) Delete(ctx context.Context, table string, filters []Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("deleting from %s: refusing unfiltered delete", table)
	}
	where, args := whereClause(filters)
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	if err := c.db.WithContext(ctx).Exec(sql, args...).Error; err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return nil
}

func (c *Client) query(ctx context.Context, table string, columns []string, filters []Filter, orders []Order, limit int) *gorm.DB {
	query := c.db.WithContext(ctx).Table(table)
	if len(columns) > 0 {
		query = query.Select(columns)
	}
	query = applyFilters(query, filters)
	for _, o := range orders {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: o.Column},
			Desc:   o.Descending,
		})
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

func applyFilters(query *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		if f.CaseInsensitive {
			query = query.Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", f.Column), f.Value)
			continue
		}
		if f.Value == nil {
			query = query.Where(fmt.Sprintf("%s IS NULL", f.Column))
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", f.Column), f.Value)
	}
	return query
}

func whereClause(filters []Filter) (string, []any) {
	parts := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		switch {
		case f.CaseInsensitive:
			parts = append(parts, fmt.Sprintf("LOWER(%s) = LOWER(?)", f.Column))
			args = append(args, f.Value)
		case f.Value == nil:
			parts = append(parts, fmt.Sprintf("%s IS NULL", f.Column))
		default:
			parts = append(parts, fmt.Sprintf("%s = ?", f.Column))
			args = append(args, f.Value)
		}
	}
	return strings.Join(parts, " AND "), args
}
