package conversion

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qrda/converter/internal/domain/node"
)

// Queryable is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type conversionRepoPG struct{ db Queryable }

func NewConversionRepoPG(db Queryable) ConversionRepository {
	return &conversionRepoPG{db: db}
}

const convCols = `id, source_name, root_type, tree, diagnostics, failure_count, templates, created_at`

func (r *conversionRepoPG) scanRow(row pgx.Row) (*Conversion, error) {
	var (
		c     Conversion
		tree  []byte
		diags []byte
	)
	if err := row.Scan(&c.ID, &c.SourceName, &c.RootType, &tree, &diags,
		&c.FailureCount, &c.Templates, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Tree = &node.Node{}
	if err := json.Unmarshal(tree, c.Tree); err != nil {
		return nil, fmt.Errorf("decode tree of conversion %s: %w", c.ID, err)
	}
	if len(diags) > 0 {
		if err := json.Unmarshal(diags, &c.Diagnostics); err != nil {
			return nil, fmt.Errorf("decode diagnostics of conversion %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func (r *conversionRepoPG) Create(ctx context.Context, c *Conversion) error {
	tree, err := json.Marshal(c.Tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	diags, err := json.Marshal(c.Diagnostics)
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	if c.Templates == nil {
		c.Templates = []string{}
	}

	c.ID = uuid.New()
	err = r.db.QueryRow(ctx, `
		INSERT INTO qrda_conversion (id, source_name, root_type, tree, diagnostics, failure_count, templates)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		c.ID, c.SourceName, c.RootType, tree, diags, c.FailureCount, c.Templates,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

func (r *conversionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Conversion, error) {
	c, err := r.scanRow(r.db.QueryRow(ctx, `SELECT `+convCols+` FROM qrda_conversion WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *conversionRepoPG) List(ctx context.Context, limit, offset int) ([]*Conversion, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM qrda_conversion`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+convCols+` FROM qrda_conversion ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *conversionRepoPG) ListByTemplate(ctx context.Context, template string, limit, offset int) ([]*Conversion, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM qrda_conversion WHERE $1 = ANY(templates)`, template).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+convCols+` FROM qrda_conversion WHERE $1 = ANY(templates) ORDER BY created_at DESC LIMIT $2 OFFSET $3`, template, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *conversionRepoPG) collect(rows pgx.Rows, total int) ([]*Conversion, int, error) {
	defer rows.Close()
	var items []*Conversion
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
