package conversion

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no conversion has the requested id.
var ErrNotFound = errors.New("conversion not found")

type ConversionRepository interface {
	Create(ctx context.Context, c *Conversion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversion, error)
	List(ctx context.Context, limit, offset int) ([]*Conversion, int, error)
	ListByTemplate(ctx context.Context, template string, limit, offset int) ([]*Conversion, int, error)
}
