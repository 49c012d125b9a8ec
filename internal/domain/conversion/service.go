package conversion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/qrda/converter/internal/domain/decode"
	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/internal/platform/xmltree"
)

var (
	// ErrInvalidDocument wraps XML that cannot be parsed into an element tree.
	ErrInvalidDocument = errors.New("invalid QRDA document")
	// ErrStorageDisabled is returned by store operations when the service
	// runs without a database.
	ErrStorageDisabled = errors.New("conversion storage is not configured")
	// ErrUnknownTemplate is returned when filtering by a name outside the
	// template catalog.
	ErrUnknownTemplate = errors.New("unknown template")
)

type Service struct {
	conversions ConversionRepository
	registry    *decode.Registry
	lenient     bool
	workers     int
	logger      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRepository enables persistence of conversions.
func WithRepository(repo ConversionRepository) Option {
	return func(s *Service) { s.conversions = repo }
}

// WithLenient sets the unknown-extension policy of every decode.
func WithLenient(lenient bool) Option {
	return func(s *Service) { s.lenient = lenient }
}

// WithWorkers bounds the number of documents decoded at once by DecodeBatch.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the service logger. Decode engines log through it too.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a service decoding with reg, or with the built-in
// decoders when reg is nil.
func NewService(reg *decode.Registry, opts ...Option) *Service {
	if reg == nil {
		reg = decode.DefaultRegistry()
	}
	s := &Service{registry: reg, lenient: true, workers: 4, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StorageEnabled reports whether conversions can be stored.
func (s *Service) StorageEnabled() bool {
	return s.conversions != nil
}

// Decode parses and decodes one document.
func (s *Service) Decode(ctx context.Context, name string, r io.Reader) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	engine := decode.New(s.registry,
		decode.WithLenient(s.lenient),
		decode.WithLogger(s.logger.With().Str("source", name).Logger()),
	)
	tree, err := engine.Decode(root)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	diags := engine.Diagnostics()
	res := &Result{
		SourceName:  name,
		Tree:        tree,
		Diagnostics: diags,
		Templates:   lo.Map(engine.Encountered(), func(id templateid.TemplateID, _ int) string { return id.String() }),
		Summary:     Summarize(tree),
	}
	res.Failures = lo.FilterMap(diags, func(d decode.Diagnostic, _ int) (string, bool) {
		return d.Message, d.Code == decode.CodeDecodeFailure
	})

	s.logger.Info().
		Str("source", name).
		Str("root", tree.Type.String()).
		Int("diagnostics", len(diags)).
		Int("failures", len(res.Failures)).
		Msg("decoded document")
	return res, nil
}

// DecodeBatch decodes every source with at most the configured number of
// workers. A document that fails to parse is reported in its BatchItem and
// does not stop the batch; cancelling ctx does.
func (s *Service) DecodeBatch(ctx context.Context, sources []Source) ([]BatchItem, error) {
	items := make([]BatchItem, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, src := range sources {
		g.Go(func() error {
			res, err := s.Decode(ctx, src.Name, bytes.NewReader(src.Data))
			items[i] = BatchItem{Name: src.Name, Result: res}
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				items[i].Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Convert decodes a document and stores the result.
func (s *Service) Convert(ctx context.Context, name string, r io.Reader) (*Conversion, error) {
	if s.conversions == nil {
		return nil, ErrStorageDisabled
	}
	res, err := s.Decode(ctx, name, r)
	if err != nil {
		return nil, err
	}
	c := res.Conversion()
	if err := s.conversions.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", c.ID.String()).Str("source", name).Msg("stored conversion")
	return c, nil
}

func (s *Service) GetConversion(ctx context.Context, id uuid.UUID) (*Conversion, error) {
	if s.conversions == nil {
		return nil, ErrStorageDisabled
	}
	return s.conversions.GetByID(ctx, id)
}

// ListConversions lists stored conversions, newest first, optionally only
// those in which template was encountered.
func (s *Service) ListConversions(ctx context.Context, template string, limit, offset int) ([]*Conversion, int, error) {
	if s.conversions == nil {
		return nil, 0, ErrStorageDisabled
	}
	if template == "" {
		return s.conversions.List(ctx, limit, offset)
	}
	if _, ok := templateid.ByName(template); !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}
	return s.conversions.ListByTemplate(ctx, template, limit, offset)
}
