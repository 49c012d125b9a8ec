package decode

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/qrda/converter/internal/domain/templateid"
)

// ErrRegistryFrozen is returned by Register once the registry is in use.
var ErrRegistryFrozen = errors.New("decode: registry is frozen")

// Registry maps templates to decoder factories. It is populated once at
// startup, validated and frozen; after that it is read-only and may be shared
// by any number of engines.
type Registry struct {
	factories map[templateid.TemplateID]Factory
	frozen    bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[templateid.TemplateID]Factory{}}
}

// Register associates a decoder factory with a catalog template. Several
// templates may share a factory.
func (r *Registry) Register(id templateid.TemplateID, f Factory) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	entry, ok := templateid.Lookup(id)
	if !ok {
		return fmt.Errorf("decode: %s is not a catalog template", id)
	}
	if entry.Kind == templateid.KindVersionTag {
		return fmt.Errorf("decode: %s is a version tag and takes no decoder", id)
	}
	if f == nil {
		return fmt.Errorf("decode: nil factory for %s", id)
	}
	if _, dup := r.factories[id]; dup {
		return fmt.Errorf("decode: %s registered twice", id)
	}
	r.factories[id] = f
	return nil
}

// Lookup returns the factory registered for id.
func (r *Registry) Lookup(id templateid.TemplateID) (Factory, bool) {
	f, ok := r.factories[id]
	return f, ok
}

// Validate checks that every catalog construct has a decoder.
func (r *Registry) Validate() error {
	missing := lo.FilterMap(templateid.All(), func(e templateid.Entry, _ int) (string, bool) {
		if e.Kind == templateid.KindVersionTag {
			return "", false
		}
		_, ok := r.factories[e.ID]
		return e.Name, !ok
	})
	if len(missing) > 0 {
		return fmt.Errorf("decode: no decoder registered for %s", strings.Join(missing, ", "))
	}
	return nil
}

// Freeze validates the registry and makes it read-only.
func (r *Registry) Freeze() error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.frozen = true
	return nil
}

// Frozen reports whether Freeze succeeded.
func (r *Registry) Frozen() bool {
	return r.frozen
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the frozen registry of built-in decoders. An
// inconsistent built-in registry is a programming error and panics on first
// use, which in practice is process start.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		if err := RegisterBuiltins(r); err != nil {
			panic(err)
		}
		if err := r.Freeze(); err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
