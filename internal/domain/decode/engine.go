package decode

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// ErrNilElement is returned by Decode when given no element.
var ErrNilElement = errors.New("decode: nil root element")

// Engine decodes element trees into node trees. An Engine runs one document
// at a time; decode documents concurrently with one Engine per goroutine over
// a shared frozen Registry.
type Engine struct {
	registry *Registry
	lenient  bool
	logger   zerolog.Logger
	last     *Context
}

// Option configures an Engine.
type Option func(*Engine)

// WithLenient controls whether an extension that cannot be placed among the
// known versions of a recognized root falls back to the newest version
// (true, the default) or leaves the template unmatched.
func WithLenient(lenient bool) Option {
	return func(e *Engine) { e.lenient = lenient }
}

// WithLogger sets the logger used for dispatch and failure events.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine over reg, or over DefaultRegistry when reg is nil.
// The registry must be frozen; passing one that is not is a programming
// error and panics.
func New(reg *Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if !reg.Frozen() {
		panic("decode: engine requires a frozen registry")
	}
	e := &Engine{registry: reg, lenient: true, logger: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Decode decodes the tree rooted at root. A document with exactly one
// top-level construct returns that construct's node; otherwise the nodes are
// wrapped in a Default node. Decoder failures do not fail the call: they are
// available from Diagnostics and Err once Decode returns.
func (e *Engine) Decode(root *xmltree.Element) (*node.Node, error) {
	if root == nil {
		return nil, ErrNilElement
	}

	dc := newContext(e.registry, e.lenient, e.logger)
	e.last = dc

	nodes := dc.decodeElement(root, nil)

	e.logger.Debug().
		Int("top_level", len(nodes)).
		Int("diagnostics", len(dc.diagnostics)).
		Int("failures", len(dc.failures)).
		Msg("decode complete")

	if len(nodes) == 1 {
		return nodes[0], nil
	}
	wrapper := node.New(templateid.Default)
	wrapper.Path = root.Path()
	wrapper.AddChild(nodes...)
	return wrapper, nil
}

// Context returns the context of the most recent Decode call, or nil.
func (e *Engine) Context() *Context {
	return e.last
}

// Diagnostics returns the diagnostics of the most recent Decode call.
func (e *Engine) Diagnostics() []Diagnostic {
	if e.last == nil {
		return nil
	}
	return e.last.Diagnostics()
}

// Encountered returns the templates resolved by the most recent Decode call.
func (e *Engine) Encountered() []templateid.TemplateID {
	if e.last == nil {
		return nil
	}
	return e.last.Encountered()
}

// Err returns the joined decoder failures of the most recent Decode call.
func (e *Engine) Err() error {
	if e.last == nil {
		return nil
	}
	return e.last.Err()
}

// decodeElement decodes el and its subtree. With a nil target every matched
// construct gets a new node and those nodes are returned. With a target the
// matched decoders all write into it and nothing is returned for el itself.
func (c *Context) decodeElement(el *xmltree.Element, target *node.Node) []*node.Node {
	if c.visited[el] {
		return nil
	}
	c.visited[el] = true

	constructs, tags := c.resolveTemplates(el)
	c.push(tags)
	defer c.pop()

	if len(constructs) == 0 {
		return c.DecodeChildren(el)
	}

	var (
		produced  []*node.Node
		owner     *node.Node
		container *node.Node
		specific  bool
	)
	for _, id := range constructs {
		kind := id.Kind()
		if kind == templateid.KindConstruct {
			specific = true
		}

		n := target
		if n == nil {
			n = node.New(id)
			n.Path = el.Path()
		}
		if err := c.invoke(id, el, n); err != nil {
			c.fail(id, el, err)
			continue
		}
		if target != nil {
			continue
		}
		produced = append(produced, n)
		switch {
		case kind == templateid.KindConstruct && owner == nil:
			owner = n
		case kind == templateid.KindContainer && container == nil:
			container = n
		}
	}

	// A container holds the other nodes of its element.
	if container != nil && len(produced) > 1 {
		container.AddChild(lo.Without(produced, container)...)
		produced = []*node.Node{container}
	}

	// Generic templates hand the subtree to a specific template declared on
	// the same element, and keep it only when they are alone.
	switch {
	case target != nil:
		owner = target
	case owner == nil && container != nil:
		owner = container
	case owner == nil && !specific && len(produced) > 0:
		owner = produced[0]
	}

	// Every specific decoder failed: the children still decode and attach
	// to the nearest surviving ancestor.
	if owner == nil {
		return append(produced, c.DecodeChildren(el)...)
	}

	owner.AddChild(c.DecodeChildren(el)...)
	return produced
}

// resolveTemplates resolves every templateId declared on el.
func (c *Context) resolveTemplates(el *xmltree.Element) ([]templateid.TemplateID, []VersionTag) {
	var (
		constructs []templateid.TemplateID
		tags       []VersionTag
	)
	for _, decl := range el.ChildrenNamed("templateId") {
		root, _ := decl.Attr("root")
		if root == "" {
			continue
		}
		extension, _ := decl.Attr("extension")

		id, ok := c.accept(templateid.Resolve(root, extension), el)
		if !ok {
			continue
		}
		c.encounter(id)

		if id.Kind() == templateid.KindVersionTag {
			tags = append(tags, VersionTag{ID: id, Extension: extension, Path: el.Path()})
			continue
		}
		if !slices.Contains(constructs, id) {
			constructs = append(constructs, id)
		}
	}
	return constructs, tags
}

// accept applies the run's version policy to a resolution and records
// diagnostics for anything short of an exact or default match.
func (c *Context) accept(res templateid.Resolution, el *xmltree.Element) (templateid.TemplateID, bool) {
	d := Diagnostic{Root: res.Root, Extension: res.Extension, Path: el.Path()}

	switch res.Match {
	case templateid.MatchExact, templateid.MatchDefault:
		return res.ID, true

	case templateid.MatchForward, templateid.MatchFloor:
		d.Code, d.Template = CodeVersionFallback, res.ID
		d.Message = fmt.Sprintf("extension %q resolved to %s (%s)", res.Extension, res.ID, res.Match)
		c.record(d)
		return res.ID, true

	case templateid.MatchUnknownExtension:
		if c.lenient {
			d.Code, d.Template = CodeVersionFallback, res.Latest
			d.Message = fmt.Sprintf("extension %q is not a known version, using %s", res.Extension, res.Latest)
			c.record(d)
			return res.Latest, true
		}
		d.Code, d.Template = CodeUnresolvedTemplate, templateid.Unmatched
		d.Message = fmt.Sprintf("extension %q is not a known version of root %s", res.Extension, res.Root)
		c.record(d)
		c.logger.Warn().Str("root", res.Root).Str("extension", res.Extension).Str("path", d.Path).Msg("unknown template version")
		return templateid.Unmatched, false

	default:
		d.Code, d.Template = CodeUnresolvedTemplate, templateid.Unmatched
		d.Message = "template root is not recognized"
		c.record(d)
		c.logger.Debug().Str("root", res.Root).Str("path", d.Path).Msg("unresolved template")
		return templateid.Unmatched, false
	}
}

func (c *Context) invoke(id templateid.TemplateID, el *xmltree.Element, n *node.Node) (err error) {
	f, ok := c.registry.Lookup(id)
	if !ok {
		return &DecodeError{Template: id, Path: el.Path(), Message: "no decoder registered"}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &DecodeError{Template: id, Path: el.Path(), Message: fmt.Sprintf("decoder panic: %v", r)}
		}
	}()

	c.logger.Debug().Str("template", id.String()).Str("path", el.Path()).Msg("dispatch")
	return f().Decode(el, n, c)
}

func (c *Context) fail(id templateid.TemplateID, el *xmltree.Element, err error) {
	var de *DecodeError
	if !errors.As(err, &de) {
		de = &DecodeError{Template: id, Path: el.Path(), Message: err.Error()}
	}
	c.failures = append(c.failures, de)
	c.record(Diagnostic{
		Code:     CodeDecodeFailure,
		Template: id,
		Path:     el.Path(),
		Message:  de.Error(),
		Err:      de,
	})
	c.logger.Warn().Err(de).Str("template", id.String()).Str("path", el.Path()).Msg("decode failure")
}
