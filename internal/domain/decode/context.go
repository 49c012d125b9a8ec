package decode

import (
	"errors"
	"slices"

	"github.com/rs/zerolog"

	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// VersionTag is a version marker found on an element or one of its
// ancestors, with the extension exactly as written in the source.
type VersionTag struct {
	ID        templateid.TemplateID
	Extension string
	Path      string
}

// Context is the state of a single decode run. It is created by the engine
// for each Decode call, threaded through every decoder and discarded when
// the run ends. It is not safe for concurrent use.
type Context struct {
	registry *Registry
	lenient  bool
	logger   zerolog.Logger

	diagnostics []Diagnostic
	failures    []error
	encountered []templateid.TemplateID
	seen        map[templateid.TemplateID]bool
	visited     map[*xmltree.Element]bool
	// version tags of the elements currently being decoded, outermost first
	scope [][]VersionTag
}

func newContext(reg *Registry, lenient bool, logger zerolog.Logger) *Context {
	return &Context{
		registry: reg,
		lenient:  lenient,
		logger:   logger,
		seen:     map[templateid.TemplateID]bool{},
		visited:  map[*xmltree.Element]bool{},
	}
}

// Lenient reports whether unplaceable extensions on known roots fall back to
// the newest known version.
func (c *Context) Lenient() bool {
	return c.lenient
}

// Logger returns the run logger.
func (c *Context) Logger() *zerolog.Logger {
	return &c.logger
}

// DecodeChildren decodes each child element of el in document order and
// returns the resulting nodes. Elements already decoded in this run are
// skipped, so children claimed here are not decoded again by the engine.
func (c *Context) DecodeChildren(el *xmltree.Element) []*node.Node {
	var out []*node.Node
	for _, child := range el.Children {
		out = append(out, c.decodeElement(child, nil)...)
	}
	return out
}

// DecodeInto runs the decoders matched on el against n instead of creating
// new nodes, so a decoder can fold a related element into its own node. The
// children of el are decoded and attached to n. It reports false if el was
// already decoded in this run.
//
// Nodes for constructs nested under el are appended to n when DecodeInto is
// called, so they can land ahead of nodes for elements that precede el in
// the document. A decoder that fails on el may leave partial values on n;
// the failure is recorded as a DecodeError and n is kept.
func (c *Context) DecodeInto(el *xmltree.Element, n *node.Node) bool {
	if c.visited[el] {
		return false
	}
	n.AddChild(c.decodeElement(el, n)...)
	return true
}

// VersionTag returns the innermost version tag with the given root in force
// for the element being decoded.
func (c *Context) VersionTag(root string) (VersionTag, bool) {
	for i := len(c.scope) - 1; i >= 0; i-- {
		frame := c.scope[i]
		for j := len(frame) - 1; j >= 0; j-- {
			if frame[j].ID.Root() == root {
				return frame[j], true
			}
		}
	}
	return VersionTag{}, false
}

// Diagnostics returns the diagnostics recorded so far.
func (c *Context) Diagnostics() []Diagnostic {
	return slices.Clone(c.diagnostics)
}

// Encountered returns every template resolved during the run, in order of
// first appearance.
func (c *Context) Encountered() []templateid.TemplateID {
	return slices.Clone(c.encountered)
}

// Err joins the decoder failures of the run, or returns nil.
func (c *Context) Err() error {
	return errors.Join(c.failures...)
}

func (c *Context) encounter(id templateid.TemplateID) {
	if !c.seen[id] {
		c.seen[id] = true
		c.encountered = append(c.encountered, id)
	}
}

func (c *Context) record(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

func (c *Context) push(tags []VersionTag) {
	c.scope = append(c.scope, tags)
}

func (c *Context) pop() {
	c.scope = c.scope[:len(c.scope)-1]
}
