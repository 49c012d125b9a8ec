// Package node defines the normalized tree produced by the QRDA decoder.
//
// A Node is created by exactly one decoder and mutated only by that decoder
// and the child decodes it triggers. Once the engine hands a tree back to its
// caller the tree must be treated as read-only.
package node

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qrda/converter/internal/domain/templateid"
)

// Node is one element of the decoded tree.
type Node struct {
	Type templateid.TemplateID
	// Path locates the source element, for diagnostics.
	Path string

	values   map[string]string
	children []*Node
}

// New creates an empty node of the given type.
func New(t templateid.TemplateID) *Node {
	return &Node{Type: t, values: map[string]string{}}
}

// SetValue stores value under key, replacing any previous value.
func (n *Node) SetValue(key, value string) {
	if n.values == nil {
		n.values = map[string]string{}
	}
	n.values[key] = value
}

// Value returns the value stored under key. The boolean is false when the key
// was never set, which is distinct from a stored empty string.
func (n *Node) Value(key string) (string, bool) {
	v, ok := n.values[key]
	return v, ok
}

// ValueOrEmpty returns the value under key, or "" when the key was never set.
// Use Value when a missing key must be told apart from an empty value.
func (n *Node) ValueOrEmpty(key string) string {
	return n.values[key]
}

// HasValue reports whether key was set.
func (n *Node) HasValue(key string) bool {
	_, ok := n.values[key]
	return ok
}

// Keys returns the value keys in sorted order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.values))
	for k := range n.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of the node's values.
func (n *Node) Values() map[string]string {
	out := make(map[string]string, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// AddChild appends children in the given order. Nil entries are ignored.
func (n *Node) AddChild(children ...*Node) {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
}

// Children returns the node's children in document order. The returned slice
// must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Walk visits n and its descendants depth-first, pre-order. Returning false
// from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindFirstNode returns the first node of type t in document order, searching
// n itself and then its subtree depth-first. It returns nil when there is no
// such node.
func (n *Node) FindFirstNode(t templateid.TemplateID) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Type == t {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindNodes returns every node of type t in document order.
func (n *Node) FindNodes(t templateid.TemplateID) []*Node {
	var found []*Node
	n.Walk(func(c *Node) bool {
		if c.Type == t {
			found = append(found, c)
		}
		return true
	})
	return found
}

// Equal reports whether n and o have the same type, path, values and
// children, recursively.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Type != o.Type || n.Path != o.Path || len(n.values) != len(o.values) || len(n.children) != len(o.children) {
		return false
	}
	for k, v := range n.values {
		if ov, ok := o.values[k]; !ok || ov != v {
			return false
		}
	}
	for i := range n.children {
		if !n.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// String renders the subtree as an indented outline.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Type.String())
	for _, k := range n.Keys() {
		fmt.Fprintf(b, " %s=%q", k, n.values[k])
	}
	b.WriteByte('\n')
	for _, c := range n.children {
		c.write(b, depth+1)
	}
}
