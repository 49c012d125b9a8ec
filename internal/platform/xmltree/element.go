// Package xmltree provides a generic, namespace-aware XML element tree.
//
// It is the input collaborator of the QRDA decoding engine: documents are
// parsed once into an Element tree and the engine walks that tree. Malformed
// XML is rejected by Parse and never reaches the engine.
package xmltree

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Namespaces used by CDA/QRDA documents.
const (
	NamespaceHL7 = "urn:hl7-org:v3"
	NamespaceXSI = "http://www.w3.org/2001/XMLSchema-instance"
)

// Element is a single XML element with its attributes, character data and
// child elements in document order.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Text     string
	Children []*Element

	parent *Element
	// 1-based position among siblings sharing the same local name.
	index int
}

// Local returns the element's local name.
func (e *Element) Local() string {
	return e.Name.Local
}

// Parent returns the enclosing element, or nil for the document root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Attr returns the value of the attribute with the given local name. Attributes
// without a namespace are preferred over namespaced ones (so "type" finds
// type="..." before xsi:type="...").
func (e *Element) Attr(local string) (string, bool) {
	var (
		found string
		ok    bool
	)
	for _, a := range e.Attrs {
		if a.Name.Local != local {
			continue
		}
		if a.Name.Space == "" {
			return a.Value, true
		}
		if !ok {
			found, ok = a.Value, true
		}
	}
	return found, ok
}

// AttrNS returns the value of the attribute with the given namespace URI and
// local name.
func (e *Element) AttrNS(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Is reports whether the element has the given local name and belongs to the
// HL7 namespace (or to no namespace at all).
func (e *Element) Is(local string) bool {
	if e.Name.Local != local {
		return false
	}
	return e.Name.Space == "" || e.Name.Space == NamespaceHL7
}

// Child returns the first child element named local, or nil.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Is(local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child element named local in document order.
func (e *Element) ChildrenNamed(local string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Is(local) {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first element reached by following the slash-separated
// path of local names from e, e.g. "reference/externalDocument/id". Every
// branch is explored in document order, so the first match is the one that
// appears first in the source.
func (e *Element) Find(path string) *Element {
	all := e.FindAll(path)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns every element reached by following path from e.
func (e *Element) FindAll(path string) []*Element {
	steps := strings.Split(strings.Trim(path, "/"), "/")
	current := []*Element{e}
	for _, step := range steps {
		if step == "" {
			continue
		}
		var next []*Element
		for _, el := range current {
			next = append(next, el.ChildrenNamed(step)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Walk visits e and its descendants depth-first in document order. Returning
// false from fn skips the descendants of the element just visited.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Path returns a location string for diagnostics, for example
// "/ClinicalDocument/component[1]/structuredBody[1]/component[2]".
func (e *Element) Path() string {
	if e.parent == nil {
		return "/" + e.Name.Local
	}
	return e.parent.Path() + "/" + e.Name.Local + "[" + strconv.Itoa(e.index) + "]"
}

// AppendChild attaches c as the last child of e. It is used by Parse and by
// callers assembling trees programmatically.
func (e *Element) AppendChild(c *Element) {
	c.parent = e
	c.index = 1
	for _, sibling := range e.Children {
		if sibling.Name.Local == c.Name.Local {
			c.index++
		}
	}
	e.Children = append(e.Children, c)
}
