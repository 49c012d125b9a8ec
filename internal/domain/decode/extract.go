package decode

import (
	"strings"

	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// attrAt returns attribute name of the first element reached by path from
// el. An empty path reads el itself.
func attrAt(el *xmltree.Element, path, name string) (string, bool) {
	target := el
	if path != "" {
		target = el.Find(path)
	}
	if target == nil {
		return "", false
	}
	v, ok := target.Attr(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// setAttr copies an optional attribute into n under key.
func setAttr(n *node.Node, key string, el *xmltree.Element, path, name string) bool {
	v, ok := attrAt(el, path, name)
	if ok {
		n.SetValue(key, v)
	}
	return ok
}

// requireAttr copies a required attribute into n, or reports it missing.
func requireAttr(n *node.Node, key string, el *xmltree.Element, path, name string) error {
	if setAttr(n, key, el, path, name) {
		return nil
	}
	return missing(n, el, path+"/@"+name)
}

func missing(n *node.Node, el *xmltree.Element, field string) error {
	return &DecodeError{
		Template: n.Type,
		Path:     el.Path(),
		Field:    strings.TrimPrefix(field, "/"),
		Message:  "required value is missing",
	}
}

// templateExtension returns the extension of the templateId with the given
// root declared on el.
func templateExtension(el *xmltree.Element, root string) (string, bool) {
	for _, decl := range el.ChildrenNamed("templateId") {
		if r, _ := decl.Attr("root"); r == root {
			ext, _ := decl.Attr("extension")
			return ext, true
		}
	}
	return "", false
}

// findTemplated returns the first descendant of el declaring a templateId
// with the given root.
func findTemplated(el *xmltree.Element, root string) *xmltree.Element {
	var found *xmltree.Element
	for _, child := range el.Children {
		child.Walk(func(e *xmltree.Element) bool {
			if found != nil {
				return false
			}
			if _, ok := templateExtension(e, root); ok {
				found = e
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// idWithRoot returns the extension of the first id element reached by path
// whose root matches.
func idWithRoot(el *xmltree.Element, path, root string) (string, bool) {
	for _, id := range el.FindAll(path) {
		if r, _ := id.Attr("root"); r != root {
			continue
		}
		if ext, ok := id.Attr("extension"); ok && strings.TrimSpace(ext) != "" {
			return strings.TrimSpace(ext), true
		}
	}
	return "", false
}

// formatDate turns an HL7 timestamp (YYYYMMDD...) into YYYY-MM-DD.
func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 8 {
		return s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	return s
}
