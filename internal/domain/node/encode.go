package node

import (
	json "github.com/goccy/go-json"

	"github.com/qrda/converter/internal/domain/templateid"
)

type wireNode struct {
	Type     templateid.TemplateID `json:"type" yaml:"type"`
	Path     string                `json:"path,omitempty" yaml:"path,omitempty"`
	Values   map[string]string     `json:"values,omitempty" yaml:"values,omitempty"`
	Children []*Node               `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n *Node) wire() wireNode {
	w := wireNode{Type: n.Type, Path: n.Path, Children: n.children}
	if len(n.values) > 0 {
		w.Values = n.values
	}
	return w
}

// MarshalJSON encodes the node as {"type", "path", "values", "children"}.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.wire())
}

// UnmarshalJSON restores a node encoded by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n.Type = w.Type
	n.Path = w.Path
	n.values = w.Values
	if n.values == nil {
		n.values = map[string]string{}
	}
	n.children = w.Children
	return nil
}

// MarshalYAML encodes the node with the same shape as MarshalJSON.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.wire(), nil
}
