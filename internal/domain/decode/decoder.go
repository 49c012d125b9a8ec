// Package decode turns a QRDA Category III element tree into a node tree.
//
// Each supported template family has a Decoder. The Engine walks the element
// tree, resolves the templateId declarations found on every element, and hands
// each matched element to the decoders registered for it. Elements without a
// matched template are passed through: the engine keeps descending so nested
// constructs are still found.
package decode

import (
	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// Decoder fills n from el.
//
// The engine supplies a fresh node whose Type is the resolved template. When a
// decoder continues another element into its own node (Context.DecodeInto),
// the same Decode method receives that existing node instead.
//
// Decoders pull scalar values from el, and may decode el's children through
// Context.DecodeChildren to post-process them. Children they leave untouched
// are decoded by the engine afterwards and attached to the element's node.
// A decoder returns a *DecodeError only when required content is missing.
type Decoder interface {
	Decode(el *xmltree.Element, n *node.Node, dc *Context) error
}

// Factory creates the decoder for one element.
type Factory func() Decoder

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(el *xmltree.Element, n *node.Node, dc *Context) error

// Decode calls f.
func (f DecoderFunc) Decode(el *xmltree.Element, n *node.Node, dc *Context) error {
	return f(el, n, dc)
}
