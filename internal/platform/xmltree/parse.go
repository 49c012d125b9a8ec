package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmpty is returned when the input holds no XML at all.
var ErrEmpty = errors.New("xmltree: XML data is empty")

// Parse reads a complete, well-formed XML document from r and returns its root
// element. Any syntax error (unterminated tags, mismatched end tags, stray
// content after the root) is returned as an error; no partial tree is
// produced.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root  *Element
		stack []*Element
		text  []*strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("xmltree: failed to parse XML: multiple root elements")
			}
			el := &Element{
				Name:  t.Name,
				Attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				root = el
			} else {
				stack[len(stack)-1].AppendChild(el)
			}
			stack = append(stack, el)
			text = append(text, &strings.Builder{})

		case xml.EndElement:
			el := stack[len(stack)-1]
			el.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("xmltree: failed to parse XML: character data outside root element")
				}
				continue
			}
			text[len(text)-1].Write(t)
		}
	}

	if len(stack) != 0 {
		return nil, fmt.Errorf("xmltree: failed to parse XML: unterminated element <%s>", stack[len(stack)-1].Name.Local)
	}
	if root == nil {
		return nil, ErrEmpty
	}
	return root, nil
}

// ParseBytes parses an in-memory XML document.
func ParseBytes(data []byte) (*Element, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	return Parse(bytes.NewReader(data))
}

// ParseString parses an XML document held in a string.
func ParseString(s string) (*Element, error) {
	return ParseBytes([]byte(s))
}
