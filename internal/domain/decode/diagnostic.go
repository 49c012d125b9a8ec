package decode

import (
	"fmt"

	"github.com/qrda/converter/internal/domain/templateid"
)

// Diagnostic codes recorded during a decode run.
const (
	CodeUnresolvedTemplate = "unresolved_template"
	CodeVersionFallback    = "version_fallback"
	CodeDecodeFailure      = "decode_failure"
)

// Diagnostic is one observation recorded while decoding a document. It never
// aborts the run; callers decide what to do with them afterwards.
type Diagnostic struct {
	Code      string                `json:"code" yaml:"code"`
	Template  templateid.TemplateID `json:"template" yaml:"template"`
	Root      string                `json:"root,omitempty" yaml:"root,omitempty"`
	Extension string                `json:"extension,omitempty" yaml:"extension,omitempty"`
	Path      string                `json:"path" yaml:"path"`
	Message   string                `json:"message" yaml:"message"`
	Err       error                 `json:"-" yaml:"-"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Code, d.Path, d.Message)
}

// DecodeError reports that a matched element lacks content required to build
// a valid node.
type DecodeError struct {
	Template templateid.TemplateID
	Path     string
	Field    string
	Message  string
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s at %s: %s: %s", e.Template, e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("decode %s at %s: %s", e.Template, e.Path, e.Message)
}
