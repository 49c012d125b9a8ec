package conversion

import (
	"time"

	"github.com/google/uuid"

	"github.com/qrda/converter/internal/domain/decode"
	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
)

// Conversion maps to the qrda_conversion table: one decoded document.
type Conversion struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	SourceName   string              `db:"source_name" json:"source_name"`
	RootType     string              `db:"root_type" json:"root_type"`
	Tree         *node.Node          `db:"tree" json:"tree"`
	Diagnostics  []decode.Diagnostic `db:"diagnostics" json:"diagnostics"`
	FailureCount int                 `db:"failure_count" json:"failure_count"`
	Templates    []string            `db:"templates" json:"templates"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
}

// Result is the outcome of decoding one document.
type Result struct {
	SourceName  string              `json:"source_name"`
	Tree        *node.Node          `json:"tree"`
	Diagnostics []decode.Diagnostic `json:"diagnostics"`
	Templates   []string            `json:"templates"`
	Summary     map[string]int      `json:"summary"`
	Failures    []string            `json:"failures,omitempty"`
}

// Conversion returns the storable form of r.
func (r *Result) Conversion() *Conversion {
	return &Conversion{
		SourceName:   r.SourceName,
		RootType:     r.Tree.Type.String(),
		Tree:         r.Tree,
		Diagnostics:  r.Diagnostics,
		FailureCount: len(r.Failures),
		Templates:    r.Templates,
	}
}

// Summarize counts the nodes of each template type in tree.
func Summarize(tree *node.Node) map[string]int {
	counts := map[string]int{}
	tree.Walk(func(n *node.Node) bool {
		if n.Type != templateid.Default {
			counts[n.Type.String()]++
		}
		return true
	})
	return counts
}

// Source is a named document awaiting decoding.
type Source struct {
	Name string
	Data []byte
}

// BatchItem is the outcome for one Source of a batch.
type BatchItem struct {
	Name   string  `json:"name"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}
