// Package templateid holds the closed catalog of QRDA Category III template
// identifiers recognized by the decoder, and the rules that map a
// (root, extension) pair found on a document element to one of them.
package templateid

import (
	"fmt"
)

// TemplateID identifies a recognized document construct at a specific
// version. The zero value is Unmatched.
type TemplateID int

const (
	Unmatched TemplateID = iota
	// Default marks synthetic nodes that no template produced, such as the
	// wrapper returned when a document has several top-level constructs.
	Default

	ClinicalDocument
	CategoryReportV4
	CategoryReportV5
	QualitySection
	MeasureSectionV4
	MeasureSectionV5
	PISection
	IASection
	ReportingParametersAct
	MeasureReference
	MeasureReferenceResults
	PerformanceRate
	PerformanceRateProportion
	MeasureData
	AggregateCount
	PIMeasureReferenceResults
	PINumerator
	PIDenominator
	IAMeasureReferenceResults
	IAMeasurePerformed

	numTemplateIDs
)

// Kind classifies how the engine treats a catalog entry.
type Kind int

const (
	// KindConstruct entries produce a node and own the element's children.
	KindConstruct Kind = iota
	// KindGeneric entries produce a node but leave the element's children to
	// the more specific template declared alongside them.
	KindGeneric
	// KindVersionTag entries produce no node; they mark the report version in
	// force for the element and its descendants.
	KindVersionTag
	// KindContainer entries produce a node that holds the nodes of every
	// other template declared on the same element. The element's children
	// stay with the specific template, or with the container when it is
	// alone.
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindConstruct:
		return "construct"
	case KindGeneric:
		return "generic"
	case KindVersionTag:
		return "version_tag"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Entry is one row of the catalog.
type Entry struct {
	ID        TemplateID
	Name      string
	Root      string
	Extension string // empty for the default entry of a root
	Rank      int    // higher is newer among entries sharing a root
	Kind      Kind
}

var names = map[TemplateID]string{
	Unmatched: "UNMATCHED",
	Default:   "DEFAULT",
}

// String returns the stable wire name, e.g. "MEASURE_SECTION_V5".
func (id TemplateID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("TemplateID(%d)", int(id))
}

// Root returns the OID root of a catalog entry, or "" for markers.
func (id TemplateID) Root() string {
	return byID[id].Root
}

// Extension returns the version extension of a catalog entry.
func (id TemplateID) Extension() string {
	return byID[id].Extension
}

// Kind returns the entry kind. Markers report KindConstruct.
func (id TemplateID) Kind() Kind {
	return byID[id].Kind
}

// InCatalog reports whether id is a catalog entry rather than a marker.
func (id TemplateID) InCatalog() bool {
	_, ok := byID[id]
	return ok
}

// MarshalText renders the wire name.
func (id TemplateID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a wire name produced by MarshalText.
func (id *TemplateID) UnmarshalText(text []byte) error {
	parsed, ok := ByName(string(text))
	if !ok {
		return fmt.Errorf("templateid: unknown template %q", string(text))
	}
	*id = parsed
	return nil
}

// ByName looks a template up by wire name.
func ByName(name string) (TemplateID, bool) {
	for id, n := range names {
		if n == name {
			return id, true
		}
	}
	return Unmatched, false
}
