package decode

import (
	"fmt"

	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// Section values.
const (
	KeyCategory                = "category"
	KeyMeasureSectionExtension = "measureSectionExtension"
	KeyCategoryReport          = "categoryReport"
	KeyCategoryReportExtension = "categoryReportExtension"
)

// Reporting categories.
const (
	CategoryQuality = "quality"
	CategoryPI      = "pi"
	CategoryIA      = "ia"
)

type categorySectionDecoder struct{}

func (categorySectionDecoder) Decode(_ *xmltree.Element, n *node.Node, _ *Context) error {
	switch n.Type {
	case templateid.QualitySection:
		n.SetValue(KeyCategory, CategoryQuality)
	case templateid.PISection:
		n.SetValue(KeyCategory, CategoryPI)
	case templateid.IASection:
		n.SetValue(KeyCategory, CategoryIA)
	default:
		return fmt.Errorf("category section decoder cannot decode %s", n.Type)
	}
	return nil
}

// measureSectionDecoder records the measure section version and the category
// report version in force so an encoder can reproduce both exactly.
type measureSectionDecoder struct{}

func (measureSectionDecoder) Decode(el *xmltree.Element, n *node.Node, dc *Context) error {
	if ext, ok := templateExtension(el, templateid.RootMeasureSection); ok && ext != "" {
		n.SetValue(KeyMeasureSectionExtension, ext)
	}
	if tag, ok := dc.VersionTag(templateid.RootCategoryReport); ok {
		n.SetValue(KeyCategoryReport, tag.ID.String())
		n.SetValue(KeyCategoryReportExtension, tag.Extension)
	}
	return nil
}
