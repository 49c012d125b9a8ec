package decode

import (
	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// Measure values.
const (
	KeyMeasureReference = "measureReference"
	KeyMeasureID        = "measureId"
	KeyMeasureTitle     = "measureTitle"
	KeyPerformanceRate  = "performanceRate"
	KeyRate             = "rate"
	KeyNullFlavor       = "nullFlavor"
	KeyNumeratorUUID    = "numeratorUuid"
	KeyMeasureType      = "measureType"
	KeyPopulationID     = "populationId"
	KeyAggregateCount   = "aggregateCount"
	KeyCountType        = "countType"
	KeyMeasurePerformed = "measurePerformed"
)

const numeratorCode = "NUMER"

const externalDocumentID = "reference/externalDocument/id"

type measureReferenceDecoder struct{}

func (measureReferenceDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	if !setAttr(n, KeyMeasureReference, el, externalDocumentID, "extension") {
		setAttr(n, KeyMeasureReference, el, externalDocumentID, "root")
	}
	return nil
}

type measureReferenceResultsDecoder struct{}

func (measureReferenceResultsDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	if err := requireAttr(n, KeyMeasureID, el, externalDocumentID, "extension"); err != nil {
		return err
	}
	if doc := el.Find("reference/externalDocument/text"); doc != nil && doc.Text != "" {
		n.SetValue(KeyMeasureTitle, doc.Text)
	}
	return nil
}

type performanceRateDecoder struct{}

func (performanceRateDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	setAttr(n, KeyPerformanceRate, el, "value", "value")
	return nil
}

// performanceRateProportionDecoder reads the rate, which may be withheld with
// a nullFlavor, and the numerator population it was computed from.
type performanceRateProportionDecoder struct{}

func (performanceRateProportionDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	if !setAttr(n, KeyRate, el, "value", "value") && !setAttr(n, KeyNullFlavor, el, "value", "nullFlavor") {
		return missing(n, el, "value/@value")
	}
	for _, ref := range el.FindAll("reference/externalObservation") {
		if code, _ := attrAt(ref, "code", "code"); code != numeratorCode {
			continue
		}
		if setAttr(n, KeyNumeratorUUID, ref, "id", "root") {
			break
		}
	}
	return nil
}

type measureDataDecoder struct{}

func (measureDataDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	if err := requireAttr(n, KeyMeasureType, el, "value", "code"); err != nil {
		return err
	}
	setAttr(n, KeyPopulationID, el, "reference/externalObservation/id", "root")
	return nil
}

type aggregateCountDecoder struct{}

func (aggregateCountDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	return requireAttr(n, KeyAggregateCount, el, "value", "value")
}

type piCountDecoder struct{}

func (piCountDecoder) Decode(_ *xmltree.Element, n *node.Node, _ *Context) error {
	if n.Type == templateid.PINumerator {
		n.SetValue(KeyCountType, "numerator")
	} else {
		n.SetValue(KeyCountType, "denominator")
	}
	return nil
}

type iaMeasurePerformedDecoder struct{}

func (iaMeasurePerformedDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	setAttr(n, KeyMeasurePerformed, el, "value", "code")
	return nil
}
