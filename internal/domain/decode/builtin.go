package decode

import (
	"github.com/qrda/converter/internal/domain/templateid"
)

var builtins = map[templateid.TemplateID]Factory{
	templateid.ClinicalDocument:          func() Decoder { return clinicalDocumentDecoder{} },
	templateid.QualitySection:            func() Decoder { return categorySectionDecoder{} },
	templateid.PISection:                 func() Decoder { return categorySectionDecoder{} },
	templateid.IASection:                 func() Decoder { return categorySectionDecoder{} },
	templateid.MeasureSectionV4:          func() Decoder { return measureSectionDecoder{} },
	templateid.MeasureSectionV5:          func() Decoder { return measureSectionDecoder{} },
	templateid.ReportingParametersAct:    func() Decoder { return reportingParametersDecoder{} },
	templateid.MeasureReference:          func() Decoder { return measureReferenceDecoder{} },
	templateid.MeasureReferenceResults:   func() Decoder { return measureReferenceResultsDecoder{} },
	templateid.PIMeasureReferenceResults: func() Decoder { return measureReferenceResultsDecoder{} },
	templateid.IAMeasureReferenceResults: func() Decoder { return measureReferenceResultsDecoder{} },
	templateid.PerformanceRate:           func() Decoder { return performanceRateDecoder{} },
	templateid.PerformanceRateProportion: func() Decoder { return performanceRateProportionDecoder{} },
	templateid.MeasureData:               func() Decoder { return measureDataDecoder{} },
	templateid.AggregateCount:            func() Decoder { return aggregateCountDecoder{} },
	templateid.PINumerator:               func() Decoder { return piCountDecoder{} },
	templateid.PIDenominator:             func() Decoder { return piCountDecoder{} },
	templateid.IAMeasurePerformed:        func() Decoder { return iaMeasurePerformedDecoder{} },
}

// RegisterBuiltins registers the built-in decoders in catalog order.
func RegisterBuiltins(r *Registry) error {
	for _, e := range templateid.All() {
		f, ok := builtins[e.ID]
		if !ok {
			continue
		}
		if err := r.Register(e.ID, f); err != nil {
			return err
		}
	}
	return nil
}
