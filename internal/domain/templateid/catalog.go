package templateid

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// OID roots of the QRDA Category III templates in the catalog.
const (
	RootClinicalDocument          = "2.16.840.1.113883.10.20.27.1.2"
	RootCategoryReport            = "2.16.840.1.113883.10.20.27.1.1"
	RootQualitySection            = "2.16.840.1.113883.10.20.27.2.1"
	RootMeasureSection            = "2.16.840.1.113883.10.20.27.2.3"
	RootIASection                 = "2.16.840.1.113883.10.20.27.2.4"
	RootPISection                 = "2.16.840.1.113883.10.20.27.2.5"
	RootReportingParametersAct    = "2.16.840.1.113883.10.20.27.3.23"
	RootMeasureReference          = "2.16.840.1.113883.10.20.24.3.98"
	RootMeasureReferenceResults   = "2.16.840.1.113883.10.20.27.3.17"
	RootPerformanceRate           = "2.16.840.1.113883.10.20.27.3.30"
	RootPerformanceRateProportion = "2.16.840.1.113883.10.20.27.3.25"
	RootMeasureData               = "2.16.840.1.113883.10.20.27.3.16"
	RootAggregateCount            = "2.16.840.1.113883.10.20.27.3.3"
	RootPIMeasureReferenceResults = "2.16.840.1.113883.10.20.27.3.28"
	RootPINumerator               = "2.16.840.1.113883.10.20.27.3.31"
	RootPIDenominator             = "2.16.840.1.113883.10.20.27.3.32"
	RootIAMeasureReferenceResults = "2.16.840.1.113883.10.20.27.3.33"
	RootIAMeasurePerformed        = "2.16.840.1.113883.10.20.27.3.27"
)

var catalog = []Entry{
	{ClinicalDocument, "CLINICAL_DOCUMENT", RootClinicalDocument, "2017-07-01", 1, KindConstruct},
	{CategoryReportV4, "CATEGORY_REPORT_V4", RootCategoryReport, "2016-09-01", 1, KindVersionTag},
	{CategoryReportV5, "CATEGORY_REPORT_V5", RootCategoryReport, "2017-06-01", 2, KindVersionTag},
	{QualitySection, "QUALITY_SECTION", RootQualitySection, "", 0, KindContainer},
	{MeasureSectionV4, "MEASURE_SECTION_V4", RootMeasureSection, "2016-11-01", 1, KindConstruct},
	{MeasureSectionV5, "MEASURE_SECTION_V5", RootMeasureSection, "2017-06-01", 2, KindConstruct},
	{PISection, "PI_SECTION", RootPISection, "2017-06-01", 1, KindConstruct},
	{IASection, "IA_SECTION", RootIASection, "2017-06-01", 1, KindConstruct},
	{ReportingParametersAct, "REPORTING_PARAMETERS_ACT", RootReportingParametersAct, "2016-11-01", 1, KindConstruct},
	{MeasureReference, "MEASURE_REFERENCE", RootMeasureReference, "", 0, KindGeneric},
	{MeasureReferenceResults, "MEASURE_REFERENCE_RESULTS", RootMeasureReferenceResults, "2016-11-01", 1, KindConstruct},
	{PerformanceRate, "PERFORMANCE_RATE", RootPerformanceRate, "2016-09-01", 1, KindGeneric},
	{PerformanceRateProportion, "PERFORMANCE_RATE_PROPORTION_MEASURE", RootPerformanceRateProportion, "2016-11-01", 1, KindConstruct},
	{MeasureData, "MEASURE_DATA", RootMeasureData, "2016-11-01", 1, KindConstruct},
	{AggregateCount, "AGGREGATE_COUNT", RootAggregateCount, "", 0, KindConstruct},
	{PIMeasureReferenceResults, "PI_MEASURE_REFERENCE_RESULTS", RootPIMeasureReferenceResults, "2017-06-01", 1, KindConstruct},
	{PINumerator, "PI_NUMERATOR", RootPINumerator, "2016-09-01", 1, KindConstruct},
	{PIDenominator, "PI_DENOMINATOR", RootPIDenominator, "2016-09-01", 1, KindConstruct},
	{IAMeasureReferenceResults, "IA_MEASURE_REFERENCE_RESULTS", RootIAMeasureReferenceResults, "2017-06-01", 1, KindConstruct},
	{IAMeasurePerformed, "IA_MEASURE_PERFORMED", RootIAMeasurePerformed, "2017-06-01", 1, KindConstruct},
}

type key struct {
	root      string
	extension string
}

var (
	byID  = map[TemplateID]Entry{}
	byKey = map[key]TemplateID{}
	// entries per root, ordered by ascending rank
	byRoot = map[string][]Entry{}
)

func init() {
	for _, e := range catalog {
		names[e.ID] = e.Name
		byID[e.ID] = e
		byKey[key{e.Root, e.Extension}] = e.ID
	}
	byRoot = lo.GroupBy(catalog, func(e Entry) string { return e.Root })
	for root := range byRoot {
		slices.SortFunc(byRoot[root], func(a, b Entry) int { return cmp.Compare(a.Rank, b.Rank) })
	}
}

// All returns every catalog entry in declaration order.
func All() []Entry {
	return slices.Clone(catalog)
}

// Lookup returns the catalog entry for id.
func Lookup(id TemplateID) (Entry, bool) {
	e, ok := byID[id]
	return e, ok
}

// Versions returns the entries sharing root, oldest first.
func Versions(root string) []Entry {
	return slices.Clone(byRoot[root])
}

// Latest returns the highest-ranked entry for root.
func Latest(root string) (TemplateID, bool) {
	entries := byRoot[root]
	if len(entries) == 0 {
		return Unmatched, false
	}
	return entries[len(entries)-1].ID, true
}
