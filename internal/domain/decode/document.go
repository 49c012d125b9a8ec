package decode

import (
	"strings"

	"github.com/qrda/converter/internal/domain/node"
	"github.com/qrda/converter/internal/domain/templateid"
	"github.com/qrda/converter/internal/platform/xmltree"
)

// Values set on CLINICAL_DOCUMENT nodes.
const (
	KeyProgramName                  = "programName"
	KeyEntityType                   = "entityType"
	KeyNationalProviderIdentifier   = "nationalProviderIdentifier"
	KeyTaxpayerIdentificationNumber = "taxpayerIdentificationNumber"
	KeyPerformanceStart             = "performanceStart"
	KeyPerformanceEnd               = "performanceEnd"
)

const (
	oidProgramName = "2.16.840.1.113883.3.249.7"
	oidNPI         = "2.16.840.1.113883.4.6"
	oidTIN         = "2.16.840.1.113883.4.2"
)

type clinicalDocumentDecoder struct{}

func (clinicalDocumentDecoder) Decode(el *xmltree.Element, n *node.Node, dc *Context) error {
	if program, ok := idWithRoot(el, "informationRecipient/intendedRecipient/id", oidProgramName); ok {
		name, entity := programDetails(program)
		n.SetValue(KeyProgramName, name)
		if entity != "" {
			n.SetValue(KeyEntityType, entity)
		}
	}

	performer := "documentationOf/serviceEvent/performer/assignedEntity"
	if npi, ok := idWithRoot(el, performer+"/id", oidNPI); ok {
		n.SetValue(KeyNationalProviderIdentifier, npi)
	}
	if tin, ok := idWithRoot(el, performer+"/representedOrganization/id", oidTIN); ok {
		n.SetValue(KeyTaxpayerIdentificationNumber, tin)
	}

	// The reporting period belongs to the document, not to a section.
	if act := findTemplated(el, templateid.RootReportingParametersAct); act != nil {
		dc.DecodeInto(act, n)
	}
	return nil
}

// programDetails maps an intended recipient program code to the program name
// and the entity type it implies.
func programDetails(code string) (program, entity string) {
	switch strings.ToUpper(code) {
	case "MIPS_INDIV":
		return "mips", "individual"
	case "MIPS_GROUP":
		return "mips", "group"
	case "MIPS_VIRTUALGROUP":
		return "mips", "virtualGroup"
	case "MIPS_APMENTITY":
		return "mips", "apm"
	case "CPCPLUS":
		return "cpcPlus", "group"
	default:
		return strings.ToLower(code), ""
	}
}

type reportingParametersDecoder struct{}

func (reportingParametersDecoder) Decode(el *xmltree.Element, n *node.Node, _ *Context) error {
	if low, ok := attrAt(el, "effectiveTime/low", "value"); ok {
		n.SetValue(KeyPerformanceStart, formatDate(low))
	}
	if high, ok := attrAt(el, "effectiveTime/high", "value"); ok {
		n.SetValue(KeyPerformanceEnd, formatDate(high))
	}
	return nil
}
