package analytics

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules holds the business-rule string sets that drive classification.
// The dashboard components historically duplicated these lists inline with
// small drifts between copies; they live here once, and deployments can
// override individual lists through a YAML file (RULES_FILE).
//
// All membership checks compare normalized (trimmed, lowercased) forms.
type Rules struct {
	// SalesWrapUps are the wrap-up variants that tag a sales interaction
	SalesWrapUps []string `yaml:"sales_wrap_ups"`

	// NonSalesWrapUps force a ticket into the non-sales partition even
	// when its traffic field says "Sales"
	NonSalesWrapUps []string `yaml:"non_sales_wrap_ups"`

	// ExcludedWrapUps remove a ticket from every handling-time and
	// response-time computation. Sales/non-sales totals are unaffected.
	ExcludedWrapUps []string `yaml:"excluded_wrap_ups"`

	// NonQuotationRemarks route handling time into the non-quotation bucket
	NonQuotationRemarks []string `yaml:"non_quotation_remarks"`

	// QuotationRemarks route handling time into the quotation bucket
	QuotationRemarks []string `yaml:"quotation_remarks"`

	// SPFSubstring routes handling time into the SPF bucket when the
	// remark contains it
	SPFSubstring string `yaml:"spf_substring"`

	// POReceivedRemark removes a ticket from the sales/converted counting
	// paths entirely; such tickets always count as non-sales
	POReceivedRemark string `yaml:"po_received_remark"`
}

// DefaultRules returns the canonical rule sets
func DefaultRules() Rules {
	return Rules{
		SalesWrapUps: []string{
			"customer order",
			"customer inquiry sales",
			"follow up sales",
		},
		NonSalesWrapUps: []string{
			"customer inquiry non-sales",
			"non sales",
		},
		ExcludedWrapUps: []string{
			"customerfeedback/recommendation",
			"job inquiry",
			"job applicants",
			"supplier/vendor product offer",
			"internal whistle blower",
			"threats / extortion / intimidation",
			"prank call",
		},
		NonQuotationRemarks: []string{
			"no stocks / insufficient stocks",
			"unable to contact customer",
			"po received",
			"pending quotation",
			"not our product line",
			"customer not interested",
			"price inquiry only",
			"referred to distributor",
			"duplicate ticket",
			"cancelled by customer",
			"for follow up",
			"wrong contact details",
			"no response from customer",
			"item phased out",
		},
		QuotationRemarks: []string{
			"quotation for approval",
			"sold",
		},
		SPFSubstring:     "spf",
		POReceivedRemark: "po received",
	}
}

// LoadRules returns the default rules with any lists present in the YAML
// file at path replacing their defaults. An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(override.SalesWrapUps) > 0 {
		rules.SalesWrapUps = override.SalesWrapUps
	}
	if len(override.NonSalesWrapUps) > 0 {
		rules.NonSalesWrapUps = override.NonSalesWrapUps
	}
	if len(override.ExcludedWrapUps) > 0 {
		rules.ExcludedWrapUps = override.ExcludedWrapUps
	}
	if len(override.NonQuotationRemarks) > 0 {
		rules.NonQuotationRemarks = override.NonQuotationRemarks
	}
	if len(override.QuotationRemarks) > 0 {
		rules.QuotationRemarks = override.QuotationRemarks
	}
	if override.SPFSubstring != "" {
		rules.SPFSubstring = override.SPFSubstring
	}
	if override.POReceivedRemark != "" {
		rules.POReceivedRemark = override.POReceivedRemark
	}

	return rules, nil
}

// Normalize trims and lowercases a free-text classification field.
// Absent values normalize to "".
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsNormalized(list []string, probe string) bool {
	norm := Normalize(probe)
	for _, entry := range list {
		if Normalize(entry) == norm {
			return true
		}
	}
	return false
}

// IsSalesWrapUp reports whether a wrap-up is a sales-labeled variant
func (r Rules) IsSalesWrapUp(wrapUp string) bool {
	return containsNormalized(r.SalesWrapUps, wrapUp)
}

// IsNonSalesWrapUp reports whether a wrap-up explicitly marks non-sales
func (r Rules) IsNonSalesWrapUp(wrapUp string) bool {
	return containsNormalized(r.NonSalesWrapUps, wrapUp)
}

// IsExcludedWrapUp reports whether a wrap-up excludes the ticket from all
// duration computations
func (r Rules) IsExcludedWrapUp(wrapUp string) bool {
	return containsNormalized(r.ExcludedWrapUps, wrapUp)
}

// IsNonQuotationRemark reports whether a remark routes to the
// non-quotation bucket
func (r Rules) IsNonQuotationRemark(remarks string) bool {
	return containsNormalized(r.NonQuotationRemarks, remarks)
}

// IsQuotationRemark reports whether a remark routes to the quotation bucket
func (r Rules) IsQuotationRemark(remarks string) bool {
	return containsNormalized(r.QuotationRemarks, remarks)
}

// IsSPFRemark reports whether a remark routes to the SPF bucket
func (r Rules) IsSPFRemark(remarks string) bool {
	return strings.Contains(Normalize(remarks), Normalize(r.SPFSubstring))
}

// IsPOReceived reports whether a remark is the PO-received exclusion
func (r Rules) IsPOReceived(remarks string) bool {
	return Normalize(remarks) == Normalize(r.POReceivedRemark)
}
