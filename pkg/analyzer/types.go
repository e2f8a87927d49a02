// Package analyzer orchestrates file resolution, parsing, and extraction,
// and answers the caller-facing questions: what is declared, what is
// used, what is missing, and what matches a set of prop criteria.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/gnana997/propscope/pkg/scanner"
)

// Summary reports the counts for one analysis pass.
type Summary struct {
	FilesScanned int `json:"filesScanned"`
	FilesSkipped int `json:"filesSkipped"`
	Declarations int `json:"declarations"`
	UsageSites   int `json:"usageSites"`
}

// FullResult is the canonical result shape: every declaration and every
// usage site, ordered by (file, line). The grouped shapes in shape.go are
// reductions of this.
type FullResult struct {
	Declarations []scanner.ComponentDeclaration `json:"declarations"`
	Usages       []scanner.UsageSite            `json:"usages"`
	Summary      Summary                        `json:"summary"`
}

// Format selects the result shape returned to the caller.
type Format string

const (
	FormatFull   Format = "full"
	FormatByFile Format = "file"
	FormatByProp Format = "prop"
)

// ParseFormat maps a string to a Format, rejecting unknown values.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatFull, "":
		return FormatFull, nil
	case FormatByFile, FormatByProp:
		return Format(s), nil
	default:
		return "", fmt.Errorf("format: unknown value %q", s)
	}
}

// FormatOptions controls result shaping.
type FormatOptions struct {
	Format                Format `json:"format,omitempty"`
	IncludeColumns        bool   `json:"includeColumns,omitempty"`
	IncludePrettyLocation bool   `json:"includePrettyLocation,omitempty"`
}

// AnalyzeOptions filters and shapes a full analysis.
type AnalyzeOptions struct {
	Component    string
	Prop         string
	IncludeTypes bool
}

// MissingPropOptions tunes the missing-prop detector. The zero value is
// the conservative default: a spread attribute is assumed to supply the
// required prop, because flagging it would produce false positives the
// analysis cannot rule out.
type MissingPropOptions struct {
	TreatSpreadAsMissing bool
}

// MissingInstance is one usage site lacking a required prop.
type MissingInstance struct {
	Component    string   `json:"component"`
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Column       int      `json:"column"`
	PresentProps []string `json:"presentProps"`
}

// MissingPropReport is the outcome of FindMissingProp. The percentage is
// computed over all instances of the component, and is defined as 0 when
// no instances exist.
type MissingPropReport struct {
	Component         string            `json:"component"`
	Prop              string            `json:"prop"`
	MissingInstances  []MissingInstance `json:"missingInstances"`
	TotalInstances    int               `json:"totalInstances"`
	MissingCount      int               `json:"missingCount"`
	MissingPercentage float64           `json:"missingPercentage"`
	Summary           Summary           `json:"summary"`
}

// Comparator selects how a criterion value is compared.
type Comparator string

const (
	ComparatorEquals   Comparator = "equals"
	ComparatorContains Comparator = "contains"
)

// Logic combines multiple criteria.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Criterion is one testable condition over a prop's presence or value.
//
// Exactly one semantic applies, in this order: a non-nil Exists makes it
// a presence (or absence) check; otherwise a non-nil Value makes it a
// comparison; with neither set it degenerates to a plain existence check.
type Criterion struct {
	Prop       string     `json:"prop"`
	Value      *string    `json:"value,omitempty"`
	Comparator Comparator `json:"comparator,omitempty"`
	Exists     *bool      `json:"exists,omitempty"`
}

// QueryOptions configures a criteria query.
type QueryOptions struct {
	Logic Logic
}

// MatchedProp is the value and location of a prop that satisfied a
// criterion.
type MatchedProp struct {
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// QueryMatch is one logical instance that passed the criteria set.
type QueryMatch struct {
	Component    string                 `json:"component"`
	File         string                 `json:"file"`
	Line         int                    `json:"line"`
	Column       int                    `json:"column,omitempty"`
	MatchedProps map[string]MatchedProp `json:"matchedProps"`
	MissingProps []string               `json:"missingProps"`
	Props        map[string]string      `json:"props"`
}

// QueryReport is the outcome of Query.
type QueryReport struct {
	Component      string       `json:"component"`
	Matches        []QueryMatch `json:"matches"`
	TotalInstances int          `json:"totalInstances"`
	Summary        Summary      `json:"summary"`
}

// ValidateQuery rejects malformed query input before any file I/O, with
// a message naming the offending field.
func ValidateQuery(component string, criteria []Criterion, logic Logic) error {
	if strings.TrimSpace(component) == "" {
		return fmt.Errorf("component: must not be empty")
	}
	switch logic {
	case "", LogicAnd, LogicOr:
	default:
		return fmt.Errorf("logic: unknown value %q (want AND or OR)", logic)
	}
	for i, c := range criteria {
		if strings.TrimSpace(c.Prop) == "" {
			return fmt.Errorf("criteria[%d].prop: must not be empty", i)
		}
		switch c.Comparator {
		case "", ComparatorEquals, ComparatorContains:
		default:
			return fmt.Errorf("criteria[%d].comparator: unknown value %q (want equals or contains)", i, c.Comparator)
		}
	}
	return nil
}
