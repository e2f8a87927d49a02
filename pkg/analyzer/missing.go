package analyzer

import (
	"fmt"

	"github.com/gnana997/propscope/pkg/scanner"
)

// FindMissingProp scans every usage site of component under root and
// flags the instances that do not supply the required prop.
//
// The total comes from a pass over ALL instances of the component, not
// just the flagged ones; the reported percentage is missing/total*100,
// and exactly 0 when no instances exist.
func (a *Analyzer) FindMissingProp(root, component, requiredProp string, opts MissingPropOptions) (*MissingPropReport, error) {
	if component == "" {
		return nil, fmt.Errorf("component: must not be empty")
	}
	if requiredProp == "" {
		return nil, fmt.Errorf("prop: must not be empty")
	}

	col, err := a.collect(root)
	if err != nil {
		return nil, err
	}

	report := &MissingPropReport{
		Component:        component,
		Prop:             requiredProp,
		MissingInstances: []MissingInstance{},
	}

	for _, fx := range col.extractions {
		for _, site := range fx.Sites {
			if !scanner.MatchesComponent(site.Component, component) {
				continue
			}
			report.TotalInstances++

			if siteSatisfies(site, requiredProp, opts) {
				continue
			}
			report.MissingInstances = append(report.MissingInstances, MissingInstance{
				Component:    site.Component,
				File:         site.File,
				Line:         site.Line,
				Column:       site.Column,
				PresentProps: presentPropNames(site),
			})
		}
	}

	report.MissingCount = len(report.MissingInstances)
	if report.TotalInstances > 0 {
		report.MissingPercentage = float64(report.MissingCount) / float64(report.TotalInstances) * 100
	}
	report.Summary = Summary{
		FilesScanned: col.scanned,
		FilesSkipped: col.skipped,
		UsageSites:   report.TotalInstances,
	}
	return report, nil
}

// siteSatisfies reports whether a usage site supplies the required prop.
// A spread attribute conservatively satisfies it unless the caller opted
// into treating spreads as missing: the analysis cannot see what a
// spread injects.
func siteSatisfies(site scanner.UsageSite, requiredProp string, opts MissingPropOptions) bool {
	for _, p := range site.Props {
		if !p.IsSpread && p.Prop == requiredProp {
			return true
		}
	}
	if site.HasSpread && !opts.TreatSpreadAsMissing {
		return true
	}
	return false
}

// presentPropNames lists a site's attribute names; spreads keep their
// sentinel marker.
func presentPropNames(site scanner.UsageSite) []string {
	names := make([]string, 0, len(site.Props))
	for _, p := range site.Props {
		names = append(names, p.Prop)
	}
	return names
}
