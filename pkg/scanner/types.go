// Package scanner walks parsed syntax trees and extracts component
// declarations and JSX usage sites, with their props.
package scanner

import "strings"

// SpreadProp is the sentinel prop name recorded for rest parameters and
// spread attributes ({...props}). Spread entries never participate in
// value comparisons; their contents are opaque to static analysis.
const SpreadProp = "...spread"

// propsSuffix associates an interface or type alias with a component by
// naming convention: FooProps belongs to Foo, scoped to the same file.
const propsSuffix = "Props"

// PropUsage is one concrete occurrence of a named prop: either a declared
// parameter of a component or a supplied attribute at a usage site.
// Immutable once produced; each usage belongs to exactly one owner.
type PropUsage struct {
	Prop      string  `json:"prop"`
	Component string  `json:"component"`
	File      string  `json:"file"`
	Line      int     `json:"line"`
	Column    int     `json:"column"`
	Value     *string `json:"value,omitempty"`
	IsSpread  bool    `json:"isSpread,omitempty"`
	Type      string  `json:"type,omitempty"`
}

// ComponentDeclaration is one function or closure recognized as a
// component definition, with its declared props in source order.
type ComponentDeclaration struct {
	Name          string      `json:"name"`
	File          string      `json:"file"`
	Line          int         `json:"line"`
	Column        int         `json:"column"`
	Props         []PropUsage `json:"props"`
	PropsTypeName string      `json:"propsTypeName,omitempty"`
}

// UsageSite is one markup element invoking a component. Component holds
// the full dotted name for namespaced tags (UI.Select); matching resolves
// against both the full and the local form. Props may be empty: a bare
// <Select /> is still an instance.
type UsageSite struct {
	Component string      `json:"component"`
	File      string      `json:"file"`
	Line      int         `json:"line"`
	Column    int         `json:"column"`
	Props     []PropUsage `json:"props"`
	HasSpread bool        `json:"hasSpread,omitempty"`
}

// TypeAssociation records a FooProps interface or type alias found in a
// file, with member name to declared-type text.
type TypeAssociation struct {
	InterfaceName string
	Members       map[string]string
}

// FileExtraction is the result of extracting one file. The type table is
// per file and never crosses file boundaries.
type FileExtraction struct {
	File         string
	Declarations []ComponentDeclaration
	Sites        []UsageSite
	Types        map[string]TypeAssociation // component name → association
}

// Options filters an extraction pass.
type Options struct {
	// TargetComponent keeps only declarations (exact name) and usage
	// sites (full or local form) matching this component.
	TargetComponent string
	// TargetProp keeps only props with this name at usage sites. Sites
	// themselves are kept so instance totals stay correct.
	TargetProp string
	// IncludeTypes enables the FooProps association table and declared
	// type annotations.
	IncludeTypes bool
}

// MatchesComponent reports whether a markup tag name satisfies a
// component filter. A dotted tag like UI.Select resolves to both its
// full form and its local (last-segment) form; it never matches the
// namespace alone. An empty filter matches everything.
func MatchesComponent(tagName, filter string) bool {
	if filter == "" {
		return true
	}
	if tagName == filter {
		return true
	}
	return localName(tagName) == filter
}

func localName(tagName string) string {
	if i := strings.LastIndex(tagName, "."); i >= 0 {
		return tagName[i+1:]
	}
	return tagName
}

// FlattenUsages returns every prop occurrence across the given sites.
func FlattenUsages(sites []UsageSite) []PropUsage {
	var out []PropUsage
	for _, s := range sites {
		out = append(out, s.Props...)
	}
	return out
}

// FilterSites narrows usage sites to a component and/or prop filter.
// A prop filter drops non-matching props but keeps the site itself.
func FilterSites(sites []UsageSite, component, prop string) []UsageSite {
	if component == "" && prop == "" {
		return sites
	}
	out := make([]UsageSite, 0, len(sites))
	for _, s := range sites {
		if !MatchesComponent(s.Component, component) {
			continue
		}
		if prop != "" {
			kept := make([]PropUsage, 0, len(s.Props))
			for _, p := range s.Props {
				if p.Prop == prop {
					kept = append(kept, p)
				}
			}
			s.Props = kept
		}
		out = append(out, s)
	}
	return out
}

// FilterDeclarations returns declarations whose name matches exactly.
func FilterDeclarations(decls []ComponentDeclaration, component string) []ComponentDeclaration {
	if component == "" {
		return decls
	}
	out := make([]ComponentDeclaration, 0, len(decls))
	for _, d := range decls {
		if d.Name == component {
			out = append(out, d)
		}
	}
	return out
}
