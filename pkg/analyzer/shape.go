package analyzer

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gnana997/propscope/pkg/scanner"
)

// DeclarationSummary is the concise per-file declaration form used by
// the file-grouped shape.
type DeclarationSummary struct {
	Name          string   `json:"name"`
	Props         []string `json:"props"`
	PropsTypeName string   `json:"propsTypeName,omitempty"`
}

// UsageSummary is the concise per-file usage form.
type UsageSummary struct {
	Component string   `json:"component"`
	Line      int      `json:"line"`
	Column    int      `json:"column,omitempty"`
	Props     []string `json:"props"`
	Location  string   `json:"location,omitempty"`
}

// FileGroup holds one file's declarations and usages.
type FileGroup struct {
	File         string               `json:"file"`
	Declarations []DeclarationSummary `json:"declarations,omitempty"`
	Usages       []UsageSummary       `json:"usages,omitempty"`
}

// FileGroupedResult partitions the full result by file.
type FileGroupedResult struct {
	Files   []FileGroup `json:"files"`
	Summary Summary     `json:"summary"`
}

// PropRef is the smallest usage reference: where one prop appears.
type PropRef struct {
	Component string `json:"component"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	Location  string `json:"location,omitempty"`
}

// PropGroupedResult partitions all usages by prop name regardless of
// file. It is intentionally the smallest representation.
type PropGroupedResult struct {
	Props   map[string][]PropRef `json:"props"`
	Summary Summary              `json:"summary"`
}

// Shape reduces the canonical full result to the requested form. Shaping
// is pure: the input result is never modified.
func Shape(full *FullResult, opts FormatOptions) any {
	switch opts.Format {
	case FormatByFile:
		return ToFileGrouped(full, opts)
	case FormatByProp:
		return ToPropGrouped(full, opts)
	default:
		return full
	}
}

// ToFileGrouped folds the full result into per-file groups with concise
// declaration and usage summaries.
func ToFileGrouped(full *FullResult, opts FormatOptions) *FileGroupedResult {
	groups := make(map[string]*FileGroup)
	var order []string

	groupFor := func(file string) *FileGroup {
		if g, ok := groups[file]; ok {
			return g
		}
		g := &FileGroup{File: prettyPath(file)}
		groups[file] = g
		order = append(order, file)
		return g
	}

	for _, d := range full.Declarations {
		g := groupFor(d.File)
		g.Declarations = append(g.Declarations, DeclarationSummary{
			Name:          d.Name,
			Props:         propNames(d.Props),
			PropsTypeName: d.PropsTypeName,
		})
	}

	for _, s := range full.Usages {
		g := groupFor(s.File)
		u := UsageSummary{
			Component: s.Component,
			Line:      s.Line,
			Props:     propNames(s.Props),
		}
		if opts.IncludeColumns {
			u.Column = s.Column
		}
		if opts.IncludePrettyLocation {
			u.Location = prettyLocation(s.File, s.Line, s.Column, opts.IncludeColumns)
		}
		g.Usages = append(g.Usages, u)
	}

	sort.Strings(order)
	result := &FileGroupedResult{
		Files:   make([]FileGroup, 0, len(order)),
		Summary: full.Summary,
	}
	for _, file := range order {
		result.Files = append(result.Files, *groups[file])
	}
	return result
}

// ToPropGrouped partitions every supplied prop by name. Spread entries
// keep their sentinel key so callers can see pass-through sites.
func ToPropGrouped(full *FullResult, opts FormatOptions) *PropGroupedResult {
	result := &PropGroupedResult{
		Props:   make(map[string][]PropRef),
		Summary: full.Summary,
	}

	for _, s := range full.Usages {
		for _, p := range s.Props {
			ref := PropRef{
				Component: s.Component,
				File:      prettyPath(p.File),
				Line:      p.Line,
			}
			if opts.IncludePrettyLocation {
				ref.Location = prettyLocation(p.File, p.Line, p.Column, opts.IncludeColumns)
			}
			result.Props[p.Prop] = append(result.Props[p.Prop], ref)
		}
	}
	return result
}

func propNames(props []scanner.PropUsage) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		names = append(names, p.Prop)
	}
	return names
}

// prettyPath normalizes to forward slashes regardless of host
// conventions.
func prettyPath(path string) string {
	return filepath.ToSlash(path)
}

// prettyLocation renders path[:line[:column]] with forward slashes.
func prettyLocation(file string, line, column int, includeColumn bool) string {
	var b strings.Builder
	b.WriteString(prettyPath(file))
	if line > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(line))
		if includeColumn && column > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(column))
		}
	}
	return b.String()
}
