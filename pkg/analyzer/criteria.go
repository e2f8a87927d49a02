package analyzer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gnana997/propscope/pkg/scanner"
)

// instance is one logical occurrence of a component: either a usage site
// or a declaration, merged by (file, line) identity so the same
// extraction pass is never double-reported.
type instance struct {
	component string
	file      string
	line      int
	column    int
	props     map[string]instProp
}

type instProp struct {
	value  string
	known  bool
	line   int
	column int
}

// Query evaluates a set of prop criteria against every logical instance
// of component under root. An empty criteria list matches every
// instance. Matches are sorted by (file, line) for deterministic output.
func (a *Analyzer) Query(root, component string, criteria []Criterion, opts QueryOptions) (*QueryReport, error) {
	logic := opts.Logic
	if logic == "" {
		logic = LogicAnd
	}
	if err := ValidateQuery(component, criteria, logic); err != nil {
		return nil, err
	}

	col, err := a.collect(root)
	if err != nil {
		return nil, err
	}

	instances := mergeInstances(col, component)

	report := &QueryReport{
		Component:      component,
		Matches:        []QueryMatch{},
		TotalInstances: len(instances),
		Summary: Summary{
			FilesScanned: col.scanned,
			FilesSkipped: col.skipped,
			UsageSites:   len(instances),
		},
	}

	for _, inst := range instances {
		if match, ok := evaluateInstance(inst, criteria, logic); ok {
			report.Matches = append(report.Matches, match)
		}
	}
	return report, nil
}

// mergeInstances builds the logical instance set: declarations first,
// then usage sites, keyed by (file, line) with last-write-wins on
// collisions. Spread entries never enter the prop map; their contents
// are opaque and cannot satisfy a value comparison.
func mergeInstances(col *collection, component string) []instance {
	byKey := make(map[string]instance)
	var order []string

	add := func(inst instance) {
		key := inst.file + "\x00" + strconv.Itoa(inst.line)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = inst
	}

	for _, fx := range col.extractions {
		for _, d := range scanner.FilterDeclarations(fx.Declarations, component) {
			inst := instance{
				component: d.Name,
				file:      d.File,
				line:      d.Line,
				column:    d.Column,
				props:     make(map[string]instProp, len(d.Props)),
			}
			for _, p := range d.Props {
				if p.IsSpread {
					continue
				}
				inst.props[p.Prop] = instProp{line: p.Line, column: p.Column}
			}
			add(inst)
		}

		for _, s := range fx.Sites {
			if !scanner.MatchesComponent(s.Component, component) {
				continue
			}
			inst := instance{
				component: s.Component,
				file:      s.File,
				line:      s.Line,
				column:    s.Column,
				props:     make(map[string]instProp, len(s.Props)),
			}
			for _, p := range s.Props {
				if p.IsSpread {
					continue
				}
				ip := instProp{line: p.Line, column: p.Column}
				if p.Value != nil {
					ip.value = *p.Value
					ip.known = true
				}
				inst.props[p.Prop] = ip
			}
			add(inst)
		}
	}

	instances := make([]instance, 0, len(order))
	for _, key := range order {
		instances = append(instances, byKey[key])
	}
	sort.SliceStable(instances, func(i, j int) bool {
		return lessByFileLine(instances[i].file, instances[i].line,
			instances[j].file, instances[j].line)
	})
	return instances
}

// evaluateInstance applies every criterion to one instance and combines
// the outcomes with the given logic. An empty criteria list passes.
func evaluateInstance(inst instance, criteria []Criterion, logic Logic) (QueryMatch, bool) {
	match := QueryMatch{
		Component:    inst.component,
		File:         inst.file,
		Line:         inst.line,
		Column:       inst.column,
		MatchedProps: make(map[string]MatchedProp),
		MissingProps: []string{},
		Props:        make(map[string]string, len(inst.props)),
	}
	for name, p := range inst.props {
		match.Props[name] = p.value
	}

	if len(criteria) == 0 {
		return match, true
	}

	anyPassed := false
	allPassed := true

	for _, c := range criteria {
		passed := evaluateCriterion(c, inst, &match)
		if passed {
			anyPassed = true
		} else {
			allPassed = false
		}
	}

	if logic == LogicOr {
		return match, anyPassed
	}
	return match, allPassed
}

// evaluateCriterion applies one criterion, recording matched props and
// missing prop names on the match as it goes. A present prop with the
// wrong value is NOT missing; only absence lands in MissingProps.
func evaluateCriterion(c Criterion, inst instance, match *QueryMatch) bool {
	p, present := inst.props[c.Prop]

	if c.Exists != nil {
		if !*c.Exists {
			return !present
		}
		if !present {
			match.MissingProps = append(match.MissingProps, c.Prop)
			return false
		}
		match.MatchedProps[c.Prop] = MatchedProp{Value: p.value, Line: p.line, Column: p.column}
		return true
	}

	if c.Value != nil {
		if !present {
			match.MissingProps = append(match.MissingProps, c.Prop)
			return false
		}
		ok := false
		switch c.Comparator {
		case ComparatorContains:
			ok = strings.Contains(p.value, *c.Value)
		default:
			ok = p.value == *c.Value
		}
		if ok {
			match.MatchedProps[c.Prop] = MatchedProp{Value: p.value, Line: p.line, Column: p.column}
		}
		return ok
	}

	// Neither set: plain existence check.
	if !present {
		match.MissingProps = append(match.MissingProps, c.Prop)
		return false
	}
	match.MatchedProps[c.Prop] = MatchedProp{Value: p.value, Line: p.line, Column: p.column}
	return true
}
