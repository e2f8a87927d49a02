package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func queryFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSource(t, root, "Cards.tsx", `
function Page() {
  return (
    <div>
      <Card width="200px" theme="dark" />
      <Card width="100px" />
      <Card theme="light" />
      <Card {...rest} />
    </div>
  );
}
`)
	return root
}

func TestQuery_EmptyCriteriaMatchesEveryInstance(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", nil, QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalInstances)
	assert.Len(t, report.Matches, 4)
}

func TestQuery_EqualsVersusContains(t *testing.T) {
	a := newTestAnalyzer(t)

	// equals: only the exact value.
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "width", Value: strPtr("200px"), Comparator: ComparatorEquals},
	}, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, 5, report.Matches[0].Line)

	// contains: substring match widens the set.
	report, err = a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "width", Value: strPtr("00px"), Comparator: ComparatorContains},
	}, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, report.Matches, 2)
}

func TestQuery_DefaultComparatorIsEquals(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "width", Value: strPtr("200")},
	}, QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Matches)
}

func TestQuery_WrongValueIsNotMissing(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "theme", Value: strPtr("dark")},
	}, QueryOptions{})
	require.NoError(t, err)

	require.Len(t, report.Matches, 1)
	match := report.Matches[0]
	assert.Equal(t, 5, match.Line)
	assert.Contains(t, match.MatchedProps, "theme")
	assert.Equal(t, "dark", match.MatchedProps["theme"].Value)
	// theme="light" failed the comparison but was present, so it never
	// lands in anyone's MissingProps.
	assert.Empty(t, match.MissingProps)
}

func TestQuery_AndLogic(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "width", Exists: boolPtr(true)},
		{Prop: "theme", Exists: boolPtr(true)},
	}, QueryOptions{Logic: LogicAnd})
	require.NoError(t, err)

	require.Len(t, report.Matches, 1)
	assert.Equal(t, 5, report.Matches[0].Line)
}

func TestQuery_OrLogic(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "width", Exists: boolPtr(true)},
		{Prop: "theme", Exists: boolPtr(true)},
	}, QueryOptions{Logic: LogicOr})
	require.NoError(t, err)

	// OR is monotonic over the AND set: lines 5, 6, and 7.
	assert.Len(t, report.Matches, 3)
}

func TestQuery_AbsenceCheck(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "theme", Exists: boolPtr(false)},
	}, QueryOptions{})
	require.NoError(t, err)

	// Lines 6 and 8: no explicit theme attribute. The spread site's
	// contents are opaque; it has no theme entry in the prop map.
	assert.Len(t, report.Matches, 2)
}

func TestQuery_MissingPropsRecorded(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "size", Value: strPtr("large")},
	}, QueryOptions{})
	require.NoError(t, err)

	assert.Empty(t, report.Matches)
	assert.Equal(t, 4, report.TotalInstances)
}

func TestQuery_SpreadNeverSatisfiesValueCriteria(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.Query(queryFixture(t), "Card", []Criterion{
		{Prop: "width", Exists: boolPtr(true)},
	}, QueryOptions{})
	require.NoError(t, err)

	// The {...rest} site does not match: spreads are opaque.
	var lines []int
	for _, m := range report.Matches {
		lines = append(lines, m.Line)
	}
	assert.Equal(t, []int{5, 6}, lines)
}

func TestQuery_TotalEqualsEmptyCriteriaMatchCount(t *testing.T) {
	root := queryFixture(t)
	a := newTestAnalyzer(t)

	all, err := a.Query(root, "Card", nil, QueryOptions{})
	require.NoError(t, err)
	narrowed, err := a.Query(root, "Card", []Criterion{
		{Prop: "width", Exists: boolPtr(true)},
	}, QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, len(all.Matches), all.TotalInstances)
	assert.Equal(t, all.TotalInstances, narrowed.TotalInstances)
	assert.LessOrEqual(t, len(narrowed.Matches), narrowed.TotalInstances)
}

func TestQuery_DeclarationsAreInstances(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "Banner.tsx", `
function Banner({ message, tone }) {
  return <div>{message}</div>;
}
`)

	a := newTestAnalyzer(t)
	report, err := a.Query(root, "Banner", []Criterion{
		{Prop: "message", Exists: boolPtr(true)},
	}, QueryOptions{})
	require.NoError(t, err)

	require.Len(t, report.Matches, 1)
	assert.Equal(t, 2, report.Matches[0].Line)
	// Declared props carry no attribute value.
	assert.Equal(t, "", report.Matches[0].MatchedProps["message"].Value)
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name      string
		component string
		criteria  []Criterion
		logic     Logic
		wantErr   string
	}{
		{"valid", "Card", []Criterion{{Prop: "width"}}, LogicAnd, ""},
		{"empty component", "", nil, LogicAnd, "component"},
		{"bad logic", "Card", nil, "XOR", "logic"},
		{"empty prop", "Card", []Criterion{{Prop: " "}}, LogicAnd, "criteria[0].prop"},
		{"bad comparator", "Card", []Criterion{{Prop: "w", Comparator: "regex"}}, LogicAnd, "criteria[0].comparator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.component, tt.criteria, tt.logic)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQuery_MalformedQueryFailsBeforeIO(t *testing.T) {
	a := newTestAnalyzer(t)
	// The root does not exist; validation must reject the query first.
	_, err := a.Query("/nonexistent/path", "Card", []Criterion{
		{Prop: "w", Comparator: "startswith"},
	}, QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "criteria[0].comparator")
}
