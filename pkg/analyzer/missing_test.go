package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propscope/pkg/scanner"
)

func missingFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSource(t, root, "Page.tsx", `
function Page() {
  return (
    <div>
      <Select value="a" onChange={handle} />
      <Select value="b" />
      <Select {...props} />
      <Select />
    </div>
  );
}
`)
	return root
}

func TestFindMissingProp_SpreadSatisfiesByDefault(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.FindMissingProp(missingFixture(t), "Select", "onChange", MissingPropOptions{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalInstances)
	// The spread site cannot be proven missing, so only the explicit
	// non-spread sites without onChange are flagged.
	assert.Equal(t, 2, report.MissingCount)
	assert.InDelta(t, 50.0, report.MissingPercentage, 0.001)

	var lines []int
	for _, m := range report.MissingInstances {
		lines = append(lines, m.Line)
	}
	assert.Equal(t, []int{6, 8}, lines)
}

func TestFindMissingProp_StrictSpread(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.FindMissingProp(missingFixture(t), "Select", "onChange", MissingPropOptions{
		TreatSpreadAsMissing: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalInstances)
	assert.Equal(t, 3, report.MissingCount)
	assert.InDelta(t, 75.0, report.MissingPercentage, 0.001)
}

func TestFindMissingProp_PresentPropsIncludeSpreadMarker(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.FindMissingProp(missingFixture(t), "Select", "onChange", MissingPropOptions{
		TreatSpreadAsMissing: true,
	})
	require.NoError(t, err)

	var spreadSite *MissingInstance
	for i := range report.MissingInstances {
		if report.MissingInstances[i].Line == 7 {
			spreadSite = &report.MissingInstances[i]
		}
	}
	require.NotNil(t, spreadSite)
	assert.Equal(t, []string{scanner.SpreadProp}, spreadSite.PresentProps)
}

func TestFindMissingProp_NoInstancesIsZeroPercent(t *testing.T) {
	a := newTestAnalyzer(t)
	report, err := a.FindMissingProp(missingFixture(t), "Tooltip", "content", MissingPropOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalInstances)
	assert.Equal(t, 0, report.MissingCount)
	assert.Equal(t, 0.0, report.MissingPercentage)
	assert.Empty(t, report.MissingInstances)
}

func TestFindMissingProp_DottedInstancesCounted(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "App.tsx", `
function App() {
  return (
    <>
      <UI.Select value="a" />
      <Select />
    </>
  );
}
`)

	a := newTestAnalyzer(t)
	report, err := a.FindMissingProp(root, "Select", "value", MissingPropOptions{})
	require.NoError(t, err)

	// Both the namespaced and the bare form are instances of Select.
	assert.Equal(t, 2, report.TotalInstances)
	require.Len(t, report.MissingInstances, 1)
	assert.Equal(t, "Select", report.MissingInstances[0].Component)
}

func TestFindMissingProp_InputValidation(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.FindMissingProp(t.TempDir(), "", "value", MissingPropOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component")

	_, err = a.FindMissingProp(t.TempDir(), "Select", "", MissingPropOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prop")
}
