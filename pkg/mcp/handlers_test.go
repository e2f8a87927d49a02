package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propscope/pkg/analyzer"
)

// --- helpers ---

// testProject writes a small source tree and returns its root.
func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	source := `
interface ButtonProps {
  label: string;
}

function Button({ label }: ButtonProps) {
  return <button>{label}</button>;
}

function Page() {
  return (
    <div>
      <Button label="Save" />
      <Button />
      <Button {...rest} />
    </div>
  );
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "App.tsx"), []byte(source), 0o644))
	return root
}

func testServer(t *testing.T) *Server {
	t.Helper()
	a, err := analyzer.New(analyzer.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return NewServer(a, nil)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "analyze_components":
		handler = s.handleAnalyzeComponents
	case "find_prop_usages":
		handler = s.handleFindPropUsages
	case "get_component_declarations":
		handler = s.handleGetComponentDeclarations
	case "find_missing_prop":
		handler = s.handleFindMissingProp
	case "query_component_props":
		handler = s.handleQueryComponentProps
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- analyze_components ---

func TestHandleAnalyzeComponents(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("analyze_components", map[string]any{
		"path": testProject(t),
	}))
	assert.False(t, result.IsError)

	var full analyzer.FullResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &full))
	assert.Equal(t, 2, full.Summary.Declarations)
	assert.Equal(t, 3, full.Summary.UsageSites)
}

func TestHandleAnalyzeComponents_MissingPath(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("analyze_components", nil))
	assert.True(t, result.IsError)
}

func TestHandleAnalyzeComponents_FileGrouped(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("analyze_components", map[string]any{
		"path":                    testProject(t),
		"format":                  "file",
		"include_pretty_location": true,
	}))
	assert.False(t, result.IsError)

	var grouped analyzer.FileGroupedResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &grouped))
	require.Len(t, grouped.Files, 1)
	require.NotEmpty(t, grouped.Files[0].Usages)
	assert.Contains(t, grouped.Files[0].Usages[0].Location, "App.tsx:13")
}

// --- find_prop_usages ---

func TestHandleFindPropUsages(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_prop_usages", map[string]any{
		"path": testProject(t),
		"prop": "label",
	}))
	assert.False(t, result.IsError)

	var full analyzer.FullResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &full))
	assert.Empty(t, full.Declarations)
	require.Len(t, full.Usages, 1)
	assert.Equal(t, "label", full.Usages[0].Props[0].Prop)
}

func TestHandleFindPropUsages_MissingProp(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_prop_usages", map[string]any{
		"path": t.TempDir(),
	}))
	assert.True(t, result.IsError)
}

// --- get_component_declarations ---

func TestHandleGetComponentDeclarations(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_component_declarations", map[string]any{
		"path":      testProject(t),
		"component": "Button",
	}))
	assert.False(t, result.IsError)

	var full analyzer.FullResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &full))
	require.Len(t, full.Declarations, 1)
	assert.Equal(t, "Button", full.Declarations[0].Name)
	assert.Equal(t, "ButtonProps", full.Declarations[0].PropsTypeName)
}

// --- find_missing_prop ---

func TestHandleFindMissingProp(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_missing_prop", map[string]any{
		"path":      testProject(t),
		"component": "Button",
		"prop":      "label",
	}))
	assert.False(t, result.IsError)

	var report analyzer.MissingPropReport
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &report))
	assert.Equal(t, 3, report.TotalInstances)
	// The spread site passes by default; the bare <Button /> does not.
	assert.Equal(t, 1, report.MissingCount)
}

func TestHandleFindMissingProp_StrictSpread(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("find_missing_prop", map[string]any{
		"path":                    testProject(t),
		"component":               "Button",
		"prop":                    "label",
		"treat_spread_as_missing": true,
	}))
	assert.False(t, result.IsError)

	var report analyzer.MissingPropReport
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &report))
	assert.Equal(t, 2, report.MissingCount)
}

// --- query_component_props ---

func TestHandleQueryComponentProps(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("query_component_props", map[string]any{
		"path":      testProject(t),
		"component": "Button",
		"criteria": []any{
			map[string]any{"prop": "label", "value": "Save"},
		},
	}))
	assert.False(t, result.IsError)

	var report analyzer.QueryReport
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &report))
	require.Len(t, report.Matches, 1)
	assert.Equal(t, 13, report.Matches[0].Line)
}

func TestHandleQueryComponentProps_BadComparator(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("query_component_props", map[string]any{
		"path":      testProject(t),
		"component": "Button",
		"criteria": []any{
			map[string]any{"prop": "label", "value": "Save", "comparator": "regex"},
		},
	}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "criteria[0].comparator")
}

func TestHandleQueryComponentProps_BadCriteriaShape(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("query_component_props", map[string]any{
		"path":      testProject(t),
		"component": "Button",
		"criteria":  "not-an-array",
	}))
	assert.True(t, result.IsError)
}

func TestParseCriteria(t *testing.T) {
	criteria, err := parseCriteria([]any{
		map[string]any{"prop": "width", "value": "200px", "comparator": "contains"},
		map[string]any{"prop": "theme", "exists": false},
	})
	require.NoError(t, err)
	require.Len(t, criteria, 2)

	assert.Equal(t, "width", criteria[0].Prop)
	require.NotNil(t, criteria[0].Value)
	assert.Equal(t, "200px", *criteria[0].Value)
	assert.Equal(t, analyzer.ComparatorContains, criteria[0].Comparator)

	require.NotNil(t, criteria[1].Exists)
	assert.False(t, *criteria[1].Exists)
	assert.Nil(t, criteria[1].Value)
}

func TestParseCriteria_NilIsEmpty(t *testing.T) {
	criteria, err := parseCriteria(nil)
	require.NoError(t, err)
	assert.Nil(t, criteria)
}
