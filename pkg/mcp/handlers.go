package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/propscope/pkg/analyzer"
)

func (s *Server) handleAnalyzeComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	full, err := s.analyzer.Analyze(path, analyzer.AnalyzeOptions{
		Component:    req.GetString("component", ""),
		Prop:         req.GetString("prop", ""),
		IncludeTypes: req.GetBool("include_types", true),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return shapedResult(full, formatOptions(req))
}

func (s *Server) handleFindPropUsages(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prop, err := req.RequireString("prop")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	full, err := s.analyzer.FindUsages(path, prop, req.GetString("component", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return shapedResult(full, formatOptions(req))
}

func (s *Server) handleGetComponentDeclarations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	full, err := s.analyzer.GetDeclarations(path, component)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return shapedResult(full, formatOptions(req))
}

func (s *Server) handleFindMissingProp(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prop, err := req.RequireString("prop")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := s.analyzer.FindMissingProp(path, component, prop, analyzer.MissingPropOptions{
		TreatSpreadAsMissing: req.GetBool("treat_spread_as_missing", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) handleQueryComponentProps(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, err := req.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	criteria, err := parseCriteria(req.GetArguments()["criteria"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := s.analyzer.Query(path, component, criteria, analyzer.QueryOptions{
		Logic: analyzer.Logic(req.GetString("logic", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

// parseCriteria converts the raw tool argument into typed criteria.
// Validation beyond shape (unknown comparators, empty prop names) is the
// analyzer's job so CLI and MCP callers get identical messages.
func parseCriteria(raw any) ([]analyzer.Criterion, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("criteria: expected an array of objects")
	}

	criteria := make([]analyzer.Criterion, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("criteria[%d]: expected an object", i)
		}
		var c analyzer.Criterion
		if v, ok := obj["prop"].(string); ok {
			c.Prop = v
		}
		if v, ok := obj["value"].(string); ok {
			value := v
			c.Value = &value
		}
		if v, ok := obj["comparator"].(string); ok {
			c.Comparator = analyzer.Comparator(v)
		}
		if v, ok := obj["exists"].(bool); ok {
			exists := v
			c.Exists = &exists
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

func formatOptions(req mcp.CallToolRequest) analyzer.FormatOptions {
	return analyzer.FormatOptions{
		Format:                analyzer.Format(req.GetString("format", "")),
		IncludeColumns:        req.GetBool("include_columns", false),
		IncludePrettyLocation: req.GetBool("include_pretty_location", false),
	}
}

func shapedResult(full *analyzer.FullResult, opts analyzer.FormatOptions) (*mcp.CallToolResult, error) {
	return jsonResult(analyzer.Shape(full, opts))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
