package mcp

import "github.com/mark3labs/mcp-go/mcp"

func analyzeComponentsTool() mcp.Tool {
	return mcp.NewTool("analyze_components",
		mcp.WithDescription("Analyze a file or directory of React components: declarations, usage sites, and supplied props"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to analyze")),
		mcp.WithString("component", mcp.Description("Only report this component (full dotted or local name)")),
		mcp.WithString("prop", mcp.Description("Only report this prop at usage sites")),
		mcp.WithBoolean("include_types", mcp.Description("Attach FooProps interface associations and declared types")),
		mcp.WithString("format", mcp.Description("Result shape: full (default), file, or prop")),
		mcp.WithBoolean("include_columns", mcp.Description("Include column numbers in grouped output")),
		mcp.WithBoolean("include_pretty_location", mcp.Description("Include path:line[:col] location strings")),
	)
}

func findPropUsagesTool() mcp.Tool {
	return mcp.NewTool("find_prop_usages",
		mcp.WithDescription("Find every usage site supplying a given prop, optionally narrowed to one component"),
		mcp.WithString("prop", mcp.Required(), mcp.Description("Prop name to find")),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to search")),
		mcp.WithString("component", mcp.Description("Only report usages of this component")),
		mcp.WithString("format", mcp.Description("Result shape: full (default), file, or prop")),
		mcp.WithBoolean("include_columns", mcp.Description("Include column numbers in grouped output")),
		mcp.WithBoolean("include_pretty_location", mcp.Description("Include path:line[:col] location strings")),
	)
}

func getComponentDeclarationsTool() mcp.Tool {
	return mcp.NewTool("get_component_declarations",
		mcp.WithDescription("Return the declarations of a component with its props in source order"),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name to look up")),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to search")),
		mcp.WithString("format", mcp.Description("Result shape: full (default) or file")),
	)
}

func findMissingPropTool() mcp.Tool {
	return mcp.NewTool("find_missing_prop",
		mcp.WithDescription("Flag component instances that do not supply a required prop; spread attributes are assumed to satisfy it unless told otherwise"),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name to check")),
		mcp.WithString("prop", mcp.Required(), mcp.Description("Required prop name")),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to search")),
		mcp.WithBoolean("treat_spread_as_missing", mcp.Description("Count instances whose only candidate is a spread attribute as missing")),
	)
}

func queryComponentPropsTool() mcp.Tool {
	return mcp.NewTool("query_component_props",
		mcp.WithDescription("Find component instances matching a boolean combination of prop criteria (existence, equals, contains)"),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component name to query")),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to search")),
		mcp.WithArray("criteria", mcp.Description(`Criteria objects: {"prop": "width", "value": "200", "comparator": "equals"|"contains", "exists": true|false}. Empty matches every instance`)),
		mcp.WithString("logic", mcp.Description("Combine criteria with AND (default) or OR")),
	)
}
