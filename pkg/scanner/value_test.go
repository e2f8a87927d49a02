package scanner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attrValue extracts the rendered value of the single x= attribute in a
// one-line JSX snippet, or nil when the expression is unrenderable.
func attrValue(t *testing.T, expr string) *string {
	t.Helper()
	source := fmt.Sprintf(`const App = () => <Widget x=%s />;`, expr)
	fx := extractSource(t, "App.tsx", source, Options{})

	require.Len(t, fx.Sites, 1)
	require.Len(t, fx.Sites[0].Props, 1)
	return fx.Sites[0].Props[0].Value
}

func TestStringify_Literals(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`"large"`, "large"},
		{`{42}`, "42"},
		{`{3.14}`, "3.14"},
		{`{true}`, "true"},
		{`{false}`, "false"},
		{`{null}`, "null"},
		{`{undefined}`, "undefined"},
		{`{"quoted"}`, "quoted"},
	}

	for _, tt := range tests {
		v := attrValue(t, tt.expr)
		require.NotNil(t, v, "expr %s", tt.expr)
		assert.Equal(t, tt.want, *v, "expr %s", tt.expr)
	}
}

func TestStringify_IdentifiersAndCalls(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`{theme}`, "theme"},
		{`{theme.primary}`, "theme.primary"},
		{`{colors[0]}`, "colors[0]"},
		{`{getColor("primary")}`, `getColor("primary")`},
	}

	for _, tt := range tests {
		v := attrValue(t, tt.expr)
		require.NotNil(t, v, "expr %s", tt.expr)
		assert.Equal(t, tt.want, *v, "expr %s", tt.expr)
	}
}

func TestStringify_Functions(t *testing.T) {
	v := attrValue(t, `{() => save()}`)
	require.NotNil(t, v)
	assert.Equal(t, "() => save()", *v)
}

func TestStringify_Placeholders(t *testing.T) {
	v := attrValue(t, `{{ a: 1 }}`)
	require.NotNil(t, v)
	assert.Equal(t, "[object]", *v)

	v = attrValue(t, `{[1, 2, 3]}`)
	require.NotNil(t, v)
	assert.Equal(t, "[array]", *v)
}

func TestStringify_TemplateStrings(t *testing.T) {
	// Fully literal template folds to its text.
	v := attrValue(t, "{`large`}")
	require.NotNil(t, v)
	assert.Equal(t, "large", *v)

	// Renderable substitutions fold in place.
	v = attrValue(t, "{`size-${3}`}")
	require.NotNil(t, v)
	assert.Equal(t, "size-3", *v)

	// Identifier substitutions keep their expression text.
	v = attrValue(t, "{`size-${n}`}")
	require.NotNil(t, v)
	assert.Equal(t, "size-n", *v)
}

func TestStringify_UnwrapsTypeScriptWrappers(t *testing.T) {
	v := attrValue(t, `{("large")}`)
	require.NotNil(t, v)
	assert.Equal(t, "large", *v)

	v = attrValue(t, `{"large" as const}`)
	require.NotNil(t, v)
	assert.Equal(t, "large", *v)
}

func TestStringify_NegativeNumbers(t *testing.T) {
	v := attrValue(t, `{-1}`)
	require.NotNil(t, v)
	assert.Equal(t, "-1", *v)
}
