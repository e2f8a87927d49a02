package scanner

import (
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Extract walks one file's parse tree and produces its declarations and
// usage sites. The caller owns the tree and closes it afterwards; nothing
// here retains node references past the call.
func Extract(root *ts.Node, source []byte, file string, opts Options) *FileExtraction {
	fx := &FileExtraction{
		File:  file,
		Types: make(map[string]TypeAssociation),
	}

	if opts.IncludeTypes {
		collectTypeAssociations(root, source, fx.Types)
	}

	w := &walker{source: source, file: file, out: fx}
	w.walk(root)

	// Attach the per-file FooProps associations to matching declarations.
	for i := range fx.Declarations {
		assoc, ok := fx.Types[fx.Declarations[i].Name]
		if !ok {
			continue
		}
		fx.Declarations[i].PropsTypeName = assoc.InterfaceName
		for j := range fx.Declarations[i].Props {
			if t, found := assoc.Members[fx.Declarations[i].Props[j].Prop]; found {
				fx.Declarations[i].Props[j].Type = t
			}
		}
	}

	fx.Declarations = FilterDeclarations(fx.Declarations, opts.TargetComponent)
	fx.Sites = FilterSites(fx.Sites, opts.TargetComponent, opts.TargetProp)
	return fx
}

// collectTypeAssociations records every interface or type alias whose
// name carries the Props suffix, keyed by the component name obtained by
// stripping it. Member types are kept as raw annotation text.
func collectTypeAssociations(node *ts.Node, source []byte, out map[string]TypeAssociation) {
	kind := node.Kind()
	if kind == "interface_declaration" || kind == "type_alias_declaration" {
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			name := nameNode.Utf8Text(source)
			if comp := strings.TrimSuffix(name, propsSuffix); comp != "" && comp != name {
				out[comp] = TypeAssociation{
					InterfaceName: name,
					Members:       collectMemberTypes(node, source),
				}
			}
		}
	}
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		collectTypeAssociations(node.Child(i), source, out)
	}
}

// collectMemberTypes pulls name → type text from the property signatures
// of an interface body or object type.
func collectMemberTypes(decl *ts.Node, source []byte) map[string]string {
	members := make(map[string]string)

	var visit func(node *ts.Node)
	visit = func(node *ts.Node) {
		if node.Kind() == "property_signature" {
			nameNode := node.ChildByFieldName("name")
			if nameNode == nil {
				return
			}
			typeText := ""
			if anno := node.ChildByFieldName("type"); anno != nil {
				typeText = strings.TrimSpace(strings.TrimPrefix(anno.Utf8Text(source), ":"))
			}
			members[nameNode.Utf8Text(source)] = typeText
			return
		}
		for i := uint(0); i < uint(node.ChildCount()); i++ {
			visit(node.Child(i))
		}
	}
	visit(decl)
	return members
}

type walker struct {
	source []byte
	file   string
	out    *FileExtraction
}

// walk dispatches on the closed set of node kinds this analysis cares
// about. Unknown kinds fall through to plain recursion. Fragments have no
// case on purpose: their children are visited exactly as if unwrapped.
func (w *walker) walk(node *ts.Node) {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		w.visitNamedFunction(node)
	case "variable_declarator":
		w.visitVariableDeclarator(node)
	case "jsx_element":
		w.visitJSXElement(node)
		return
	case "jsx_self_closing_element":
		w.visitOpeningTag(node)
		return
	}

	for i := uint(0); i < uint(node.ChildCount()); i++ {
		w.walk(node.Child(i))
	}
}

// visitNamedFunction handles `function Button(...) {...}`.
func (w *walker) visitNamedFunction(node *ts.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(w.source)
	if !isComponentName(name) {
		return
	}
	w.recordDeclaration(name, node, node)
}

// visitVariableDeclarator handles `const Button = (...) => ...` and
// `const Button = function (...) {...}`.
func (w *walker) visitVariableDeclarator(node *ts.Node) {
	nameNode := node.ChildByFieldName("name")
	value := node.ChildByFieldName("value")
	if nameNode == nil || value == nil || nameNode.Kind() != "identifier" {
		return
	}

	kind := value.Kind()
	if kind != "arrow_function" && kind != "function_expression" && kind != "function" {
		return
	}

	name := nameNode.Utf8Text(w.source)
	if !isComponentName(name) {
		return
	}
	w.recordDeclaration(name, value, node)
}

// recordDeclaration inspects fnNode's first parameter and appends a
// declaration. locNode provides the reported position (the declarator
// for closures, the function itself otherwise).
func (w *walker) recordDeclaration(name string, fnNode, locNode *ts.Node) {
	decl := ComponentDeclaration{
		Name:   name,
		File:   w.file,
		Line:   int(locNode.StartPosition().Row) + 1,
		Column: int(locNode.StartPosition().Column) + 1,
	}

	param := firstParameter(fnNode)
	switch {
	case param == nil:
		// No parameters: a component with no configurable props.
	case param.Kind() == "object_pattern":
		decl.Props = w.destructuredProps(name, param)
	case param.Kind() == "identifier":
		decl.Props = w.memberAccessProps(name, fnNode, param.Utf8Text(w.source))
	}

	w.out.Declarations = append(w.out.Declarations, decl)
}

// firstParameter returns the pattern of a function's first parameter:
// an object_pattern, an identifier, or nil. The TypeScript grammar wraps
// parameters in required_parameter/optional_parameter nodes; the
// JavaScript grammar places the pattern directly under formal_parameters.
func firstParameter(fnNode *ts.Node) *ts.Node {
	params := fnNode.ChildByFieldName("parameters")
	if params == nil {
		// Arrow shorthand: `p => ...` keeps the lone identifier in the
		// parameter field.
		if p := fnNode.ChildByFieldName("parameter"); p != nil {
			return p
		}
		return nil
	}

	for i := uint(0); i < uint(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Kind() {
		case "required_parameter", "optional_parameter":
			if pattern := child.ChildByFieldName("pattern"); pattern != nil {
				return pattern
			}
			for j := uint(0); j < uint(child.ChildCount()); j++ {
				inner := child.Child(j)
				if inner.Kind() == "object_pattern" || inner.Kind() == "identifier" {
					return inner
				}
			}
			return nil
		case "object_pattern", "identifier":
			return child
		}
	}
	return nil
}

// destructuredProps converts each field of an object-destructuring
// pattern into a PropUsage, in source order. A rest field becomes the
// spread sentinel.
func (w *walker) destructuredProps(component string, pattern *ts.Node) []PropUsage {
	var props []PropUsage

	appendProp := func(name string, node *ts.Node, spread bool) {
		props = append(props, PropUsage{
			Prop:      name,
			Component: component,
			File:      w.file,
			Line:      int(node.StartPosition().Row) + 1,
			Column:    int(node.StartPosition().Column) + 1,
			IsSpread:  spread,
		})
	}

	for i := uint(0); i < uint(pattern.ChildCount()); i++ {
		child := pattern.Child(i)
		switch child.Kind() {
		case "shorthand_property_identifier_pattern":
			appendProp(child.Utf8Text(w.source), child, false)
		case "object_assignment_pattern", "assignment_pattern":
			// { size = "default" }
			if left := child.ChildByFieldName("left"); left != nil {
				appendProp(left.Utf8Text(w.source), child, false)
			}
		case "pair_pattern":
			// { size: localName }
			if key := child.ChildByFieldName("key"); key != nil {
				appendProp(key.Utf8Text(w.source), child, false)
			}
		case "rest_pattern":
			appendProp(SpreadProp, child, true)
		}
	}
	return props
}

// memberAccessProps handles the non-destructured form: the component
// takes all props under one identifier and reads members inside its
// body. Each distinct member name read off that identifier is a declared
// prop, located at its first access.
func (w *walker) memberAccessProps(component string, fnNode *ts.Node, paramName string) []PropUsage {
	body := fnNode.ChildByFieldName("body")
	if body == nil {
		body = fnNode
	}

	var props []PropUsage
	seen := make(map[string]bool)

	var visit func(node *ts.Node)
	visit = func(node *ts.Node) {
		if node.Kind() == "member_expression" {
			object := node.ChildByFieldName("object")
			property := node.ChildByFieldName("property")
			if object != nil && property != nil &&
				object.Kind() == "identifier" && object.Utf8Text(w.source) == paramName {
				name := property.Utf8Text(w.source)
				if !seen[name] {
					seen[name] = true
					props = append(props, PropUsage{
						Prop:      name,
						Component: component,
						File:      w.file,
						Line:      int(node.StartPosition().Row) + 1,
						Column:    int(node.StartPosition().Column) + 1,
					})
				}
			}
		}
		for i := uint(0); i < uint(node.ChildCount()); i++ {
			visit(node.Child(i))
		}
	}
	visit(body)
	return props
}

// visitJSXElement processes <Component ...>children</Component>: the
// opening tag becomes a usage site, then children are walked. Opening and
// closing tags are not re-walked.
func (w *walker) visitJSXElement(node *ts.Node) {
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "jsx_opening_element":
			w.visitOpeningTag(child)
		case "jsx_closing_element":
		default:
			w.walk(child)
		}
	}
}

// visitOpeningTag records one usage site from a jsx_opening_element or
// jsx_self_closing_element. Lowercase tags are host elements, skipped.
func (w *walker) visitOpeningTag(node *ts.Node) {
	// Attribute values may embed elements (icon={<Star />}); those are
	// usage sites in their own right, even under host tags.
	defer func() {
		for i := uint(0); i < uint(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Kind() != "jsx_attribute" {
				continue
			}
			for j := uint(0); j < uint(child.ChildCount()); j++ {
				if inner := child.Child(j); inner.Kind() == "jsx_expression" {
					w.walk(inner)
				}
			}
		}
	}()

	tag := tagNameOf(node, w.source)
	if tag == "" || !isComponentName(tag) {
		return
	}

	site := UsageSite{
		Component: tag,
		File:      w.file,
		Line:      int(node.StartPosition().Row) + 1,
		Column:    int(node.StartPosition().Column) + 1,
	}

	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "jsx_attribute":
			if usage, ok := w.attributeUsage(tag, child); ok {
				site.Props = append(site.Props, usage)
			}
		case "jsx_expression":
			// {...props} in attribute position.
			if isSpreadExpression(child, w.source) {
				site.HasSpread = true
				site.Props = append(site.Props, PropUsage{
					Prop:      SpreadProp,
					Component: tag,
					File:      w.file,
					Line:      int(child.StartPosition().Row) + 1,
					Column:    int(child.StartPosition().Column) + 1,
					IsSpread:  true,
				})
			}
		}
	}

	w.out.Sites = append(w.out.Sites, site)
}

// attributeUsage converts one jsx_attribute into a PropUsage. A bare
// attribute (<Button disabled>) records the value "true".
func (w *walker) attributeUsage(tag string, node *ts.Node) (PropUsage, bool) {
	usage := PropUsage{
		Component: tag,
		File:      w.file,
		Line:      int(node.StartPosition().Row) + 1,
		Column:    int(node.StartPosition().Column) + 1,
	}

	hasValueNode := false
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_identifier", "jsx_namespace_name":
			if usage.Prop == "" {
				usage.Prop = child.Utf8Text(w.source)
			}
		case "string":
			hasValueNode = true
			v := stringContent(child, w.source)
			usage.Value = &v
		case "jsx_expression":
			hasValueNode = true
			if inner := unwrapJSXExpression(child); inner != nil {
				if v, ok := StringifyExpression(inner, w.source); ok {
					usage.Value = &v
				}
			}
		}
	}
	if usage.Prop == "" {
		return PropUsage{}, false
	}
	if !hasValueNode {
		v := "true"
		usage.Value = &v
	}
	return usage, true
}

// tagNameOf returns the element name of an opening or self-closing tag:
// a simple identifier or the full dotted form for namespaced tags.
func tagNameOf(node *ts.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(source)
	}
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "identifier", "member_expression", "nested_identifier":
			return child.Utf8Text(source)
		}
	}
	return ""
}

// unwrapJSXExpression returns the expression inside {...} braces.
func unwrapJSXExpression(node *ts.Node) *ts.Node {
	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		k := child.Kind()
		if k != "{" && k != "}" && k != "comment" {
			return child
		}
	}
	return nil
}

// isSpreadExpression reports whether a jsx_expression in attribute
// position is a spread ({...props}).
func isSpreadExpression(node *ts.Node, source []byte) bool {
	if inner := unwrapJSXExpression(node); inner != nil && inner.Kind() == "spread_element" {
		return true
	}
	text := node.Utf8Text(source)
	return len(text) > 3 && strings.HasPrefix(text[1:], "...")
}

// isComponentName follows the JSX convention: component tags start with
// an uppercase letter, host elements do not.
func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}
