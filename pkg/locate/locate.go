// Package locate finds the byte position where a component's identifier
// attribute belongs: the root JSX element of the component's render output,
// or the props object of a cloneElement call.
package locate

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/seltag/pkg/component"
)

// Attribute is the injected identifier attribute's name.
const Attribute = "data-ui"

// TargetKind says what construct receives the attribute.
type TargetKind int

const (
	// TargetElement is a plain JSX element (<div>, <Button>).
	TargetElement TargetKind = iota
	// TargetPrimitive is a namespaced component tag such as
	// <DialogPrimitive.Root>, which forwards unknown props to the DOM.
	TargetPrimitive
	// TargetSlot is a <Slot> element, which merges props onto its child.
	TargetSlot
	// TargetCloneProps is the props object of a cloneElement call.
	TargetCloneProps
)

// Status is the locator's verdict for one component.
type Status int

const (
	// Found means a target exists and is not yet tagged.
	Found Status = iota
	// AlreadyTagged means the root already carries the attribute.
	AlreadyTagged
	// NoTarget means the render output has no injectable root, for
	// example a bare ternary or a null return.
	NoTarget
)

// Target describes where and how to inject.
type Target struct {
	Status Status
	Kind   TargetKind

	// InsertAt is the byte offset of the insertion point: just after the
	// tag name for elements, just after the opening brace for a
	// cloneElement props object.
	InsertAt uint
	Line     uint

	// Existing holds the current attribute value when AlreadyTagged.
	Existing string
}

// Find locates the injection target for one discovered component.
func Find(unit component.Unit, source []byte) Target {
	render := renderRoot(unit.Decl, source)
	if render == nil {
		return Target{Status: NoTarget}
	}
	return classify(render, source)
}

// renderRoot resolves a declaration down to the expression it renders.
// Wrapper calls (forwardRef, memo) are unwrapped to their function
// argument, class components to the render method's return.
func renderRoot(decl *ts.Node, source []byte) *ts.Node {
	switch decl.Kind() {
	case "function_declaration", "function_expression", "method_definition":
		body := decl.ChildByFieldName("body")
		if body == nil {
			return nil
		}
		return returnExpression(body)
	case "arrow_function":
		body := decl.ChildByFieldName("body")
		if body == nil {
			return nil
		}
		if body.Kind() == "statement_block" {
			return returnExpression(body)
		}
		return body
	case "class_declaration":
		return renderMethodReturn(decl, source)
	case "call_expression":
		args := decl.ChildByFieldName("arguments")
		if args == nil {
			return nil
		}
		for i := uint(0); i < args.NamedChildCount(); i++ {
			arg := args.NamedChild(i)
			switch arg.Kind() {
			case "arrow_function", "function_expression", "call_expression":
				return renderRoot(arg, source)
			}
		}
		return nil
	case "parenthesized_expression":
		if inner := firstNamedChild(decl); inner != nil {
			return renderRoot(inner, source)
		}
		return nil
	}
	return nil
}

// returnExpression finds the first returned expression in a statement
// block, descending into conditional blocks but never into nested
// function bodies.
func returnExpression(block *ts.Node) *ts.Node {
	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		switch stmt.Kind() {
		case "return_statement":
			if expr := firstNamedChild(stmt); expr != nil {
				return expr
			}
		case "if_statement", "statement_block":
			// Early returns guard loading and error states; the real
			// render is usually the last return. Skip returns inside
			// conditionals unless nothing follows them.
			continue
		}
	}
	// No top-level return: fall back to the first return anywhere in the
	// block, conditionals included.
	return anyReturnExpression(block)
}

func anyReturnExpression(node *ts.Node) *ts.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "arrow_function", "function_expression", "function_declaration":
			continue
		case "return_statement":
			if expr := firstNamedChild(child); expr != nil {
				return expr
			}
		default:
			if expr := anyReturnExpression(child); expr != nil {
				return expr
			}
		}
	}
	return nil
}

// renderMethodReturn finds the return of a class component's render method.
func renderMethodReturn(class *ts.Node, source []byte) *ts.Node {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member.Kind() != "method_definition" {
			continue
		}
		name := member.ChildByFieldName("name")
		if name == nil || name.Utf8Text(source) != "render" {
			continue
		}
		if methodBody := member.ChildByFieldName("body"); methodBody != nil {
			return returnExpression(methodBody)
		}
	}
	return nil
}

// classify maps a render expression to a target.
func classify(expr *ts.Node, source []byte) Target {
	switch expr.Kind() {
	case "parenthesized_expression":
		if inner := firstNamedChild(expr); inner != nil {
			return classify(inner, source)
		}
		return Target{Status: NoTarget}
	case "jsx_element":
		opening := expr.Child(0)
		if opening == nil || opening.Kind() != "jsx_opening_element" {
			return Target{Status: NoTarget}
		}
		return classifyTag(expr, opening, source)
	case "jsx_self_closing_element":
		return classifyTag(expr, expr, source)
	case "jsx_fragment":
		return descendFragment(expr, source)
	case "call_expression":
		return classifyClone(expr, source)
	}
	return Target{Status: NoTarget}
}

// classifyTag inspects an opening (or self-closing) tag. element is the
// enclosing JSX node, used for fragment-tag descent.
func classifyTag(element, tag *ts.Node, source []byte) Target {
	name := tag.ChildByFieldName("name")
	if name == nil {
		return Target{Status: NoTarget}
	}
	tagName := name.Utf8Text(source)

	// <Fragment> and <React.Fragment> are transparent like <>.
	if tagName == "Fragment" || strings.HasSuffix(tagName, ".Fragment") {
		return descendFragment(element, source)
	}

	if existing, tagged := existingAttribute(tag, source); tagged {
		return Target{
			Status:   AlreadyTagged,
			InsertAt: uint(name.EndByte()),
			Line:     uint(name.StartPosition().Row) + 1,
			Existing: existing,
		}
	}

	kind := TargetElement
	switch {
	case tagName == "Slot" || strings.HasSuffix(tagName, ".Slot"):
		kind = TargetSlot
	case name.Kind() == "member_expression" || name.Kind() == "nested_identifier":
		kind = TargetPrimitive
	}

	return Target{
		Status:   Found,
		Kind:     kind,
		InsertAt: uint(name.EndByte()),
		Line:     uint(name.StartPosition().Row) + 1,
	}
}

// descendFragment retries classification on the first element child of a
// fragment or fragment-tagged element.
func descendFragment(node *ts.Node, source []byte) Target {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			return classify(child, source)
		case "jsx_expression":
			if inner := firstNamedChild(child); inner != nil {
				if t := classify(inner, source); t.Status != NoTarget {
					return t
				}
			}
		}
	}
	return Target{Status: NoTarget}
}

// existingAttribute reports whether the tag already carries the identifier
// attribute, returning its literal value when it does.
func existingAttribute(tag *ts.Node, source []byte) (string, bool) {
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		attr := tag.NamedChild(i)
		if attr.Kind() != "jsx_attribute" {
			continue
		}
		key := attr.NamedChild(0)
		if key == nil || key.Utf8Text(source) != Attribute {
			continue
		}
		value := ""
		if v := attr.NamedChild(1); v != nil {
			value = stringContent(v, source)
		}
		return value, true
	}
	return "", false
}

// ClonePropsObject returns the props object of a cloneElement call, or
// nil when the call is not a cloneElement or its second argument is not
// an object literal.
func ClonePropsObject(call *ts.Node, source []byte) *ts.Node {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	fnName := fn.Utf8Text(source)
	if i := strings.LastIndexByte(fnName, '.'); i >= 0 {
		fnName = fnName[i+1:]
	}
	if fnName != "cloneElement" {
		return nil
	}

	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() < 2 {
		return nil
	}
	props := args.NamedChild(1)
	if props.Kind() != "object" {
		return nil
	}
	return props
}

// classifyClone handles React.cloneElement(child, props) renders. The
// attribute goes into the props object; a missing or non-object second
// argument is not injectable.
func classifyClone(call *ts.Node, source []byte) Target {
	props := ClonePropsObject(call, source)
	if props == nil {
		return Target{Status: NoTarget}
	}

	if existing, tagged := clonePropsAttribute(props, source); tagged {
		return Target{
			Status:   AlreadyTagged,
			Kind:     TargetCloneProps,
			InsertAt: uint(props.StartByte()) + 1,
			Line:     uint(props.StartPosition().Row) + 1,
			Existing: existing,
		}
	}

	return Target{
		Status: Found,
		Kind:   TargetCloneProps,
		// Insert just inside the opening brace.
		InsertAt: uint(props.StartByte()) + 1,
		Line:     uint(props.StartPosition().Row) + 1,
	}
}

func clonePropsAttribute(props *ts.Node, source []byte) (string, bool) {
	for i := uint(0); i < props.NamedChildCount(); i++ {
		pair := props.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		if key == nil {
			continue
		}
		keyText := key.Utf8Text(source)
		if key.Kind() == "string" {
			keyText = stringContent(key, source)
		}
		if keyText != Attribute {
			continue
		}
		value := ""
		if v := pair.ChildByFieldName("value"); v != nil {
			value = stringContent(v, source)
		}
		return value, true
	}
	return "", false
}

// stringContent extracts the inner text of a string literal node, looking
// through JSX expression containers.
func stringContent(node *ts.Node, source []byte) string {
	switch node.Kind() {
	case "string", "template_string":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() == "string_fragment" {
				return child.Utf8Text(source)
			}
		}
		return ""
	case "jsx_expression", "parenthesized_expression":
		if inner := firstNamedChild(node); inner != nil {
			return stringContent(inner, source)
		}
		return ""
	}
	return node.Utf8Text(source)
}

func firstNamedChild(node *ts.Node) *ts.Node {
	if node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}
