// Package component discovers the exported React components of a parsed
// source file. Discovery works on top-level declarations only; nested or
// conditionally created components are out of scope.
package component

import (
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/seltag/pkg/naming"
)

// Kind classifies the declaration form a component was exported as.
type Kind int

const (
	// KindFunction is a function declaration (export function Button() {}).
	KindFunction Kind = iota
	// KindArrow is a const bound to an arrow or function expression.
	KindArrow
	// KindClass is a class component.
	KindClass
	// KindWrapped is a call wrapping the render function, such as
	// forwardRef(...) or memo(...).
	KindWrapped
)

// Unit is one exported component occurrence within a file.
type Unit struct {
	// Name is the exported binding name, or naming.DefaultExport for
	// default exports.
	Name      string
	FilePath  string
	IsDefault bool
	Kind      Kind

	// Decl is the node holding the render logic: the function or class
	// declaration, the arrow/function expression, or the wrapping call.
	Decl *ts.Node

	// StartByte orders units by declaration position within the file.
	StartByte uint
	Line      uint
}

// Discover walks the top-level statements of root and returns the exported
// components in declaration order. source is the file's raw bytes, used to
// read node text.
func Discover(root *ts.Node, source []byte, filePath string) []Unit {
	// Local declarations collected first so that export clauses and
	// `export default Foo` can resolve names declared earlier or later
	// in the file.
	locals := map[string]*local{}
	for i := uint(0); i < root.ChildCount(); i++ {
		collectLocal(root.Child(i), source, locals)
	}

	var units []Unit
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child.Kind() != "export_statement" {
			continue
		}
		units = append(units, fromExport(child, source, filePath, locals)...)
	}
	return units
}

type local struct {
	decl *ts.Node
	kind Kind
}

// collectLocal records a top-level declaration by name. Export statements
// are unwrapped so that `export function Button` is visible to a later
// `export default Button`.
func collectLocal(node *ts.Node, source []byte, locals map[string]*local) {
	if node.Kind() == "export_statement" {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			collectLocal(node.NamedChild(i), source, locals)
		}
		return
	}

	switch node.Kind() {
	case "function_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			locals[name.Utf8Text(source)] = &local{decl: node, kind: KindFunction}
		}
	case "class_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			locals[name.Utf8Text(source)] = &local{decl: node, kind: KindClass}
		}
	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			declarator := node.NamedChild(i)
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			name := declarator.ChildByFieldName("name")
			value := declarator.ChildByFieldName("value")
			if name == nil || value == nil || name.Kind() != "identifier" {
				continue
			}
			if kind, ok := valueKind(value); ok {
				locals[name.Utf8Text(source)] = &local{decl: value, kind: kind}
			}
		}
	}
}

// fromExport extracts the component units of a single export statement.
func fromExport(node *ts.Node, source []byte, filePath string, locals map[string]*local) []Unit {
	// Type-only exports never carry components.
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "type" {
			return nil
		}
	}

	if isDefaultExport(node) {
		return defaultUnit(node, source, filePath, locals)
	}

	var units []Unit
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "function_declaration", "class_declaration":
			name := child.ChildByFieldName("name")
			if name == nil || !isComponentName(name.Utf8Text(source)) {
				continue
			}
			kind := KindFunction
			if child.Kind() == "class_declaration" {
				kind = KindClass
			}
			units = append(units, newUnit(name.Utf8Text(source), filePath, false, kind, child))
		case "lexical_declaration", "variable_declaration":
			units = append(units, fromDeclarators(child, source, filePath)...)
		case "export_clause":
			units = append(units, fromClause(child, source, filePath, locals)...)
		}
	}
	return units
}

func fromDeclarators(node *ts.Node, source []byte, filePath string) []Unit {
	var units []Unit
	for i := uint(0); i < node.NamedChildCount(); i++ {
		declarator := node.NamedChild(i)
		if declarator.Kind() != "variable_declarator" {
			continue
		}
		name := declarator.ChildByFieldName("name")
		value := declarator.ChildByFieldName("value")
		if name == nil || value == nil || name.Kind() != "identifier" {
			continue
		}
		exportName := name.Utf8Text(source)
		if !isComponentName(exportName) {
			continue
		}
		if kind, ok := valueKind(value); ok {
			units = append(units, newUnit(exportName, filePath, false, kind, value))
		}
	}
	return units
}

// fromClause resolves `export { Button, Card as UICard }` against the
// file's local declarations. The exported alias wins as the name.
func fromClause(clause *ts.Node, source []byte, filePath string, locals map[string]*local) []Unit {
	var units []Unit
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		spec := clause.NamedChild(i)
		if spec.Kind() != "export_specifier" {
			continue
		}
		localName := spec.ChildByFieldName("name")
		if localName == nil {
			continue
		}
		exportName := localName.Utf8Text(source)
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			exportName = alias.Utf8Text(source)
		}
		decl, ok := locals[localName.Utf8Text(source)]
		if !ok || !isComponentName(exportName) {
			continue
		}
		units = append(units, newUnit(exportName, filePath, false, decl.kind, decl.decl))
	}
	return units
}

func defaultUnit(node *ts.Node, source []byte, filePath string, locals map[string]*local) []Unit {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "function_declaration":
			return []Unit{newUnit(naming.DefaultExport, filePath, true, KindFunction, child)}
		case "class_declaration":
			return []Unit{newUnit(naming.DefaultExport, filePath, true, KindClass, child)}
		case "identifier":
			// export default Foo — resolve to the local declaration.
			if decl, ok := locals[child.Utf8Text(source)]; ok {
				return []Unit{unitAt(naming.DefaultExport, filePath, true, decl.kind, decl.decl, node)}
			}
			return nil
		case "arrow_function", "function_expression":
			return []Unit{newUnit(naming.DefaultExport, filePath, true, KindArrow, child)}
		case "call_expression":
			if isWrapperCall(child, source) {
				return []Unit{newUnit(naming.DefaultExport, filePath, true, KindWrapped, child)}
			}
			return nil
		}
	}
	return nil
}

func isDefaultExport(node *ts.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "default" {
			return true
		}
	}
	return false
}

// valueKind classifies a declarator's value expression, rejecting
// non-component values such as object literals and plain constants.
func valueKind(value *ts.Node) (Kind, bool) {
	switch value.Kind() {
	case "arrow_function", "function_expression":
		return KindArrow, true
	case "call_expression":
		return KindWrapped, true
	}
	return 0, false
}

// isWrapperCall reports whether a call expression wraps a render function
// the way React.forwardRef and React.memo do.
func isWrapperCall(call *ts.Node, source []byte) bool {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	name := fn.Utf8Text(source)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "forwardRef", "memo":
		return true
	}
	return false
}

// isComponentName reports whether a binding name follows the PascalCase
// component convention. Hooks and lowercase utilities are skipped.
func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

func newUnit(name, filePath string, isDefault bool, kind Kind, decl *ts.Node) Unit {
	return unitAt(name, filePath, isDefault, kind, decl, decl)
}

// unitAt builds a unit whose position comes from pos rather than decl,
// used when a default export resolves to a declaration elsewhere in the
// file but should sort at the export statement.
func unitAt(name, filePath string, isDefault bool, kind Kind, decl, pos *ts.Node) Unit {
	return Unit{
		Name:      name,
		FilePath:  filePath,
		IsDefault: isDefault,
		Kind:      kind,
		Decl:      decl,
		StartByte: uint(pos.StartByte()),
		Line:      uint(pos.StartPosition().Row) + 1,
	}
}
