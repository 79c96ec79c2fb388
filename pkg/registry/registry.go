// Package registry builds the project-wide identifier registry by scanning
// source files for the attribute the injector maintains. The scan is
// read-only and fails as a whole on anything that would make the generated
// stylesheet wrong: syntax errors, duplicate identifiers, non-literal
// attribute values.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/seltag/pkg/inject"
	"github.com/gnana997/seltag/pkg/locate"
	"github.com/gnana997/seltag/pkg/naming"
	"github.com/gnana997/seltag/pkg/parser"
	"github.com/gnana997/seltag/pkg/util"
)

// Location is one occurrence of an identifier in source.
type Location struct {
	FilePath string
	Line     uint
}

// Entry is one identifier with everywhere it appears.
type Entry struct {
	Identifier string
	Layer      string
	Locations  []Location
}

// Registry holds entries in presentation order: ui, layout, page, then
// domain layers alphabetically, first-seen within each layer.
type Registry struct {
	Entries []Entry
}

// Identifiers returns the identifiers in registry order.
func (r *Registry) Identifiers() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.Identifier
	}
	return ids
}

// Options configures a scan.
type Options struct {
	Root    string
	Include []string
	Exclude []string

	// DuplicateAllowlist names identifiers permitted to occur more than
	// once, for components intentionally rendered from shared templates.
	DuplicateAllowlist []string
}

// Issue codes for scan failures.
const (
	IssueParseError = "parse-error"
	IssueNonLiteral = "non-literal-value"
	IssueDuplicate  = "duplicate-identifier"
	IssueMalformed  = "malformed-identifier"
)

// Issue is one reason the scan cannot be trusted.
type Issue struct {
	Code       string
	FilePath   string
	Line       uint
	Identifier string
	Message    string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s [%s]", i.FilePath, i.Line, i.Message, i.Code)
}

// ScanError aggregates every issue found in one scan.
type ScanError struct {
	Issues []Issue
}

func (e *ScanError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	return fmt.Sprintf("%s (and %d more issues)", e.Issues[0], len(e.Issues)-1)
}

// Scanner reads identifier attributes out of source files.
type Scanner struct {
	parsers *parser.Manager
	cache   *util.FileCache
	logger  *slog.Logger
}

// NewScanner creates a scanner sharing the given parser manager.
func NewScanner(parsers *parser.Manager, logger *slog.Logger) *Scanner {
	return &Scanner{
		parsers: parsers,
		cache:   util.NewFileCache(logger),
		logger:  logger,
	}
}

// Close releases the scanner's file mappings.
func (s *Scanner) Close() {
	s.cache.Close()
}

// Scan walks the project and returns the registry, or a ScanError when
// any file cannot be trusted. Nothing is ever written.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Registry, error) {
	files, err := inject.DiscoverFiles(opts.Root, opts.Include, opts.Exclude, s.logger)
	if err != nil {
		return nil, err
	}

	allowlist := map[string]bool{}
	for _, id := range opts.DuplicateAllowlist {
		allowlist[id] = true
	}

	occurrences := map[string][]Location{}
	var order []string
	var issues []Issue

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, fileIssues := s.scanFile(path, opts.Root)
		issues = append(issues, fileIssues...)
		for _, occ := range found {
			if _, seen := occurrences[occ.id]; !seen {
				order = append(order, occ.id)
			}
			occurrences[occ.id] = append(occurrences[occ.id], occ.loc)
		}
	}

	for _, id := range order {
		locs := occurrences[id]
		if len(locs) > 1 && !allowlist[id] {
			issues = append(issues, Issue{
				Code:       IssueDuplicate,
				FilePath:   locs[1].FilePath,
				Line:       locs[1].Line,
				Identifier: id,
				Message:    fmt.Sprintf("identifier %q first used at %s:%d", id, locs[0].FilePath, locs[0].Line),
			})
		}
	}

	if len(issues) > 0 {
		sortIssues(issues)
		return nil, &ScanError{Issues: issues}
	}

	reg := &Registry{Entries: make([]Entry, 0, len(order))}
	for _, id := range order {
		reg.Entries = append(reg.Entries, Entry{
			Identifier: id,
			Layer:      naming.Layer(id),
			Locations:  occurrences[id],
		})
	}
	sortEntries(reg.Entries)

	s.logger.Info("registry scan complete", "files", len(files), "identifiers", len(reg.Entries))
	return reg, nil
}

type occurrence struct {
	id  string
	loc Location
}

func (s *Scanner) scanFile(path, root string) ([]occurrence, []Issue) {
	rel := util.RelPath(root, path)

	source, err := s.cache.Get(path)
	if err != nil {
		return nil, []Issue{{
			Code: IssueParseError, FilePath: rel,
			Message: fmt.Sprintf("cannot read file: %v", err),
		}}
	}

	lang := parser.DetectLanguage(path)
	if lang == parser.LanguageUnknown {
		return nil, nil
	}

	tree, err := s.parsers.Parse(source, lang, parser.IsTSXFile(path))
	if err != nil {
		return nil, []Issue{{Code: IssueParseError, FilePath: rel, Message: err.Error()}}
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		return nil, []Issue{{
			Code: IssueParseError, FilePath: rel,
			Message: "file has syntax errors",
		}}
	}

	var found []occurrence
	var issues []Issue
	record := func(value string, line uint, verdict valueVerdict) {
		switch verdict {
		case valueAbsent:
			return
		case valueNonLiteral:
			issues = append(issues, Issue{
				Code: IssueNonLiteral, FilePath: rel, Line: line,
				Message: fmt.Sprintf("%s value must be a string literal", locate.Attribute),
			})
		case valueLiteral:
			if !naming.Valid(value) {
				issues = append(issues, Issue{
					Code: IssueMalformed, FilePath: rel, Line: line, Identifier: value,
					Message: fmt.Sprintf("identifier %q does not match %s", value, naming.Pattern),
				})
				return
			}
			found = append(found, occurrence{id: value, loc: Location{FilePath: rel, Line: line}})
		}
	}
	walkAttributes(rootNode, source, record)
	return found, issues
}

type valueVerdict int

const (
	valueAbsent valueVerdict = iota
	valueLiteral
	valueNonLiteral
)

// walkAttributes visits every identifier occurrence in the tree: JSX tag
// attributes plus cloneElement props entries, which the injector also
// writes.
func walkAttributes(node *ts.Node, source []byte, record func(value string, line uint, verdict valueVerdict)) {
	switch node.Kind() {
	case "jsx_opening_element", "jsx_self_closing_element":
		record(attributeValue(node, source))
	case "call_expression":
		if props := locate.ClonePropsObject(node, source); props != nil {
			record(clonePairValue(props, source))
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkAttributes(node.Child(i), source, record)
	}
}

// clonePairValue finds the identifier entry in a cloneElement props
// object and classifies its value the same way attributeValue does.
func clonePairValue(props *ts.Node, source []byte) (string, uint, valueVerdict) {
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
			keyText = stringFragment(key, source)
		}
		if keyText != locate.Attribute {
			continue
		}
		line := uint(pair.StartPosition().Row) + 1
		value := pair.ChildByFieldName("value")
		if value == nil || value.Kind() != "string" {
			return "", line, valueNonLiteral
		}
		return stringFragment(value, source), line, valueLiteral
	}
	return "", 0, valueAbsent
}

// attributeValue finds the identifier attribute on a tag and classifies
// its value. A string wrapped in a lone expression container, like
// {"ui-button"}, still counts as literal.
func attributeValue(tag *ts.Node, source []byte) (string, uint, valueVerdict) {
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		attr := tag.NamedChild(i)
		if attr.Kind() != "jsx_attribute" {
			continue
		}
		key := attr.NamedChild(0)
		if key == nil || key.Utf8Text(source) != locate.Attribute {
			continue
		}
		line := uint(attr.StartPosition().Row) + 1

		value := attr.NamedChild(1)
		if value == nil {
			return "", line, valueNonLiteral
		}
		switch value.Kind() {
		case "string":
			return stringFragment(value, source), line, valueLiteral
		case "jsx_expression":
			if inner := value.NamedChild(0); inner != nil && inner.Kind() == "string" {
				return stringFragment(inner, source), line, valueLiteral
			}
			return "", line, valueNonLiteral
		}
		return "", line, valueNonLiteral
	}
	return "", 0, valueAbsent
}

func stringFragment(str *ts.Node, source []byte) string {
	for i := uint(0); i < str.NamedChildCount(); i++ {
		if child := str.NamedChild(i); child.Kind() == "string_fragment" {
			return child.Utf8Text(source)
		}
	}
	return ""
}

// layerRank orders the fixed layers ahead of domain layers.
func layerRank(layer string) int {
	switch layer {
	case naming.LayerUI:
		return 0
	case naming.LayerLayout:
		return 1
	case naming.LayerPage:
		return 2
	}
	return 3
}

// sortEntries groups entries by layer while preserving first-seen order
// within each layer. Domain layers sort alphabetically after the fixed
// three.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := layerRank(entries[i].Layer), layerRank(entries[j].Layer)
		if ri != rj {
			return ri < rj
		}
		if ri == 3 && entries[i].Layer != entries[j].Layer {
			return entries[i].Layer < entries[j].Layer
		}
		return false
	})
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].FilePath != issues[j].FilePath {
			return issues[i].FilePath < issues[j].FilePath
		}
		return issues[i].Line < issues[j].Line
	})
}

// Layers returns the distinct layers in registry order, for section
// headers in generated output.
func (r *Registry) Layers() []string {
	var layers []string
	for _, e := range r.Entries {
		if len(layers) == 0 || layers[len(layers)-1] != e.Layer {
			layers = append(layers, e.Layer)
		}
	}
	return layers
}

// ByLayer returns the entries of one layer in registry order.
func (r *Registry) ByLayer(layer string) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Layer == layer {
			out = append(out, e)
		}
	}
	return out
}
