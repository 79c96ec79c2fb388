// Package naming maps a component's file location and export name to its
// canonical data-ui identifier.
//
// Resolution is a pure function: the same (path, export) pair always yields
// the same identifier, with no dependence on run order or filesystem state.
package naming

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

const (
	// LayerUI marks shared primitive components under components/ui.
	LayerUI = "ui"
	// LayerLayout marks structural components under components/layout.
	LayerLayout = "layout"
	// LayerPage marks route entry points (app/**/page.*).
	LayerPage = "page"

	// MinSegments and MaxSegments bound the identifier length, layer
	// segment included.
	MinSegments = 2
	MaxSegments = 4

	// Pattern is the format every identifier must match.
	Pattern = `[a-z]+(-[a-z]+){1,3}`

	// DefaultExport is the synthetic export name for default exports.
	DefaultExport = "default"
)

var identifierRe = regexp.MustCompile(`^` + Pattern + `$`)

// Valid reports whether id matches the 2-4 segment kebab-case pattern.
func Valid(id string) bool {
	return identifierRe.MatchString(id)
}

// Layer returns the first segment of an identifier.
func Layer(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// Resolve maps a component location to its identifier.
//
// The algorithm, in order: detect the layer from the path, derive element
// tokens from the export name (or the route folder chain for default
// exports), strip a leading token run duplicating the enclosing folder's
// slug, then compose and validate {layer}-{tokens}.
func Resolve(filePath, exportName string) (string, error) {
	segs := splitPath(filePath)

	layer, err := DetectLayer(filePath)
	if err != nil {
		return "", err
	}

	var tokens []string
	if exportName == "" || exportName == DefaultExport {
		tokens = tokensFromPath(segs, layer)
	} else {
		tokens = KebabTokens(exportName)
		tokens = stripFolderPrefix(tokens, parentFolder(segs))
	}

	all := append([]string{layer}, tokens...)
	if len(all) > MaxSegments {
		return "", &TooLongError{Identifier: strings.Join(all, "-"), Segments: len(all)}
	}

	id := strings.Join(all, "-")
	if !Valid(id) {
		return "", &MalformedError{Identifier: id}
	}
	return id, nil
}

// DetectLayer walks path segments applying the conventions in fixed
// precedence order: components/ui, components/layout, components/{domain},
// app/**/page.*. The first match wins. For a free-form domain, the layer
// IS the domain segment verbatim.
func DetectLayer(filePath string) (string, error) {
	segs := splitPath(filePath)

	for i, seg := range segs {
		if seg != "components" || i+1 >= len(segs) {
			continue
		}
		next := segs[i+1]
		switch next {
		case "ui":
			return LayerUI, nil
		case "layout":
			return LayerLayout, nil
		default:
			// A domain must be a directory, not the component file itself.
			if i+1 < len(segs)-1 {
				return next, nil
			}
		}
	}

	base := segs[len(segs)-1]
	if strings.HasPrefix(base, "page.") {
		for _, seg := range segs[:len(segs)-1] {
			if seg == "app" {
				return LayerPage, nil
			}
		}
	}

	return "", &UnresolvedLayerError{Path: filePath}
}

// tokensFromPath derives element tokens for default exports from the
// nearest meaningful path segments.
//
// For pages this is the route folder chain below app/, with route groups
// "(group)" and dynamic segments "[param]" dropped and repeated segments
// collapsed (app/objects/objects-list → objects, list). For everything
// else it is the immediately enclosing folder's slug, or the file's own
// base name when the folder is the domain folder itself.
func tokensFromPath(segs []string, layer string) []string {
	if layer == LayerPage {
		return routeTokens(segs)
	}

	folder := parentFolder(segs)
	base := fileBase(segs[len(segs)-1])
	switch folder {
	case "", "ui", "layout", "components":
		return strings.Split(base, "-")
	}
	if folder == base || base == "index" {
		return strings.Split(folder, "-")
	}
	return strings.Split(base, "-")
}

// routeTokens builds tokens from the folder chain between app/ and the
// page file, collapsing consecutively repeated tokens.
func routeTokens(segs []string) []string {
	start := -1
	for i, seg := range segs[:len(segs)-1] {
		if seg == "app" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var tokens []string
	for _, seg := range segs[start : len(segs)-1] {
		if seg == "" || strings.HasPrefix(seg, "(") || strings.HasPrefix(seg, "[") {
			continue
		}
		for _, tok := range strings.Split(seg, "-") {
			if len(tokens) > 0 && tokens[len(tokens)-1] == tok {
				continue
			}
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		tokens = []string{"home"}
	}
	return tokens
}

// stripFolderPrefix drops a leading token run that duplicates the
// enclosing folder's slug. The rule only fires for hyphenated folder
// slugs; a single-token folder like "card" legitimately prefixes names
// such as card-header.
func stripFolderPrefix(tokens []string, folder string) []string {
	if folder == "" || !strings.Contains(folder, "-") {
		return tokens
	}
	folderTokens := strings.Split(folder, "-")
	if len(tokens) < len(folderTokens) {
		return tokens
	}
	for i, ft := range folderTokens {
		if tokens[i] != ft {
			return tokens
		}
	}
	// Keep the last folder token so the identifier stays meaningful:
	// dashboard-sidebar + DashboardSidebar → sidebar.
	return tokens[len(folderTokens)-1:]
}

// KebabTokens splits a camel/Pascal-case name into lowercase tokens.
// Consecutive uppercase runs stay together until the run ends:
// URLInput → [url, input], CardHeader → [card, header].
func KebabTokens(name string) []string {
	var tokens []string
	runes := []rune(name)
	start := 0
	for i := 1; i < len(runes); i++ {
		boundary := false
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			boundary = true
		} else if unicode.IsUpper(runes[i-1]) && unicode.IsUpper(runes[i]) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			tokens = append(tokens, strings.ToLower(string(runes[start:i])))
			start = i
		}
	}
	tokens = append(tokens, strings.ToLower(string(runes[start:])))
	return tokens
}

// splitPath normalizes a file path into forward-slash segments.
func splitPath(filePath string) []string {
	clean := path.Clean(filepath.ToSlash(filePath))
	return strings.Split(strings.TrimPrefix(clean, "/"), "/")
}

// parentFolder returns the immediately enclosing folder's name, or "".
func parentFolder(segs []string) string {
	if len(segs) < 2 {
		return ""
	}
	return segs[len(segs)-2]
}

// fileBase strips the extension chain from a file name (button.test.tsx → button).
func fileBase(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
