// Package inject drives the identifier pass: discover source files, find
// their exported components, resolve each component's identifier, and
// insert the attribute at the component's root element.
//
// Runs are idempotent. A file whose components all carry their resolved
// identifiers is never rewritten, so the pass is safe to wire into format
// hooks and watch loops.
package inject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/seltag/pkg/component"
	"github.com/gnana997/seltag/pkg/locate"
	"github.com/gnana997/seltag/pkg/naming"
	"github.com/gnana997/seltag/pkg/parser"
	"github.com/gnana997/seltag/pkg/util"
)

// stampCacheSize bounds the per-file freshness cache used by watch loops.
const stampCacheSize = 4096

// Options configures one injection run.
type Options struct {
	// Root is the project directory paths are resolved against. Layer
	// detection works on paths relative to it.
	Root string
	// Include and Exclude are doublestar globs relative to Root.
	Include []string
	Exclude []string
	// Check reports would-be injections as diagnostics instead of
	// writing files.
	Check bool
	// Workers overrides the worker count; zero picks a size from the
	// CPU count.
	Workers int
}

// Result aggregates one run.
type Result struct {
	FilesScanned  int
	FilesChanged  int
	Injected      int
	AlreadyTagged int
	Diagnostics   []Diagnostic
	Duration      time.Duration
}

// HasErrors reports whether any diagnostic is error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// fileResult is the per-file unit of work passed out of the worker pool.
type fileResult struct {
	filePath    string
	changed     bool
	injected    int
	tagged      int
	diagnostics []Diagnostic
}

type fileStamp struct {
	modTime int64
	size    int64
}

// Injector owns the parser pool and the freshness cache shared across
// runs.
type Injector struct {
	parsers *parser.Manager
	logger  *slog.Logger

	// stamps remembers the mtime/size of files whose last run was clean,
	// letting watch-driven re-runs skip unchanged files.
	stamps *lru.Cache[string, fileStamp]
}

// New creates an injector on top of a parser manager.
func New(parsers *parser.Manager, logger *slog.Logger) (*Injector, error) {
	stamps, err := lru.New[string, fileStamp](stampCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating stamp cache: %w", err)
	}
	return &Injector{
		parsers: parsers,
		logger:  logger,
		stamps:  stamps,
	}, nil
}

// Run discovers files under opts.Root and processes them.
func (inj *Injector) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := DiscoverFiles(opts.Root, opts.Include, opts.Exclude, inj.logger)
	if err != nil {
		return nil, err
	}
	return inj.RunFiles(ctx, files, opts)
}

// RunFiles processes an explicit file list through the worker pool and
// merges the per-file results deterministically.
func (inj *Injector) RunFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = util.GetOptimalPoolSize()
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	jobs := make(chan string, len(files))
	results := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- inj.processFile(path, opts)
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
	close(results)

	collected := make([]fileResult, 0, len(files))
	for fr := range results {
		collected = append(collected, fr)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].filePath < collected[j].filePath
	})

	result := &Result{FilesScanned: len(files)}
	for _, fr := range collected {
		if fr.changed {
			result.FilesChanged++
		}
		result.Injected += fr.injected
		result.AlreadyTagged += fr.tagged
		result.Diagnostics = append(result.Diagnostics, fr.diagnostics...)
	}
	sortDiagnostics(result.Diagnostics)
	result.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	inj.logger.Info("injection run complete",
		"files", result.FilesScanned,
		"changed", result.FilesChanged,
		"injected", result.Injected,
		"diagnostics", len(result.Diagnostics),
		"duration", result.Duration)
	return result, nil
}

type edit struct {
	at   uint
	text string
}

func (inj *Injector) processFile(path string, opts Options) fileResult {
	fr := fileResult{filePath: path}
	rel := util.RelPath(opts.Root, path)

	info, err := os.Stat(path)
	if err != nil {
		fr.diagnostics = append(fr.diagnostics, Diagnostic{
			FilePath: rel,
			Code:     CodeParseError,
			Message:  fmt.Sprintf("cannot stat file: %v", err),
			Severity: SeverityError,
		})
		return fr
	}
	stamp := fileStamp{modTime: info.ModTime().UnixNano(), size: info.Size()}
	if prev, ok := inj.stamps.Get(path); ok && prev == stamp {
		return fr
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fr.diagnostics = append(fr.diagnostics, Diagnostic{
			FilePath: rel,
			Code:     CodeParseError,
			Message:  fmt.Sprintf("cannot read file: %v", err),
			Severity: SeverityError,
		})
		return fr
	}

	lang := parser.DetectLanguage(path)
	if lang == parser.LanguageUnknown {
		return fr
	}

	tree, err := inj.parsers.Parse(source, lang, parser.IsTSXFile(path))
	if err != nil {
		fr.diagnostics = append(fr.diagnostics, Diagnostic{
			FilePath: rel,
			Code:     CodeParseError,
			Message:  err.Error(),
			Severity: SeverityError,
		})
		return fr
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		fr.diagnostics = append(fr.diagnostics, Diagnostic{
			FilePath: rel,
			Line:     firstErrorLine(root),
			Code:     CodeParseError,
			Message:  "file has syntax errors, skipping",
			Severity: SeverityError,
		})
		return fr
	}

	units := component.Discover(root, source, rel)
	sort.Slice(units, func(i, j int) bool { return units[i].StartByte < units[j].StartByte })

	var edits []edit
	seen := map[uint]bool{}
	for _, unit := range units {
		id, err := naming.Resolve(rel, unit.Name)
		if err != nil {
			fr.diagnostics = append(fr.diagnostics, resolveDiagnostic(rel, unit, err))
			continue
		}

		target := locate.Find(unit, source)
		switch target.Status {
		case locate.NoTarget:
			// An uninjectable component is advisory during normal runs but
			// must fail check-only runs: the tree cannot be brought into a
			// fully tagged state.
			severity := SeverityWarning
			if opts.Check {
				severity = SeverityError
			}
			fr.diagnostics = append(fr.diagnostics, Diagnostic{
				FilePath: rel,
				Export:   unit.Name,
				Line:     unit.Line,
				Code:     CodeNoTarget,
				Message:  "component render output has no injectable root element",
				Severity: severity,
			})
		case locate.AlreadyTagged:
			// A developer's explicit identifier always wins and is never
			// replaced, even when it differs from the resolved one.
			fr.tagged++
			if target.Existing != id {
				fr.diagnostics = append(fr.diagnostics, Diagnostic{
					FilePath: rel,
					Export:   unit.Name,
					Line:     target.Line,
					Code:     CodeMismatch,
					Message:  fmt.Sprintf("root element keeps manual identifier %q, resolver derives %q", target.Existing, id),
					Severity: SeverityWarning,
				})
			}
		case locate.Found:
			// Multiple exports can resolve to the same root element; the
			// first declared export names it.
			if seen[target.InsertAt] {
				fr.tagged++
				continue
			}
			seen[target.InsertAt] = true

			if opts.Check {
				fr.diagnostics = append(fr.diagnostics, Diagnostic{
					FilePath: rel,
					Export:   unit.Name,
					Line:     target.Line,
					Code:     CodeMissingIdentifier,
					Message:  fmt.Sprintf("missing %s=%q", locate.Attribute, id),
					Severity: SeverityError,
				})
				continue
			}
			edits = append(edits, edit{at: target.InsertAt, text: editText(target.Kind, id)})
		}
	}

	if len(edits) > 0 {
		updated := applyEdits(source, edits)
		if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
			fr.diagnostics = append(fr.diagnostics, Diagnostic{
				FilePath: rel,
				Code:     CodeParseError,
				Message:  fmt.Sprintf("cannot write file: %v", err),
				Severity: SeverityError,
			})
			return fr
		}
		fr.changed = true
		fr.injected = len(edits)
		inj.logger.Debug("injected identifiers", "file", rel, "count", len(edits))
		return fr
	}

	// Clean and untouched: remember the stamp so watch re-runs skip it.
	if len(fr.diagnostics) == 0 {
		inj.stamps.Add(path, stamp)
	}
	return fr
}

// editText renders the inserted text for a target kind. Element-like
// targets get a JSX attribute after the tag name; clone targets get a
// leading property inside the props object.
func editText(kind locate.TargetKind, id string) string {
	if kind == locate.TargetCloneProps {
		return fmt.Sprintf("%q: %q, ", locate.Attribute, id)
	}
	return fmt.Sprintf(" %s=%q", locate.Attribute, id)
}

// applyEdits inserts edit texts back-to-front so earlier offsets stay
// valid.
func applyEdits(source []byte, edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].at > edits[j].at })

	out := source
	for _, e := range edits {
		at := int(e.at)
		if at > len(out) {
			at = len(out)
		}
		buf := make([]byte, 0, len(out)+len(e.text))
		buf = append(buf, out[:at]...)
		buf = append(buf, e.text...)
		buf = append(buf, out[at:]...)
		out = buf
	}
	return out
}

func resolveDiagnostic(rel string, unit component.Unit, err error) Diagnostic {
	d := Diagnostic{
		FilePath: rel,
		Export:   unit.Name,
		Line:     unit.Line,
		Message:  err.Error(),
		Severity: SeverityError,
	}

	var layerErr *naming.UnresolvedLayerError
	var tooLong *naming.TooLongError
	var malformed *naming.MalformedError
	switch {
	case errors.As(err, &layerErr):
		d.Code = CodeUnresolvedLayer
	case errors.As(err, &tooLong):
		d.Code = CodeTooLong
	case errors.As(err, &malformed):
		d.Code = CodeMalformed
	default:
		d.Code = CodeMalformed
	}
	return d
}

func firstErrorLine(node *ts.Node) uint {
	if node.IsError() || node.IsMissing() {
		return uint(node.StartPosition().Row) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if line := firstErrorLine(node.Child(i)); line > 0 {
			return line
		}
	}
	return 0
}

func sortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		if diags[i].FilePath != diags[j].FilePath {
			return diags[i].FilePath < diags[j].FilePath
		}
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Export < diags[j].Export
	})
}
