package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/seltag/pkg/inject"
	"github.com/gnana997/seltag/pkg/parser"
)

func TestNew_DefaultsDebounce(t *testing.T) {
	w := New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	assert.Equal(t, DefaultDebounce, w.debounce)

	w = New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)
	assert.Equal(t, time.Second, w.debounce)
}

func TestWatcher_InitialRunAndChange(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "components", "ui")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	first := filepath.Join(dir, "button.tsx")
	require.NoError(t, os.WriteFile(first, []byte(`
export function Button() {
  return <button className="btn">Go</button>;
}
`), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parsers := parser.NewManager(logger)
	t.Cleanup(func() { parsers.Close() })

	injector, err := inject.New(parsers, logger)
	require.NoError(t, err)

	opts := inject.Options{
		Root:    root,
		Include: []string{"**/*.tsx"},
	}

	results := make(chan *inject.Result, 8)
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := New(injector, logger, 50*time.Millisecond)
	go func() {
		done <- watcher.Run(ctx, opts, func(r *inject.Result) { results <- r })
	}()

	initial := waitResult(t, results)
	assert.Equal(t, 1, initial.Injected)

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), `data-ui="ui-button"`))

	// A new file in a watched directory triggers a debounced run. The
	// injector's own writes also raise events, so poll for the outcome
	// instead of counting runs.
	second := filepath.Join(dir, "badge.tsx")
	require.NoError(t, os.WriteFile(second, []byte(`
export const Badge = () => <span className="badge" />;
`), 0o644))

	require.Eventually(t, func() bool {
		content, err := os.ReadFile(second)
		return err == nil && strings.Contains(string(content), `data-ui="ui-badge"`)
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func waitResult(t *testing.T, results <-chan *inject.Result) *inject.Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for a run result")
		return nil
	}
}
