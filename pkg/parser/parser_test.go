package parser

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(logger)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path     string
		expected Language
	}{
		{"components/ui/button.tsx", LanguageTypeScript},
		{"lib/util.ts", LanguageTypeScript},
		{"components/legacy/nav.jsx", LanguageJavaScript},
		{"lib/helpers.js", LanguageJavaScript},
		{"styles/app.css", LanguageUnknown},
		{"README.md", LanguageUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectLanguage(tt.path), tt.path)
	}
}

func TestIsTSXFile(t *testing.T) {
	assert.True(t, IsTSXFile("button.tsx"))
	assert.False(t, IsTSXFile("nav.jsx"), "jsx files use the JavaScript grammar")
	assert.False(t, IsTSXFile("util.ts"))
	assert.False(t, IsTSXFile("helpers.js"))
}

func TestParse_TSX(t *testing.T) {
	m := newTestManager(t)

	tree, err := m.Parse([]byte(`
export function Button() {
  return <button className="btn">Go</button>;
}
`), LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParse_ReportsSyntaxErrors(t *testing.T) {
	m := newTestManager(t)

	tree, err := m.Parse([]byte("export function Broken() { return <div\n}"), LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestParseFile_PicksGrammarFromExtension(t *testing.T) {
	m := newTestManager(t)

	tree, err := m.ParseFile([]byte("const x = <div />;"), "nav.jsx")
	require.NoError(t, err)
	defer tree.Close()
	assert.False(t, tree.RootNode().HasError())
}

func TestParse_Concurrent(t *testing.T) {
	m := newTestManager(t)
	source := []byte("export const A = () => <div />;")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := m.Parse(source, LanguageTypeScript, true)
			assert.NoError(t, err)
			if tree != nil {
				tree.Close()
			}
		}()
	}
	wg.Wait()
}
