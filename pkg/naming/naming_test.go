package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		export   string
		expected string
	}{
		{
			name:     "ui primitive",
			path:     "components/ui/button/button.tsx",
			export:   "Button",
			expected: "ui-button",
		},
		{
			name:     "compound sub-component",
			path:     "components/ui/card/card.tsx",
			export:   "CardHeader",
			expected: "ui-card-header",
		},
		{
			name:     "layout with redundant folder prefix",
			path:     "components/layout/dashboard-sidebar/dashboard-sidebar.tsx",
			export:   "DashboardSidebar",
			expected: "layout-sidebar",
		},
		{
			name:     "prefix strip keeps suffix tokens",
			path:     "components/layout/dashboard-sidebar/nav.tsx",
			export:   "DashboardSidebarNav",
			expected: "layout-sidebar-nav",
		},
		{
			name:     "free-form domain",
			path:     "components/marketing/hero.tsx",
			export:   "Hero",
			expected: "marketing-hero",
		},
		{
			name:     "single-token folder is not stripped",
			path:     "components/ui/dialog/dialog.tsx",
			export:   "DialogTrigger",
			expected: "ui-dialog-trigger",
		},
		{
			name:     "uppercase acronym",
			path:     "components/ui/input/url-input.tsx",
			export:   "URLInput",
			expected: "ui-url-input",
		},
		{
			name:     "default export page",
			path:     "app/objects/list/page.tsx",
			export:   "default",
			expected: "page-objects-list",
		},
		{
			name:     "repeated route segments collapse",
			path:     "app/objects/objects-list/page.tsx",
			export:   "default",
			expected: "page-objects-list",
		},
		{
			name:     "route groups and params are dropped",
			path:     "app/(dashboard)/settings/[id]/page.tsx",
			export:   "default",
			expected: "page-settings",
		},
		{
			name:     "root page",
			path:     "app/page.tsx",
			export:   "default",
			expected: "page-home",
		},
		{
			name:     "default export under domain folder",
			path:     "components/marketing/hero-banner/index.tsx",
			export:   "default",
			expected: "marketing-hero-banner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Resolve(tt.path, tt.export)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	first, err := Resolve("components/ui/button/button.tsx", "Button")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		id, err := Resolve("components/ui/button/button.tsx", "Button")
		require.NoError(t, err)
		require.Equal(t, first, id)
	}
}

func TestResolve_UnresolvedLayer(t *testing.T) {
	_, err := Resolve("lib/hooks/use-thing.ts", "UseThing")
	require.Error(t, err)

	var layerErr *UnresolvedLayerError
	require.True(t, errors.As(err, &layerErr))
	assert.Equal(t, "lib/hooks/use-thing.ts", layerErr.Path)
}

func TestResolve_TooLong(t *testing.T) {
	_, err := Resolve("components/ui/menu/menu.tsx", "MenuContextSubTriggerIcon")
	require.Error(t, err)

	var tooLong *TooLongError
	require.True(t, errors.As(err, &tooLong))
	assert.Equal(t, 6, tooLong.Segments)
}

func TestResolve_Malformed(t *testing.T) {
	_, err := Resolve("components/ui/grid/grid.tsx", "Grid2")
	require.Error(t, err)

	var malformed *MalformedError
	require.True(t, errors.As(err, &malformed))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ui-button"))
	assert.True(t, Valid("page-objects-list"))
	assert.True(t, Valid("marketing-hero-banner-cta"))
	assert.False(t, Valid("ui"), "layer alone is too short")
	assert.False(t, Valid("ui-button-icon-left-extra"), "five segments")
	assert.False(t, Valid("ui-Button"))
	assert.False(t, Valid("ui-card2"))
	assert.False(t, Valid("ui--button"))
}

func TestLayer(t *testing.T) {
	assert.Equal(t, "ui", Layer("ui-button"))
	assert.Equal(t, "marketing", Layer("marketing-hero"))
}

func TestKebabTokens(t *testing.T) {
	assert.Equal(t, []string{"button"}, KebabTokens("Button"))
	assert.Equal(t, []string{"card", "header"}, KebabTokens("CardHeader"))
	assert.Equal(t, []string{"url", "input"}, KebabTokens("URLInput"))
	assert.Equal(t, []string{"dashboard", "sidebar"}, KebabTokens("DashboardSidebar"))
}
