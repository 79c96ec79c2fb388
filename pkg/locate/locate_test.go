package locate

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/seltag/pkg/component"
	"github.com/gnana997/seltag/pkg/parser"
)

func findTarget(t *testing.T, source, export string) (Target, []byte) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	parsers := parser.NewManager(logger)
	t.Cleanup(func() { parsers.Close() })

	src := []byte(source)
	tree, err := parsers.Parse(src, parser.LanguageTypeScript, true)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	require.False(t, tree.RootNode().HasError(), "fixture must parse cleanly")

	units := component.Discover(tree.RootNode(), src, "components/ui/button/button.tsx")
	for _, unit := range units {
		if unit.Name == export {
			return Find(unit, src), src
		}
	}
	t.Fatalf("export %q not discovered", export)
	return Target{}, nil
}

func TestFind_PlainElement(t *testing.T) {
	target, src := findTarget(t, `
export function Button() {
  return <button className="btn">Go</button>;
}
`, "Button")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetElement, target.Kind)
	assert.Equal(t, "button", string(src[target.InsertAt-6:target.InsertAt]))
}

func TestFind_ArrowExpressionBody(t *testing.T) {
	target, _ := findTarget(t, `
export const Badge = () => <span className="badge" />;
`, "Badge")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetElement, target.Kind)
}

func TestFind_ParenthesizedArrowBody(t *testing.T) {
	target, _ := findTarget(t, `
export const Card = () => (
  <div className="card">
    <p>content</p>
  </div>
);
`, "Card")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetElement, target.Kind)
}

func TestFind_FragmentDescendsToFirstElement(t *testing.T) {
	target, src := findTarget(t, `
export function Panel() {
  return (
    <>
      <section className="panel">body</section>
      <footer>after</footer>
    </>
  );
}
`, "Panel")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, "section", string(src[target.InsertAt-7:target.InsertAt]))
}

func TestFind_NamedFragmentTag(t *testing.T) {
	target, src := findTarget(t, `
import React from "react";

export function Pair() {
  return (
    <React.Fragment>
      <div className="pair" />
    </React.Fragment>
  );
}
`, "Pair")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, "div", string(src[target.InsertAt-3:target.InsertAt]))
}

func TestFind_SlotRoot(t *testing.T) {
	target, _ := findTarget(t, `
import { Slot } from "@radix-ui/react-slot";

export function Trigger({ children }) {
  return <Slot>{children}</Slot>;
}
`, "Trigger")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetSlot, target.Kind)
}

func TestFind_PrimitiveRoot(t *testing.T) {
	target, _ := findTarget(t, `
import * as DialogPrimitive from "@radix-ui/react-dialog";

export function DialogContent(props) {
  return <DialogPrimitive.Content {...props} />;
}
`, "DialogContent")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetPrimitive, target.Kind)
}

func TestFind_ForwardRef(t *testing.T) {
	target, _ := findTarget(t, `
import * as React from "react";

export const Input = React.forwardRef<HTMLInputElement, InputProps>(
  (props, ref) => (
    <input ref={ref} {...props} />
  )
);
`, "Input")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetElement, target.Kind)
}

func TestFind_CloneElement(t *testing.T) {
	target, src := findTarget(t, `
import React from "react";

export function Wrapper({ child }) {
  return React.cloneElement(child, { onClick: noop });
}
`, "Wrapper")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, TargetCloneProps, target.Kind)
	assert.Equal(t, byte('{'), src[target.InsertAt-1])
}

func TestFind_CloneElementWithoutProps(t *testing.T) {
	target, _ := findTarget(t, `
import React from "react";

export function Passthrough({ child }) {
  return React.cloneElement(child);
}
`, "Passthrough")

	assert.Equal(t, NoTarget, target.Status)
}

func TestFind_AlreadyTagged(t *testing.T) {
	target, _ := findTarget(t, `
export function Button() {
  return <button data-ui="ui-button">Go</button>;
}
`, "Button")

	require.Equal(t, AlreadyTagged, target.Status)
	assert.Equal(t, "ui-button", target.Existing)
}

func TestFind_EarlyReturnSkipsGuards(t *testing.T) {
	target, src := findTarget(t, `
export function List({ items, loading }) {
  if (loading) {
    return null;
  }
  return <ul className="list">{items}</ul>;
}
`, "List")

	require.Equal(t, Found, target.Status)
	assert.Equal(t, "ul", string(src[target.InsertAt-2:target.InsertAt]))
}

func TestFind_NoTarget(t *testing.T) {
	tests := []struct {
		name   string
		source string
		export string
	}{
		{
			name: "ternary render",
			source: `
export function Maybe({ on }) {
  return on ? <a /> : <b />;
}
`,
			export: "Maybe",
		},
		{
			name: "null render",
			source: `
export function Nothing() {
  return null;
}
`,
			export: "Nothing",
		},
		{
			name: "empty fragment",
			source: `
export function Empty() {
  return <></>;
}
`,
			export: "Empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, _ := findTarget(t, tt.source, tt.export)
			assert.Equal(t, NoTarget, target.Status)
		})
	}
}
