package patch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookpatch/pkg/patch"
)

const loginSource = "import React from 'react';\n" +
	"const Login: React.FC<Props> = () => {\n" +
	"  return null;\n" +
	"};"

func TestApply_LoginScenario(t *testing.T) {
	t.Parallel()

	got, out := patch.DefaultFragments().Apply(loginSource)

	want := "import { useScrollToTop } from '../hooks/useScrollToTop';\n" +
		"import React from 'react';\n" +
		"const Login: React.FC<Props> = () => {\n" +
		"  useScrollToTop();\n" +
		"  return null;\n" +
		"};"

	assert.Equal(t, want, got)
	assert.True(t, out.ImportInserted)
	assert.True(t, out.CallInserted)
	assert.False(t, out.AlreadyPatched)
	assert.True(t, out.Changed())
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	frags := patch.DefaultFragments()

	once, _ := frags.Apply(loginSource)
	twice, out := frags.Apply(once)

	assert.Equal(t, once, twice)
	assert.True(t, out.AlreadyPatched)
	assert.False(t, out.Changed())
}

func TestApply_SingleCallFragment(t *testing.T) {
	t.Parallel()

	src := loginSource + "\nconst Other: React.FC = () => {\n  return null;\n};"

	got, _ := patch.DefaultFragments().Apply(src)

	assert.Equal(t, 1, strings.Count(got, patch.DefaultCallLine))
}

func TestApply_NoAnchorsUnchanged(t *testing.T) {
	t.Parallel()

	src := "export function helper() {\n  return 1;\n}\n"

	got, out := patch.DefaultFragments().Apply(src)

	assert.Equal(t, src, got)
	assert.False(t, out.Changed())
	assert.False(t, out.AlreadyPatched)
}

func TestApply_ImportOnlyFirstOccurrence(t *testing.T) {
	t.Parallel()

	src := "import React from 'react';\n// import React twice in a comment\n"

	got, out := patch.DefaultFragments().Apply(src)

	assert.True(t, out.ImportInserted)
	assert.False(t, out.CallInserted)
	assert.Equal(t, 1, strings.Count(got, patch.DefaultImportLine))
	assert.True(t, strings.HasPrefix(got, patch.DefaultImportLine+"\nimport React"))
}

func TestApply_CallWithoutImportAnchor(t *testing.T) {
	t.Parallel()

	src := "import { FC } from 'react';\nconst Page: React.FC = () => {\n};\n"

	got, out := patch.DefaultFragments().Apply(src)

	assert.False(t, out.ImportInserted)
	assert.True(t, out.CallInserted)
	assert.Contains(t, got, "const Page: React.FC = () => {\n  useScrollToTop();\n};")
}

func TestFindCallInsertionPoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantOK  bool
		wantEnd int
	}{
		{name: "simple", content: "const A: React.FC = () => {}", wantOK: true, wantEnd: 27},
		{name: "generic props", content: "const A: React.FC<P> = () => {", wantOK: true, wantEnd: 30},
		{name: "multiline generic", content: "const A: React.FC<\n  P\n> = () => {", wantOK: true, wantEnd: 34},
		{name: "destructured props", content: "const A: React.FC<P> = ({ a }) => {", wantOK: false},
		{name: "function declaration", content: "function A() {", wantOK: false},
		{name: "empty", content: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			end, ok := patch.FindCallInsertionPoint(tt.content)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantEnd, end)
				assert.Equal(t, "{", tt.content[end-1:end])
			}
		})
	}
}

func TestFragments_CustomPattern(t *testing.T) {
	t.Parallel()

	re, err := patch.CompilePattern(`function \w+\(\) \{`)
	require.NoError(t, err)

	frags := patch.DefaultFragments()
	frags.CallPattern = re

	got, out := frags.Apply("function Home() {\n  return null;\n}")

	assert.True(t, out.CallInserted)
	assert.Equal(t, "function Home() {\n  useScrollToTop();\n  return null;\n}", got)
}

func TestCompilePattern_Invalid(t *testing.T) {
	t.Parallel()

	_, err := patch.CompilePattern(`const (`)
	require.ErrorIs(t, err, patch.ErrInvalidPattern)
}

func TestFragments_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, patch.DefaultFragments().Validate())

	noMarker := patch.DefaultFragments()
	noMarker.Marker = ""
	require.ErrorIs(t, noMarker.Validate(), patch.ErrEmptyMarker)

	badCall := patch.DefaultFragments()
	badCall.CallLine = "  doSomething();"
	require.ErrorIs(t, badCall.Validate(), patch.ErrMarkerNotInFragment)
}

func TestFragments_NilPatternFallsBack(t *testing.T) {
	t.Parallel()

	frags := patch.Fragments{Marker: "x", CallLine: "  x();"}

	end, ok := frags.FindCallInsertionPoint("const A: React.FC = () => {")
	assert.True(t, ok)
	assert.Equal(t, 27, end)
}

func TestApply_KeepsCRLF(t *testing.T) {
	t.Parallel()

	src := strings.ReplaceAll(loginSource, "\n", "\r\n")

	got, out := patch.DefaultFragments().Apply(src)

	want := "import { useScrollToTop } from '../hooks/useScrollToTop';\r\n" +
		"import React from 'react';\r\n" +
		"const Login: React.FC<Props> = () => {\r\n" +
		"  useScrollToTop();\r\n" +
		"  return null;\r\n" +
		"};"

	assert.True(t, out.Changed())
	assert.Equal(t, want, got)
}
