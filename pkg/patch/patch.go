// Package patch inserts a hook import and a hook call into React component
// sources. Everything here is pure string work; callers own the filesystem.
package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/hookpatch/pkg/textutil"
)

// Default fragment values for the scroll-to-top migration.
const (
	DefaultMarker       = "useScrollToTop"
	DefaultImportAnchor = "import React"
	DefaultImportLine   = "import { useScrollToTop } from '../hooks/useScrollToTop';"
	DefaultCallLine     = "  useScrollToTop();"

	// DefaultCallPattern matches a typed function component declaration up to
	// the opening brace of its body. Dot matches newlines so that generic
	// props spanning several lines still match.
	DefaultCallPattern = `(?s)const \w+: React\.FC.*?= \(\) => \{`
)

// Sentinel errors.
var (
	ErrInvalidPattern      = errors.New("invalid call pattern")
	ErrEmptyMarker         = errors.New("marker must not be empty")
	ErrMarkerNotInFragment = errors.New("fragment does not contain the marker")
)

var defaultCallRE = regexp.MustCompile(DefaultCallPattern)

// Fragments describes what gets inserted and where.
type Fragments struct {
	// Marker is a substring whose presence means the file is already patched.
	Marker string

	// ImportAnchor is the text the import line is placed in front of.
	ImportAnchor string

	// ImportLine is inserted on its own line before the first ImportAnchor.
	ImportLine string

	// CallLine is inserted on its own line after the first CallPattern match.
	CallLine string

	// CallPattern locates the component body. Nil uses DefaultCallPattern.
	CallPattern *regexp.Regexp
}

// Outcome records which parts of a patch were applied to one content buffer.
type Outcome struct {
	AlreadyPatched bool `json:"already_patched" yaml:"already_patched"`
	ImportInserted bool `json:"import_inserted" yaml:"import_inserted"`
	CallInserted   bool `json:"call_inserted"   yaml:"call_inserted"`
}

// Changed reports whether Apply altered the content.
func (o Outcome) Changed() bool {
	return o.ImportInserted || o.CallInserted
}

// DefaultFragments returns the fragments of the scroll-to-top migration.
func DefaultFragments() Fragments {
	return Fragments{
		Marker:       DefaultMarker,
		ImportAnchor: DefaultImportAnchor,
		ImportLine:   DefaultImportLine,
		CallLine:     DefaultCallLine,
		CallPattern:  defaultCallRE,
	}
}

// CompilePattern compiles a call pattern expression.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return re, nil
}

// Validate checks that re-applying the fragments to their own output is a no-op.
// Both inserted lines must carry the marker, otherwise a second run would
// insert them again.
func (f Fragments) Validate() error {
	if f.Marker == "" {
		return ErrEmptyMarker
	}

	if f.ImportLine != "" && !strings.Contains(f.ImportLine, f.Marker) {
		return fmt.Errorf("%w: import line %q", ErrMarkerNotInFragment, f.ImportLine)
	}

	if f.CallLine != "" && !strings.Contains(f.CallLine, f.Marker) {
		return fmt.Errorf("%w: call line %q", ErrMarkerNotInFragment, f.CallLine)
	}

	return nil
}

// FindCallInsertionPoint returns the offset right after the first component
// declaration matched by DefaultCallPattern.
func FindCallInsertionPoint(content string) (int, bool) {
	return findEnd(defaultCallRE, content)
}

// FindCallInsertionPoint returns the offset right after the first match of
// the configured call pattern.
func (f Fragments) FindCallInsertionPoint(content string) (int, bool) {
	return findEnd(f.pattern(), content)
}

// Apply patches content. Content that already holds the marker is returned as is.
// Inserted lines follow the line ending already used by content.
func (f Fragments) Apply(content string) (string, Outcome) {
	var out Outcome

	if strings.Contains(content, f.Marker) {
		out.AlreadyPatched = true

		return content, out
	}

	nl := textutil.LineEnding(content)

	content, out.ImportInserted = f.insertImport(content, nl)
	content, out.CallInserted = f.insertCall(content, nl)

	return content, out
}

// insertImport places the import line before the first anchor only.
func (f Fragments) insertImport(content, nl string) (string, bool) {
	if f.ImportLine == "" || f.ImportAnchor == "" {
		return content, false
	}

	idx := strings.Index(content, f.ImportAnchor)
	if idx < 0 {
		return content, false
	}

	return content[:idx] + f.ImportLine + nl + content[idx:], true
}

func (f Fragments) insertCall(content, nl string) (string, bool) {
	if f.CallLine == "" {
		return content, false
	}

	end, ok := f.FindCallInsertionPoint(content)
	if !ok {
		return content, false
	}

	return content[:end] + nl + f.CallLine + content[end:], true
}

func (f Fragments) pattern() *regexp.Regexp {
	if f.CallPattern != nil {
		return f.CallPattern
	}

	return defaultCallRE
}

func findEnd(re *regexp.Regexp, content string) (int, bool) {
	loc := re.FindStringIndex(content)
	if loc == nil {
		return 0, false
	}

	return loc[1], true
}
