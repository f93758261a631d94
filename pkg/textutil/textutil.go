// Package textutil holds small text checks shared by the patcher and the
// report views.
package textutil

import "strings"

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary reports whether content has a null byte within the first
// BinarySniffLength bytes. Empty content is not binary.
func IsBinary(content string) bool {
	sniff := content
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return strings.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in content.
// A trailing partial line counts; empty content has zero lines.
func CountLines(content string) int {
	if content == "" {
		return 0
	}

	lines := strings.Count(content, "\n")

	if !strings.HasSuffix(content, "\n") {
		lines++
	}

	return lines
}

// LineEnding returns "\r\n" when content uses CRLF line breaks, "\n" otherwise.
func LineEnding(content string) string {
	idx := strings.IndexByte(content, '\n')
	if idx > 0 && content[idx-1] == '\r' {
		return "\r\n"
	}

	return "\n"
}
