// Package compare diffs archive members line by line and archive listings entry by entry.
package compare

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine represents a single line in the diff output
type DiffLine struct {
	LineNum1 int    // Line number in the first member (0 if added)
	LineNum2 int    // Line number in the second member (0 if deleted)
	Type     rune   // '+' added, '-' deleted, ' ' unchanged
	Content  string // Line content
}

// FileDiffResult contains the line-by-line diff of two members
type FileDiffResult struct {
	Path1    string
	Path2    string
	Lines    []DiffLine
	IsBinary bool
	Added    int
	Deleted  int
}

// Identical reports whether no line was added or deleted.
func (r *FileDiffResult) Identical() bool {
	return !r.IsBinary && r.Added == 0 && r.Deleted == 0
}

// IsBinaryContent checks if content appears to be binary
func IsBinaryContent(content string) bool {
	if len(content) == 0 {
		return false
	}
	// Check first 8000 bytes for null bytes or invalid UTF-8
	sample := content[:min(len(content), 8000)]

	if strings.Contains(sample, "\x00") {
		return true
	}
	return !utf8.ValidString(sample)
}

// Files computes the line-by-line diff between two member contents.
func Files(path1, path2 string, content1, content2 []byte) *FileDiffResult {
	result := &FileDiffResult{
		Path1: path1,
		Path2: path2,
	}

	text1, text2 := string(content1), string(content2)
	if IsBinaryContent(text1) || IsBinaryContent(text2) {
		result.IsBinary = true
		return result
	}

	result.Lines = lineDiff(text1, text2)
	for _, l := range result.Lines {
		switch l.Type {
		case '+':
			result.Added++
		case '-':
			result.Deleted++
		}
	}
	return result
}

// lineDiff runs go-diff in line mode and numbers the resulting lines.
func lineDiff(text1, text2 string) []DiffLine {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(text1, text2)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []DiffLine
	n1, n2 := 0, 0
	for _, d := range diffs {
		for _, content := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				n1++
				n2++
				lines = append(lines, DiffLine{LineNum1: n1, LineNum2: n2, Type: ' ', Content: content})
			case diffmatchpatch.DiffDelete:
				n1++
				lines = append(lines, DiffLine{LineNum1: n1, Type: '-', Content: content})
			case diffmatchpatch.DiffInsert:
				n2++
				lines = append(lines, DiffLine{LineNum2: n2, Type: '+', Content: content})
			}
		}
	}
	return lines
}

// splitLines splits text into lines without their terminators.
// A trailing newline does not start an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
