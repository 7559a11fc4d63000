package diffview

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
	ansiBold  = "\x1b[1m"
)

const defaultContext = 3

// Options control diff rendering.
type Options struct {
	// Color wraps added, removed, and hunk lines in ANSI colors.
	Color bool
	// Context is the number of unchanged lines shown around each hunk.
	// Zero means the default of three.
	Context int
}

type lineOp int

const (
	opEqual lineOp = iota
	opDelete
	opInsert
)

type diffLine struct {
	op   lineOp
	text string
}

// Unified renders a unified-style diff of old and new content, labelled with
// path in the customary a/ and b/ prefixes. It returns "" when the contents
// are identical.
func Unified(path, oldText, newText string, opts Options) string {
	if oldText == newText {
		return ""
	}
	contextLines := opts.Context
	if contextLines <= 0 {
		contextLines = defaultContext
	}

	lines := diffLines(oldText, newText)
	hunks := groupHunks(lines, contextLines)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	writeHeader(&b, fmt.Sprintf("--- a/%s", path), opts.Color)
	writeHeader(&b, fmt.Sprintf("+++ b/%s", path), opts.Color)
	for _, h := range hunks {
		renderHunk(&b, h, opts.Color)
	}
	return b.String()
}

func writeHeader(b *strings.Builder, text string, color bool) {
	if color {
		b.WriteString(ansiBold)
		b.WriteString(text)
		b.WriteString(ansiReset)
	} else {
		b.WriteString(text)
	}
	b.WriteByte('\n')
}

// diffLines produces a per-line edit script via the diff engine's line mode.
func diffLines(oldText, newText string) []diffLine {
	dmp := diffmatchpatch.New()
	encodedOld, encodedNew, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(encodedOld, encodedNew, false), lineArray)

	var out []diffLine
	for _, d := range diffs {
		op := opEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = opDelete
		case diffmatchpatch.DiffInsert:
			op = opInsert
		}
		segment := strings.Split(d.Text, "\n")
		if len(segment) > 0 && segment[len(segment)-1] == "" {
			segment = segment[:len(segment)-1]
		}
		for _, text := range segment {
			out = append(out, diffLine{op: op, text: text})
		}
	}
	return out
}

type hunk struct {
	oldStart int
	oldCount int
	newStart int
	newCount int
	lines    []diffLine
}

// groupHunks slices the edit script into hunks, keeping contextLines of
// unchanged text around each run of changes and merging runs whose context
// would overlap.
func groupHunks(lines []diffLine, contextLines int) []hunk {
	oldAt := make([]int, len(lines)+1)
	newAt := make([]int, len(lines)+1)
	oldLine, newLine := 1, 1
	for i, line := range lines {
		oldAt[i], newAt[i] = oldLine, newLine
		switch line.op {
		case opDelete:
			oldLine++
		case opInsert:
			newLine++
		default:
			oldLine++
			newLine++
		}
	}
	oldAt[len(lines)], newAt[len(lines)] = oldLine, newLine

	var hunks []hunk
	i := 0
	for i < len(lines) {
		if lines[i].op == opEqual {
			i++
			continue
		}
		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i
		gap := 0
		for end < len(lines) {
			if lines[end].op == opEqual {
				gap++
				if gap > contextLines*2 {
					break
				}
			} else {
				gap = 0
			}
			end++
		}
		// Trim trailing context back down to contextLines.
		trailing := 0
		for end > i && lines[end-1].op == opEqual {
			trailing++
			end--
		}
		if trailing > contextLines {
			trailing = contextLines
		}
		end += trailing

		h := hunk{
			oldStart: oldAt[start],
			newStart: newAt[start],
			lines:    lines[start:end],
		}
		for _, line := range h.lines {
			switch line.op {
			case opDelete:
				h.oldCount++
			case opInsert:
				h.newCount++
			default:
				h.oldCount++
				h.newCount++
			}
		}
		hunks = append(hunks, h)
		i = end
	}
	return hunks
}

func renderHunk(b *strings.Builder, h hunk, color bool) {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
	if color {
		b.WriteString(ansiCyan)
		b.WriteString(header)
		b.WriteString(ansiReset)
	} else {
		b.WriteString(header)
	}
	b.WriteByte('\n')
	for _, line := range h.lines {
		switch line.op {
		case opDelete:
			writeLine(b, "-", line.text, ansiRed, color)
		case opInsert:
			writeLine(b, "+", line.text, ansiGreen, color)
		default:
			writeLine(b, " ", line.text, "", false)
		}
	}
}

func writeLine(b *strings.Builder, prefix, text, ansi string, color bool) {
	if color && ansi != "" {
		b.WriteString(ansi)
		b.WriteString(prefix)
		b.WriteString(text)
		b.WriteString(ansiReset)
	} else {
		b.WriteString(prefix)
		b.WriteString(text)
	}
	b.WriteByte('\n')
}
