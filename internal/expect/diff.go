package expect

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/plugtrace/plugtrace/internal/runlog"
)

// RenderDiff renders a line-oriented diff of the pretty-printed expected
// and received forms. Lines unique to expected are prefixed with "+",
// lines unique to received with "-", matching the legend in mismatch
// reports.
func RenderDiff(expected, received string, color runlog.ColorMode) string {
	a := difflib.SplitLines(expected)
	b := difflib.SplitLines(received)
	matcher := difflib.NewMatcher(a, b)

	var sb strings.Builder
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				sb.WriteString("  ")
				sb.WriteString(line)
			}
		case 'd':
			writeMarked(&sb, a[op.I1:op.I2], "+", runlog.Green, color)
		case 'i':
			writeMarked(&sb, b[op.J1:op.J2], "-", runlog.Red, color)
		case 'r':
			writeMarked(&sb, a[op.I1:op.I2], "+", runlog.Green, color)
			writeMarked(&sb, b[op.J1:op.J2], "-", runlog.Red, color)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeMarked(sb *strings.Builder, lines []string, marker string,
	paint func(string, runlog.ColorMode) string, color runlog.ColorMode) {
	for _, line := range lines {
		text := strings.TrimRight(line, "\n")
		sb.WriteString(paint(marker+" "+text, color))
		sb.WriteString("\n")
	}
}
