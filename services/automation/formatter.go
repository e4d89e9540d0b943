package automation

import (
	"fmt"
	"strings"
)

const traceWidth = 60

// FormatTrace renders an ordered list of node outputs as a human-legible
// trace: start/end banners bracketing one bordered block per node. Pure;
// safe to call any number of times on the same data.
func FormatTrace(outputs []NodeOutput) []string {
	lines := []string{
		banner("EXECUTION TRACE"),
	}

	succeeded, failed := 0, 0
	for i, out := range outputs {
		switch out.Status {
		case NodeError:
			failed++
		case NodeSuccess:
			succeeded++
		}
		lines = append(lines, formatBlock(i+1, out)...)
	}

	lines = append(lines,
		banner(fmt.Sprintf("END - %d nodes, %d succeeded, %d failed", len(outputs), succeeded, failed)),
	)
	return lines
}

func formatBlock(step int, out NodeOutput) []string {
	border := "+" + strings.Repeat("-", traceWidth-2) + "+"

	lines := []string{
		border,
		boxLine(fmt.Sprintf("[%d] %s (%s) - %s", step, out.NodeName, out.NodeKind, strings.ToUpper(string(out.Status)))),
		boxLine(fmt.Sprintf("inputs: %d  duration: %dms", out.InputCount, out.DurationMs)),
	}

	if out.DisplayText != "" {
		lines = append(lines, boxLine(out.DisplayText))
	}
	if out.ErrorMessage != "" {
		lines = append(lines, boxLine("error: "+out.ErrorMessage))
	}

	return append(lines, border)
}

func boxLine(text string) string {
	inner := traceWidth - 4
	// Truncate on rune boundaries so multi-byte text is never split.
	if runes := []rune(text); len(runes) > inner {
		text = string(runes[:inner-3]) + "..."
	}
	return fmt.Sprintf("| %-*s |", inner, text)
}

func banner(title string) string {
	pad := traceWidth - len(title) - 2
	if pad < 2 {
		pad = 2
	}
	left := pad / 2
	return strings.Repeat("=", left) + " " + title + " " + strings.Repeat("=", pad-left)
}
