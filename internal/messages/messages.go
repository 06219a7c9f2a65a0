package messages

import (
	"fmt"
	"strings"
)

const (
	ProductName = "Tirag Disk Operating System"
	HelpHint    = "Type 'help' for a list of commands."
)

type HelpEntry struct {
	Usage   string
	Summary string
}

// FormatBanner is shown at every boot.
func FormatBanner(description string) string {
	return description + "\n" + HelpHint + "\n"
}

// FormatHelp lays out the command table between rules of the given width.
func FormatHelp(entries []HelpEntry, width int) string {
	var builder strings.Builder
	rule := strings.Repeat("-", width)

	builder.WriteString(rule + "\n\n")
	builder.WriteString(center("AVAILABLE COMMANDS", width) + "\n")
	builder.WriteString(rule + "\n")

	for _, entry := range entries {
		builder.WriteString(fmt.Sprintf("%-15s : %s\n", entry.Usage, entry.Summary))
	}

	builder.WriteString(rule + "\n")
	builder.WriteString(center("END OF COMMAND LIST", width) + "\n")
	builder.WriteString(rule + "\n")

	return builder.String()
}

func center(text string, width int) string {
	padding := (width - len(text)) / 2
	if padding <= 0 {
		return text
	}

	return strings.Repeat(" ", padding) + text
}
