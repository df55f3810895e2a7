package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber groups thousands and rounds to the given decimals.
func FormatNumber(v float64, decimals int) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}

	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// RenderTable draws rows under an optional title.
func RenderTable(title string, headers []string, rows [][]string) string {
	display := &strings.Builder{}
	if title != "" {
		display.WriteString(fmt.Sprintf("%s:\n", title))
	}

	if len(rows) == 0 {
		display.WriteString("(empty)\n")
		return display.String()
	}

	table := tablewriter.NewWriter(display)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()

	return display.String()
}
