package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

var (
	thousand    = decimal.NewFromInt(1_000)
	tenThousand = decimal.NewFromInt(10_000)
	million     = decimal.NewFromInt(1_000_000)
)

// FormatAmount abbreviates a monetary amount for display. Several screens
// depend on identical thresholds, so this is the single implementation:
// below 10,000 the full two-decimal value, 10,000 to 999,999 rounded
// thousands with a "k" suffix, from 1,000,000 one-decimal millions with
// an "M" suffix. Thresholds apply to the absolute value, so negative
// amounts abbreviate the same way. showFull bypasses abbreviation.
func FormatAmount(amount decimal.Decimal, showFull bool) string {
	if showFull {
		return amount.StringFixed(2)
	}
	abs := amount.Abs()
	switch {
	case abs.GreaterThanOrEqual(million):
		return amount.DivRound(million, 1).StringFixed(1) + "M"
	case abs.GreaterThanOrEqual(tenThousand):
		return amount.DivRound(thousand, 0).StringFixed(0) + "k"
	default:
		return amount.StringFixed(2)
	}
}

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}
