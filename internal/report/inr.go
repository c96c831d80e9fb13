package report

import (
	"fmt"
	"math"
	"strconv"
)

// FormatINR renders an amount with the rupee sign and Indian digit grouping
// (last three digits, then pairs), rounded to whole rupees.
func FormatINR(amount float64) string {
	return "₹" + groupINR(amount)
}

// FormatINRRange renders a low–high cost band.
func FormatINRRange(low, high float64) string {
	return fmt.Sprintf("₹%s – ₹%s", groupINR(low), groupINR(high))
}

// FormatINRCompact shortens large amounts to the K/L/Cr forms used in tight
// table cells.
func FormatINRCompact(amount float64) string {
	switch {
	case amount >= 1e7:
		return fmt.Sprintf("₹%.1fCr", amount/1e7)
	case amount >= 1e5:
		return fmt.Sprintf("₹%.1fL", amount/1e5)
	case amount >= 1e3:
		return fmt.Sprintf("₹%.0fK", amount/1e3)
	default:
		return "₹" + groupINR(amount)
	}
}

func groupINR(amount float64) string {
	neg := amount < 0
	digits := strconv.FormatFloat(math.Round(math.Abs(amount)), 'f', 0, 64)

	// Indian grouping: rightmost group of three, then groups of two.
	var groups []string
	if len(digits) > 3 {
		groups = append(groups, digits[len(digits)-3:])
		rest := digits[:len(digits)-3]
		for len(rest) > 2 {
			groups = append(groups, rest[len(rest)-2:])
			rest = rest[:len(rest)-2]
		}
		if rest != "" {
			groups = append(groups, rest)
		}
	} else {
		groups = append(groups, digits)
	}

	out := ""
	for i := len(groups) - 1; i >= 0; i-- {
		if out != "" {
			out += ","
		}
		out += groups[i]
	}
	if neg {
		return "-" + out
	}
	return out
}
