package exporter

import (
	"strconv"
	"time"

	"chartlens/pkg/contracts/domain"
)

// formatCell renders a table cell for CSV output. Shares and ratios keep
// four decimals, other floats two.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case share:
		return strconv.FormatFloat(float64(x), 'f', 4, 64)
	case bool:
		return formatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(domain.DateLayout)
	default:
		return ""
	}
}

// share marks a proportion in [0, 1]
type share float64

// cellValue converts a cell to the value stored in a spreadsheet
func cellValue(v any) any {
	switch x := v.(type) {
	case share:
		return float64(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.Format(domain.DateLayout)
	default:
		return v
	}
}

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
