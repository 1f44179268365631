package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// Formatter renders a projection result in one output format.
type Formatter interface {
	Format(result *domain.ProjectionResult) ([]byte, error)
	Name() string
}

// NewFormatter creates a formatter based on the format name
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// FormatCurrency renders a pounds value as £1,234.56 (parenthesised when
// negative, matching accounting convention in the console report).
func FormatCurrency(v decimal.Decimal) string {
	neg := v.IsNegative()
	s := v.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("£%s.%s", b.String(), frac)
	if neg {
		return "(" + out + ")"
	}
	return out
}
