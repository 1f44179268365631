package output

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// ConsoleFormatter renders a human-readable projection summary.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, titleStyle.Render("PROJECTION SUMMARY"))
	fmt.Fprintln(&buf)

	if len(result.DataPoints) > 0 {
		first := result.DataPoints[0]
		last := result.DataPoints[len(result.DataPoints)-1]
		fmt.Fprintf(&buf, "Period:        %s to %s (%d months)\n",
			first.Date.Format("Jan 2006"), last.Date.Format("Jan 2006"), len(result.DataPoints)-1)
		fmt.Fprintf(&buf, "Opening:       %s\n", FormatCurrency(first.Balance))
		fmt.Fprintf(&buf, "Closing:       %s\n", FormatCurrency(last.Balance))
		fmt.Fprintf(&buf, "Change:        %s\n", FormatCurrency(last.Balance.Sub(first.Balance)))
		fmt.Fprintf(&buf, "Liquid assets: %s\n", FormatCurrency(last.LiquidAssets))
		fmt.Fprintln(&buf)

		fmt.Fprintln(&buf, sectionStyle.Render("YEAR-END BALANCES"))
		for i, dp := range result.DataPoints {
			if i == 0 || dp.Date.Month() != 12 {
				continue
			}
			fmt.Fprintf(&buf, "  %s  %14s  (liquid %s)\n",
				dp.Date.Format("2006"), FormatCurrency(dp.Balance), FormatCurrency(dp.LiquidAssets))
		}
		fmt.Fprintln(&buf)
	}

	if len(result.Annotations) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("MILESTONES"))
		for _, ann := range result.Annotations {
			fmt.Fprintf(&buf, "  %s  %s %s\n",
				ann.Date.Format("2006-01-02"), ann.Label, dimStyle.Render("["+ann.Type+"]"))
		}
		fmt.Fprintln(&buf)
	}

	if len(result.MortgageStats) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("MORTGAGE OVERPAYMENT WINDOWS"))
		for _, st := range result.MortgageStats {
			fmt.Fprintf(&buf, "  %d  %-24s allowance %s, paid %s, headroom %s\n",
				st.YearStart, st.RuleName,
				FormatCurrency(st.Allowance), FormatCurrency(st.Paid), FormatCurrency(st.Headroom))
		}
		fmt.Fprintln(&buf)
	}

	if len(result.RuleLogs) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("AUTOMATION LOG"))
		for _, rl := range result.RuleLogs {
			fmt.Fprintf(&buf, "  %s  [%s] %s: %s -> %s %s\n",
				rl.Date.Format("2006-01"), rl.RuleType, rl.Action,
				rl.SourceAccount, rl.TargetAccount, dimStyle.Render(rl.Reason))
		}
		fmt.Fprintln(&buf)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(&buf, warnStyle.Render(fmt.Sprintf("WARNINGS (%d)", len(result.Warnings))))
		for _, w := range result.Warnings {
			fmt.Fprintf(&buf, "  %s  %s\n", w.Date.Format("2006-01"), w.Message)
		}
		fmt.Fprintln(&buf)
	}

	return buf.Bytes(), nil
}
