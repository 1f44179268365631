package output

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"console", "csv", "json", ""} {
		f, err := NewFormatter(name)
		require.NoError(t, err, "format %q", name)
		require.NotNil(t, f)
	}

	_, err := NewFormatter("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		pence int64
		want  string
	}{
		{0, "£0.00"},
		{12345, "£123.45"},
		{123456789, "£1,234,567.89"},
		{-50000, "(£500.00)"},
		{100000000, "£1,000,000.00"},
	}
	for _, tt := range tests {
		got := FormatCurrency(decimal.New(tt.pence, -2))
		assert.Equal(t, tt.want, got)
	}
}

func sampleResult() *domain.ProjectionResult {
	return &domain.ProjectionResult{
		DataPoints: []domain.DataPoint{
			{
				Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Balance:      decimal.New(150000, -2),
				LiquidAssets: decimal.New(100000, -2),
				AccountBalances: map[int64]decimal.Decimal{
					1: decimal.New(100000, -2),
					2: decimal.New(50000, -2),
				},
			},
			{
				Date:         time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				Balance:      decimal.New(180000, -2),
				LiquidAssets: decimal.New(130000, -2),
				AccountBalances: map[int64]decimal.Decimal{
					1: decimal.New(130000, -2),
					2: decimal.New(50000, -2),
				},
			},
		},
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format(sampleResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,balance,liquid_assets,account_1,account_2", lines[0])
	assert.Equal(t, "2024-01-01,1500.00,1000.00,1000.00,500.00", lines[1])
	assert.Equal(t, "2024-01-31,1800.00,1300.00,1300.00,500.00", lines[2])
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	out, err := JSONFormatter{}.Format(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"dataPoints"`)
	assert.Contains(t, string(out), `"1500"`)
}

func TestConsoleFormatterSections(t *testing.T) {
	result := sampleResult()
	result.Warnings = []domain.Warning{{
		Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AccountID: 1,
		Message:   "Negative Balance: Current is overdrawn (-£10.00).",
	}}

	out, err := ConsoleFormatter{}.Format(result)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "PROJECTION SUMMARY")
	assert.Contains(t, text, "WARNINGS")
	assert.Contains(t, text, "overdrawn")
}
