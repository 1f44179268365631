package output

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// CSVFormatter emits one row per data point with a column per account,
// suitable for spreadsheet charting.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	accountIDs := collectAccountIDs(result)

	header := []string{"date", "balance", "liquid_assets"}
	for _, id := range accountIDs {
		header = append(header, "account_"+strconv.FormatInt(id, 10))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, dp := range result.DataPoints {
		row := []string{
			dp.Date.Format("2006-01-02"),
			dp.Balance.StringFixed(2),
			dp.LiquidAssets.StringFixed(2),
		}
		for _, id := range accountIDs {
			row = append(row, dp.AccountBalances[id].StringFixed(2))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func collectAccountIDs(result *domain.ProjectionResult) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, dp := range result.DataPoints {
		for id := range dp.AccountBalances {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
