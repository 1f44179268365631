package output

import (
	"encoding/json"

	"github.com/kevinjoyner/marty-financial-planner/internal/domain"
)

// JSONFormatter emits the full result for programmatic consumers.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
