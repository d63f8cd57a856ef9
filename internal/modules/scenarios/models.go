// Package scenarios stores named simulation requests so they can be re-run.
// Only inputs are stored; results are always recomputed.
package scenarios

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aristath/assetsim/internal/domain"
	"github.com/aristath/assetsim/internal/modules/simulation"
)

// ErrNotFound is returned when a scenario does not exist
var ErrNotFound = errors.New("scenario not found")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Scenario is a named, reusable simulation request
type Scenario struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Request     simulation.Request `json:"request"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ValidateName checks that name is usable as a URL path segment
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: scenario name must be 1-64 letters, digits, '-' or '_', got %q", domain.ErrInvalidParameters, name)
	}
	return nil
}

// Presets are the scenarios created on first start
func Presets() []Scenario {
	withReinvest := domain.DefaultParameters().WithReinvest(true)

	lowRisk := domain.DefaultParameters()
	for name, cfg := range lowRisk.Assets {
		cfg.LossProbability /= 2
		cfg.RevenueVariation /= 2
		lowRisk.Assets[name] = cfg
	}

	return []Scenario{
		{
			Name:        "default",
			Description: "Default portfolio, no reinvestment",
			Request:     simulation.Request{Parameters: domain.DefaultParameters(), Runs: simulation.DefaultRuns, Years: simulation.DefaultYears},
		},
		{
			Name:        "default-reinvest",
			Description: "Default portfolio, revenue reinvested in new units",
			Request:     simulation.Request{Parameters: withReinvest, Runs: simulation.DefaultRuns, Years: simulation.DefaultYears},
		},
		{
			Name:        "low-risk",
			Description: "Loss probabilities and revenue variation halved",
			Request:     simulation.Request{Parameters: lowRisk, Runs: simulation.DefaultRuns, Years: simulation.DefaultYears},
		},
	}
}
