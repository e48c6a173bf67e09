package config

import (
	"fmt"
	"os"

	"cash-routing-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// ParamsFile is the YAML parameters file accepted by the CLI.
//
//	days: 30
//	last_days_collection: [28, 29]
//	annual_interest_percent: 45
//	solver: highs
//	time_limit: 2m
//	mileage_fee: {fixed: 1500, threshold: 1000000, coefficient: 0.0004}
type ParamsFile struct {
	domain.Params `yaml:",inline"`

	// AnnualInterestPercent, when set, replaces daily_interest_rate.
	AnnualInterestPercent float64           `yaml:"annual_interest_percent"`
	MileageFee            domain.MileageFee `yaml:"mileage_fee"`
}

// LoadParams reads and decodes a parameters file. Unknown keys are rejected.
func LoadParams(path string) (*ParamsFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}
	defer f.Close()

	var pf ParamsFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("load params %q: %w", path, err)
	}
	if pf.AnnualInterestPercent != 0 {
		pf.DailyInterestRate = domain.DailyRateFromAnnual(pf.AnnualInterestPercent)
	}
	return &pf, nil
}
