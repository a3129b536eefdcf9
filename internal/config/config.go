// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/iwvelando/mortgage-payoff/pkg/datetime"
	"github.com/iwvelando/mortgage-payoff/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for mortgage-payoff.
type Configuration struct {
	Loan      Loan
	Scenarios []Scenario
	PMIPolicy PMIPolicyConfig `yaml:"pmiPolicy,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// PMIPolicyConfig holds the mortgage insurance removal policy. Both knobs are
// optional; the defaults are the 80% cutoff evaluated against the
// post-payment balance.
type PMIPolicyConfig struct {
	CutoffRatio float64 `yaml:"cutoffRatio,omitempty"`
	LTVBasis    string  `yaml:"ltvBasis,omitempty"`
}

// Scenario holds one what-if payment plan layered on the configured loan.
type Scenario struct {
	Name           string
	Active         bool
	ExtraMonthly   float64
	ExtraFromMonth int
	OneTimeExtra   *OneTimeExtra `yaml:"oneTimeExtra,omitempty"`
}

// OneTimeExtra is a single extra principal payment at a given 1-based month.
type OneTimeExtra struct {
	MonthIndex int
	Amount     float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decodeConfiguration(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory reader; the HTTP layer uses this for uploaded configs.
func LoadConfigurationFromReader(reader io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(reader); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decodeConfiguration(v)
}

func decodeConfiguration(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults(time.Now())
	return &configuration, nil
}

// applyDefaults fills the fields a minimal config may omit. An unspecified
// start month anchors the schedule at the current month, mirroring how the
// calculator behaves when first opened.
func (conf *Configuration) applyDefaults(now time.Time) {
	if conf.Loan.StartMonth == "" {
		conf.Loan.StartMonth = now.Format(DateTimeLayout)
	}
	if conf.Loan.Name == "" {
		conf.Loan.Name = "mortgage"
	}
	for i := range conf.Scenarios {
		if conf.Scenarios[i].ExtraFromMonth == 0 {
			conf.Scenarios[i].ExtraFromMonth = constants.DefaultEffectiveFromMonth
		}
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors surface later as typed errors from the loans
// package; warnings cover configurations that compute but probably do not
// mean what the user intended.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	warnings = append(warnings, conf.Loan.ToLoanTerms().Warnings()...)

	if conf.Loan.StartMonth != "" && !datetime.ValidMonth(conf.Loan.StartMonth) {
		warnings = append(warnings, fmt.Sprintf("loan start month %q is not in YYYY-MM format", conf.Loan.StartMonth))
	}

	if conf.PMIPolicy.LTVBasis != "" {
		if err := validation.ValidateLTVBasis(conf.PMIPolicy.LTVBasis); err != nil {
			warnings = append(warnings, fmt.Sprintf("pmiPolicy: %v", err))
		}
	}

	activeScenarios := 0
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			continue
		}
		activeScenarios++
		if scenario.ExtraMonthly == 0 && (scenario.OneTimeExtra == nil || scenario.OneTimeExtra.Amount == 0) {
			warnings = append(warnings, fmt.Sprintf("scenario %q has no extra payments and duplicates the baseline", scenario.Name))
		}
		if scenario.OneTimeExtra != nil && conf.Loan.TermMonths > 0 {
			if scenario.OneTimeExtra.MonthIndex < 1 || scenario.OneTimeExtra.MonthIndex > conf.Loan.TermMonths {
				warnings = append(warnings, fmt.Sprintf("scenario %q one-time payment month %d is outside the loan term",
					scenario.Name, scenario.OneTimeExtra.MonthIndex))
			}
		}
	}
	if activeScenarios == 0 {
		warnings = append(warnings, "no active scenarios configured; only the baseline schedule will be computed")
	}

	if conf.Loan.MonthlyPayment > 0 && conf.Loan.TermMonths > 0 {
		warnings = append(warnings, "monthlyPayment overrides the term-derived payment; the schedule may not match the stated term")
	}

	return warnings
}
