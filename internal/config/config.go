// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"github.com/spf13/viper"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// Configuration holds all configuration for loan-schedule.
type Configuration struct {
	Loans   []Loan        `yaml:"loans"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
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

	return decode(v)
}

// ParseConfiguration reads a configuration document of configType ("yaml" or
// "json") from r.
func ParseConfiguration(r io.Reader, configType string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType(configType)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("error reading configuration, %w", err)
	}
	if err := v.ReadConfig(&buf); err != nil {
		return nil, fmt.Errorf("error parsing %s configuration, %w", configType, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Validate checks every loan and returns the first error found.
func (c *Configuration) Validate() error {
	if len(c.Loans) == 0 {
		return fmt.Errorf("configuration has no loans")
	}
	seen := make(map[string]bool, len(c.Loans))
	for i := range c.Loans {
		loan := &c.Loans[i]
		if seen[loan.Name] {
			return fmt.Errorf("duplicate loan name %q", loan.Name)
		}
		seen[loan.Name] = true
		if err := loan.Validate(); err != nil {
			return fmt.Errorf("loan %q: %w", loan.Name, err)
		}
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{}
	for _, loan := range c.Loans {
		info := validation.LoanConfig{
			Name:               loan.Name,
			StartDate:          loan.StartDate,
			FirstRepaymentDate: loan.FirstRepaymentDate,
			RepaymentEvery:     loan.RepaymentEvery,
			RepaymentFrequency: loan.RepaymentFrequency,
			NumberOfRepayments: loan.NumberOfRepayments,
			CompoundingMethod:  loan.CompoundingMethod,
			CompoundingDates:   loan.CompoundingDates,
		}
		for _, v := range loan.Variations {
			info.VariationDates = append(info.VariationDates, v.Date)
		}
		for _, charge := range loan.Charges {
			info.ChargeDates = append(info.ChargeDates, charge.Date)
		}
		validator.Loans = append(validator.Loans, info)
	}
	return validator.ValidateAll()
}
