package catalog

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/labwise/lab-api/internal/model"
)

// LoadFile reads a catalog override from a YAML file. The file carries
// a "parameters" list in the same shape as the built-in definitions and
// replaces the default catalog wholesale.
func LoadFile(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var defs []model.ParameterDefinition
	if err := v.UnmarshalKey("parameters", &defs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no parameters", path)
	}

	c, err := New(defs)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	return c, nil
}

// LoadRules reads pattern rule overrides from the same YAML file under
// a "patterns" key. A file without that key yields no rules.
func LoadRules(path string) ([]model.PatternRule, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var rules []model.PatternRule
	if err := v.UnmarshalKey("patterns", &rules); err != nil {
		return nil, fmt.Errorf("failed to parse pattern rules: %w", err)
	}
	return rules, nil
}
