package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/sanitize"
)

// Rules is the layout of a rules file. Lists left out keep their defaults.
type Rules struct {
	Sanitize sanitize.Rules    `yaml:"sanitize"`
	Page     convert.PageRules `yaml:"page"`
}

// LoadRules reads a YAML rules file and fills gaps with the defaults. An
// empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	var r Rules
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Rules{}, fmt.Errorf("read rules: %w", err)
		}
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
		}
	}
	r.Sanitize = r.Sanitize.Merge(sanitize.DefaultRules())
	r.Page = r.Page.Merge(convert.DefaultPageRules())
	return r, nil
}
