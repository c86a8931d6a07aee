package alias

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/transferradar/internal/normalize"
)

// Rule rewrites a substring of a normalized club key.
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultClubRules cover the colloquial club spellings seen in headlines.
var DefaultClubRules = []Rule{
	{"utd", "united"}, {"united", "utd"},
	{"manchester united", "man united"}, {"man united", "manchester united"},
	{"manchester city", "man city"}, {"man city", "manchester city"},
	{"man united", "man u"}, {"man u", "man united"},
	{"manchester united", "man u"}, {"man u", "manchester united"},
	{"nott'ham forest", "nottingham forest"}, {"nottingham forest", "nott'ham forest"},
}

// RulesConfig is the YAML shape of a rules file
// rules:
//   - from: utd
//     to: united
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads rewrite rules from a YAML file and normalizes both sides.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg RulesConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	rules := make([]Rule, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		from, to := normalize.Key(r.From), normalize.Key(r.To)
		if from == "" {
			return nil, fmt.Errorf("%s: rule %d has empty 'from'", path, i)
		}
		rules = append(rules, Rule{From: from, To: to})
	}
	return rules, nil
}
