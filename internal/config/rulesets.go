package config

import (
	"fmt"
	"os"

	mb "github.com/saeidalz13/battleship-fleet/models/battleship"
	"gopkg.in/yaml.v3"
)

type rulesetsFile struct {
	Rulesets []rulesetEntry `yaml:"rulesets"`
}

type rulesetEntry struct {
	Name  string      `yaml:"name"`
	Ships []shipEntry `yaml:"ships"`
}

type shipEntry struct {
	Type   string `yaml:"type"`
	Size   int    `yaml:"size"`
	Amount int    `yaml:"amount"`
}

// Returns the built-in rulesets plus the ones defined in the
// file at path. An empty path means built-ins only.
func LoadRulesets(path string) (mb.Rulesets, error) {
	if path == "" {
		return mb.DefaultRulesets(), nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRulesets(f)
}

func ParseRulesets(data []byte) (mb.Rulesets, error) {
	var file rulesetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	rulesets := mb.DefaultRulesets()
	for _, entry := range file.Rulesets {
		if _, err := rulesets.Find(entry.Name); err == nil {
			return nil, fmt.Errorf("ruleset %q is defined twice", entry.Name)
		}

		configs := make([]mb.ShipConfig, 0, len(entry.Ships))
		for _, ship := range entry.Ships {
			shipType, ok := mb.ParseShipType(ship.Type)
			if !ok {
				return nil, fmt.Errorf("ruleset %q: unknown ship type %q", entry.Name, ship.Type)
			}
			configs = append(configs, mb.ShipConfig{
				ShipType: shipType,
				Size:     ship.Size,
				Amount:   ship.Amount,
			})
		}

		rs, err := mb.NewFleetRuleset(entry.Name, configs)
		if err != nil {
			return nil, err
		}
		rulesets.Add(rs)
	}
	return rulesets, nil
}
