package battleship

import (
	"sort"
	"strings"

	cerr "github.com/saeidalz13/battleship-fleet/internal/error"
)

type ShipType uint8

const (
	ShipTypePatrolBoat ShipType = iota
	ShipTypeSubmarine
	ShipTypeDestroyer
	ShipTypeBattleship
	ShipTypeCarrier
)

var shipTypeNames = map[ShipType]string{
	ShipTypePatrolBoat: "patrol_boat",
	ShipTypeSubmarine:  "submarine",
	ShipTypeDestroyer:  "destroyer",
	ShipTypeBattleship: "battleship",
	ShipTypeCarrier:    "carrier",
}

func (st ShipType) String() string {
	return shipTypeNames[st]
}

func ParseShipType(name string) (ShipType, bool) {
	for st, stName := range shipTypeNames {
		if stName == strings.ToLower(strings.TrimSpace(name)) {
			return st, true
		}
	}
	return 0, false
}

type ShipConfig struct {
	ShipType ShipType
	Size     int
	Amount   int
}

const maxFleetCells = 30

const (
	RulesetClassic = "classic"
	RulesetCustom  = "custom"
)

// Ruleset maps every ship type of a fleet to its size and
// to the number of such ships each player receives.
type Ruleset interface {
	Name() string
	SizeMapping() map[ShipType]int
	AmountMapping() map[ShipType]int
}

// Returns one config per ship type of the ruleset,
// ordered by ship size.
func ShipConfigs(r Ruleset) []ShipConfig {
	sizes := r.SizeMapping()
	amounts := r.AmountMapping()

	configs := make([]ShipConfig, 0, len(sizes))
	for shipType, size := range sizes {
		configs = append(configs, ShipConfig{
			ShipType: shipType,
			Size:     size,
			Amount:   amounts[shipType],
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		if configs[i].Size != configs[j].Size {
			return configs[i].Size < configs[j].Size
		}
		return configs[i].ShipType < configs[j].ShipType
	})
	return configs
}

type ClassicRuleset struct{}

var _ Ruleset = ClassicRuleset{}

func (ClassicRuleset) Name() string { return RulesetClassic }

func (ClassicRuleset) SizeMapping() map[ShipType]int {
	return map[ShipType]int{
		ShipTypePatrolBoat: 1,
		ShipTypeSubmarine:  2,
		ShipTypeDestroyer:  3,
		ShipTypeBattleship: 4,
	}
}

func (ClassicRuleset) AmountMapping() map[ShipType]int {
	return map[ShipType]int{
		ShipTypePatrolBoat: 4,
		ShipTypeSubmarine:  3,
		ShipTypeDestroyer:  2,
		ShipTypeBattleship: 1,
	}
}

type CustomRuleset struct{}

var _ Ruleset = CustomRuleset{}

func (CustomRuleset) Name() string { return RulesetCustom }

func (CustomRuleset) SizeMapping() map[ShipType]int {
	return map[ShipType]int{
		ShipTypeSubmarine:  2,
		ShipTypeDestroyer:  3,
		ShipTypeBattleship: 4,
		ShipTypeCarrier:    5,
	}
}

func (CustomRuleset) AmountMapping() map[ShipType]int {
	return map[ShipType]int{
		ShipTypeSubmarine:  4,
		ShipTypeDestroyer:  3,
		ShipTypeBattleship: 2,
		ShipTypeCarrier:    1,
	}
}

// FleetRuleset is a ruleset defined outside the code,
// e.g. loaded from a rulesets file.
type FleetRuleset struct {
	name    string
	sizes   map[ShipType]int
	amounts map[ShipType]int
}

var _ Ruleset = (*FleetRuleset)(nil)

func NewFleetRuleset(name string, configs []ShipConfig) (*FleetRuleset, error) {
	if strings.TrimSpace(name) == "" {
		return nil, cerr.ErrInvalidRuleset(name)
	}
	if len(configs) == 0 {
		return nil, cerr.ErrInvalidRuleset(name)
	}

	fr := &FleetRuleset{
		name:    name,
		sizes:   make(map[ShipType]int, len(configs)),
		amounts: make(map[ShipType]int, len(configs)),
	}

	totalCells := 0
	for _, config := range configs {
		if config.Size < 1 || config.Size > GridSize/2 || config.Amount < 1 {
			return nil, cerr.ErrInvalidRuleset(name)
		}
		if _, prs := fr.sizes[config.ShipType]; prs {
			return nil, cerr.ErrInvalidRuleset(name)
		}
		fr.sizes[config.ShipType] = config.Size
		fr.amounts[config.ShipType] = config.Amount
		totalCells += config.Size * config.Amount
	}

	// Denser fleets than the custom one cannot always be
	// placed without ships touching each other.
	if totalCells > maxFleetCells {
		return nil, cerr.ErrInvalidRuleset(name)
	}
	return fr, nil
}

func (fr *FleetRuleset) Name() string { return fr.name }

func (fr *FleetRuleset) SizeMapping() map[ShipType]int {
	sizes := make(map[ShipType]int, len(fr.sizes))
	for k, v := range fr.sizes {
		sizes[k] = v
	}
	return sizes
}

func (fr *FleetRuleset) AmountMapping() map[ShipType]int {
	amounts := make(map[ShipType]int, len(fr.amounts))
	for k, v := range fr.amounts {
		amounts[k] = v
	}
	return amounts
}

// Registry of the rulesets a server can start sessions with.
type Rulesets map[string]Ruleset

func DefaultRulesets() Rulesets {
	return Rulesets{
		RulesetClassic: ClassicRuleset{},
		RulesetCustom:  CustomRuleset{},
	}
}

func (rs Rulesets) Add(r Ruleset) {
	rs[r.Name()] = r
}

func (rs Rulesets) Find(name string) (Ruleset, error) {
	r, prs := rs[name]
	if !prs {
		return nil, cerr.ErrInvalidRuleset(name)
	}
	return r, nil
}
