// Package catalog ships the card set embedded in the server binary. It backs
// the rules engine's CardSource when no database is configured and feeds the
// import tooling that seeds one.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gridspire/arena-server-go/internal/game"
)

//go:embed cards.yaml
var defaultSet []byte

const (
	minTier = 1
	maxTier = 5
)

// tierCopies is how many copies of each template enter its tier pool. Cheap
// tiers run deeper so early drafts stay varied after a few picks.
var tierCopies = map[int]int{1: 4, 2: 4, 3: 3, 4: 3, 5: 2}

// Copies reports how many pool copies of each template a tier carries.
func Copies(tier int) int {
	copies, ok := tierCopies[tier]
	if !ok || copies < 1 {
		return 1
	}
	return copies
}

var validColors = map[game.Color]bool{
	game.ColorRed:    true,
	game.ColorYellow: true,
	game.ColorGreen:  true,
	game.ColorBlue:   true,
	game.ColorPurple: true,
}

type cardEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Tier    int      `yaml:"tier"`
	Attack  int      `yaml:"attack"`
	Health  int      `yaml:"health"`
	Color   string   `yaml:"color"`
	Tags    []string `yaml:"tags"`
	Ability string   `yaml:"ability"`
}

type cardFile struct {
	Cards []cardEntry `yaml:"cards"`
}

// Catalog is a parsed, validated card set keyed by draft tier. It satisfies
// game.CardSource.
type Catalog struct {
	byTier map[int][]game.Card
	byID   map[string]game.Card
}

// Load parses and validates a card set document.
func Load(data []byte) (*Catalog, error) {
	var file cardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse card set: %w", err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("card set is empty")
	}

	c := &Catalog{
		byTier: make(map[int][]game.Card),
		byID:   make(map[string]game.Card, len(file.Cards)),
	}
	for i, entry := range file.Cards {
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", i, entry.ID, err)
		}
		if _, dup := c.byID[entry.ID]; dup {
			return nil, fmt.Errorf("card %d: duplicate id %q", i, entry.ID)
		}
		card := game.Card{
			ID:      entry.ID,
			Name:    entry.Name,
			Attack:  entry.Attack,
			Health:  entry.Health,
			Ability: entry.Ability,
			Tags:    append([]string(nil), entry.Tags...),
			Color:   game.Color(entry.Color),
			Tier:    entry.Tier,
		}
		c.byID[card.ID] = card
		c.byTier[card.Tier] = append(c.byTier[card.Tier], card)
	}

	for tier := minTier; tier <= maxTier; tier++ {
		if len(c.byTier[tier]) == 0 {
			return nil, fmt.Errorf("tier %d has no cards", tier)
		}
	}
	return c, nil
}

func validateEntry(entry cardEntry) error {
	switch {
	case entry.ID == "":
		return fmt.Errorf("missing id")
	case entry.Name == "":
		return fmt.Errorf("missing name")
	case entry.Tier < minTier || entry.Tier > maxTier:
		return fmt.Errorf("tier %d out of range", entry.Tier)
	case entry.Attack < 0:
		return fmt.Errorf("negative attack")
	case entry.Health < 1:
		return fmt.Errorf("health %d below 1", entry.Health)
	case !validColors[game.Color(entry.Color)]:
		return fmt.Errorf("unknown color %q", entry.Color)
	}
	return nil
}

// Default returns the embedded card set. The embed is validated by the
// package tests, so a failure here means a corrupt build.
func Default() *Catalog {
	c, err := Load(defaultSet)
	if err != nil {
		panic(fmt.Sprintf("embedded card set: %v", err))
	}
	return c
}

// CardsForTier returns the tier's draft pool contents: every template of the
// tier repeated by its copy count. Callers own the returned slice.
func (c *Catalog) CardsForTier(tier int) ([]game.Card, error) {
	templates, ok := c.byTier[tier]
	if !ok {
		return nil, fmt.Errorf("no cards for tier %d", tier)
	}
	copies := Copies(tier)
	pool := make([]game.Card, 0, len(templates)*copies)
	for _, card := range templates {
		for i := 0; i < copies; i++ {
			pool = append(pool, card)
		}
	}
	return pool, nil
}

// Card looks up a single template by its catalog id.
func (c *Catalog) Card(id string) (game.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Cards returns every template ordered by tier, then name. The import script
// and the catalog endpoint both want a stable listing.
func (c *Catalog) Cards() []game.Card {
	out := make([]game.Card, 0, len(c.byID))
	for _, card := range c.byID {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Size reports how many distinct templates the set holds.
func (c *Catalog) Size() int {
	return len(c.byID)
}
