package config

import (
	"fmt"

	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/spf13/viper"
)

// Catalog is the treatment-item catalogue seeded into the item table, plus
// the fallback rules used to price names the table does not know.
type Catalog struct {
	Items         []slot.TreatmentItem
	FallbackRules []slot.FallbackRule
}

// catalogItem mirrors slot.TreatmentItem with an optional active flag, so
// entries that leave it out are seeded active.
type catalogItem struct {
	Name           string `mapstructure:"name"`
	StandaloneCost int    `mapstructure:"standalone_cost"`
	CompoundCost   int    `mapstructure:"compound_cost"`
	Category       string `mapstructure:"category"`
	Active         *bool  `mapstructure:"active"`
	SortOrder      int    `mapstructure:"sort_order"`
}

type catalogFile struct {
	Items         []catalogItem       `mapstructure:"items"`
	FallbackRules []slot.FallbackRule `mapstructure:"fallback_rules"`
}

// DefaultCatalog is the built-in catalogue.
func DefaultCatalog() Catalog {
	return Catalog{Items: slot.DefaultItems(), FallbackRules: slot.DefaultFallbackRules()}
}

// LoadCatalog reads a YAML (or JSON/TOML, by extension) catalogue file. An
// empty path returns the built-in catalogue; a section missing from the file
// falls back to its built-in default.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Catalog{}, fmt.Errorf("error reading item catalogue %s: %w", path, err)
	}

	var raw catalogFile
	if err := v.Unmarshal(&raw); err != nil {
		return Catalog{}, fmt.Errorf("error decoding item catalogue %s: %w", path, err)
	}
	c := Catalog{FallbackRules: raw.FallbackRules}
	for _, it := range raw.Items {
		c.Items = append(c.Items, slot.TreatmentItem{
			Name:           it.Name,
			StandaloneCost: it.StandaloneCost,
			CompoundCost:   it.CompoundCost,
			Category:       it.Category,
			Active:         it.Active == nil || *it.Active,
			SortOrder:      it.SortOrder,
		})
	}
	if len(c.Items) == 0 {
		c.Items = slot.DefaultItems()
	}
	if len(c.FallbackRules) == 0 {
		c.FallbackRules = slot.DefaultFallbackRules()
	}
	// reject a bad catalogue before it reaches the database
	if _, err := slot.NewRegistry(c.Items, c.FallbackRules); err != nil {
		return Catalog{}, fmt.Errorf("invalid item catalogue %s: %w", path, err)
	}
	return c, nil
}
