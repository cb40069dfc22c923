// Package seed loads a YAML catalog manifest into the combat store.
//
// Seeding is idempotent: catalog rows are upserted and characters that
// already exist are left untouched, so the same manifest can be applied on
// every boot of a local environment.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/items"
	"github.com/louisbranch/idle-rpg/internal/services/combat/domain/leveling"
	"gopkg.in/yaml.v3"
)

//go:embed manifests/local-dev.yaml
var localDevManifest []byte

// Manifest defines a catalog and the demo characters that play in it.
type Manifest struct {
	Name             string              `yaml:"name"`
	TrainingAreas    []ManifestArea      `yaml:"training_areas"`
	Items            []ManifestItem      `yaml:"items"`
	Monsters         []ManifestMonster   `yaml:"monsters"`
	ExperienceLevels []int               `yaml:"experience_levels"`
	Characters       []ManifestCharacter `yaml:"characters"`
}

// ManifestArea defines one training area.
type ManifestArea struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ManifestItem defines one catalog item.
type ManifestItem struct {
	ID          int64            `yaml:"id"`
	Name        string           `yaml:"name"`
	Category    string           `yaml:"category"`
	Value       int              `yaml:"value"`
	Description string           `yaml:"description"`
	Effects     []ManifestEffect `yaml:"effects"`
}

// ManifestEffect defines one item effect.
type ManifestEffect struct {
	Effect string `yaml:"effect"`
	Value  int    `yaml:"value"`
}

// ManifestMonster defines one monster template and its loot table.
type ManifestMonster struct {
	ID         int64          `yaml:"id"`
	Name       string         `yaml:"name"`
	Area       string         `yaml:"area"`
	Health     int            `yaml:"health"`
	Power      int            `yaml:"power"`
	Toughness  int            `yaml:"toughness"`
	GoldMin    int            `yaml:"gold_min"`
	GoldMax    int            `yaml:"gold_max"`
	Experience int            `yaml:"experience"`
	Loot       []ManifestLoot `yaml:"loot"`
}

// ManifestLoot defines one loot table row. Rows are rolled in order.
type ManifestLoot struct {
	ItemID          int64   `yaml:"item_id"`
	Quantity        int     `yaml:"quantity"`
	DropProbability float64 `yaml:"drop_probability"`
}

// ManifestCharacter defines one demo character.
type ManifestCharacter struct {
	ID        string              `yaml:"id"`
	Name      string              `yaml:"name"`
	Gold      int                 `yaml:"gold"`
	Health    int                 `yaml:"health"`
	MaxHealth int                 `yaml:"max_health"`
	Power     int                 `yaml:"power"`
	Toughness int                 `yaml:"toughness"`
	Inventory []ManifestInventory `yaml:"inventory"`
	Skills    []ManifestSkill     `yaml:"skills"`
}

// ManifestSkill grants starting experience in one skill to a new character.
type ManifestSkill struct {
	Skill      string `yaml:"skill"`
	Experience int    `yaml:"experience"`
}

// ManifestInventory grants an item stack to a new character.
type ManifestInventory struct {
	ItemID int64 `yaml:"item_id"`
	Amount int   `yaml:"amount"`
}

// LoadManifest reads and validates a manifest file. An empty path loads the
// embedded local-dev manifest.
func LoadManifest(path string) (Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return DecodeManifest(bytes.NewReader(localDevManifest))
	}
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	manifest, err := DecodeManifest(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return manifest, nil
}

// DecodeManifest parses YAML strictly and validates references.
func DecodeManifest(r io.Reader) (Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var manifest Manifest
	if err := dec.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return Manifest{}, errors.New("manifest is empty")
		}
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := ValidateManifest(manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// ValidateManifest checks identifiers, references and numeric bounds.
func ValidateManifest(m Manifest) error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("manifest name is required")
	}

	areas := make(map[string]struct{}, len(m.TrainingAreas))
	for i, area := range m.TrainingAreas {
		name := strings.TrimSpace(area.Name)
		if name == "" {
			return fmt.Errorf("training_areas[%d]: name is required", i)
		}
		if _, dup := areas[name]; dup {
			return fmt.Errorf("training_areas[%d]: duplicate area %q", i, name)
		}
		areas[name] = struct{}{}
	}

	itemIDs := make(map[int64]struct{}, len(m.Items))
	for i, item := range m.Items {
		if item.ID <= 0 {
			return fmt.Errorf("items[%d]: id must be greater than zero", i)
		}
		if _, dup := itemIDs[item.ID]; dup {
			return fmt.Errorf("items[%d]: duplicate id %d", i, item.ID)
		}
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("items[%d]: name is required", i)
		}
		for j, effect := range item.Effects {
			if effect.Effect != items.EffectRestoreHealth {
				return fmt.Errorf("items[%d].effects[%d]: unknown effect %q", i, j, effect.Effect)
			}
			if effect.Value <= 0 {
				return fmt.Errorf("items[%d].effects[%d]: value must be greater than zero", i, j)
			}
		}
		itemIDs[item.ID] = struct{}{}
	}

	monsterIDs := make(map[int64]struct{}, len(m.Monsters))
	for i, monster := range m.Monsters {
		if monster.ID <= 0 {
			return fmt.Errorf("monsters[%d]: id must be greater than zero", i)
		}
		if _, dup := monsterIDs[monster.ID]; dup {
			return fmt.Errorf("monsters[%d]: duplicate id %d", i, monster.ID)
		}
		monsterIDs[monster.ID] = struct{}{}
		if strings.TrimSpace(monster.Name) == "" {
			return fmt.Errorf("monsters[%d]: name is required", i)
		}
		if _, ok := areas[monster.Area]; !ok {
			return fmt.Errorf("monsters[%d]: unknown area %q", i, monster.Area)
		}
		if monster.Health <= 0 {
			return fmt.Errorf("monsters[%d]: health must be greater than zero", i)
		}
		if monster.Power < 0 || monster.Toughness < 0 || monster.Experience < 0 {
			return fmt.Errorf("monsters[%d]: power, toughness and experience must not be negative", i)
		}
		if monster.GoldMin < 0 || monster.GoldMax < monster.GoldMin {
			return fmt.Errorf("monsters[%d]: gold range %d..%d is invalid", i, monster.GoldMin, monster.GoldMax)
		}
		for j, entry := range monster.Loot {
			if _, ok := itemIDs[entry.ItemID]; !ok {
				return fmt.Errorf("monsters[%d].loot[%d]: unknown item %d", i, j, entry.ItemID)
			}
			if entry.Quantity <= 0 {
				return fmt.Errorf("monsters[%d].loot[%d]: quantity must be greater than zero", i, j)
			}
			if entry.DropProbability < 0 || entry.DropProbability > 1 {
				return fmt.Errorf("monsters[%d].loot[%d]: drop probability %v is outside [0, 1]", i, j, entry.DropProbability)
			}
		}
	}

	if len(m.ExperienceLevels) > 0 {
		if err := leveling.Table(m.ExperienceLevels).Validate(); err != nil {
			return fmt.Errorf("experience_levels: %w", err)
		}
	}

	characterIDs := make(map[string]struct{}, len(m.Characters))
	for i, character := range m.Characters {
		id := strings.TrimSpace(character.ID)
		if id == "" {
			return fmt.Errorf("characters[%d]: id is required", i)
		}
		if _, dup := characterIDs[id]; dup {
			return fmt.Errorf("characters[%d]: duplicate id %q", i, id)
		}
		characterIDs[id] = struct{}{}
		if strings.TrimSpace(character.Name) == "" {
			return fmt.Errorf("characters[%d]: name is required", i)
		}
		if character.MaxHealth <= 0 {
			return fmt.Errorf("characters[%d]: max_health must be greater than zero", i)
		}
		if character.Gold < 0 {
			return fmt.Errorf("characters[%d]: gold must not be negative", i)
		}
		for j, stack := range character.Inventory {
			if _, ok := itemIDs[stack.ItemID]; !ok {
				return fmt.Errorf("characters[%d].inventory[%d]: unknown item %d", i, j, stack.ItemID)
			}
			if stack.Amount <= 0 {
				return fmt.Errorf("characters[%d].inventory[%d]: amount must be greater than zero", i, j)
			}
		}
		skills := make(map[string]struct{}, len(character.Skills))
		for j, skill := range character.Skills {
			if !slices.Contains(leveling.Skills, skill.Skill) {
				return fmt.Errorf("characters[%d].skills[%d]: unknown skill %q", i, j, skill.Skill)
			}
			if _, dup := skills[skill.Skill]; dup {
				return fmt.Errorf("characters[%d].skills[%d]: duplicate skill %q", i, j, skill.Skill)
			}
			skills[skill.Skill] = struct{}{}
			if skill.Experience <= 0 {
				return fmt.Errorf("characters[%d].skills[%d]: experience must be greater than zero", i, j)
			}
		}
	}
	return nil
}
