package project

import (
	"fmt"

	"github.com/n2code/acewriter/internal/asset"
	"gopkg.in/yaml.v3"
)

type fileDefinition struct {
	Scopes    []string            `yaml:"scopes"`
	Libraries []libraryDefinition `yaml:"libraries"`
}

type libraryDefinition struct {
	Name  string           `yaml:"name"`
	Items []itemDefinition `yaml:"items"`
}

// itemDefinition names its kind by the key holding the name, e.g. "trigger: fire".
type itemDefinition struct {
	Folder      *string `yaml:"folder"`
	Trigger     *string `yaml:"trigger"`
	Parameter   *string `yaml:"parameter"`
	Switch      *string `yaml:"switch"`
	State       *string `yaml:"state"`
	Environment *string `yaml:"environment"`
	Preload     *string `yaml:"preload"`

	Items  []itemDefinition `yaml:"items"`
	States []itemDefinition `yaml:"states"`

	Id          string                 `yaml:"id"`
	Scope       string                 `yaml:"scope"`
	Radius      float32                `yaml:"radius"`
	FadeOut     float32                `yaml:"fade_out"`
	MatchRadius *bool                  `yaml:"match_radius"`
	AutoLoad    bool                   `yaml:"auto_load"`
	Connections []connectionDefinition `yaml:"connections"`
	Preserved   []preservedDefinition  `yaml:"preserved"`
}

type connectionDefinition struct {
	Tag       string     `yaml:"tag"`
	Attrs     attributes `yaml:"attrs"`
	Platforms []string   `yaml:"platforms"`
}

// preservedDefinition carries middleware XML which is written back verbatim
type preservedDefinition struct {
	XML      string `yaml:"xml"`
	Platform string `yaml:"platform"`
}

// attributes keep the order in which they are listed in the project file
type attributes []asset.Property

func (a *attributes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: attribute %q must be a plain value", val.Line, key.Value)
		}
		*a = append(*a, asset.Property{Key: key.Value, Value: val.Value})
	}
	return nil
}

func (d itemDefinition) kind() (itemType asset.ItemType, name string, err error) {
	candidates := []struct {
		itemType asset.ItemType
		name     *string
	}{
		{asset.Folder, d.Folder},
		{asset.Trigger, d.Trigger},
		{asset.Parameter, d.Parameter},
		{asset.Switch, d.Switch},
		{asset.State, d.State},
		{asset.Environment, d.Environment},
		{asset.Preload, d.Preload},
	}
	found := 0
	for _, candidate := range candidates {
		if candidate.name != nil {
			itemType, name = candidate.itemType, *candidate.name
			found++
		}
	}
	switch {
	case found == 0:
		err = fmt.Errorf("item without kind, expected one of folder/trigger/parameter/switch/state/environment/preload")
	case found > 1:
		err = fmt.Errorf("item %q has %d kinds", name, found)
	case name == "":
		err = fmt.Errorf("%s without name", itemType)
	}
	return
}
