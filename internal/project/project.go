package project

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/xmlnode"
	"github.com/n2code/ndocid"
	"gopkg.in/yaml.v3"
)

// Project is the in-memory asset tree of a project file.
type Project struct {
	Assets       *asset.Manager
	Fingerprints map[string]string //by lower-cased library name
}

type builder struct {
	assets    *asset.Manager
	platforms []string
	ids       map[asset.Id]string
}

// Load reads the project file. Platform names used by connections must be among the given platforms.
func Load(path string, platforms []string) (*Project, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	project, err := Parse(bytes.NewReader(content), platforms)
	if err != nil {
		return nil, fmt.Errorf("project file %s: %w", path, err)
	}
	return project, nil
}

func Parse(reader io.Reader, platforms []string) (*Project, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var definition fileDefinition
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&definition); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	b := builder{assets: asset.NewManager(), platforms: platforms, ids: make(map[asset.Id]string)}
	for _, scope := range definition.Scopes {
		b.assets.RegisterScope(scope)
	}
	for _, libDefinition := range definition.Libraries {
		if libDefinition.Name == "" {
			return nil, errors.New("library without name")
		}
		lib := asset.NewLibrary(libDefinition.Name)
		if err := b.assets.AddLibrary(lib); err != nil {
			return nil, err
		}
		for _, item := range libDefinition.Items {
			if err := b.addItem(lib, item, asset.GlobalScope); err != nil {
				return nil, fmt.Errorf("library %s: %w", libDefinition.Name, err)
			}
		}
	}

	fingerprints, err := fingerprintLibraries(content)
	if err != nil {
		return nil, err
	}
	return &Project{Assets: b.assets, Fingerprints: fingerprints}, nil
}

func (b *builder) addItem(parent *asset.Asset, definition itemDefinition, inheritedScope asset.Scope) error {
	itemType, name, err := definition.kind()
	if err != nil {
		return err
	}

	if itemType == asset.Folder {
		if definition.Id != "" || len(definition.Connections) > 0 || len(definition.Preserved) > 0 || len(definition.States) > 0 {
			return fmt.Errorf("folder %q can only hold items", name)
		}
		folder := asset.NewFolder(name)
		if err := parent.AddChild(folder); err != nil {
			return err
		}
		for _, item := range definition.Items {
			if err := b.addItem(folder, item, inheritedScope); err != nil {
				return fmt.Errorf("%s/%w", name, err)
			}
		}
		return nil
	}

	if len(definition.Items) > 0 {
		return fmt.Errorf("%s %q cannot hold items, only folders can", itemType, name)
	}
	if len(definition.States) > 0 && itemType != asset.Switch {
		return fmt.Errorf("%s %q cannot hold states, only switches can", itemType, name)
	}

	scope := inheritedScope
	if definition.Scope != "" {
		if itemType == asset.State {
			return fmt.Errorf("state %q lives in the scope of its switch", name)
		}
		scope = b.assets.RegisterScope(definition.Scope)
	}

	control := asset.NewControl(name, itemType, scope)
	if err := parent.AddChild(control); err != nil {
		return err
	}
	if definition.Id != "" {
		id, err := ParseId(definition.Id)
		if err != nil {
			return fmt.Errorf("%s %q: %w", itemType, name, err)
		}
		if other, taken := b.ids[id]; taken {
			return fmt.Errorf("%s %q: id %s already used by %q", itemType, name, definition.Id, other)
		}
		b.ids[id] = name
		control.SetId(id)
	}
	control.SetRadius(definition.Radius)
	control.SetOcclusionFadeOutDistance(definition.FadeOut)
	control.SetAutoLoad(definition.AutoLoad)
	if definition.MatchRadius != nil {
		control.SetMatchRadiusToAttenuation(*definition.MatchRadius)
	}

	for _, connection := range definition.Connections {
		if connection.Tag == "" {
			return fmt.Errorf("%s %q: connection without tag", itemType, name)
		}
		built := asset.NewConnection(connection.Tag, connection.Attrs...)
		if len(connection.Platforms) > 0 {
			indices := make([]int, 0, len(connection.Platforms))
			for _, platform := range connection.Platforms {
				index, err := b.platformIndex(platform)
				if err != nil {
					return fmt.Errorf("%s %q: %w", itemType, name, err)
				}
				indices = append(indices, index)
			}
			built.RestrictToPlatforms(indices...)
		}
		control.AddConnection(built)
	}

	for _, preserved := range definition.Preserved {
		node, err := xmlnode.ParseString(preserved.XML)
		if err != nil {
			return fmt.Errorf("%s %q: preserved xml: %w", itemType, name, err)
		}
		platformIndex := asset.NoPlatform
		switch {
		case itemType == asset.Preload && preserved.Platform == "":
			return fmt.Errorf("preload %q: preserved xml needs a platform", name)
		case itemType == asset.Preload:
			if platformIndex, err = b.platformIndex(preserved.Platform); err != nil {
				return fmt.Errorf("preload %q: %w", name, err)
			}
		case preserved.Platform != "":
			return fmt.Errorf("%s %q: only preloads are platform specific", itemType, name)
		}
		control.AddRawConnection(node, false, platformIndex)
	}

	for _, state := range definition.States {
		if err := b.addItem(control, state, scope); err != nil {
			return fmt.Errorf("%s/%w", name, err)
		}
	}
	return nil
}

func (b *builder) platformIndex(platform string) (int, error) {
	for i, known := range b.platforms {
		if strings.EqualFold(known, platform) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown platform %q (configured: %s)", platform, strings.Join(b.platforms, ", "))
}

// ParseId accepts a plain decimal number or the ndocid text form of a control id.
func ParseId(text string) (asset.Id, error) {
	if number, err := strconv.ParseUint(text, 10, 64); err == nil {
		if number == uint64(asset.MissingId) {
			return 0, fmt.Errorf("id %s is reserved", text)
		}
		return asset.Id(number), nil
	}
	numId, err, complete := ndocid.Decode(text)
	if err != nil {
		return 0, fmt.Errorf(`error in ID "%s" (%w)`, text, err)
	}
	if !complete {
		return 0, fmt.Errorf(`incomplete ID "%s"`, text)
	}
	return asset.Id(numId), nil
}

// fingerprintLibraries hashes the definition of each library so unchanged libraries can be recognized between runs.
func fingerprintLibraries(content []byte) (map[string]string, error) {
	var raw struct {
		Libraries []yaml.Node `yaml:"libraries"`
	}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	fingerprints := make(map[string]string, len(raw.Libraries))
	for i := range raw.Libraries {
		node := &raw.Libraries[i]
		var named struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&named); err != nil {
			return nil, err
		}
		canonical, err := yaml.Marshal(node)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(canonical)
		fingerprints[strings.ToLower(named.Name)] = hex.EncodeToString(sum[:])
	}
	return fingerprints, nil
}
