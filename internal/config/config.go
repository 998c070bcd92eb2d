// Package config loads the settings of an acewriter project.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/n2code/acewriter/internal/asset"
)

const FileName = "acewriter.yaml"
const EnvPrefix = "ACE_"

const (
	SourceControlNone = "none"
	SourceControlGit  = "git"
)

type Config struct {
	GameFolder    string   `koanf:"game_folder"`
	AudioDataRoot string   `koanf:"audio_data_root"`
	Project       string   `koanf:"project"`
	StateFile     string   `koanf:"state_file"`
	Platforms     []string `koanf:"platforms"`
	Changelist    string   `koanf:"changelist"`
	SourceControl string   `koanf:"source_control"`
	LogLevel      string   `koanf:"log_level"`
	LogFormat     string   `koanf:"log_format"`

	//control type name -> connection tags the audio system accepts for it, unlisted types accept all
	ConnectionTags map[string][]string `koanf:"connection_tags"`

	File string `koanf:"-"` //absolute path of the config file, empty if none was found
}

// Locate walks up from the given directory to the first one containing a config file.
func Locate(startingDirectoryAbsolute string) (configFile string, found bool, err error) {
	currentDir := startingDirectoryAbsolute
	for {
		candidate := filepath.Join(currentDir, FileName)
		stat, statErr := os.Stat(candidate)
		switch {
		case statErr == nil && stat.Mode().IsRegular():
			return candidate, true, nil
		case statErr == nil || errors.Is(statErr, os.ErrNotExist):
			parent := filepath.Dir(currentDir)
			if parent == currentDir {
				return "", false, nil
			}
			currentDir = parent
		default:
			return "", false, statErr
		}
	}
}

// Load reads the config file (if any) and applies ACE_* environment overrides.
// Relative paths are resolved against the directory of the config file, or baseDir without one.
//
// Precedence (highest to lowest): environment, config file, defaults.
func Load(configFile string, baseDir string) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		content, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
		if absolute, err := filepath.Abs(configFile); err == nil {
			configFile = absolute
		}
		baseDir = filepath.Dir(configFile)
	}

	//ACE_GAME_FOLDER -> game_folder, list values are comma-separated
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key string, value string) (string, interface{}) {
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if name == "platforms" {
			return name, splitList(value)
		}
		return name, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = configFile
	if k.Exists("platforms") && cfg.Platforms == nil {
		cfg.Platforms = []string{} //explicitly emptied, not defaulted
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.resolvePaths(baseDir)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.GameFolder == "" {
		cfg.GameFolder = "."
	}
	if cfg.AudioDataRoot == "" {
		cfg.AudioDataRoot = "audio"
	}
	if cfg.Project == "" {
		cfg.Project = "audio_controls.yaml"
	}
	if cfg.StateFile == "" {
		cfg.StateFile = ".acewriter.state"
	}
	if cfg.Platforms == nil {
		cfg.Platforms = []string{"pc"}
	}
	if cfg.Changelist == "" {
		cfg.Changelist = "(ACE Changelist)"
	}
	if cfg.SourceControl == "" {
		cfg.SourceControl = SourceControlNone
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
}

func (cfg *Config) Validate() error {
	if len(cfg.Platforms) == 0 {
		return errors.New("at least one platform required")
	}
	seen := make(map[string]bool)
	for _, platform := range cfg.Platforms {
		if platform == "" {
			return errors.New("platform name must not be empty")
		}
		if seen[strings.ToLower(platform)] {
			return fmt.Errorf("platform %q listed twice", platform)
		}
		seen[strings.ToLower(platform)] = true
	}
	switch cfg.SourceControl {
	case SourceControlNone, SourceControlGit:
	default:
		return fmt.Errorf("unknown source control %q (expected %s or %s)", cfg.SourceControl, SourceControlNone, SourceControlGit)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (expected console or json)", cfg.LogFormat)
	}
	for typeName, tags := range cfg.ConnectionTags {
		if _, known := asset.ParseControlType(typeName); !known {
			return fmt.Errorf("connection tags given for unknown control type %q", typeName)
		}
		if len(tags) == 0 {
			return fmt.Errorf("connection tags of %s must not be empty", typeName)
		}
	}
	if filepath.IsAbs(cfg.AudioDataRoot) {
		return fmt.Errorf("audio data root %q must be relative to the game folder", cfg.AudioDataRoot)
	}
	return nil
}

// Fingerprint digests every setting which shapes the written library files: their location,
// the platform groups of preload requests and the accepted connection tags.
// Libraries written under a different fingerprint must be written again.
func (cfg *Config) Fingerprint() string {
	digest := sha256.New()
	fmt.Fprintf(digest, "game_folder=%s\n", cfg.GameFolder)
	fmt.Fprintf(digest, "audio_data_root=%s\n", cfg.AudioDataRoot)
	fmt.Fprintf(digest, "platforms=%s\n", strings.Join(cfg.Platforms, ","))
	typeNames := make([]string, 0, len(cfg.ConnectionTags))
	for typeName := range cfg.ConnectionTags {
		typeNames = append(typeNames, typeName)
	}
	sort.Strings(typeNames)
	for _, typeName := range typeNames {
		tags := append([]string(nil), cfg.ConnectionTags[typeName]...)
		sort.Strings(tags)
		fmt.Fprintf(digest, "connection_tags.%s=%s\n", strings.ToLower(typeName), strings.Join(tags, ","))
	}
	return hex.EncodeToString(digest.Sum(nil))
}

func (cfg *Config) resolvePaths(baseDir string) {
	resolve := func(path string) string {
		if filepath.IsAbs(path) {
			return filepath.Clean(path)
		}
		return filepath.Join(baseDir, path)
	}
	cfg.GameFolder = resolve(cfg.GameFolder)
	cfg.Project = resolve(cfg.Project)
	cfg.StateFile = resolve(cfg.StateFile)
	cfg.AudioDataRoot = filepath.ToSlash(filepath.Clean(cfg.AudioDataRoot))
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
