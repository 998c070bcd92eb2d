package acewriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/audioimpl"
	"github.com/n2code/acewriter/internal/config"
	"github.com/n2code/acewriter/internal/library"
	"github.com/n2code/acewriter/internal/logging"
	"github.com/n2code/acewriter/internal/output"
	"github.com/n2code/acewriter/internal/project"
	"github.com/n2code/acewriter/internal/sourcecontrol"
	"go.uber.org/zap"
)

type VerbosityLevel int

// CreateConfig holds a set of common configuration switches that concern all calls to the acewriter API.
// The zero value is a sensible default.
type CreateConfig struct {
	Verbosity    VerbosityLevel
	AllowEscapes bool        //colored output
	Logger       *zap.Logger //replaces the logger built from the project settings
	Stdout       io.Writer   //defaults to os.Stdout
	Stderr       io.Writer   //defaults to os.Stderr
}

const (
	DefaultVerbosity VerbosityLevel = iota //normal level of information, all noteworthy facts without too much noise
	VerboseMode                            //exhaustive information about what is happening, repeating context
	QuietMode                              //only output errors and information that was explicitly requested (-> Print* functions)
)

type aceWriter struct {
	directory    string
	createConfig CreateConfig
	settings     *config.Config
	project      *project.Project
	writer       *library.Writer
	scc          sourcecontrol.Api
	log          *zap.Logger
	printer      output.Printer
}

// Open loads the project whose config file is found in the given directory or above.
// Without a config file the directory itself is the base of all default paths.
func Open(directory string, createConfig CreateConfig) (AceWriter, error) {
	handle, err := openHandle(directory, createConfig)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

func openHandle(directory string, createConfig CreateConfig) (*aceWriter, error) {
	absoluteDir, err := filepath.Abs(directory)
	if err != nil {
		return nil, newCommandError("invalid directory", err)
	}
	handle := &aceWriter{
		directory:    absoluteDir,
		createConfig: createConfig,
		printer:      makePrinter(createConfig),
	}
	if err := handle.Reload(); err != nil {
		return nil, err
	}
	return handle, nil
}

func makePrinter(createConfig CreateConfig) output.Printer {
	stdout, stderr := createConfig.Stdout, createConfig.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	classes := []output.Class{output.Required, output.Error}
	switch createConfig.Verbosity {
	case VerboseMode:
		classes = append(classes, output.Verbose)
		fallthrough
	case DefaultVerbosity:
		classes = append(classes, output.Normal)
	}
	return output.NewPrinterTo(stdout, stderr, classes, createConfig.AllowEscapes)
}

// Reload reads the settings and the project again and rebuilds everything depending on them.
// On failure the handle keeps its previous state.
func (a *aceWriter) Reload() error {
	configFile, _, err := config.Locate(a.directory)
	if err != nil {
		return newCommandError("config lookup failed", err)
	}
	settings, err := config.Load(configFile, a.directory)
	if err != nil {
		return newCommandError("config load error", err)
	}

	log := a.createConfig.Logger
	if log == nil {
		level := settings.LogLevel
		if a.createConfig.Verbosity == VerboseMode {
			level = "debug"
		}
		if log, err = logging.New(level, settings.LogFormat); err != nil {
			return newCommandError("logger setup failed", err)
		}
	}

	var scc sourcecontrol.Api
	switch settings.SourceControl {
	case config.SourceControlGit:
		git, err := sourcecontrol.OpenGit(settings.GameFolder, log)
		if err != nil {
			return newCommandError("source control unavailable", err)
		}
		scc = git
	case config.SourceControlNone:
		log.Debug("source control disabled")
	}

	impl := audioimpl.NewGeneric()
	for typeName, tags := range settings.ConnectionTags {
		controlType, _ := asset.ParseControlType(typeName) //validated on load
		impl.Allow(controlType, tags...)
	}

	loaded, err := project.Load(settings.Project, settings.Platforms)
	if err != nil {
		return newCommandError("project load error", err)
	}

	a.settings, a.log, a.scc, a.project = settings, log, scc, loaded
	a.writer = library.NewWriter(loaded.Assets, impl, scc, library.Settings{
		GameFolder:    settings.GameFolder,
		AudioDataRoot: settings.AudioDataRoot,
		Platforms:     settings.Platforms,
		Changelist:    settings.Changelist,
	}, log)
	log.Debug("project loaded",
		zap.String("project", settings.Project),
		zap.Int("libraries", loaded.Assets.LibraryCount()))
	return nil
}

func (a *aceWriter) describe() string {
	if a.settings.File == "" {
		return fmt.Sprintf("%s [no %s]", a.settings.GameFolder, config.FileName)
	}
	return a.settings.File
}
