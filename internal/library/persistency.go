package library

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const workInProgressFileSuffix = ".wip"
const stateContentOpener = "ACESTATE>>>"
const stateContentTerminator = "<<<ACESTATE"
const stateSemanticVersion = "1.0.0"
const semVerPattern = `^(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`

var semanticVersionRegex = regexp.MustCompile(semVerPattern)
var semanticVersionMajorSubmatchIndex = semanticVersionRegex.SubexpIndex("major")

var ErrLeftoverWorkInProgress = errors.New("old " + workInProgressFileSuffix + "-file exists, manual intervention necessary")

// State is what the writer remembers between runs: the library files of the last pass,
// the fingerprint of each library's definition and of the output settings at that time.
type State struct {
	Paths        PathSet
	Fingerprints map[string]string //by lower-cased library name
	Settings     string
	LastPass     string
}

func NewState() *State {
	return &State{Paths: make(PathSet), Fingerprints: make(map[string]string)}
}

// SaveToLocalFile replaces the state file atomically by writing a temporary sibling first.
func (s *State) SaveToLocalFile(path string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("saving writer state failed: %w", err)
		}
	}()

	tempPath := path + workInProgressFileSuffix

	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil { //plausible failure
		return
	}

	compressor, _ := gzip.NewWriterLevel(file, gzip.BestSpeed)
	writeErr := s.writeTo(compressor)
	closeErr := compressor.Close()
	fileErr := file.Close()
	if err = errors.Join(writeErr, closeErr, fileErr); err != nil {
		os.Remove(tempPath)
		return
	}

	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replacing state file (%s) with temporary working copy (%s) failed: %w", path, tempPath, err)
	}
	return nil
}

func (s *State) writeTo(target io.Writer) error {
	if _, err := fmt.Fprintf(target, "%s\n%s\n", stateSemanticVersion, stateContentOpener); err != nil {
		return err
	}
	encoder := json.NewEncoder(target)
	encoder.SetIndent("", "\t")
	if err := encoder.Encode(s); err != nil {
		return err
	}
	_, err := fmt.Fprintf(target, "%s\n", stateContentTerminator)
	return err
}

// LoadStateFromLocalFile reads a state file written by SaveToLocalFile.
// A missing file is reported as fs.ErrNotExist so callers can start from an empty state.
func LoadStateFromLocalFile(path string) (state *State, err error) {
	if _, statErr := os.Stat(path + workInProgressFileSuffix); !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrLeftoverWorkInProgress, path+workInProgressFileSuffix)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decompressor, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("state file corrupted: %w", err)
	}
	defer decompressor.Close()
	reader := bufio.NewReader(decompressor)

	textUntilNewline := func() (string, error) {
		line, err := reader.ReadString('\n')
		return strings.TrimSuffix(line, "\n"), err
	}

	fileVersion, err := textUntilNewline()
	if err != nil {
		return nil, fmt.Errorf("state file corrupted: %w", err)
	}
	fileVersionMatch := semanticVersionRegex.FindStringSubmatch(fileVersion)
	if fileVersionMatch == nil {
		return nil, errors.New("state file corrupted, version not found")
	}
	appVersionMatch := semanticVersionRegex.FindStringSubmatch(stateSemanticVersion)
	if fileVersionMatch[semanticVersionMajorSubmatchIndex] != appVersionMatch[semanticVersionMajorSubmatchIndex] {
		return nil, fmt.Errorf("incompatible state file version: %s", fileVersion)
	}

	for {
		line, err := textUntilNewline()
		if err != nil {
			return nil, fmt.Errorf("state file corrupted, content missing: %w", err)
		}
		if line == stateContentOpener {
			break
		}
	}

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	state = NewState()
	if err := decoder.Decode(state); err != nil {
		return nil, fmt.Errorf("state file corrupted: %w", err)
	}

	var termination strings.Builder
	io.Copy(&termination, decoder.Buffered())
	io.Copy(&termination, reader)
	if !strings.HasPrefix(termination.String(), "\n"+stateContentTerminator) { //newline courtesy of JSON beautification
		return nil, fmt.Errorf("unexpected state termination: %q", termination.String())
	}
	return state, nil
}
