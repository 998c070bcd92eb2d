package library

import (
	"encoding/json"
)

type jsonState struct {
	Version      int
	LastPass     string
	Paths        []string
	Fingerprints map[string]string
	Settings     string
}

func (s *State) MarshalJSON() ([]byte, error) {
	persisted := jsonState{
		Version:      CurrentFileVersion,
		LastPass:     s.LastPass,
		Paths:        s.Paths.Sorted(),
		Fingerprints: s.Fingerprints,
		Settings:     s.Settings,
	}
	return json.Marshal(persisted)
}

func (s *State) UnmarshalJSON(blob []byte) error {
	var loaded jsonState
	if err := json.Unmarshal(blob, &loaded); err != nil {
		return err
	}
	s.LastPass = loaded.LastPass
	s.Paths = NewPathSet(loaded.Paths...)
	s.Fingerprints = loaded.Fingerprints
	s.Settings = loaded.Settings
	if s.Fingerprints == nil {
		s.Fingerprints = make(map[string]string)
	}
	return nil
}
