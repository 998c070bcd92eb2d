package asset

import (
	"fmt"
	"strings"
)

type ScopeInfo struct {
	Name   string
	Global bool
}

// Manager owns all libraries of a project and the registry of level scopes.
type Manager struct {
	libraries []*Asset
	scopes    []ScopeInfo //indexed by Scope
}

func NewManager() *Manager {
	return &Manager{scopes: []ScopeInfo{{Name: "global", Global: true}}}
}

func (m *Manager) AddLibrary(library *Asset) error {
	if library.itemType != Library {
		return fmt.Errorf("%s %q is not a library", library.itemType, library.name)
	}
	for _, existing := range m.libraries {
		if strings.EqualFold(existing.name, library.name) {
			return fmt.Errorf("library %q already exists", library.name)
		}
	}
	m.libraries = append(m.libraries, library)
	return nil
}

func (m *Manager) LibraryCount() int {
	return len(m.libraries)
}

func (m *Manager) Library(index int) *Asset {
	return m.libraries[index]
}

func (m *Manager) Libraries() []*Asset {
	return m.libraries
}

// RegisterScope returns the scope of the given level name, creating it if necessary.
// The name is matched case-insensitively because it ends up in a lower-cased file path.
func (m *Manager) RegisterScope(name string) Scope {
	for i, info := range m.scopes {
		if !info.Global && strings.EqualFold(info.Name, name) {
			return Scope(i)
		}
	}
	m.scopes = append(m.scopes, ScopeInfo{Name: name})
	return Scope(len(m.scopes) - 1)
}

func (m *Manager) ScopeInfo(scope Scope) (info ScopeInfo, exists bool) {
	if int(scope) >= len(m.scopes) {
		return ScopeInfo{}, false
	}
	return m.scopes[scope], true
}

// FindById searches all libraries for the control with the given id.
func (m *Manager) FindById(id Id) (found *Asset, library *Asset) {
	if id == MissingId {
		return nil, nil
	}
	for _, lib := range m.libraries {
		lib.Walk(func(a *Asset) {
			if found == nil && a.control != nil && a.control.id == id {
				found = a
				library = lib
			}
		})
		if found != nil {
			return
		}
	}
	return nil, nil
}
