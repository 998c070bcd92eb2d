package asset

import (
	"fmt"

	"github.com/n2code/acewriter/internal/xmlnode"
)

func NewLibrary(name string) *Asset {
	return &Asset{itemType: Library, name: name, modified: true}
}

func NewFolder(name string) *Asset {
	return &Asset{itemType: Folder, name: name, modified: true}
}

// NewControl panics if the given type is not a control type.
func NewControl(name string, itemType ItemType, scope Scope) *Asset {
	if !itemType.IsControl() {
		panic(fmt.Sprintf("%s is not a control type", itemType))
	}
	return &Asset{
		itemType: itemType,
		name:     name,
		modified: true,
		control: &controlData{
			scope:                    scope,
			matchRadiusToAttenuation: true,
			rawConnections:           make(map[int][]RawConnection),
		},
	}
}

func (a *Asset) Type() ItemType {
	return a.itemType
}

func (a *Asset) Name() string {
	return a.name
}

func (a *Asset) Parent() *Asset {
	return a.parent
}

func (a *Asset) IsModified() bool {
	return a.modified
}

// SetModified flags the asset. A modification also flags all ancestors so that the library notices it.
func (a *Asset) SetModified(modified bool) {
	a.modified = modified
	if modified && a.parent != nil {
		a.parent.SetModified(true)
	}
}

func (a *Asset) ChildCount() int {
	return len(a.children)
}

func (a *Asset) Child(index int) *Asset {
	return a.children[index]
}

func (a *Asset) Children() []*Asset {
	return a.children
}

// AddChild attaches the child at the end, enforcing the nesting rules:
// libraries and folders hold folders and non-state controls, switches hold states only.
func (a *Asset) AddChild(child *Asset) error {
	if child.parent != nil {
		return fmt.Errorf("%s %q already belongs to %q", child.itemType, child.name, child.parent.name)
	}
	switch a.itemType {
	case Library, Folder:
		if child.itemType == Library || child.itemType == State {
			return fmt.Errorf("%s %q cannot be placed in %s %q", child.itemType, child.name, a.itemType, a.name)
		}
	case Switch:
		if child.itemType != State {
			return fmt.Errorf("switch %q only accepts states, got %s %q", a.name, child.itemType, child.name)
		}
	default:
		return fmt.Errorf("%s %q cannot have children", a.itemType, a.name)
	}
	child.parent = a
	a.children = append(a.children, child)
	a.SetModified(true)
	return nil
}

// Walk visits the asset and its descendants depth-first in child order.
func (a *Asset) Walk(visitor func(*Asset)) {
	visitor(a)
	for _, child := range a.children {
		child.Walk(visitor)
	}
}

func (a *Asset) mustControl() *controlData {
	if a.control == nil {
		panic(fmt.Sprintf("%s %q is not a control", a.itemType, a.name))
	}
	return a.control
}

func (a *Asset) Id() Id {
	if a.control == nil {
		return MissingId
	}
	return a.control.id
}

func (a *Asset) SetId(id Id) {
	a.mustControl().id = id
}

func (a *Asset) Scope() Scope {
	return a.mustControl().scope
}

func (a *Asset) SetScope(scope Scope) {
	a.mustControl().scope = scope
	a.SetModified(true)
}

func (a *Asset) Radius() float32 {
	return a.mustControl().radius
}

func (a *Asset) SetRadius(radius float32) {
	a.mustControl().radius = radius
	a.SetModified(true)
}

func (a *Asset) OcclusionFadeOutDistance() float32 {
	return a.mustControl().fadeOutDistance
}

func (a *Asset) SetOcclusionFadeOutDistance(distance float32) {
	a.mustControl().fadeOutDistance = distance
	a.SetModified(true)
}

func (a *Asset) IsAutoLoad() bool {
	return a.mustControl().autoLoad
}

func (a *Asset) SetAutoLoad(autoLoad bool) {
	a.mustControl().autoLoad = autoLoad
	a.SetModified(true)
}

func (a *Asset) IsMatchRadiusToAttenuationEnabled() bool {
	return a.mustControl().matchRadiusToAttenuation
}

func (a *Asset) SetMatchRadiusToAttenuation(enabled bool) {
	a.mustControl().matchRadiusToAttenuation = enabled
	a.SetModified(true)
}

func (a *Asset) AddConnection(connection *Connection) {
	control := a.mustControl()
	control.connections = append(control.connections, connection)
	a.SetModified(true)
}

func (a *Asset) ConnectionCount() int {
	return len(a.mustControl().connections)
}

func (a *Asset) ConnectionAt(index int) *Connection {
	return a.mustControl().connections[index]
}

// RawConnections yields the cached XML connections of the given platform index (NoPlatform for non-preloads).
func (a *Asset) RawConnections(platformIndex int) []RawConnection {
	return a.mustControl().rawConnections[platformIndex]
}

func (a *Asset) SetRawConnections(platformIndex int, entries []RawConnection) {
	a.mustControl().rawConnections[platformIndex] = entries
}

func (a *Asset) AddRawConnection(node *xmlnode.Element, valid bool, platformIndex int) {
	control := a.mustControl()
	control.rawConnections[platformIndex] = append(control.rawConnections[platformIndex], RawConnection{Node: node, Valid: valid})
}

func NewConnection(tag string, properties ...Property) *Connection {
	return &Connection{Tag: tag, Properties: properties}
}

// RestrictToPlatforms limits the connection to the given platform indices. Without a restriction every platform is enabled.
func (c *Connection) RestrictToPlatforms(platformIndices ...int) {
	c.platforms = make(map[int]bool, len(platformIndices))
	for _, index := range platformIndices {
		c.platforms[index] = true
	}
}

func (c *Connection) IsPlatformEnabled(platformIndex int) bool {
	if len(c.platforms) == 0 {
		return true
	}
	return c.platforms[platformIndex]
}
