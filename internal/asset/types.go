package asset

import (
	"fmt"
	"strings"

	"github.com/n2code/acewriter/internal/xmlnode"
)

// ItemType discriminates the variants of the asset tree. The order of the control types
// is the order in which their sections appear in a written library document.
type ItemType int

const (
	Trigger ItemType = iota
	Parameter
	Switch
	State
	Environment
	Preload
	Folder
	Library
)

// NumControlTypes bounds the control types, i.e. all types below Folder.
const NumControlTypes = int(Folder)

func (t ItemType) IsControl() bool {
	return t >= Trigger && t < Folder
}

func (t ItemType) String() string {
	switch t {
	case Trigger:
		return "trigger"
	case Parameter:
		return "parameter"
	case Switch:
		return "switch"
	case State:
		return "state"
	case Environment:
		return "environment"
	case Preload:
		return "preload"
	case Folder:
		return "folder"
	case Library:
		return "library"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseControlType is the inverse of String for control types, ignoring case.
func ParseControlType(name string) (ItemType, bool) {
	for t := Trigger; t < Folder; t++ {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	return Folder, false
}

// Scope partitions the output files of a library. The zero value is the global scope.
type Scope uint32

const GlobalScope Scope = 0

// NoPlatform indexes the raw connection cache of every control that is not a preload request.
const NoPlatform = -1

// Id is the numeric control identifier, 0 if none was assigned.
type Id uint64

const MissingId Id = 0

type Property struct {
	Key   string
	Value string
}

// Connection is the opaque middleware payload linked to a control.
// Only preload requests honour the platform restriction.
type Connection struct {
	Tag        string
	Properties []Property
	platforms  map[int]bool //enabled platform indices, empty means all
}

// RawConnection is a cached XML connection node. Valid entries have been produced by the audio system
// implementation during an earlier write, invalid ones are pass-through data nobody could interpret.
type RawConnection struct {
	Node  *xmlnode.Element
	Valid bool
}

// controlData is the payload carried only by control variants
type controlData struct {
	id                       Id
	scope                    Scope
	radius                   float32
	fadeOutDistance          float32
	autoLoad                 bool
	matchRadiusToAttenuation bool
	connections              []*Connection
	rawConnections           map[int][]RawConnection //by platform index
}

// Asset is a node of a library tree: a library (root), a folder, or a control.
type Asset struct {
	itemType ItemType
	name     string
	modified bool
	parent   *Asset
	children []*Asset
	control  *controlData //nil unless itemType.IsControl()
}
