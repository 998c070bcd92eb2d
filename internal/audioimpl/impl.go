package audioimpl

import (
	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/xmlnode"
)

// Api is the audio middleware collaborator which knows how connections are persisted.
// A nil result means the connection cannot be serialized and is skipped.
type Api interface {
	CreateXMLNodeFromConnection(connection *asset.Connection, controlType asset.ItemType) *xmlnode.Element
}

// Generic serializes a connection as one element named by the connection tag, carrying its properties
// as attributes in their given order. Tags can be limited per control type.
type Generic struct {
	allowed map[asset.ItemType]map[string]bool
}

func NewGeneric() *Generic {
	return &Generic{allowed: make(map[asset.ItemType]map[string]bool)}
}

// Allow restricts the given control type to the listed connection tags.
// Control types without any restriction accept every tag.
func (g *Generic) Allow(controlType asset.ItemType, tags ...string) {
	set := g.allowed[controlType]
	if set == nil {
		set = make(map[string]bool)
		g.allowed[controlType] = set
	}
	for _, tag := range tags {
		set[tag] = true
	}
}

func (g *Generic) CreateXMLNodeFromConnection(connection *asset.Connection, controlType asset.ItemType) *xmlnode.Element {
	if connection == nil || connection.Tag == "" {
		return nil
	}
	if set, restricted := g.allowed[controlType]; restricted && !set[connection.Tag] {
		return nil
	}
	node := xmlnode.New(connection.Tag)
	for _, property := range connection.Properties {
		node.SetAttr(property.Key, property.Value)
	}
	return node
}
