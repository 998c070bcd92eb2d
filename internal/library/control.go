package library

import (
	"strconv"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/n2code/acewriter/internal/xmlnode"
)

func TypeToTag(itemType asset.ItemType) string {
	switch itemType {
	case asset.Parameter:
		return "ATLRtpc"
	case asset.Trigger:
		return "ATLTrigger"
	case asset.Switch:
		return "ATLSwitch"
	case asset.State:
		return "ATLSwitchState"
	case asset.Preload:
		return "ATLPreloadRequest"
	case asset.Environment:
		return "ATLEnvironment"
	}
	return ""
}

// WriteControlToXML appends the element of the control to the given node.
// The folder path is only set for controls nested in folders.
func (w *Writer) WriteControlToXML(node *xmlnode.Element, control *asset.Asset, folderPath string) {
	itemType := control.Type()
	child := xmlnode.New(TypeToTag(itemType))
	child.SetAttr("atl_name", control.Name())
	if folderPath != "" {
		child.SetAttr("path", folderPath)
	}

	if itemType == asset.Trigger {
		if radius := control.Radius(); radius > 0 {
			child.SetAttr("atl_radius", formatFloat(radius))
			if fadeOut := control.OcclusionFadeOutDistance(); fadeOut > 0 {
				child.SetAttr("atl_occlusion_fadeout_distance", formatFloat(fadeOut))
			}
		}
		if !control.IsMatchRadiusToAttenuationEnabled() {
			child.SetAttr("atl_match_radius_attenuation", "0")
		}
	}

	switch itemType {
	case asset.Switch:
		for _, state := range control.Children() {
			if state != nil && state.Type() == asset.State {
				w.WriteControlToXML(child, state, "")
			}
		}
	case asset.Preload:
		if control.IsAutoLoad() {
			child.SetAttr("atl_type", "AutoLoad")
		}
		for index, platform := range w.settings.Platforms {
			group := xmlnode.New("ATLPlatform")
			group.SetAttr("atl_name", platform)
			w.WriteConnectionsToXML(group, control, index)
			if group.ChildCount() > 0 {
				child.AddChild(group)
			}
		}
	default:
		w.WriteConnectionsToXML(child, control, asset.NoPlatform)
	}

	node.AddChild(child)
}

// WriteConnectionsToXML fills the node with the connections of the control for the given platform index.
// Cached pass-through connections come first (unless an identical element is present already),
// followed by everything the audio system implementation serializes from the live connections.
// The latter are cached as valid and rebuilt on every pass.
func (w *Writer) WriteConnectionsToXML(node *xmlnode.Element, control *asset.Asset, platformIndex int) {
	if control == nil || w.impl == nil {
		return
	}

	var passThrough []asset.RawConnection
	for _, entry := range control.RawConnections(platformIndex) {
		if !entry.Valid {
			passThrough = append(passThrough, entry)
		}
	}
	control.SetRawConnections(platformIndex, passThrough)

	for _, entry := range passThrough {
		if entry.Node != nil && !containsIdentical(node, entry.Node) {
			node.AddChild(entry.Node.Clone())
		}
	}

	for i := 0; i < control.ConnectionCount(); i++ {
		connection := control.ConnectionAt(i)
		if connection == nil {
			continue
		}
		if control.Type() == asset.Preload && !connection.IsPlatformEnabled(platformIndex) {
			continue
		}
		if serialized := w.impl.CreateXMLNodeFromConnection(connection, control.Type()); serialized != nil {
			node.AddChild(serialized)
			control.AddRawConnection(serialized, true, platformIndex)
		}
	}
}

//an exact-duplicate guard: same tag and pairwise equal attributes, no semantic merge
func containsIdentical(node *xmlnode.Element, candidate *xmlnode.Element) bool {
	for _, existing := range node.ChildrenByTag(candidate.Tag) {
		if existing.SameAttributes(candidate) {
			return true
		}
	}
	return false
}

func formatFloat(value float32) string {
	return strconv.FormatFloat(float64(value), 'f', -1, 32)
}
