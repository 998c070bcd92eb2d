package audioimpl

import (
	"testing"

	"github.com/n2code/acewriter/internal/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericSerialization(t *testing.T) {
	impl := NewGeneric()
	connection := asset.NewConnection("WwiseEvent", asset.Property{Key: "wwise_name", Value: "Play_Shot"}, asset.Property{Key: "wwise_local", Value: "1"})

	node := impl.CreateXMLNodeFromConnection(connection, asset.Trigger)
	require.NotNil(t, node)
	assert.Equal(t, `<WwiseEvent wwise_name="Play_Shot" wwise_local="1"></WwiseEvent>`, node.String())

	assert.Nil(t, impl.CreateXMLNodeFromConnection(asset.NewConnection(""), asset.Trigger))
	assert.Nil(t, impl.CreateXMLNodeFromConnection(nil, asset.Trigger))
}

func TestGenericRestrictions(t *testing.T) {
	impl := NewGeneric()
	impl.Allow(asset.Parameter, "WwiseRtpc")

	assert.Nil(t, impl.CreateXMLNodeFromConnection(asset.NewConnection("WwiseEvent"), asset.Parameter))
	assert.NotNil(t, impl.CreateXMLNodeFromConnection(asset.NewConnection("WwiseRtpc"), asset.Parameter))
	assert.NotNil(t, impl.CreateXMLNodeFromConnection(asset.NewConnection("WwiseEvent"), asset.Trigger))
}
