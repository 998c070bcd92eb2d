package xmlnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalKeepsOrder(t *testing.T) {
	root := New("ATLConfig")
	root.SetAttr("atl_name", "weapons")
	root.SetAttr("atl_version", "2")
	child := New("AudioTriggers")
	child.AddChild(New("ATLTrigger"))
	root.AddChild(child)

	blob, err := root.Marshal()
	require.NoError(t, err)
	assert.Equal(t, "<ATLConfig atl_name=\"weapons\" atl_version=\"2\">\n"+
		"\t<AudioTriggers>\n"+
		"\t\t<ATLTrigger></ATLTrigger>\n"+
		"\t</AudioTriggers>\n"+
		"</ATLConfig>\n", string(blob))

	again, err := root.Marshal()
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}

func TestSetAttrReplaces(t *testing.T) {
	e := New("x")
	e.SetAttr("a", "1")
	e.SetAttr("b", "2")
	e.SetAttr("a", "3")
	assert.Equal(t, []Attr{{"a", "3"}, {"b", "2"}}, e.Attrs)
	value, ok := e.Attr("b")
	assert.True(t, ok)
	assert.Equal(t, "2", value)
	_, ok = e.Attr("missing")
	assert.False(t, ok)
}

func TestSameAttributes(t *testing.T) {
	a := New("WwiseEvent")
	a.SetAttr("wwise_name", "Play_Gun")
	b := New("WwiseEvent")
	b.SetAttr("WWISE_NAME", "play_gun")
	c := New("WwiseEvent")
	c.SetAttr("wwise_name", "Stop_Gun")
	d := New("WwiseEvent")
	d.SetAttr("wwise_name", "Play_Gun")
	d.SetAttr("extra", "1")

	assert.True(t, a.SameAttributes(b))
	assert.False(t, a.SameAttributes(c))
	assert.False(t, a.SameAttributes(d))
}

func TestParseRoundTrip(t *testing.T) {
	source := `<?xml version="1.0"?>
<ATLConfig atl_name="lib" atl_version="2">
	<EditorData><Folders><Folder name="a"><Folder name="b"/></Folder></Folders></EditorData>
</ATLConfig>`
	root, err := ParseString(source)
	require.NoError(t, err)
	assert.Equal(t, "ATLConfig", root.Tag)
	folders := root.FindChild("EditorData").FindChild("Folders")
	require.NotNil(t, folders)
	require.Len(t, folders.ChildrenByTag("Folder"), 1)
	assert.Equal(t, "b", folders.Children[0].Children[0].Attrs[0].Value)

	clone := root.Clone()
	clone.Children[0].Tag = "Changed"
	assert.Equal(t, "EditorData", root.Children[0].Tag)
}

func TestParseRejectsEmptyInput(t *testing.T) {
	_, err := ParseString("   ")
	assert.ErrorIs(t, err, ErrNoRootElement)
}
