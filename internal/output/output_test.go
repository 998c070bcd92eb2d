package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualFileTree(t *testing.T) {
	tree := NewVisualFileTree("game")
	tree.InsertPath("audio/ace/Weapons.xml", "~ ")
	tree.InsertPath("audio/ace/levels/forest/Weapons.xml", "= ")
	tree.InsertPath("audio/ace/Music.xml", "X ")

	expected := `game
└── audio
    └── ace
        ├── ~ Weapons.xml
        ├── levels
        │   └── forest
        │       └── = Weapons.xml
        └── X Music.xml
`
	assert.Equal(t, expected, tree.Render())
}

func TestVisualTree(t *testing.T) {
	root := NewVisualTree("Ambience")
	folder := root.Add("outdoor/")
	folder.Add("chirp")
	root.Add("rain")

	expected := `Ambience
├── outdoor/
│   └── chirp
└── rain
`
	assert.Equal(t, expected, root.Render())
}

func TestPrinterClasses(t *testing.T) {
	var out, diagnosis bytes.Buffer
	p := NewPrinterTo(&out, &diagnosis, []Class{Required, Error}, false)

	p.Out(Required, "always %d\n", 1)
	p.Out(Verbose, "hidden\n")
	p.Out(Error, "broken\n")

	assert.Equal(t, "always 1\n", out.String())
	assert.Equal(t, "broken\n", diagnosis.String())
}

func TestPrinterWithoutEscapes(t *testing.T) {
	p := NewPrinterTo(&bytes.Buffer{}, &bytes.Buffer{}, nil, false)
	assert.Equal(t, "plain", p.Colored("plain", Red))
	assert.Equal(t, "plain", p.Dim("plain"))
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "  a\n  b", Indent(2, "a\nb"))
	assert.Equal(t, "1 file", Count(1, "file", "files"))
	assert.Equal(t, "0 files", Count(0, "file", "files"))
}
