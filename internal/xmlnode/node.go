package xmlnode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Attr struct {
	Key   string
	Value string
}

// Element is a minimal XML element tree which keeps attribute and child order exactly as inserted.
// Character data is not modelled because ATL documents never carry any.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []*Element
}

func New(tag string) *Element {
	return &Element{Tag: tag}
}

// SetAttr replaces the value of an existing attribute or appends a new one.
func (e *Element) SetAttr(key string, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
}

func (e *Element) Attr(key string) (value string, exists bool) {
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

func (e *Element) AddChild(child *Element) {
	e.Children = append(e.Children, child)
}

func (e *Element) ChildCount() int {
	return len(e.Children)
}

// FindChild yields the first direct child with the given tag or nil.
func (e *Element) FindChild(tag string) *Element {
	for _, child := range e.Children {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

// ChildrenByTag lists all direct children with the given tag in document order.
func (e *Element) ChildrenByTag(tag string) (found []*Element) {
	for _, child := range e.Children {
		if child.Tag == tag {
			found = append(found, child)
		}
	}
	return
}

// SameAttributes reports whether both elements have the same number of attributes and,
// position by position, equal names and values. Comparison ignores letter case.
func (e *Element) SameAttributes(other *Element) bool {
	if len(e.Attrs) != len(other.Attrs) {
		return false
	}
	for i := range e.Attrs {
		if !strings.EqualFold(e.Attrs[i].Key, other.Attrs[i].Key) || !strings.EqualFold(e.Attrs[i].Value, other.Attrs[i].Value) {
			return false
		}
	}
	return true
}

// Clone copies the whole subtree so that the copy can be attached to another parent.
func (e *Element) Clone() *Element {
	clone := &Element{Tag: e.Tag, Attrs: append([]Attr(nil), e.Attrs...)}
	for _, child := range e.Children {
		clone.Children = append(clone.Children, child.Clone())
	}
	return clone
}

// Marshal renders the tree as a tab-indented document. Equal trees always yield equal bytes.
func (e *Element) Marshal() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := xml.NewEncoder(&buffer)
	encoder.Indent("", "\t")
	if err := e.encode(encoder); err != nil {
		return nil, err
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

func (e *Element) encode(encoder *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Tag}}
	for _, attr := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attr.Key}, Value: attr.Value})
	}
	if err := encoder.EncodeToken(start); err != nil {
		return fmt.Errorf("encoding <%s> failed: %w", e.Tag, err)
	}
	for _, child := range e.Children {
		if err := child.encode(encoder); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}

func (e *Element) String() string {
	blob, err := e.Marshal()
	if err != nil {
		return fmt.Sprintf("<%s !%s>", e.Tag, err)
	}
	return strings.TrimSuffix(string(blob), "\n")
}

var ErrNoRootElement = errors.New("document has no root element")

// Parse reads exactly one root element (plus its subtree) from the reader.
func Parse(reader io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(reader)
	var stack []*Element
	var root *Element
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			element := New(t.Name.Local)
			for _, attr := range t.Attr {
				element.Attrs = append(element.Attrs, Attr{Key: attr.Name.Local, Value: attr.Value})
			}
			if len(stack) > 0 {
				stack[len(stack)-1].AddChild(element)
			} else if root == nil {
				root = element
			} else {
				return nil, fmt.Errorf("second root element <%s> found", element.Tag)
			}
			stack = append(stack, element)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, ErrNoRootElement
	}
	return root, nil
}

func ParseString(text string) (*Element, error) {
	return Parse(strings.NewReader(text))
}
