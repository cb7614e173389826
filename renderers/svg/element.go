package svg

import (
	"bytes"
	"encoding/xml"
)

// Attr is an attribute of an Element.
type Attr struct {
	Key, Val string
}

// Element is a node of the SVG document. Attributes keep their insertion order so that output is deterministic.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// NewElement returns an element with attributes given as key-value pairs.
func NewElement(name string, attrs ...string) *Element {
	e := &Element{Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.Set(attrs[i], attrs[i+1])
	}
	return e
}

// Set sets an attribute, replacing an existing one in place.
func (e *Element) Set(key, val string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Val = val
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{key, val})
}

// Get returns the value of an attribute.
func (e *Element) Get(key string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Append adds child elements.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

func (e *Element) String() string {
	b := &bytes.Buffer{}
	e.write(b)
	return b.String()
}

func (e *Element) write(b *bytes.Buffer) {
	b.WriteByte('<')
	b.WriteString(e.Name)
	for _, attr := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		xml.EscapeText(b, []byte(attr.Val))
		b.WriteByte('"')
	}
	if len(e.Children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, child := range e.Children {
		child.write(b)
	}
	b.WriteString("</")
	b.WriteString(e.Name)
	b.WriteByte('>')
}
