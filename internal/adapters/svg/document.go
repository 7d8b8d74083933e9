package svg

import (
	"encoding/xml"
	"errors"
	"io"
	"iter"
	"strings"

	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/zerr"
)

// element is one node of a parsed vector document.
type element struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*element
}

// parseDocument reads the whole document into an element tree.
// Namespaces are dropped: inkscape:label and label are the same attribute here.
func parseDocument(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var root *element
	var stack []*element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.Classify(domain.ErrDocumentParseFailed, zerr.Wrap(err, "malformed xml"))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: strings.ToLower(t.Name.Local), attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, domain.Classify(domain.ErrDocumentParseFailed, zerr.New("multiple root elements"))
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, domain.Classify(domain.ErrDocumentParseFailed, zerr.New("document has no root element"))
	}
	if len(stack) > 0 {
		return nil, domain.Classify(domain.ErrDocumentParseFailed, zerr.With(zerr.New("unclosed element"), "element", stack[len(stack)-1].name))
	}
	return root, nil
}

// attr returns the value of the attribute with the given local name.
func (e *element) attr(name string) string {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// id is shorthand for attr("id").
func (e *element) id() string {
	return e.attr("id")
}

// all yields e and every descendant in document order.
func (e *element) all() iter.Seq[*element] {
	return func(yield func(*element) bool) {
		e.walk(yield)
	}
}

// descendants yields every descendant of e in document order, excluding e.
func (e *element) descendants() iter.Seq[*element] {
	return func(yield func(*element) bool) {
		for _, c := range e.children {
			if !c.walk(yield) {
				return
			}
		}
	}
}

func (e *element) walk(yield func(*element) bool) bool {
	if !yield(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// textContent concatenates the character data of e and its descendants.
func (e *element) textContent() string {
	var sb strings.Builder
	for el := range e.all() {
		sb.WriteString(el.text)
	}
	return strings.TrimSpace(sb.String())
}
