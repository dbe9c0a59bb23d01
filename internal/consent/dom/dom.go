// Package dom is a minimal model of the pieces of a browser document the
// consent engine touches: script elements, their src/type attributes, head
// insertion, and the two primitives the engine hooks (element creation and
// source assignment). The generated JavaScript artifact performs the same
// operations against the real DOM; this package gives the engine, banner,
// and their tests a faithful host to run against.
package dom

import (
	"strings"
	"sync"
)

// CreateFunc constructs a new element of the given tag. The document's
// element-creation primitive has this shape; hooks wrap it.
type CreateFunc func(tag string) *Element

// AssignSrcFunc assigns a source URL to an element. Hooks wrap it to
// intercept writes before the (modeled) network fetch would be issued.
type AssignSrcFunc func(e *Element, src string)

// Element models a DOM element. Only the fields the consent engine reads or
// writes are represented.
type Element struct {
	Tag   string
	Async bool

	doc   *Document
	src   string
	typ   string
	attrs map[string]string
}

// Src returns the element's effective source URL. A quarantined element has
// an empty live src; its intended source lives in a data attribute.
func (e *Element) Src() string { return e.src }

// Type returns the element's type attribute.
func (e *Element) Type() string { return e.typ }

// SetType overwrites the element's type attribute directly.
func (e *Element) SetType(t string) { e.typ = t }

// SetSrc assigns the element's source through the document's (possibly
// hooked) assignment primitive. Elements detached from any document assign
// directly.
func (e *Element) SetSrc(src string) {
	if e.doc != nil {
		e.doc.assignSrc(e, src)
		return
	}
	e.src = src
}

// SetAttribute writes a named attribute. Writes to "src" funnel through the
// same hooked primitive as the src property so attribute-based assignment
// cannot bypass interception; "type" and "async" update their fields.
func (e *Element) SetAttribute(name, value string) {
	switch strings.ToLower(name) {
	case "src":
		e.SetSrc(value)
	case "type":
		e.typ = value
	case "async":
		e.Async = true
	default:
		if e.attrs == nil {
			e.attrs = make(map[string]string)
		}
		e.attrs[name] = value
	}
}

// Attribute reads a named attribute; ok is false if it was never set.
func (e *Element) Attribute(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "src":
		return e.src, e.src != ""
	case "type":
		return e.typ, e.typ != ""
	}
	v, ok := e.attrs[name]
	return v, ok
}

// RemoveAttribute deletes a named attribute.
func (e *Element) RemoveAttribute(name string) {
	switch strings.ToLower(name) {
	case "src":
		e.src = ""
	case "type":
		e.typ = ""
	default:
		delete(e.attrs, name)
	}
}

// Document models the page the engine runs on: a hostname, an ordered set of
// attached elements, and the hookable creation/assignment primitives.
type Document struct {
	mu       sync.Mutex
	hostname string
	elements []*Element
	create   CreateFunc
	assign   AssignSrcFunc
	hooks    map[string]bool
}

// NewDocument creates an empty document for a page served from hostname.
func NewDocument(hostname string) *Document {
	d := &Document{
		hostname: hostname,
		hooks:    make(map[string]bool),
	}
	d.create = d.rawCreate
	d.assign = rawAssignSrc
	return d
}

// Hostname returns the hostname of the page the document belongs to.
func (d *Document) Hostname() string { return d.hostname }

// CreateElement constructs a detached element through the current creation
// primitive, hooked or not.
func (d *Document) CreateElement(tag string) *Element {
	d.mu.Lock()
	create := d.create
	d.mu.Unlock()
	return create(tag)
}

func (d *Document) rawCreate(tag string) *Element {
	return &Element{Tag: strings.ToLower(tag), doc: d}
}

func rawAssignSrc(e *Element, src string) {
	e.src = src
}

func (d *Document) assignSrc(e *Element, src string) {
	d.mu.Lock()
	assign := d.assign
	d.mu.Unlock()
	assign(e, src)
}

// WrapCreate installs a creation hook by wrapping the current primitive.
// Wrapping rather than overwriting keeps the hook composable with any other
// patch of the same primitive. The name guards idempotency: installing the
// same hook twice is a no-op and returns false.
func (d *Document) WrapCreate(name string, wrap func(next CreateFunc) CreateFunc) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hooks["create:"+name] {
		return false
	}
	d.hooks["create:"+name] = true
	d.create = wrap(d.create)
	return true
}

// WrapAssignSrc installs a source-assignment hook, with the same
// wrap-and-delegate and idempotency semantics as WrapCreate.
func (d *Document) WrapAssignSrc(name string, wrap func(next AssignSrcFunc) AssignSrcFunc) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hooks["assign:"+name] {
		return false
	}
	d.hooks["assign:"+name] = true
	d.assign = wrap(d.assign)
	return true
}

// Append attaches an element to the end of the document.
func (d *Document) Append(e *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e.doc = d
	d.elements = append(d.elements, e)
}

// AppendToHead attaches an element at the front of the document, modeling
// insertion into <head>. Restored scripts land here.
func (d *Document) AppendToHead(e *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e.doc = d
	d.elements = append([]*Element{e}, d.elements...)
}

// Remove detaches an element from the document. Removing an element that is
// not attached is a no-op.
func (d *Document) Remove(e *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, el := range d.elements {
		if el == e {
			d.elements = append(d.elements[:i], d.elements[i+1:]...)
			return
		}
	}
}

// Elements returns the attached elements in document order.
func (d *Document) Elements() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Element, len(d.elements))
	copy(out, d.elements)
	return out
}

// Scripts returns the attached script elements in document order.
func (d *Document) Scripts() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Element
	for _, e := range d.elements {
		if e.Tag == "script" {
			out = append(out, e)
		}
	}
	return out
}
