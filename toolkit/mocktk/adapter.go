// Package mocktk is a small in-memory reference implementation of
// toolkit.Adapter, used by tests and by the demo target-process host.
package mocktk

import (
	"fmt"
	"sync"

	"github.com/slighter12/uiinspect-go/toolkit"
)

// Element is the mock adapter's concrete node type. toolkit.Node values
// returned by this package are always *Element, compared by pointer
// identity, as the handle registry expects.
type Element struct {
	TypeName string
	Name     string

	parent   *Element
	children []*Element

	mu         sync.Mutex
	properties map[string]toolkit.PropertyValue
	bindings   map[string]toolkit.BindingInfo
	layout     *toolkit.LayoutInfo
	style      *toolkit.StyleInfo
	bounds     [4]int

	subs map[toolkit.SubscriptionToken]subscription
}

type subscription struct {
	propertyName string
	callback     func(toolkit.PropertyChange)
}

// NewElement creates a detached element. Use AddChild to build a tree.
func NewElement(typeName, name string) *Element {
	return &Element{
		TypeName:   typeName,
		Name:       name,
		properties: make(map[string]toolkit.PropertyValue),
		bindings:   make(map[string]toolkit.BindingInfo),
		subs:       make(map[toolkit.SubscriptionToken]subscription),
	}
}

func (e *Element) AddChild(child *Element) *Element {
	child.parent = e
	e.children = append(e.children, child)
	return e
}

func (e *Element) SetProperty(name string, value any, source toolkit.ValueSource) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.properties[name] = toolkit.PropertyValue{Value: value, Source: source}
	return e
}

func (e *Element) SetBoundProperty(name string, value any, source toolkit.ValueSource, binding toolkit.BindingInfo) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	binding.Property = name
	binding.CurrentValue = value
	e.properties[name] = toolkit.PropertyValue{Value: value, Source: source, IsBinding: true}
	e.bindings[name] = binding
	return e
}

func (e *Element) SetLayout(l toolkit.LayoutInfo) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = &l
	return e
}

func (e *Element) SetStyle(s toolkit.StyleInfo) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style = &s
	return e
}

func (e *Element) SetBounds(x, y, w, h int) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bounds = [4]int{x, y, w, h}
	return e
}

// ChangeProperty updates a property's value and notifies any subscribers,
// simulating a live UI mutation for WatchProperty tests.
func (e *Element) ChangeProperty(name string, newValue any) {
	e.mu.Lock()
	pv, ok := e.properties[name]
	if !ok {
		pv = toolkit.PropertyValue{Source: toolkit.SourceLocal}
	}
	pv.Value = newValue
	e.properties[name] = pv
	var callbacks []func(toolkit.PropertyChange)
	for _, s := range e.subs {
		if s.propertyName == name {
			callbacks = append(callbacks, s.callback)
		}
	}
	e.mu.Unlock()

	for _, cb := range callbacks {
		cb(toolkit.PropertyChange{PropertyName: name, NewValue: newValue})
	}
}

// Adapter is the mock toolkit.Adapter implementation.
type Adapter struct {
	roots []*Element

	mu             sync.Mutex
	highlightCalls []highlightCall
	traceSinks     []toolkit.TraceSink
	tokenSeq       int
}

type highlightCall struct {
	node       *Element
	durationMS int
}

func NewAdapter(roots ...*Element) *Adapter {
	return &Adapter{roots: roots}
}

var (
	_ toolkit.Adapter          = (*Adapter)(nil)
	_ toolkit.BoundsProvider   = (*Adapter)(nil)
	_ toolkit.HighlightClearer = (*Adapter)(nil)
)

func asElement(node toolkit.Node) (*Element, bool) {
	e, ok := node.(*Element)
	return e, ok
}

func (a *Adapter) RootNodes() []toolkit.Node {
	out := make([]toolkit.Node, len(a.roots))
	for i, r := range a.roots {
		out[i] = r
	}
	return out
}

func (a *Adapter) ChildrenVisual(node toolkit.Node) []toolkit.Node {
	e, ok := asElement(node)
	if !ok {
		return nil
	}
	out := make([]toolkit.Node, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

// ChildrenLogical matches ChildrenVisual in this mock: the distinction
// between visual and logical composition is framework-specific and has
// no counterpart worth modeling in an in-memory test fixture.
func (a *Adapter) ChildrenLogical(node toolkit.Node) []toolkit.Node {
	return a.ChildrenVisual(node)
}

func (a *Adapter) Parent(node toolkit.Node) (toolkit.Node, bool) {
	e, ok := asElement(node)
	if !ok || e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

func (a *Adapter) TypeName(node toolkit.Node) string {
	e, ok := asElement(node)
	if !ok {
		return ""
	}
	return e.TypeName
}

func (a *Adapter) ShortTypeName(node toolkit.Node) string {
	return a.TypeName(node)
}

func (a *Adapter) Name(node toolkit.Node) (string, bool) {
	e, ok := asElement(node)
	if !ok || e.Name == "" {
		return "", false
	}
	return e.Name, true
}

func (a *Adapter) Properties(node toolkit.Node) []toolkit.PropertyDescriptor {
	e, ok := asElement(node)
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]toolkit.PropertyDescriptor, 0, len(e.properties))
	for name := range e.properties {
		out = append(out, toolkit.PropertyDescriptor{Name: name, DeclaredType: "object"})
	}
	return out
}

func (a *Adapter) ReadProperty(node toolkit.Node, name string) (toolkit.PropertyValue, bool) {
	e, ok := asElement(node)
	if !ok {
		return toolkit.PropertyValue{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	pv, ok := e.properties[name]
	return pv, ok
}

func (a *Adapter) Binding(node toolkit.Node, propertyName string) (toolkit.BindingInfo, bool) {
	e, ok := asElement(node)
	if !ok {
		return toolkit.BindingInfo{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bindings[propertyName]
	return b, ok
}

func (a *Adapter) Layout(node toolkit.Node) (toolkit.LayoutInfo, bool) {
	e, ok := asElement(node)
	if !ok || e.layout == nil {
		return toolkit.LayoutInfo{}, false
	}
	return *e.layout, true
}

func (a *Adapter) Resources(scope toolkit.ResourceScope, node toolkit.Node) []toolkit.ResourceEntry {
	// The mock fixture keeps resources out of scope; callers exercising
	// GetResources should seed expectations directly in their test.
	return nil
}

func (a *Adapter) Style(node toolkit.Node) (toolkit.StyleInfo, bool) {
	e, ok := asElement(node)
	if !ok || e.style == nil {
		return toolkit.StyleInfo{}, false
	}
	return *e.style, true
}

func (a *Adapter) SubscribePropertyChange(node toolkit.Node, propertyName string, callback func(toolkit.PropertyChange)) (toolkit.SubscriptionToken, error) {
	e, ok := asElement(node)
	if !ok {
		return nil, fmt.Errorf("mocktk: not an element")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	a.mu.Lock()
	a.tokenSeq++
	token := a.tokenSeq
	a.mu.Unlock()
	e.subs[token] = subscription{propertyName: propertyName, callback: callback}
	return token, nil
}

func (a *Adapter) Unsubscribe(token toolkit.SubscriptionToken) {
	for _, r := range a.roots {
		unsubscribeRecursive(r, token)
	}
}

func unsubscribeRecursive(e *Element, token toolkit.SubscriptionToken) {
	e.mu.Lock()
	delete(e.subs, token)
	e.mu.Unlock()
	for _, c := range e.children {
		unsubscribeRecursive(c, token)
	}
}

func (a *Adapter) Highlight(node toolkit.Node, durationMS int) {
	e, ok := asElement(node)
	if !ok {
		return
	}
	a.mu.Lock()
	a.highlightCalls = append(a.highlightCalls, highlightCall{node: e, durationMS: durationMS})
	a.mu.Unlock()
}

func (a *Adapter) ClearHighlight(node toolkit.Node) {
	// Nothing to paint over in the mock; present for HighlightClearer
	// conformance so endpoint shutdown tests can exercise that path.
}

func (a *Adapter) ScreenBounds(node toolkit.Node) (x, y, w, h int, ok bool) {
	e, valid := asElement(node)
	if !valid {
		return 0, 0, 0, 0, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds[0], e.bounds[1], e.bounds[2], e.bounds[3], true
}

func (a *Adapter) AttachBindingTraceSink(sink toolkit.TraceSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.traceSinks = append(a.traceSinks, sink)
}

func (a *Adapter) DetachBindingTraceSink(sink toolkit.TraceSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, s := range a.traceSinks {
		if s == sink {
			a.traceSinks = append(a.traceSinks[:i], a.traceSinks[i+1:]...)
			return
		}
	}
}

// EmitTraceLine feeds a synthetic trace line to every attached sink, for
// tests exercising binding-error capture.
func (a *Adapter) EmitTraceLine(line string) {
	a.mu.Lock()
	sinks := append([]toolkit.TraceSink(nil), a.traceSinks...)
	a.mu.Unlock()
	for _, s := range sinks {
		s.OnTraceLine(line)
	}
}

// HighlightCallCount reports how many times Highlight was invoked, for
// tests asserting HighlightElement's best-effort dispatch.
func (a *Adapter) HighlightCallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.highlightCalls)
}

// NewSampleTree builds the Window > Panel > Button("SubmitButton") plus
// TextBlock fixture referenced throughout the endpoint and analyzer
// tests, matching the shape of the concrete end-to-end scenarios.
func NewSampleTree() *Adapter {
	window := NewElement("System.Windows.Window", "")
	panel := NewElement("System.Windows.Controls.Panel", "")
	button := NewElement("System.Windows.Controls.Button", "SubmitButton")
	text := NewElement("System.Windows.Controls.TextBlock", "StatusText")

	button.SetProperty("Content", "Submit", toolkit.SourceLocal)
	text.SetBoundProperty("Text", "A", toolkit.SourceLocal, toolkit.BindingInfo{
		Path:       "Status",
		SourceKind: "DataContext",
		Mode:       toolkit.ModeOneWay,
		Status:     toolkit.BindingActive,
	})
	text.SetLayout(toolkit.LayoutInfo{
		ActualWidth: 80, ActualHeight: 20,
		HorizontalAlignment: "Left", VerticalAlignment: "Top", Visibility: "Visible",
	})

	panel.AddChild(button)
	panel.AddChild(text)
	window.AddChild(panel)

	return NewAdapter(window)
}
