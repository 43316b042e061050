// Package toolkit defines the interface the inspector endpoint programs
// against instead of depending on any one UI framework directly.
package toolkit

// Node is an opaque, comparable reference to a live UI object, controlled
// entirely by the Adapter implementation. The handle registry indexes on
// Node identity (pointer equality for struct-pointer implementations),
// never on value.
type Node any

// ValueSource is the reason a property currently holds the value it does.
type ValueSource string

const (
	SourceDefault             ValueSource = "Default"
	SourceInherited           ValueSource = "Inherited"
	SourceDefaultStyle        ValueSource = "DefaultStyle"
	SourceDefaultStyleTrigger ValueSource = "DefaultStyleTrigger"
	SourceStyle               ValueSource = "Style"
	SourceTemplateTrigger     ValueSource = "TemplateTrigger"
	SourceStyleTrigger        ValueSource = "StyleTrigger"
	SourceImplicitStyle       ValueSource = "ImplicitStyle"
	SourceParentTemplate      ValueSource = "ParentTemplate"
	SourceParentTemplateTrigger ValueSource = "ParentTemplateTrigger"
	SourceLocal               ValueSource = "Local"
)

// BindingMode mirrors the wire Binding Record's mode enumeration.
type BindingMode string

const (
	ModeOneWay         BindingMode = "OneWay"
	ModeTwoWay         BindingMode = "TwoWay"
	ModeOneWayToSource BindingMode = "OneWayToSource"
	ModeOneTime        BindingMode = "OneTime"
)

// BindingStatus mirrors the wire Binding Record's status enumeration.
type BindingStatus string

const (
	BindingActive             BindingStatus = "Active"
	BindingInactive           BindingStatus = "Inactive"
	BindingDetached           BindingStatus = "Detached"
	BindingPathError          BindingStatus = "PathError"
	BindingUpdateTargetError  BindingStatus = "UpdateTargetError"
	BindingUpdateSourceError  BindingStatus = "UpdateSourceError"
	BindingAsyncPending       BindingStatus = "AsyncPending"
	BindingUnattached         BindingStatus = "Unattached"
	BindingError              BindingStatus = "Error"
)

// PropertyDescriptor names a declared property without reading its value.
type PropertyDescriptor struct {
	Name         string
	DeclaredType string
}

// PropertyValue is what Adapter.ReadProperty returns for one property.
type PropertyValue struct {
	Value     any
	Source    ValueSource
	IsBinding bool
}

// BindingInfo is the adapter-local form of a binding expression; the
// analyzer package turns this into the wire Binding Record.
type BindingInfo struct {
	Property      string
	Path          string
	SourceKind    string // "DataContext" | "ElementName(<n>)" | "RelativeSource(<mode>)" | explicit type name
	Mode          BindingMode
	UpdateTrigger string
	Converter     string
	Status        BindingStatus
	HasError      bool
	ErrorMessage  string
	CurrentValue  any
}

// LayoutInfo is the adapter-local form of a node's layout measurements.
type LayoutInfo struct {
	ActualWidth, ActualHeight   float64
	DesiredWidth, DesiredHeight float64
	RenderWidth, RenderHeight   float64
	MarginL, MarginT, MarginR, MarginB     float64
	PaddingL, PaddingT, PaddingR, PaddingB float64
	HasPadding                  bool
	HorizontalAlignment         string
	VerticalAlignment           string
	Visibility                  string
}

// ResourceScope is where a resource lookup is rooted.
type ResourceScope string

const (
	ScopeApplication ResourceScope = "Application"
	ScopeWindow      ResourceScope = "Window"
	ScopeElement     ResourceScope = "Element"
)

// ResourceEntry is the adapter-local form of a resource dictionary entry.
type ResourceEntry struct {
	Key        string
	TypeName   string
	Value      any
	Source     string
	TargetType string
}

// StyleSetter is one property/value pair set by a style.
type StyleSetter struct {
	Property string
	Value    any
}

// StyleTrigger is one trigger clause declared by a style.
type StyleTrigger struct {
	Kind string
	Data map[string]any
}

// StyleInfo is the adapter-local form of a node's active style.
type StyleInfo struct {
	Key                 string
	TargetType          string
	BasedOn             string
	Setters             []StyleSetter
	Triggers            []StyleTrigger
	ImplicitStyleDiffers bool
}

// PropertyChange is delivered to a subscriber registered via
// SubscribePropertyChange.
type PropertyChange struct {
	PropertyName string
	NewValue     any
}

// SubscriptionToken identifies a live property-change subscription so it
// can be torn down; adapters are free to use any comparable value.
type SubscriptionToken any

// TraceSink receives raw textual lines from the framework's binding
// diagnostic channel, for the analyzer to parse.
type TraceSink interface {
	OnTraceLine(line string)
}

// Adapter abstracts the UI framework the inspector endpoint is hosted
// inside. Every method that touches live UI objects is expected to be
// called from the UI-thread marshaler's worker, never directly from the
// transport reader.
type Adapter interface {
	RootNodes() []Node

	ChildrenVisual(node Node) []Node
	ChildrenLogical(node Node) []Node
	Parent(node Node) (Node, bool)

	TypeName(node Node) string
	ShortTypeName(node Node) string
	Name(node Node) (string, bool)

	Properties(node Node) []PropertyDescriptor
	ReadProperty(node Node, name string) (PropertyValue, bool)

	Binding(node Node, propertyName string) (BindingInfo, bool)

	Layout(node Node) (LayoutInfo, bool)

	Resources(scope ResourceScope, node Node) []ResourceEntry

	Style(node Node) (StyleInfo, bool)

	SubscribePropertyChange(node Node, propertyName string, callback func(PropertyChange)) (SubscriptionToken, error)
	Unsubscribe(token SubscriptionToken)

	Highlight(node Node, durationMS int)

	AttachBindingTraceSink(sink TraceSink)
	DetachBindingTraceSink(sink TraceSink)
}

// BoundsProvider is an optional capability: adapters that can report a
// node's screen rectangle implement it so HighlightElement's caller can
// reason about what area was painted. Not all adapters need to: the core
// Highlight contract on Adapter is sufficient without it.
type BoundsProvider interface {
	ScreenBounds(node Node) (x, y, w, h int, ok bool)
}

// HighlightClearer is an optional capability: adapters that can cancel an
// in-progress highlight early implement it so the endpoint can clear any
// active overlay when its connection closes, or when a HighlightElement
// request names no element, rather than leaving it to expire on its own.
type HighlightClearer interface {
	ClearHighlight(node Node)
}
