package inspector

import "github.com/slighter12/uiinspect-go/analyzer"

// VisualTreeNode is the wire form of one node in a GetVisualTree,
// GetLogicalTree, or ExportTree(json) reply, §3.
type VisualTreeNode struct {
	Handle   string           `json:"handle"`
	TypeName string           `json:"typeName"`
	Name     string           `json:"name,omitempty"`
	Depth    int              `json:"depth"`
	Children []VisualTreeNode `json:"children"`
}

type treeResponse struct {
	Root            *VisualTreeNode `json:"root,omitempty"`
	TotalElements   int             `json:"totalElements"`
	MaxDepthReached bool            `json:"maxDepthReached"`
}

// PropertyRecord is the wire form of one property read, §3.
type PropertyRecord struct {
	Name           string                   `json:"name"`
	TypeName       string                   `json:"typeName"`
	Value          string                   `json:"value"`
	Source         string                   `json:"source"`
	IsBinding      bool                     `json:"isBinding"`
	BindingDetails *analyzer.BindingRecord  `json:"bindingDetails,omitempty"`
}

type propertiesResponse struct {
	ElementHandle string           `json:"elementHandle"`
	Properties    []PropertyRecord `json:"properties"`
}

// FindElementMatch is one FindElements result row, §4.E.
type FindElementMatch struct {
	Handle   string `json:"handle"`
	TypeName string `json:"typeName"`
	Name     string `json:"name,omitempty"`
	Path     string `json:"path"`
}

type findElementsResponse struct {
	Matches []FindElementMatch `json:"matches"`
}

type bindingsResponse struct {
	ElementHandle string                    `json:"elementHandle"`
	Bindings      []analyzer.BindingRecord  `json:"bindings"`
}

type bindingErrorsResponse struct {
	Errors []analyzer.BindingErrorRecord `json:"errors"`
}

// ResourceRecord is the wire form of one resource entry, §3.
type ResourceRecord struct {
	Key        string `json:"key"`
	TypeName   string `json:"typeName"`
	Value      string `json:"value"`
	Source     string `json:"source"`
	TargetType string `json:"targetType,omitempty"`
}

type resourcesResponse struct {
	Resources []ResourceRecord `json:"resources"`
}

// StyleSetterRecord/StyleTriggerRecord/StyleRecord are the wire form of a
// node's active style, §3.
type StyleSetterRecord struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type StyleTriggerRecord struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
}

type styleResponse struct {
	Key                  string               `json:"key,omitempty"`
	TargetType           string               `json:"targetType"`
	BasedOn              string               `json:"basedOn,omitempty"`
	Setters              []StyleSetterRecord  `json:"setters"`
	Triggers             []StyleTriggerRecord `json:"triggers"`
	ImplicitStyleDiffers bool                 `json:"implicitStyleDiffers"`
}

// LayoutRecord is the wire form of a node's layout measurements, §3.
type LayoutRecord struct {
	ActualWidth         float64    `json:"actualWidth"`
	ActualHeight        float64    `json:"actualHeight"`
	DesiredSize         sizeRecord `json:"desiredSize"`
	RenderSize          sizeRecord `json:"renderSize"`
	Margin              boxRecord  `json:"margin"`
	Padding             *boxRecord `json:"padding,omitempty"`
	HorizontalAlignment string     `json:"horizontalAlignment"`
	VerticalAlignment   string     `json:"verticalAlignment"`
	Visibility          string     `json:"visibility"`
}

type sizeRecord struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type boxRecord struct {
	L float64 `json:"l"`
	T float64 `json:"t"`
	R float64 `json:"r"`
	B float64 `json:"b"`
}

type layoutResponse struct {
	LayoutRecord
}

type highlightResponse struct{}

type watchResponse struct {
	WatchID      string `json:"watchId"`
	InitialValue string `json:"initialValue"`
}

type exportTreeResponse struct {
	Format string `json:"format"`
	Tree   string `json:"tree,omitempty"`
	*treeResponse
}
