// Package agentapi describes the twelve inspector requests in a form an
// outer agent-facing tool-calling layer could register directly,
// mirroring a JSON-schema tool catalog without implementing any tool
// dispatch itself — the actual call still goes through bridge.Bridge.
package agentapi

import "github.com/slighter12/uiinspect-go/wire"

// InputSchema is a minimal JSON-schema-shaped description of one
// request's fields, enough for a tool-calling layer to validate
// arguments and render a form without this package depending on a full
// schema library.
type InputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// MethodDescriptor documents one wire.RequestKind for an outer
// tool-calling surface.
type MethodDescriptor struct {
	Name        wire.RequestKind `json:"name"`
	Description string           `json:"description"`
	InputSchema InputSchema      `json:"inputSchema"`
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// Descriptors returns every inspector request kind's MethodDescriptor,
// in wire.AllRequestKinds order.
func Descriptors() []MethodDescriptor {
	return []MethodDescriptor{
		{
			Name:        wire.GetVisualTree,
			Description: "Fetch the visual (render) tree rooted at rootHandle, or the process's default root when omitted.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"rootHandle": stringProp("handle of the subtree root; omit for the default root"),
					"maxDepth":   intProp("maximum tree depth to return; omit for the endpoint default"),
				},
			},
		},
		{
			Name:        wire.GetLogicalTree,
			Description: "Fetch the logical (composition) tree rooted at rootHandle.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"rootHandle": stringProp("handle of the subtree root; omit for the default root"),
					"maxDepth":   intProp("maximum tree depth to return; omit for the endpoint default"),
				},
			},
		},
		{
			Name:        wire.GetElementProperties,
			Description: "Fetch every readable property on an element, including its current value, source, and binding status.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]any{"elementHandle": stringProp("handle of the element to inspect")},
				Required:   []string{"elementHandle"},
			},
		},
		{
			Name:        wire.FindElements,
			Description: "Search the tree for elements matching a type name and/or element name.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"rootHandle":  stringProp("handle to search under; omit for the default root"),
					"typeName":    stringProp("substring or exact type name to match"),
					"elementName": stringProp("substring of the element's x:Name to match"),
					"maxResults":  intProp("cap on the number of matches returned"),
				},
			},
		},
		{
			Name:        wire.GetBindings,
			Description: "Fetch every active data binding on an element.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]any{"elementHandle": stringProp("handle of the element to inspect")},
				Required:   []string{"elementHandle"},
			},
		},
		{
			Name:        wire.GetBindingErrors,
			Description: "Fetch the process-wide buffer of recent binding errors.",
			InputSchema: InputSchema{Type: "object", Properties: map[string]any{}},
		},
		{
			Name:        wire.GetResources,
			Description: "Fetch resources visible at application or element scope.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"scope":         stringProp(`"Application" or "Element"`),
					"elementHandle": stringProp("handle of the element to scope the lookup to, when scope is Element"),
				},
				Required: []string{"scope"},
			},
		},
		{
			Name:        wire.GetStyles,
			Description: "Fetch the resolved style applied to an element.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]any{"elementHandle": stringProp("handle of the element to inspect")},
				Required:   []string{"elementHandle"},
			},
		},
		{
			Name:        wire.HighlightElement,
			Description: "Draw a temporary highlight overlay around an element, or clear any active overlay when elementHandle is empty.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"elementHandle": stringProp("handle of the element to highlight, or empty to clear"),
					"durationMs":    intProp("how long the overlay stays visible"),
				},
			},
		},
		{
			Name:        wire.GetLayoutInfo,
			Description: "Fetch an element's layout measurements: actual/desired/render size, margin, padding, alignment.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]any{"elementHandle": stringProp("handle of the element to inspect")},
				Required:   []string{"elementHandle"},
			},
		},
		{
			Name:        wire.WatchProperty,
			Description: "Subscribe to change notifications for one property on an element; matching PropertyChanged notifications arrive asynchronously.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"elementHandle": stringProp("handle of the element to watch"),
					"propertyName":  stringProp("name of the property to watch"),
				},
				Required: []string{"elementHandle", "propertyName"},
			},
		},
		{
			Name:        wire.ExportTree,
			Description: "Export a full-fidelity snapshot of the tree rooted at an element, as JSON or XAML-like markup.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]any{
					"elementHandle": stringProp("handle of the subtree root; omit for the default root"),
					"format":        stringProp(`"json" or "xaml"`),
				},
			},
		},
	}
}
