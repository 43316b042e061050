package inspector

import (
	"encoding/json"
	"testing"

	"github.com/slighter12/uiinspect-go/errorkind"
	"github.com/slighter12/uiinspect-go/handle"
	"github.com/slighter12/uiinspect-go/toolkit"
	"github.com/slighter12/uiinspect-go/toolkit/mocktk"
)

func newTestEndpoint() (*Endpoint, *mocktk.Adapter) {
	adapter := mocktk.NewSampleTree()
	return New(adapter, 8, nil), adapter
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

// decodeFields re-marshals a handler's response fields and unmarshals them
// into T, mirroring how a real client recovers typed data from the flat
// wire form that wire.ToFields produces.
func decodeFields[T any](t *testing.T, fields map[string]any) T {
	t.Helper()
	b, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal fields into %T: %v", out, err)
	}
	return out
}

func findHandle(t *testing.T, e *Endpoint, elementName string) string {
	t.Helper()
	fields, err := handleFindElements(e, mustJSON(t, findElementsRequest{ElementName: elementName}))
	if err != nil {
		t.Fatalf("FindElements failed: %v", err)
	}
	resp := decodeFields[findElementsResponse](t, fields)
	if len(resp.Matches) != 1 {
		t.Fatalf("expected exactly one match for %q, got %d", elementName, len(resp.Matches))
	}
	return resp.Matches[0].Handle
}

func TestHandleGetVisualTreeWalksWholeSampleTree(t *testing.T) {
	e, _ := newTestEndpoint()
	fields, err := handleGetVisualTree(e, mustJSON(t, treeRequest{}))
	if err != nil {
		t.Fatalf("handleGetVisualTree failed: %v", err)
	}
	resp := decodeFields[treeResponse](t, fields)
	if resp.Root == nil || resp.Root.TypeName != "System.Windows.Window" {
		t.Errorf("root = %+v", resp.Root)
	}
	if resp.TotalElements != 4 {
		t.Errorf("totalElements = %d, want 4 (window, panel, button, text)", resp.TotalElements)
	}
	if resp.MaxDepthReached {
		t.Error("did not expect maxDepthReached for a shallow tree")
	}
}

func TestHandleGetVisualTreeRespectsMaxDepth(t *testing.T) {
	e, _ := newTestEndpoint()
	zero := 0
	fields, err := handleGetVisualTree(e, mustJSON(t, treeRequest{MaxDepth: &zero}))
	if err != nil {
		t.Fatalf("handleGetVisualTree failed: %v", err)
	}
	resp := decodeFields[treeResponse](t, fields)
	if len(resp.Root.Children) != 0 {
		t.Errorf("expected no children at maxDepth=0, got %d", len(resp.Root.Children))
	}
	if !resp.MaxDepthReached {
		t.Error("expected maxDepthReached=true when the root itself has children")
	}
}

func TestHandleGetVisualTreeUnknownRootHandle(t *testing.T) {
	e, _ := newTestEndpoint()
	_, err := handleGetVisualTree(e, mustJSON(t, treeRequest{RootHandle: "elem_bogus"}))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestHandleGetElementPropertiesIncludesBindingDetails(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "StatusText")

	fields, err := handleGetElementProperties(e, mustJSON(t, elementRequest{ElementHandle: h}))
	if err != nil {
		t.Fatalf("handleGetElementProperties failed: %v", err)
	}
	resp := decodeFields[propertiesResponse](t, fields)
	var textProp *PropertyRecord
	for i := range resp.Properties {
		if resp.Properties[i].Name == "Text" {
			textProp = &resp.Properties[i]
		}
	}
	if textProp == nil {
		t.Fatal("expected a Text property")
	}
	if !textProp.IsBinding || textProp.BindingDetails == nil {
		t.Fatalf("expected Text to carry binding details, got %+v", textProp)
	}
	if textProp.BindingDetails.Path != "Status" {
		t.Errorf("binding path = %q, want Status", textProp.BindingDetails.Path)
	}
}

func TestHandleGetElementPropertiesMissingHandle(t *testing.T) {
	e, _ := newTestEndpoint()
	_, err := handleGetElementProperties(e, mustJSON(t, elementRequest{}))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.MissingField {
		t.Fatalf("expected MissingField, got %v", err)
	}
}

func TestHandleFindElementsByTypeName(t *testing.T) {
	e, _ := newTestEndpoint()
	fields, err := handleFindElements(e, mustJSON(t, findElementsRequest{TypeName: "Button"}))
	if err != nil {
		t.Fatalf("handleFindElements failed: %v", err)
	}
	resp := decodeFields[findElementsResponse](t, fields)
	if len(resp.Matches) != 1 || resp.Matches[0].Name != "SubmitButton" {
		t.Fatalf("got %+v", resp.Matches)
	}
	if resp.Matches[0].Path == "" {
		t.Error("expected a non-empty breadcrumb path")
	}
}

func TestHandleFindElementsClampsMaxResults(t *testing.T) {
	e, _ := newTestEndpoint()
	zero := 0
	fields, err := handleFindElements(e, mustJSON(t, findElementsRequest{MaxResults: &zero}))
	if err != nil {
		t.Fatalf("handleFindElements failed: %v", err)
	}
	resp := decodeFields[findElementsResponse](t, fields)
	if len(resp.Matches) != 1 {
		t.Fatalf("expected clamp to 1 result floor, got %d", len(resp.Matches))
	}
}

func TestHandleGetBindingsReturnsBoundProperty(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "StatusText")

	fields, err := handleGetBindings(e, mustJSON(t, elementRequest{ElementHandle: h}))
	if err != nil {
		t.Fatalf("handleGetBindings failed: %v", err)
	}
	resp := decodeFields[bindingsResponse](t, fields)
	if len(resp.Bindings) != 1 {
		t.Fatalf("expected exactly one binding, got %d", len(resp.Bindings))
	}
}

func TestHandleGetBindingErrorsReturnsBufferedLines(t *testing.T) {
	e, adapter := newTestEndpoint()
	adapter.EmitTraceLine("System.Windows.Data Error: 4 : Cannot find source for binding")

	fields, err := handleGetBindingErrors(e, nil)
	if err != nil {
		t.Fatalf("handleGetBindingErrors failed: %v", err)
	}
	resp := decodeFields[bindingErrorsResponse](t, fields)
	if len(resp.Errors) != 1 {
		t.Fatalf("expected one buffered error, got %d", len(resp.Errors))
	}
}

func TestHandleGetResourcesElementScopeReturnsSlice(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "SubmitButton")

	fields, err := handleGetResources(e, mustJSON(t, resourcesRequest{Scope: "Element", ElementHandle: h}))
	if err != nil {
		t.Fatalf("handleGetResources failed: %v", err)
	}
	resp := decodeFields[resourcesResponse](t, fields)
	if resp.Resources == nil {
		t.Fatal("expected a resources slice, even if empty")
	}
}

func TestHandleGetStylesMissingStyleReturnsHandlerError(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "SubmitButton")

	_, err := handleGetStyles(e, mustJSON(t, elementRequest{ElementHandle: h}))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.HandlerError {
		t.Fatalf("expected HandlerError for a style-less element, got %v", err)
	}
}

func TestHandleGetStylesReturnsSettersAndTriggers(t *testing.T) {
	e, adapter := newTestEndpoint()
	root := adapter.RootNodes()[0]
	panel := adapter.ChildrenVisual(root)[0]
	var button *mocktk.Element
	for _, c := range adapter.ChildrenVisual(panel) {
		if el, ok := c.(*mocktk.Element); ok && el.Name == "SubmitButton" {
			button = el
		}
	}
	button.SetStyle(toolkit.StyleInfo{
		Key:        "SubmitButtonStyle",
		TargetType: "Button",
		Setters:    []toolkit.StyleSetter{{Property: "Background", Value: "Blue"}},
	})
	h := string(e.Registry.Assign(button))

	fields, err := handleGetStyles(e, mustJSON(t, elementRequest{ElementHandle: h}))
	if err != nil {
		t.Fatalf("handleGetStyles failed: %v", err)
	}
	resp := decodeFields[styleResponse](t, fields)
	if resp.TargetType != "Button" {
		t.Errorf("targetType = %q, want Button", resp.TargetType)
	}
	if len(resp.Setters) != 1 || resp.Setters[0].Property != "Background" {
		t.Errorf("setters = %+v", resp.Setters)
	}
}

func TestHandleHighlightElementRecordsForClearOnDisconnect(t *testing.T) {
	e, adapter := newTestEndpoint()
	h := findHandle(t, e, "SubmitButton")

	_, err := handleHighlightElement(e, mustJSON(t, highlightRequest{ElementHandle: h}))
	if err != nil {
		t.Fatalf("handleHighlightElement failed: %v", err)
	}
	if adapter.HighlightCallCount() != 1 {
		t.Errorf("HighlightCallCount = %d, want 1", adapter.HighlightCallCount())
	}
	if len(e.highlighted) != 1 {
		t.Errorf("expected one recorded highlight, got %d", len(e.highlighted))
	}
}

func TestHandleGetLayoutInfoNoLayoutIsNotRenderable(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "SubmitButton")

	_, err := handleGetLayoutInfo(e, mustJSON(t, elementRequest{ElementHandle: h}))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.NotRenderable {
		t.Fatalf("expected NotRenderable, got %v", err)
	}
}

func TestHandleGetLayoutInfoReturnsMeasurements(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "StatusText")

	fields, err := handleGetLayoutInfo(e, mustJSON(t, elementRequest{ElementHandle: h}))
	if err != nil {
		t.Fatalf("handleGetLayoutInfo failed: %v", err)
	}
	resp := decodeFields[layoutResponse](t, fields)
	if resp.ActualWidth != 80 {
		t.Errorf("actualWidth = %v, want 80", resp.ActualWidth)
	}
}

func TestHandleWatchPropertyUnknownPropertyIsPropertyNotFound(t *testing.T) {
	e, _ := newTestEndpoint()
	h := findHandle(t, e, "StatusText")

	_, err := handleWatchProperty(e, mustJSON(t, watchRequest{ElementHandle: h, PropertyName: "DoesNotExist"}))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.PropertyNotFound {
		t.Fatalf("expected PropertyNotFound, got %v", err)
	}
}

func TestHandleWatchPropertyThenChangeDeliversPropertyChangedNotification(t *testing.T) {
	e, adapter := newTestEndpoint()
	h := findHandle(t, e, "StatusText")

	fields, err := handleWatchProperty(e, mustJSON(t, watchRequest{ElementHandle: h, PropertyName: "Text"}))
	if err != nil {
		t.Fatalf("handleWatchProperty failed: %v", err)
	}
	resp := decodeFields[watchResponse](t, fields)
	if resp.InitialValue != "A" {
		t.Fatalf("initialValue = %q, want A", resp.InitialValue)
	}

	pw := &capturingWriter{}
	e.mu.Lock()
	e.activeWriter = pw
	e.mu.Unlock()

	root := adapter.RootNodes()[0]
	panel := adapter.ChildrenVisual(root)[0]
	var text *mocktk.Element
	for _, c := range adapter.ChildrenVisual(panel) {
		if el, ok := c.(*mocktk.Element); ok && el.Name == "StatusText" {
			text = el
		}
	}
	text.ChangeProperty("Text", "B")

	if pw.lastFrame() == "" {
		t.Fatal("expected a PropertyChanged notification to have been written")
	}
}

func TestHandleExportTreeJSON(t *testing.T) {
	e, _ := newTestEndpoint()
	fields, err := handleExportTree(e, mustJSON(t, exportTreeRequest{Format: "json"}))
	if err != nil {
		t.Fatalf("handleExportTree failed: %v", err)
	}
	resp := decodeFields[struct {
		Format string `json:"format"`
		treeResponse
	}](t, fields)
	if resp.Format != "json" {
		t.Errorf("format = %q", resp.Format)
	}
	if resp.Root == nil {
		t.Error("expected a root field for json export")
	}
}

func TestHandleExportTreeXAML(t *testing.T) {
	e, _ := newTestEndpoint()
	fields, err := handleExportTree(e, mustJSON(t, exportTreeRequest{Format: "xaml"}))
	if err != nil {
		t.Fatalf("handleExportTree failed: %v", err)
	}
	resp := decodeFields[exportTreeResponse](t, fields)
	if resp.Tree == "" {
		t.Fatal("expected non-empty xaml tree text")
	}
}

func TestHandleExportTreeUnknownFormat(t *testing.T) {
	e, _ := newTestEndpoint()
	_, err := handleExportTree(e, mustJSON(t, exportTreeRequest{Format: "docx"}))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.InvalidRequest {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
}

func TestResolveElementEmptyHandle(t *testing.T) {
	e, _ := newTestEndpoint()
	_, err := resolveElement(e, "")
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.MissingField {
		t.Fatalf("expected MissingField, got %v", err)
	}
}

func TestResolveElementUnknownHandle(t *testing.T) {
	e, _ := newTestEndpoint()
	_, err := resolveElement(e, string(handle.Handle("elem_bogus")))
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// capturingWriter satisfies io.Writer, collecting each separate Write call
// so a test can inspect the most recently delivered frame.
type capturingWriter struct {
	frames []string
}

func (w *capturingWriter) Write(p []byte) (int, error) {
	w.frames = append(w.frames, string(p))
	return len(p), nil
}

func (w *capturingWriter) lastFrame() string {
	if len(w.frames) == 0 {
		return ""
	}
	return w.frames[len(w.frames)-1]
}
