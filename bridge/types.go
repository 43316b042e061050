package bridge

import (
	"context"

	"github.com/slighter12/uiinspect-go/analyzer"
	"github.com/slighter12/uiinspect-go/inspector"
	"github.com/slighter12/uiinspect-go/wire"
)

// TreeResult is the typed reply from GetVisualTree/GetLogicalTree.
type TreeResult struct {
	Root            *inspector.VisualTreeNode `json:"root,omitempty"`
	TotalElements   int                       `json:"totalElements"`
	MaxDepthReached bool                      `json:"maxDepthReached"`
}

// PropertiesResult is the typed reply from GetElementProperties.
type PropertiesResult struct {
	ElementHandle string                     `json:"elementHandle"`
	Properties    []inspector.PropertyRecord `json:"properties"`
}

// FindElementsResult is the typed reply from FindElements.
type FindElementsResult struct {
	Matches []inspector.FindElementMatch `json:"matches"`
}

// BindingsResult is the typed reply from GetBindings.
type BindingsResult struct {
	ElementHandle string                   `json:"elementHandle"`
	Bindings      []analyzer.BindingRecord `json:"bindings"`
}

// BindingErrorsResult is the typed reply from GetBindingErrors.
type BindingErrorsResult struct {
	Errors []analyzer.BindingErrorRecord `json:"errors"`
}

// ResourcesResult is the typed reply from GetResources.
type ResourcesResult struct {
	Resources []inspector.ResourceRecord `json:"resources"`
}

// StyleResult is the typed reply from GetStyles.
type StyleResult struct {
	Key                  string                          `json:"key,omitempty"`
	TargetType           string                          `json:"targetType"`
	BasedOn              string                          `json:"basedOn,omitempty"`
	Setters              []inspector.StyleSetterRecord    `json:"setters"`
	Triggers             []inspector.StyleTriggerRecord   `json:"triggers"`
	ImplicitStyleDiffers bool                             `json:"implicitStyleDiffers"`
}

// LayoutResult is the typed reply from GetLayoutInfo.
type LayoutResult struct {
	inspector.LayoutRecord
}

// WatchResult is the typed reply from WatchProperty.
type WatchResult struct {
	WatchID      string `json:"watchId"`
	InitialValue string `json:"initialValue"`
}

// ExportTreeResult is the typed reply from ExportTree.
type ExportTreeResult struct {
	Format string `json:"format"`
	Tree   string `json:"tree,omitempty"`
	*TreeResult
}

// GetVisualTree fetches the render-tree rooted at rootHandle ("" for the
// process's default root), honoring maxDepth (0 leaves it at the
// endpoint's own default).
func (b *Bridge) GetVisualTree(ctx context.Context, rootHandle string, maxDepth int) (TreeResult, error) {
	return InvokeTyped[TreeResult](ctx, b, wire.GetVisualTree, treeFields(rootHandle, maxDepth))
}

// GetLogicalTree fetches the logical-tree counterpart of GetVisualTree.
func (b *Bridge) GetLogicalTree(ctx context.Context, rootHandle string, maxDepth int) (TreeResult, error) {
	return InvokeTyped[TreeResult](ctx, b, wire.GetLogicalTree, treeFields(rootHandle, maxDepth))
}

func treeFields(rootHandle string, maxDepth int) map[string]any {
	fields := map[string]any{"rootHandle": rootHandle}
	if maxDepth > 0 {
		fields["maxDepth"] = maxDepth
	}
	return fields
}

// GetElementProperties fetches every readable property on elementHandle.
func (b *Bridge) GetElementProperties(ctx context.Context, elementHandle string) (PropertiesResult, error) {
	return InvokeTyped[PropertiesResult](ctx, b, wire.GetElementProperties, map[string]any{
		"elementHandle": elementHandle,
	})
}

// FindElements searches the tree rooted at rootHandle for elements
// matching the given criteria, capped at maxResults.
func (b *Bridge) FindElements(ctx context.Context, rootHandle, typeName, elementName string, maxResults int) (FindElementsResult, error) {
	return InvokeTyped[FindElementsResult](ctx, b, wire.FindElements, map[string]any{
		"rootHandle":  rootHandle,
		"typeName":    typeName,
		"elementName": elementName,
		"maxResults":  maxResults,
	})
}

// GetBindings fetches every active data binding on elementHandle.
func (b *Bridge) GetBindings(ctx context.Context, elementHandle string) (BindingsResult, error) {
	return InvokeTyped[BindingsResult](ctx, b, wire.GetBindings, map[string]any{
		"elementHandle": elementHandle,
	})
}

// GetBindingErrors fetches the process-wide binding-error buffer.
func (b *Bridge) GetBindingErrors(ctx context.Context) (BindingErrorsResult, error) {
	return InvokeTyped[BindingErrorsResult](ctx, b, wire.GetBindingErrors, map[string]any{})
}

// GetResources fetches resources visible at scope ("Application" or
// "Element"), optionally walking up from elementHandle when scope is
// "Element".
func (b *Bridge) GetResources(ctx context.Context, scope, elementHandle string) (ResourcesResult, error) {
	return InvokeTyped[ResourcesResult](ctx, b, wire.GetResources, map[string]any{
		"scope":         scope,
		"elementHandle": elementHandle,
	})
}

// GetStyles fetches the resolved style applied to elementHandle.
func (b *Bridge) GetStyles(ctx context.Context, elementHandle string) (StyleResult, error) {
	return InvokeTyped[StyleResult](ctx, b, wire.GetStyles, map[string]any{
		"elementHandle": elementHandle,
	})
}

// HighlightElement asks the target process to draw (or clear, when
// elementHandle is "") a highlight adorner around an element.
func (b *Bridge) HighlightElement(ctx context.Context, elementHandle string) error {
	_, err := b.Invoke(ctx, wire.HighlightElement, map[string]any{
		"elementHandle": elementHandle,
	})
	return err
}

// GetLayoutInfo fetches the layout measurements of elementHandle.
func (b *Bridge) GetLayoutInfo(ctx context.Context, elementHandle string) (LayoutResult, error) {
	return InvokeTyped[LayoutResult](ctx, b, wire.GetLayoutInfo, map[string]any{
		"elementHandle": elementHandle,
	})
}

// WatchProperty subscribes to change notifications for one property on
// elementHandle; PropertyChanged notifications for the returned watchId
// arrive asynchronously and are not represented by this typed method.
func (b *Bridge) WatchProperty(ctx context.Context, elementHandle, propertyName string) (WatchResult, error) {
	return InvokeTyped[WatchResult](ctx, b, wire.WatchProperty, map[string]any{
		"elementHandle": elementHandle,
		"propertyName":  propertyName,
	})
}

// ExportTree fetches a full-fidelity export of the tree rooted at
// elementHandle ("" for the default root) in the given format ("json"
// or "xaml").
func (b *Bridge) ExportTree(ctx context.Context, elementHandle, format string) (ExportTreeResult, error) {
	return InvokeTyped[ExportTreeResult](ctx, b, wire.ExportTree, map[string]any{
		"elementHandle": elementHandle,
		"format":        format,
	})
}
