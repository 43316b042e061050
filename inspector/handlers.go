package inspector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/slighter12/uiinspect-go/analyzer"
	"github.com/slighter12/uiinspect-go/errorkind"
	"github.com/slighter12/uiinspect-go/handle"
	"github.com/slighter12/uiinspect-go/toolkit"
	"github.com/slighter12/uiinspect-go/uithread"
	"github.com/slighter12/uiinspect-go/wire"
)

const defaultMaxDepth = 10
const exportTreeJSONDepth = 100
const defaultMaxResults = 50
const maxResultsCeiling = 10000
const defaultHighlightDurationMS = 2000

func defaultHandlers() map[wire.RequestKind]Handler {
	return map[wire.RequestKind]Handler{
		wire.GetVisualTree:        handleGetVisualTree,
		wire.GetLogicalTree:       handleGetLogicalTree,
		wire.GetElementProperties: handleGetElementProperties,
		wire.FindElements:         handleFindElements,
		wire.GetBindings:          handleGetBindings,
		wire.GetBindingErrors:     handleGetBindingErrors,
		wire.GetResources:         handleGetResources,
		wire.GetStyles:            handleGetStyles,
		wire.HighlightElement:     handleHighlightElement,
		wire.GetLayoutInfo:        handleGetLayoutInfo,
		wire.WatchProperty:        handleWatchProperty,
		wire.ExportTree:           handleExportTree,
	}
}

// run is the single seam every handler uses to execute its UI-touching
// body on the marshaler's worker, satisfying §5's "only accessed from
// the UI thread" requirement for the registry, watch set, and error
// buffer.
func run(e *Endpoint, fn func() (map[string]any, error)) (map[string]any, error) {
	v, err := uithread.RunT(context.Background(), e.Marshaler, fn, DefaultHandlerTimeout)
	if err != nil {
		if err == uithread.ErrTimeout {
			return nil, errorkind.New(errorkind.Timeout, "ui thread did not complete the request within the deadline")
		}
		return nil, err
	}
	return v, nil
}

func resolveRoot(e *Endpoint, rootHandle string) (toolkit.Node, error) {
	if rootHandle == "" {
		roots := e.Adapter.RootNodes()
		if len(roots) == 0 {
			return nil, errorkind.New(errorkind.HandlerError, "no root nodes available")
		}
		return roots[0], nil
	}
	node, ok := e.Registry.Resolve(handle.Handle(rootHandle))
	if !ok {
		return nil, errorkind.New(errorkind.NotFound, fmt.Sprintf("handle %q is not known in this session", rootHandle))
	}
	return node, nil
}

type treeRequest struct {
	RequestID  string `json:"requestId"`
	RootHandle string `json:"rootHandle,omitempty"`
	MaxDepth   *int   `json:"maxDepth,omitempty"`
}

func (r treeRequest) maxDepth() int {
	if r.MaxDepth == nil {
		return defaultMaxDepth
	}
	return *r.MaxDepth
}

func handleGetVisualTree(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	return buildTree(e, data, e.Adapter.ChildrenVisual)
}

func handleGetLogicalTree(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	return buildTree(e, data, e.Adapter.ChildrenLogical)
}

func buildTree(e *Endpoint, data json.RawMessage, children func(toolkit.Node) []toolkit.Node) (map[string]any, error) {
	var req treeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		root, err := resolveRoot(e, req.RootHandle)
		if err != nil {
			return nil, err
		}
		node, total, truncated := walkTree(e, root, 0, req.maxDepth(), children)
		resp := treeResponse{Root: &node, TotalElements: total, MaxDepthReached: truncated}
		return wire.ToFields(resp)
	})
}

func walkTree(e *Endpoint, node toolkit.Node, depth, maxDepth int, children func(toolkit.Node) []toolkit.Node) (VisualTreeNode, int, bool) {
	h := e.Registry.Assign(node)
	name, _ := e.Adapter.Name(node)
	out := VisualTreeNode{
		Handle:   string(h),
		TypeName: e.Adapter.TypeName(node),
		Name:     name,
		Depth:    depth,
	}
	total := 1
	truncated := false

	kids := children(node)
	if depth >= maxDepth {
		if len(kids) > 0 {
			truncated = true
		}
		return out, total, truncated
	}

	out.Children = make([]VisualTreeNode, 0, len(kids))
	for _, k := range kids {
		childNode, childTotal, childTruncated := walkTree(e, k, depth+1, maxDepth, children)
		out.Children = append(out.Children, childNode)
		total += childTotal
		truncated = truncated || childTruncated
	}
	return out, total, truncated
}

type elementRequest struct {
	RequestID     string `json:"requestId"`
	ElementHandle string `json:"elementHandle"`
}

func resolveElement(e *Endpoint, h string) (toolkit.Node, error) {
	if h == "" {
		return nil, errorkind.New(errorkind.MissingField, "elementHandle is required")
	}
	node, ok := e.Registry.Resolve(handle.Handle(h))
	if !ok {
		return nil, errorkind.New(errorkind.NotFound, fmt.Sprintf("handle %q is not known in this session", h))
	}
	return node, nil
}

func handleGetElementProperties(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req elementRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		node, err := resolveElement(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}

		descs := e.Adapter.Properties(node)
		sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })

		records := make([]PropertyRecord, 0, len(descs))
		for _, d := range descs {
			pv, ok := e.Adapter.ReadProperty(node, d.Name)
			if !ok {
				continue
			}
			rec := PropertyRecord{
				Name:      d.Name,
				TypeName:  d.DeclaredType,
				Value:     analyzer.FormatValue(pv.Value, d.DeclaredType),
				Source:    string(pv.Source),
				IsBinding: pv.IsBinding,
			}
			if pv.IsBinding {
				if info, ok := e.Adapter.Binding(node, d.Name); ok {
					br := analyzer.DeriveBindingRecord(info)
					rec.BindingDetails = &br
				}
			}
			records = append(records, rec)
		}
		return wire.ToFields(propertiesResponse{ElementHandle: req.ElementHandle, Properties: records})
	})
}

type findElementsRequest struct {
	RequestID      string            `json:"requestId"`
	RootHandle     string            `json:"rootHandle,omitempty"`
	TypeName       string            `json:"typeName,omitempty"`
	ElementName    string            `json:"elementName,omitempty"`
	PropertyFilter map[string]string `json:"propertyFilter,omitempty"`
	MaxResults     *int              `json:"maxResults,omitempty"`
}

func (r findElementsRequest) clampedMaxResults() int {
	m := defaultMaxResults
	if r.MaxResults != nil {
		m = *r.MaxResults
	}
	if m < 1 {
		m = 1
	}
	if m > maxResultsCeiling {
		m = maxResultsCeiling
	}
	return m
}

func handleFindElements(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req findElementsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		root, err := resolveRoot(e, req.RootHandle)
		if err != nil {
			return nil, err
		}
		max := req.clampedMaxResults()
		var matches []FindElementMatch
		findRecursive(e, root, "", req, max, &matches)
		return wire.ToFields(findElementsResponse{Matches: matches})
	})
}

func findRecursive(e *Endpoint, node toolkit.Node, parentPath string, req findElementsRequest, max int, matches *[]FindElementMatch) {
	if len(*matches) >= max {
		return
	}

	shortType := e.Adapter.ShortTypeName(node)
	fullType := e.Adapter.TypeName(node)
	name, hasName := e.Adapter.Name(node)

	var segment string
	if hasName {
		segment = fmt.Sprintf("%s[%s]", shortType, name)
	} else {
		segment = shortType
	}
	path := segment
	if parentPath != "" {
		path = parentPath + " > " + segment
	}

	if nodeMatches(e, node, fullType, shortType, name, hasName, req) {
		*matches = append(*matches, FindElementMatch{
			Handle:   string(e.Registry.Assign(node)),
			TypeName: fullType,
			Name:     name,
			Path:     path,
		})
		if len(*matches) >= max {
			return
		}
	}

	for _, child := range e.Adapter.ChildrenVisual(node) {
		if len(*matches) >= max {
			return
		}
		findRecursive(e, child, path, req, max, matches)
	}
}

func nodeMatches(e *Endpoint, node toolkit.Node, fullType, shortType, name string, hasName bool, req findElementsRequest) bool {
	if req.TypeName != "" {
		want := strings.ToLower(req.TypeName)
		if !strings.Contains(strings.ToLower(fullType), want) && !strings.EqualFold(shortType, req.TypeName) {
			return false
		}
	}
	if req.ElementName != "" {
		if !hasName || !strings.Contains(strings.ToLower(name), strings.ToLower(req.ElementName)) {
			return false
		}
	}
	for prop, want := range req.PropertyFilter {
		pv, ok := e.Adapter.ReadProperty(node, prop)
		if !ok {
			return false
		}
		if !strings.EqualFold(analyzer.FormatValue(pv.Value, ""), want) {
			return false
		}
	}
	return true
}

func handleGetBindings(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req elementRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		node, err := resolveElement(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}
		var records []analyzer.BindingRecord
		for _, d := range e.Adapter.Properties(node) {
			if info, ok := e.Adapter.Binding(node, d.Name); ok {
				records = append(records, analyzer.DeriveBindingRecord(info))
			}
		}
		return wire.ToFields(bindingsResponse{ElementHandle: req.ElementHandle, Bindings: records})
	})
}

func handleGetBindingErrors(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	return run(e, func() (map[string]any, error) {
		return wire.ToFields(bindingErrorsResponse{Errors: e.Errors.Snapshot()})
	})
}

type resourcesRequest struct {
	RequestID     string `json:"requestId"`
	Scope         string `json:"scope"`
	ElementHandle string `json:"elementHandle,omitempty"`
}

func handleGetResources(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req resourcesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		out := []ResourceRecord{}
		scope := toolkit.ResourceScope(req.Scope)

		if scope == toolkit.ScopeElement {
			node, err := resolveElement(e, req.ElementHandle)
			if err != nil {
				return nil, err
			}
			for n := node; n != nil; {
				for _, r := range e.Adapter.Resources(toolkit.ScopeElement, n) {
					out = append(out, toResourceRecord(r))
				}
				parent, ok := e.Adapter.Parent(n)
				if !ok {
					break
				}
				n = parent
			}
			for _, r := range e.Adapter.Resources(toolkit.ScopeApplication, nil) {
				out = append(out, toResourceRecord(r))
			}
		} else {
			for _, r := range e.Adapter.Resources(scope, nil) {
				out = append(out, toResourceRecord(r))
			}
		}
		return wire.ToFields(resourcesResponse{Resources: out})
	})
}

func toResourceRecord(r toolkit.ResourceEntry) ResourceRecord {
	return ResourceRecord{
		Key:        r.Key,
		TypeName:   r.TypeName,
		Value:      analyzer.FormatValue(r.Value, r.TypeName),
		Source:     r.Source,
		TargetType: r.TargetType,
	}
}

func handleGetStyles(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req elementRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		node, err := resolveElement(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}
		style, ok := e.Adapter.Style(node)
		if !ok {
			return nil, errorkind.New(errorkind.HandlerError, "element has no active style")
		}
		setters := make([]StyleSetterRecord, 0, len(style.Setters))
		for _, s := range style.Setters {
			setters = append(setters, StyleSetterRecord{Property: s.Property, Value: analyzer.FormatValue(s.Value, "")})
		}
		triggers := make([]StyleTriggerRecord, 0, len(style.Triggers))
		for _, t := range style.Triggers {
			triggers = append(triggers, StyleTriggerRecord{Kind: t.Kind, Data: t.Data})
		}
		return wire.ToFields(styleResponse{
			Key: style.Key, TargetType: style.TargetType, BasedOn: style.BasedOn,
			Setters: setters, Triggers: triggers, ImplicitStyleDiffers: style.ImplicitStyleDiffers,
		})
	})
}

type highlightRequest struct {
	RequestID     string `json:"requestId"`
	ElementHandle string `json:"elementHandle"`
	DurationMS    *int   `json:"durationMs,omitempty"`
}

func handleHighlightElement(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req highlightRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		if req.ElementHandle == "" {
			e.mu.Lock()
			toClear := e.highlighted
			e.highlighted = nil
			e.mu.Unlock()
			if clearer, ok := e.Adapter.(toolkit.HighlightClearer); ok {
				for _, n := range toClear {
					clearer.ClearHighlight(n)
				}
			}
			return wire.ToFields(highlightResponse{})
		}
		node, err := resolveElement(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}
		duration := defaultHighlightDurationMS
		if req.DurationMS != nil {
			duration = *req.DurationMS
		}
		e.Adapter.Highlight(node, duration)
		e.recordHighlighted(node)
		return wire.ToFields(highlightResponse{})
	})
}

func handleGetLayoutInfo(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req elementRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		node, err := resolveElement(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}
		l, ok := e.Adapter.Layout(node)
		if !ok {
			return nil, errorkind.New(errorkind.NotRenderable, "element has no layout")
		}
		rec := LayoutRecord{
			ActualWidth: l.ActualWidth, ActualHeight: l.ActualHeight,
			DesiredSize: sizeRecord{W: l.DesiredWidth, H: l.DesiredHeight},
			RenderSize:  sizeRecord{W: l.RenderWidth, H: l.RenderHeight},
			Margin:      boxRecord{L: l.MarginL, T: l.MarginT, R: l.MarginR, B: l.MarginB},
			HorizontalAlignment: l.HorizontalAlignment,
			VerticalAlignment:   l.VerticalAlignment,
			Visibility:          l.Visibility,
		}
		if l.HasPadding {
			rec.Padding = &boxRecord{L: l.PaddingL, T: l.PaddingT, R: l.PaddingR, B: l.PaddingB}
		}
		return wire.ToFields(layoutResponse{rec})
	})
}

type watchRequest struct {
	RequestID     string `json:"requestId"`
	ElementHandle string `json:"elementHandle"`
	PropertyName  string `json:"propertyName"`
}

func handleWatchProperty(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req watchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		node, err := resolveElement(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}
		pv, ok := e.Adapter.ReadProperty(node, req.PropertyName)
		if !ok {
			return nil, errorkind.New(errorkind.PropertyNotFound, fmt.Sprintf("property %q is not defined on this element", req.PropertyName))
		}
		initial := analyzer.FormatValue(pv.Value, "")

		token, err := e.Adapter.SubscribePropertyChange(node, req.PropertyName, func(change toolkit.PropertyChange) {
			newValue := analyzer.FormatValue(change.NewValue, "")
			e.onPropertyChanged(req.ElementHandle, req.PropertyName, newValue)
		})
		if err != nil {
			return nil, errorkind.New(errorkind.HandlerError, err.Error())
		}

		w := e.Watches.Create(handle.Handle(req.ElementHandle), req.PropertyName, initial, token)
		return wire.ToFields(watchResponse{WatchID: w.WatchID, InitialValue: initial})
	})
}

// onPropertyChanged is invoked by the adapter's subscription callback. It
// runs outside the marshaler (the adapter owns when callbacks fire), so
// it only touches the WatchSet, which is documented as defensively
// mutex-guarded for exactly this kind of external-callback access.
func (e *Endpoint) onPropertyChanged(elementHandle, propertyName, newValue string) {
	for _, w := range e.watchesForElement(elementHandle, propertyName) {
		notif, ok := e.Watches.ApplyChange(w.WatchID, newValue)
		if !ok {
			continue
		}
		fields, err := wire.ToFields(notif)
		if err != nil {
			continue
		}
		e.Notify(wire.NotificationEnvelope{NotificationType: wire.PropertyChanged, Fields: fields})
	}
}

func (e *Endpoint) watchesForElement(elementHandle, propertyName string) []*analyzer.Watch {
	// A single subscription callback maps to exactly one watch (the one
	// created by the WatchProperty call that registered it); this helper
	// exists so a future multi-watch-per-property extension has a single
	// seam to change.
	w, ok := e.Watches.FindByElementProperty(handle.Handle(elementHandle), propertyName)
	if !ok {
		return nil
	}
	return []*analyzer.Watch{w}
}

type exportTreeRequest struct {
	RequestID     string `json:"requestId"`
	ElementHandle string `json:"elementHandle,omitempty"`
	Format        string `json:"format"`
}

func handleExportTree(e *Endpoint, data json.RawMessage) (map[string]any, error) {
	var req exportTreeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorkind.New(errorkind.InvalidRequest, "malformed request")
	}
	return run(e, func() (map[string]any, error) {
		root, err := resolveRoot(e, req.ElementHandle)
		if err != nil {
			return nil, err
		}
		switch req.Format {
		case "", "json":
			node, total, truncated := walkTree(e, root, 0, exportTreeJSONDepth, e.Adapter.ChildrenVisual)
			tr := treeResponse{Root: &node, TotalElements: total, MaxDepthReached: truncated}
			return wire.ToFields(exportTreeResponse{Format: "json", treeResponse: &tr})
		case "xaml":
			var sb strings.Builder
			writeXAML(e, &sb, root, 0)
			return wire.ToFields(exportTreeResponse{Format: "xaml", Tree: sb.String()})
		default:
			return nil, errorkind.New(errorkind.InvalidRequest, fmt.Sprintf("unknown export format %q", req.Format))
		}
	})
}

func writeXAML(e *Endpoint, sb *strings.Builder, node toolkit.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	shortType := escapeXML(e.Adapter.ShortTypeName(node))
	name, hasName := e.Adapter.Name(node)
	kids := e.Adapter.ChildrenVisual(node)

	sb.WriteString(indent)
	sb.WriteString("<")
	sb.WriteString(shortType)
	if hasName {
		sb.WriteString(` x:Name="`)
		sb.WriteString(escapeXML(name))
		sb.WriteString(`"`)
	}
	if len(kids) == 0 {
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString(">\n")
	for _, k := range kids {
		writeXAML(e, sb, k, depth+1)
	}
	sb.WriteString(indent)
	sb.WriteString("</")
	sb.WriteString(shortType)
	sb.WriteString(">\n")
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
