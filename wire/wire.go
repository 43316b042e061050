// Package wire implements the newline-delimited JSON framing and the
// request/response/notification envelopes exchanged between a controller
// bridge and an inspector endpoint.
package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// RequestKind is one of the closed set of request types the endpoint
// understands.
type RequestKind string

const (
	GetVisualTree        RequestKind = "GetVisualTree"
	GetLogicalTree       RequestKind = "GetLogicalTree"
	GetElementProperties RequestKind = "GetElementProperties"
	FindElements         RequestKind = "FindElements"
	GetBindings          RequestKind = "GetBindings"
	GetBindingErrors     RequestKind = "GetBindingErrors"
	GetResources         RequestKind = "GetResources"
	GetStyles            RequestKind = "GetStyles"
	HighlightElement     RequestKind = "HighlightElement"
	GetLayoutInfo        RequestKind = "GetLayoutInfo"
	WatchProperty        RequestKind = "WatchProperty"
	ExportTree           RequestKind = "ExportTree"
)

// AllRequestKinds lists the closed set in a stable order, for tooling
// that needs to enumerate it (the dispatch table, agentapi descriptors).
func AllRequestKinds() []RequestKind {
	return []RequestKind{
		GetVisualTree, GetLogicalTree, GetElementProperties, FindElements,
		GetBindings, GetBindingErrors, GetResources, GetStyles,
		HighlightElement, GetLayoutInfo, WatchProperty, ExportTree,
	}
}

// NotificationKind is one of the closed set of unsolicited message types.
type NotificationKind string

const (
	PropertyChanged NotificationKind = "PropertyChanged"
	BindingError    NotificationKind = "BindingError"
)

// RequestEnvelope is the outer shape of every request frame:
// {"type":"<Kind>","data":{"requestId":"...", ...}}.
type RequestEnvelope struct {
	Type RequestKind     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ResponseEnvelope is the outer shape of every response frame. Handlers
// marshal their kind-specific fields into Fields; Encode flattens Fields
// into the same JSON object as RequestID/Success/Error.
type ResponseEnvelope struct {
	RequestID string         `json:"requestId"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Fields    map[string]any `json:"-"`
}

// MarshalJSON flattens Fields alongside the envelope's own keys so the
// wire form has no nested "fields" object.
func (r ResponseEnvelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["requestId"] = r.RequestID
	out["success"] = r.Success
	if r.Error != "" {
		out["error"] = r.Error
	}
	return json.Marshal(out)
}

// UnmarshalJSON recovers RequestID/Success/Error and stashes every other
// key into Fields, the inverse of MarshalJSON.
func (r *ResponseEnvelope) UnmarshalJSON(b []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["requestId"].(string); ok {
		r.RequestID = v
		delete(raw, "requestId")
	}
	if v, ok := raw["success"].(bool); ok {
		r.Success = v
		delete(raw, "success")
	}
	if v, ok := raw["error"].(string); ok {
		r.Error = v
		delete(raw, "error")
	}
	r.Fields = raw
	return nil
}

// NotificationEnvelope is the flat shape of unsolicited messages:
// {"notificationType":"...", ...}. Like ResponseEnvelope, Fields carries
// the kind-specific payload.
type NotificationEnvelope struct {
	NotificationType NotificationKind `json:"notificationType"`
	Fields           map[string]any   `json:"-"`
}

func (n NotificationEnvelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Fields)+1)
	for k, v := range n.Fields {
		out[k] = v
	}
	out["notificationType"] = string(n.NotificationType)
	return json.Marshal(out)
}

func (n *NotificationEnvelope) UnmarshalJSON(b []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["notificationType"].(string); ok {
		n.NotificationType = NotificationKind(v)
		delete(raw, "notificationType")
	}
	n.Fields = raw
	return nil
}

const bom = "\uFEFF"

// stripBOM removes a single leading UTF-8 BOM from a frame, if present.
func stripBOM(frame []byte) []byte {
	return bytes.TrimPrefix(frame, []byte(bom))
}

// FrameReader reads one newline-delimited, BOM-tolerant JSON frame at a
// time from an underlying byte stream. It wraps a bufio.Reader purely for
// buffered *reads* — writes never pass through this type, satisfying the
// no-internal-write-buffering requirement on the transport.
type FrameReader struct {
	r *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// ReadFrame returns the next frame's bytes with the trailing "\n" (and a
// tolerated preceding "\r") stripped, and any leading BOM removed. It
// returns io.EOF when the peer has closed the connection cleanly.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	line, err := f.r.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 {
			return nil, err
		}
		// A partial final frame with no trailing newline is not a
		// delivered frame per the reader loop contract; surface the
		// underlying error (typically io.EOF) rather than the bytes.
		return nil, err
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	line = stripBOM(line)
	return line, nil
}

// DecodeRequest parses a stripped frame into a RequestEnvelope.
func DecodeRequest(frame []byte) (RequestEnvelope, error) {
	var env RequestEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return RequestEnvelope{}, fmt.Errorf("invalid request frame: %w", err)
	}
	return env, nil
}

// ToFields marshals v (typically a kind-specific response payload struct)
// and unmarshals it back into a map, so handlers can build a
// ResponseEnvelope.Fields value from a typed struct without hand-rolling
// the map themselves.
func ToFields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, nil
}

// Encode writes exactly one frame: the JSON encoding of v followed by a
// single "\n", in one Write call, with no internal buffering of the
// write itself.
func Encode(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
