package analyzer

import (
	"strings"

	"github.com/slighter12/uiinspect-go/toolkit"
)

// BindingRecord is the wire form of a data-binding expression, §3.
type BindingRecord struct {
	Property      string `json:"property"`
	Path          string `json:"path"`
	Source        string `json:"source"`
	Mode          string `json:"mode"`
	UpdateTrigger string `json:"updateTrigger,omitempty"`
	Converter     string `json:"converter,omitempty"`
	Status        string `json:"status"`
	HasError      bool   `json:"hasError"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	CurrentValue  string `json:"currentValue,omitempty"`
}

// DeriveBindingRecord converts an adapter-local BindingInfo into the wire
// record. source is derived in the documented priority order: an explicit
// source object on the adapter's info wins, then ElementName(...), then
// RelativeSource(...), then the DataContext default. A reported binding
// error always forces status to "Error" regardless of the adapter's raw
// status.
func DeriveBindingRecord(info toolkit.BindingInfo) BindingRecord {
	status := string(info.Status)
	if info.HasError {
		status = string(toolkit.BindingError)
	}
	return BindingRecord{
		Property:      info.Property,
		Path:          info.Path,
		Source:        deriveSource(info.SourceKind),
		Mode:          string(info.Mode),
		UpdateTrigger: info.UpdateTrigger,
		Converter:     info.Converter,
		Status:        status,
		HasError:      info.HasError,
		ErrorMessage:  info.ErrorMessage,
		CurrentValue:  FormatValue(info.CurrentValue, ""),
	}
}

func deriveSource(kind string) string {
	kind = strings.TrimSpace(kind)
	switch {
	case kind == "":
		return "DataContext"
	case strings.HasPrefix(kind, "ElementName("):
		return kind
	case strings.HasPrefix(kind, "RelativeSource("):
		return kind
	case kind == "DataContext":
		return kind
	default:
		// An explicit source type name, highest priority per the
		// documented order.
		return kind
	}
}
