package agentapi

import (
	"testing"

	"github.com/slighter12/uiinspect-go/wire"
)

func TestDescriptorsCoverEveryRequestKind(t *testing.T) {
	descriptors := Descriptors()
	byName := make(map[wire.RequestKind]MethodDescriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	for _, kind := range wire.AllRequestKinds() {
		d, ok := byName[kind]
		if !ok {
			t.Errorf("no MethodDescriptor for %s", kind)
			continue
		}
		if d.Description == "" {
			t.Errorf("%s: empty description", kind)
		}
		if d.InputSchema.Type != "object" {
			t.Errorf("%s: InputSchema.Type = %q, want object", kind, d.InputSchema.Type)
		}
	}

	if len(descriptors) != len(wire.AllRequestKinds()) {
		t.Errorf("got %d descriptors, want %d", len(descriptors), len(wire.AllRequestKinds()))
	}
}

func TestRequiredFieldsAppearInProperties(t *testing.T) {
	for _, d := range Descriptors() {
		for _, req := range d.InputSchema.Required {
			if _, ok := d.InputSchema.Properties[req]; !ok {
				t.Errorf("%s: required field %q is not declared in properties", d.Name, req)
			}
		}
	}
}
