package mocktk

import (
	"testing"

	"github.com/slighter12/uiinspect-go/toolkit"
)

func TestSampleTreeShape(t *testing.T) {
	a := NewSampleTree()
	roots := a.RootNodes()
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	if a.TypeName(roots[0]) != "System.Windows.Window" {
		t.Fatalf("got root type %q", a.TypeName(roots[0]))
	}

	panels := a.ChildrenVisual(roots[0])
	if len(panels) != 1 {
		t.Fatalf("got %d children of window, want 1", len(panels))
	}
	buttonAndText := a.ChildrenVisual(panels[0])
	if len(buttonAndText) != 2 {
		t.Fatalf("got %d children of panel, want 2", len(buttonAndText))
	}
	name, ok := a.Name(buttonAndText[0])
	if !ok || name != "SubmitButton" {
		t.Fatalf("got name %q, ok=%v", name, ok)
	}
}

func TestSubscribeAndChangeProperty(t *testing.T) {
	a := NewAdapter()
	el := NewElement("TextBlock", "t1").SetProperty("Text", "A", toolkit.SourceLocal)

	var got toolkit.PropertyChange
	token, err := a.SubscribePropertyChange(el, "Text", func(c toolkit.PropertyChange) {
		got = c
	})
	if err != nil {
		t.Fatalf("SubscribePropertyChange: %v", err)
	}

	el.ChangeProperty("Text", "B")
	if got.NewValue != "B" {
		t.Fatalf("got %+v", got)
	}

	a.roots = []*Element{el}
	a.Unsubscribe(token)
	got = toolkit.PropertyChange{}
	el.ChangeProperty("Text", "C")
	if got.NewValue != nil {
		t.Fatalf("expected no callback after unsubscribe, got %+v", got)
	}
}

func TestHighlightRecordsCall(t *testing.T) {
	a := NewSampleTree()
	roots := a.RootNodes()
	a.Highlight(roots[0], 2000)
	if a.HighlightCallCount() != 1 {
		t.Fatalf("got %d highlight calls, want 1", a.HighlightCallCount())
	}
}

func TestTraceSinkReceivesEmittedLines(t *testing.T) {
	a := NewAdapter()
	sink := &recordingSink{}
	a.AttachBindingTraceSink(sink)
	a.EmitTraceLine("System.Windows.Data Error: 4 : Cannot find source")
	if len(sink.lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(sink.lines))
	}
	a.DetachBindingTraceSink(sink)
	a.EmitTraceLine("ignored")
	if len(sink.lines) != 1 {
		t.Fatalf("expected no further delivery after detach, got %v", sink.lines)
	}
}

type recordingSink struct {
	lines []string
}

func (s *recordingSink) OnTraceLine(line string) { s.lines = append(s.lines, line) }
