package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/slighter12/uiinspect-go/errorkind"
	"github.com/slighter12/uiinspect-go/inspector"
	"github.com/slighter12/uiinspect-go/toolkit/mocktk"
	"github.com/slighter12/uiinspect-go/transport/local"
)

func testPrefix(t *testing.T) string {
	return "uiinspect_bridge_test_" + t.Name() + "_"
}

func startTestEndpoint(t *testing.T, prefix string, pid int) (*inspector.Endpoint, func()) {
	t.Helper()
	adapter := mocktk.NewSampleTree()
	endpoint := inspector.New(adapter, 32, nil)

	listener, err := local.Listen(local.Address(prefix, pid))
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		endpoint.Serve(ctx, listener)
	}()

	return endpoint, func() {
		cancel()
		listener.Close()
		<-done
	}
}

func alwaysExists(int) bool { return true }

func TestBridgeAttachAndGetVisualTree(t *testing.T) {
	prefix := testPrefix(t)
	const pid = 1001
	_, stop := startTestEndpoint(t, prefix, pid)
	defer stop()

	b := New(prefix, time.Second, 2*time.Second, alwaysExists, nil)
	ctx := context.Background()
	if err := b.Attach(ctx, pid, "demo.exe"); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	tree, err := b.GetVisualTree(ctx, "", 0)
	if err != nil {
		t.Fatalf("GetVisualTree failed: %v", err)
	}
	if tree.Root == nil {
		t.Fatal("expected a root node")
	}
	if tree.Root.TypeName != "System.Windows.Window" {
		t.Errorf("root TypeName = %q, want Window", tree.Root.TypeName)
	}
	if tree.TotalElements == 0 {
		t.Error("expected a nonzero TotalElements")
	}
}

func TestBridgeFindElementsAndProperties(t *testing.T) {
	prefix := testPrefix(t)
	const pid = 1002
	_, stop := startTestEndpoint(t, prefix, pid)
	defer stop()

	b := New(prefix, time.Second, 2*time.Second, alwaysExists, nil)
	ctx := context.Background()
	if err := b.Attach(ctx, pid, "demo.exe"); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	found, err := b.FindElements(ctx, "", "", "SubmitButton", 10)
	if err != nil {
		t.Fatalf("FindElements failed: %v", err)
	}
	if len(found.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found.Matches))
	}

	props, err := b.GetElementProperties(ctx, found.Matches[0].Handle)
	if err != nil {
		t.Fatalf("GetElementProperties failed: %v", err)
	}
	var sawContent bool
	for _, p := range props.Properties {
		if p.Name == "Content" {
			sawContent = true
		}
	}
	if !sawContent {
		t.Error("expected a Content property on the button")
	}
}

func TestBridgeAttachProcessGone(t *testing.T) {
	b := New(testPrefix(t), time.Second, time.Second, func(int) bool { return false }, nil)
	err := b.Attach(context.Background(), 9999, "gone.exe")
	if err == nil {
		t.Fatal("expected an error attaching to a nonexistent process")
	}
	kerr, ok := errorkind.As(err)
	if !ok || kerr.Kind != errorkind.ProcessGone {
		t.Errorf("expected ProcessGone, got %v (ok=%v)", kerr, ok)
	}
}

func TestBridgeInvokeInspectorUnreachable(t *testing.T) {
	b := New(testPrefix(t), 200*time.Millisecond, time.Second, alwaysExists, nil)
	ctx := context.Background()
	if err := b.Attach(ctx, 1234, "ghost.exe"); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	_, err := b.GetVisualTree(ctx, "", 0)
	if err == nil {
		t.Fatal("expected an error with no listening endpoint")
	}
	kerr, ok := errorkind.As(err)
	if !ok {
		t.Fatalf("expected a classified error, got %v", err)
	}
	if kerr.Kind != errorkind.InspectorUnreachable && kerr.Kind != errorkind.ConnectionTimeout {
		t.Errorf("unexpected error kind %v", kerr.Kind)
	}
}

func TestBridgeHighlightElement(t *testing.T) {
	prefix := testPrefix(t)
	const pid = 1003
	_, stop := startTestEndpoint(t, prefix, pid)
	defer stop()

	b := New(prefix, time.Second, 2*time.Second, alwaysExists, nil)
	ctx := context.Background()
	if err := b.Attach(ctx, pid, "demo.exe"); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	found, err := b.FindElements(ctx, "", "", "SubmitButton", 10)
	if err != nil {
		t.Fatalf("FindElements failed: %v", err)
	}
	if err := b.HighlightElement(ctx, found.Matches[0].Handle); err != nil {
		t.Fatalf("HighlightElement failed: %v", err)
	}
}
