package local

import (
	"context"
	"testing"
	"time"
)

func TestAddressFormat(t *testing.T) {
	got := Address("wpf_inspector_", 4242)
	want := "wpf_inspector_4242"
	if got != want {
		t.Errorf("Address() = %q, want %q", got, want)
	}
}

func TestListenDialRoundTrip(t *testing.T) {
	address := Address("uiinspect_test_", int(time.Now().UnixNano()%100000))

	l, err := Listen(address)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer l.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			accepted <- err
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		if _, err := conn.Read(buf); err != nil {
			accepted <- err
			return
		}
		if string(buf) != "hello" {
			accepted <- nil
			return
		}
		accepted <- nil
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := Dial(ctx, address)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	select {
	case err := <-accepted:
		if err != nil {
			t.Fatalf("server side failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for accept")
	}
}

func TestDialNotFound(t *testing.T) {
	address := Address("uiinspect_missing_", int(time.Now().UnixNano()%100000))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := Dial(ctx, address); err == nil {
		t.Error("expected dial error for nonexistent rendezvous address")
	}
}

func TestListenTwiceFails(t *testing.T) {
	address := Address("uiinspect_dup_", int(time.Now().UnixNano()%100000))

	l1, err := Listen(address)
	if err != nil {
		t.Fatalf("first Listen failed: %v", err)
	}
	defer l1.Close()

	if _, err := Listen(address); err == nil {
		t.Error("expected second Listen on the same address to fail")
	}
}
