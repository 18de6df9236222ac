package serve

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestWatcherReportsChanges(t *testing.T) {
	root := t.TempDir()

	changed := make(chan struct{}, 1)
	w, err := NewWatcher(root, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(root, "deck.yaml"), []byte("title: x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("change was not reported")
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()

	changed := make(chan struct{}, 8)
	w, err := NewWatcher(root, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	// drain the event for the directory itself
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("directory creation was not reported")
	}

	// give the watcher a moment to register the new directory
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "deck.yaml"), []byte("title: x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("change inside new directory was not reported")
	}
}
