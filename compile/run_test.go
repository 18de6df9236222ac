package compile

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"slidec/config"
	"slidec/deck"
	"slidec/state"
)

const sampleDeckYAML = `title: Run Test Deck
author: Tester
slides:
  - layoutType: title-slide
    style: black
    title:
      visible: true
      text: Run Test Deck
  - layoutType: list
    style: white
    content:
      items:
        - First point
        - Second point
`

const brokenDeckYAML = `title: Broken Deck
slides:
  - layoutType: spiral
    style: black
`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func parseDeckForTest(t *testing.T, text string) *deck.Presentation {
	t.Helper()
	p, err := deck.Parse(strings.NewReader(text), "test.yaml")
	if err != nil {
		t.Fatalf("parse deck: %v", err)
	}
	return p
}

func writeDeckFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write deck file: %v", err)
	}
	return path
}

func TestProcess_NonExistentPath(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	err := process(ctx, "/nonexistent/path/deck.yaml", t.TempDir(), logger)
	if err == nil {
		t.Fatal("expected error for non-existent path, got nil")
	}
	if !strings.Contains(err.Error(), "input source was not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	tmpDir := t.TempDir()
	err := process(cancelCtx, tmpDir, tmpDir, zaptest.NewLogger(t))
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProcess_SingleDeck(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	src := writeDeckFile(t, t.TempDir(), "deck.yaml", sampleDeckYAML)
	dst := t.TempDir()

	if err := process(ctx, src, dst, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dst, "deck.html"))
	if err != nil {
		t.Fatalf("output document missing: %v", err)
	}
	if !strings.Contains(string(out), "Run Test Deck") {
		t.Error("output document does not carry the deck title")
	}
	if !strings.Contains(string(out), "First point") {
		t.Error("output document does not carry slide content")
	}
}

func TestProcess_DirectoryCountsFailures(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	srcDir := t.TempDir()
	writeDeckFile(t, srcDir, "good.yaml", sampleDeckYAML)
	writeDeckFile(t, srcDir, "bad.yaml", brokenDeckYAML)
	dst := t.TempDir()

	err := process(ctx, srcDir, dst, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected batch error when one deck is broken")
	}
	if !strings.Contains(err.Error(), "1 source(s) out of 2 failed") {
		t.Errorf("unexpected batch error: %v", err)
	}

	// one bad deck must not prevent the good one from building
	if _, err := os.Stat(filepath.Join(dst, "good.html")); err != nil {
		t.Errorf("good deck output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "bad.html")); err == nil {
		t.Error("broken deck must not produce output")
	}
}

func TestProcess_RefusesOverwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeDeckFile(t, t.TempDir(), "deck.yaml", sampleDeckYAML)
	dst := t.TempDir()

	if err := process(ctx, src, dst, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := process(ctx, src, dst, zaptest.NewLogger(t)); err == nil {
		t.Fatal("second run must fail without overwrite")
	}

	env.Overwrite = true
	if err := process(ctx, src, dst, zaptest.NewLogger(t)); err != nil {
		t.Errorf("overwrite run failed: %v", err)
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	srcDir := t.TempDir()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"decks/talk.yaml": sampleDeckYAML,
		"readme.txt":      "not a deck",
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	arcPath := filepath.Join(srcDir, "decks.zip")
	if err := os.WriteFile(arcPath, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	if err := process(ctx, arcPath, dst, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("archive processing failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "decks", "talk.html")); err != nil {
		t.Errorf("deck from archive missing: %v", err)
	}
}

func TestProcess_Bundle(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Bundle = true

	src := writeDeckFile(t, t.TempDir(), "deck.yaml", sampleDeckYAML)
	dst := t.TempDir()

	if err := process(ctx, src, dst, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	r, err := zip.OpenReader(filepath.Join(dst, "deck.zip"))
	if err != nil {
		t.Fatalf("bundle is not a readable archive: %v", err)
	}
	defer r.Close()

	var hasIndex bool
	for _, f := range r.File {
		if f.Name == "index.html" {
			hasIndex = true
		}
	}
	if !hasIndex {
		t.Error("bundle is missing index.html")
	}
}

func TestCompile_ResolvesPlannedAssets(t *testing.T) {
	_, env := setupTestEnv(t)

	srcDir := t.TempDir()
	deckYAML := `title: Image Deck
slides:
  - layoutType: image-1
    style: black
    content:
      image: pics/one.png
`
	p := parseDeckForTest(t, deckYAML)

	log := zaptest.NewLogger(t)
	doc, files, err := Compile(p, "deck.yaml", srcDir, env, log)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(doc, `src="assets/one.png"`) {
		t.Error("document does not reference the planned asset path")
	}
	// source image is missing, placeholder substitution keeps the deck whole
	if len(files) != 1 || !bytes.HasPrefix(files[0].Data, []byte("\x89PNG")) {
		t.Errorf("expected a single placeholder asset, got %d file(s)", len(files))
	}
}
