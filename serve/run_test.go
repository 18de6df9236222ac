package serve

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap/zaptest"

	"slidec/config"
	"slidec/state"
)

const previewDeckYAML = `title: Preview Deck
slides:
  - layoutType: title-slide
    style: black
    title:
      visible: true
      text: Preview Deck
  - layoutType: image-1
    style: white
    content:
      image: pics/one.png
`

const previewBrokenYAML = `title: Broken
slides:
  - layoutType: spiral
    style: black
`

func newTestServer(t *testing.T, root string) *server {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	log := zaptest.NewLogger(t)
	return &server{
		root: root,
		env:  &state.LocalEnv{Cfg: cfg, Log: log},
		hub:  NewHub(log),
		log:  log,
	}
}

func testRouter(s *server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/deck/{name:.+}/assets/{file}", s.handleAsset).Methods(http.MethodGet)
	r.HandleFunc("/deck/{name:.+}", s.handleDeck).Methods(http.MethodGet)
	return r
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDeckFilesNaturalOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "deck-10.yaml", previewDeckYAML)
	writeFile(t, root, "deck-2.yaml", previewDeckYAML)
	writeFile(t, root, "sub/deck.yml", previewDeckYAML)
	writeFile(t, root, "notes.txt", "not a deck")

	s := newTestServer(t, root)
	names, err := s.deckFiles()
	if err != nil {
		t.Fatalf("deckFiles failed: %v", err)
	}
	want := []string{"deck-2.yaml", "deck-10.yaml", "sub/deck.yml"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestResolveDeckRejectsEscapes(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	for _, name := range []string{"../outside.yaml", "a/../../outside.yaml", "/etc/passwd"} {
		if _, err := s.resolveDeck(name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
	if _, err := s.resolveDeck("sub/deck.yaml"); err != nil {
		t.Errorf("plain relative name rejected: %v", err)
	}
}

func TestHandleIndexListsDecks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "talk.yaml", previewDeckYAML)

	s := newTestServer(t, root)
	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="/deck/talk.yaml"`) {
		t.Errorf("index is missing the deck link:\n%s", body)
	}
	if !strings.Contains(body, "WebSocket") {
		t.Error("index is missing the reload hook")
	}
}

func TestHandleDeckCompilesOnRequest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "talk.yaml", previewDeckYAML)

	s := newTestServer(t, root)
	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/talk.yaml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Preview Deck") {
		t.Error("compiled document is missing the deck title")
	}
	if !strings.Contains(body, `src="/deck/talk.yaml/assets/one.png"`) {
		t.Errorf("image reference was not rewritten to the preview route:\n%s", body)
	}
	if !strings.Contains(body, "WebSocket") {
		t.Error("compiled document is missing the reload hook")
	}
}

func TestHandleDeckInSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/talk.yaml", previewDeckYAML)
	writeFile(t, root, "sub/pics/one.png", "fake image bytes")

	s := newTestServer(t, root)

	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/sub/talk.yaml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `src="/deck/sub/talk.yaml/assets/one.png"`) {
		t.Errorf("image reference was not rewritten to the preview route:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/sub/talk.yaml/assets/one.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("asset under subdirectory deck not served, status %d", rec.Code)
	}
	if rec.Body.String() != "fake image bytes" {
		t.Error("asset body does not match the source file")
	}
}

func TestHandleDeckReportsProblems(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.yaml", previewBrokenYAML)

	s := newTestServer(t, root)
	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/bad.yaml", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "spiral") {
		t.Errorf("problem page is missing the violation:\n%s", body)
	}
	if !strings.Contains(body, "WebSocket") {
		t.Error("problem page is missing the reload hook, fixing the file would not refresh")
	}
}

func TestHandleDeckMissing(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/gone.yaml", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleAssetServesSourceImage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "talk.yaml", previewDeckYAML)
	writeFile(t, root, "pics/one.png", "fake image bytes")

	s := newTestServer(t, root)
	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/talk.yaml/assets/one.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.String() != "fake image bytes" {
		t.Error("asset body does not match the source file")
	}
}

func TestHandleAssetUnknownReference(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "talk.yaml", previewDeckYAML)

	s := newTestServer(t, root)
	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deck/talk.yaml/assets/other.png", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unreferenced asset, got %d", rec.Code)
	}
}
