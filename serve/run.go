package serve

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"slidec/assets"
	"slidec/compile"
	"slidec/deck"
	"slidec/state"
)

const reloadScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function () { location.reload(); };
})();
</script>
`

// Run is the entry point of the serve command. It compiles decks from the
// source directory on every request and reloads connected browsers when a
// source file changes.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("serve")

	root := cmd.Args().Get(0)
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(root); err != nil {
		return fmt.Errorf("unable to access source (%s): %w", root, err)
	} else if !fi.IsDir() {
		root = filepath.Dir(root)
	}

	addr := cmd.String("address")
	if addr == "" {
		addr = env.Cfg.Server.Address
	}

	srv := &server{root: root, env: env, hub: NewHub(log), log: log}

	debounce := time.Duration(env.Cfg.Server.DebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	watcher, err := NewWatcher(root, debounce, srv.hub.Reload, log)
	if err != nil {
		return fmt.Errorf("unable to watch source directory: %w", err)
	}
	defer watcher.Close()
	go watcher.Run(ctx)

	r := mux.NewRouter()
	r.HandleFunc("/", srv.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", srv.hub.Handle)
	// deck sources may live in subdirectories, so the name pattern has to
	// span path separators; the assets route goes first to win the match
	r.HandleFunc("/deck/{name:.+}/assets/{file}", srv.handleAsset).Methods(http.MethodGet)
	r.HandleFunc("/deck/{name:.+}", srv.handleDeck).Methods(http.MethodGet)

	httpSrv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.hub.Close()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info("Preview server starting", zap.String("address", addr), zap.String("source", root))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type server struct {
	root string
	env  *state.LocalEnv
	hub  *Hub
	log  *zap.Logger
}

// deckFiles lists deck sources under root, naturally ordered, as
// root-relative slash paths.
func (s *server) deckFiles() ([]string, error) {
	var names []string
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				return nil
			}
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(names))
	return names, nil
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.deckFiles()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>slidec preview</title></head><body><h1>Decks</h1><ul>")
	for _, name := range names {
		b.WriteString(fmt.Sprintf(`<li><a href="/deck/%s">%s</a></li>`, html.EscapeString(name), html.EscapeString(name)))
	}
	b.WriteString("</ul>")
	b.WriteString(reloadScript)
	b.WriteString("</body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(b.String()))
}

// resolveDeck maps a request name to a source path, rejecting anything that
// escapes the root.
func (s *server) resolveDeck(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", errors.New("invalid deck name")
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *server) handleDeck(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	path, err := s.resolveDeck(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	p, err := deck.Parse(file, name)
	if err != nil {
		s.renderProblem(w, name, err.Error())
		return
	}

	validator := deck.NewValidator(deck.NewContract(), s.log)
	if violations := validator.Validate(p); len(violations) > 0 {
		problems := make([]string, 0, len(violations))
		for _, v := range violations {
			problems = append(problems, v.Error())
		}
		s.renderProblem(w, name, strings.Join(problems, "\n"))
		return
	}

	frags := make([]*compile.Fragment, 0, len(p.Slides))
	plan := assets.Plan(p.ImageRefs())
	resolver := func(ref string) string {
		if out, ok := plan[ref]; ok {
			return "/deck/" + name + "/" + out
		}
		return "/deck/" + name + "/" + compile.DefaultAssetResolver(ref)
	}
	renderer := compile.NewRenderer(resolver, s.log)
	for i := range p.Slides {
		frag, err := renderer.Render(i, &p.Slides[i])
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		frags = append(frags, frag)
	}

	doc, err := compile.Assemble(p, frags, s.env.CustomStyle, "preview", s.log)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// reload hook goes last so it never interferes with the controller
	doc = strings.Replace(doc, "</body>", reloadScript+"</body>", 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(doc))
}

// handleAsset serves a referenced image straight from the deck's source
// directory. The document links assets by base name, so the matching source
// file is searched next to the deck.
func (s *server) handleAsset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, err := s.resolveDeck(vars["name"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, perr := deck.Parse(file, vars["name"])
	file.Close()
	if perr != nil {
		http.NotFound(w, r)
		return
	}

	want := assets.AssetDir + "/" + vars["file"]
	for ref, out := range assets.Plan(p.ImageRefs()) {
		if out != want {
			continue
		}
		http.ServeFile(w, r, filepath.Join(filepath.Dir(path), filepath.FromSlash(ref)))
		return
	}
	http.NotFound(w, r)
}

func (s *server) renderProblem(w http.ResponseWriter, name, problems string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>Deck is not valid</h1><pre>%s</pre>%s</body></html>",
		html.EscapeString(name), html.EscapeString(problems), reloadScript)
}
