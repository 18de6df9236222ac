package compile

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"slidec/archive"
	"slidec/assets"
	"slidec/deck"
	"slidec/state"
)

// Run is the entry point of the build command. It resolves the input source
// (single deck, directory tree or zip archive), compiles every deck found and
// reports a single error when any of them failed.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if env.Cfg.Document.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Document.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read style css from %q: %w", env.Cfg.Document.StylesheetPath, err)
		}
		env.CustomStyle = data
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	env.Bundle = env.Cfg.Document.Bundle || cmd.Bool("bundle")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process determines the input type (directory, archive, or single file) and
// dispatches accordingly. Paths pointing inside an archive are supported, the
// walk peels path elements until something exists on disk.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return processDir(ctx, head, dst, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			return processArchive(ctx, head, tail, "", dst, log)
		}

		if isDeckFile(head) && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open deck (%s): %w", head, err)
			}
			defer file.Close()
			if err := processDeck(ctx, file, filepath.Base(head), filepath.Dir(head), dst, log); err != nil {
				log.Error("Unable to process deck", zap.String("file", head), zap.Error(err))
				return errors.New("compilation failed")
			}
			return nil
		}
		return fmt.Errorf("input was not recognized as deck source (%s)", head)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir compiles every deck under dir. Candidates are collected first
// and ordered naturally so deck-2 builds before deck-10 and runs are
// reproducible regardless of filesystem ordering.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	var decks, archives []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if isDeckFile(path) {
			decks = append(decks, path)
			return nil
		}
		if arc, err := isArchiveFile(path); err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
		} else if arc {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(decks) == 0 && len(archives) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	sort.Sort(natural.StringSlice(decks))
	sort.Sort(natural.StringSlice(archives))

	failed := 0
	for _, path := range decks {
		if err := ctx.Err(); err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process deck", zap.String("file", path), zap.Error(err))
			failed++
			continue
		}
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processDeck(ctx, file, src, filepath.Dir(path), dst, log); err != nil {
			log.Error("Unable to process deck", zap.String("file", path), zap.Error(err))
			failed++
		}
		file.Close()
	}
	for _, path := range archives {
		if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
			log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			failed++
		}
	}

	if failed != 0 {
		return fmt.Errorf("%d source(s) out of %d failed", failed, len(decks)+len(archives))
	}
	return nil
}

// processArchive compiles decks found inside a zip archive under pathIn.
// Referenced images cannot be resolved inside an archive, so decks compiled
// this way only get placeholders for their images.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) error {
	count, failed := 0, 0

	err := archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isDeckInArchive(f) {
			log.Debug("Skipping file, not recognized as deck", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process deck in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failed++
			return nil
		}
		defer r.Close()

		if err := processDeck(ctx, r, filepath.Join(pathOut, f.FileHeader.Name), "", dst, log); err != nil {
			log.Error("Unable to process deck in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failed++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	if failed != 0 {
		return fmt.Errorf("%d deck(s) out of %d in archive failed", failed, count)
	}
	return nil
}

// processDeck compiles a single deck. "src" is the source path relative to
// the original input (used for output naming), "srcDir" is the directory
// image references resolve against (empty when reading from an archive) and
// "dst" is the destination directory.
func processDeck(ctx context.Context, r io.Reader, src, srcDir, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Compilation starting", zap.String("from", src))
	defer func(start time.Time) {
		// when multiple decks are being processed one bad input or a bug in
		// image decoding should not stop the batch
		if r := recover(); r != nil {
			log.Error("Compilation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("compilation panic: %v", r)
		} else {
			log.Info("Compilation completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	p, err := deck.Parse(r, src)
	if err != nil {
		return fmt.Errorf("unable to parse deck source (%s): %w", src, err)
	}

	validator := deck.NewValidator(deck.NewContract(), log)
	if violations := validator.Validate(p); len(violations) > 0 {
		for _, v := range violations {
			log.Error("Validation failed", zap.String("file", src), zap.Int("slide", v.Slide), zap.Stringer("kind", v.Kind), zap.String("problem", v.Message))
		}
		return fmt.Errorf("deck is not valid (%s): %w", src, violations.Err())
	}

	doc, files, err := Compile(p, src, srcDir, env, log)
	if err != nil {
		return err
	}

	outputName = buildOutputPath(p, src, dst, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if env.Bundle {
		if err := writeBundle(doc, files, outputName); err != nil {
			return fmt.Errorf("unable to write bundle: %w", err)
		}
	} else {
		if err := os.WriteFile(outputName, []byte(doc), 0644); err != nil {
			return fmt.Errorf("unable to write document: %w", err)
		}
		if err := assets.Write(filepath.Dir(outputName), files); err != nil {
			return err
		}
	}

	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s", filepath.Base(outputName)), outputName)
	}
	return nil
}

// Compile renders a validated presentation into the final document string and
// the set of asset files that accompany it.
func Compile(p *deck.Presentation, src, srcDir string, env *state.LocalEnv, log *zap.Logger) (string, []assets.Asset, error) {
	plan := assets.Plan(p.ImageRefs())
	resolver := func(ref string) string {
		if path, ok := plan[ref]; ok {
			return path
		}
		return DefaultAssetResolver(ref)
	}

	renderer := NewRenderer(resolver, log)
	frags := make([]*Fragment, 0, len(p.Slides))
	for i := range p.Slides {
		frag, err := renderer.Render(i, &p.Slides[i])
		if err != nil {
			return "", nil, fmt.Errorf("unable to render slide %d of %s: %w", i+1, src, err)
		}
		frags = append(frags, frag)
	}

	doc, err := Assemble(p, frags, env.CustomStyle, uuid.NewString(), log)
	if err != nil {
		return "", nil, err
	}

	files := assets.Collect(plan, srcDir, &env.Cfg.Document.Assets, log)
	return doc, files, nil
}
