// Package source finds navigation tables on disk: single scripts and data
// files, directory trees of generated documentation and zip archives of them.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"github.com/moby/patternmatcher"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"navtree/archive"
	"navtree/config"
	"navtree/library"
	"navtree/nav"
)

// maxSourceSize limits files read from archives.
const maxSourceSize = 64 << 20

var (
	errNotTable      = errors.New("not a navigation script")
	errUnknownFormat = errors.New("unknown source format")
)

// Options control which files are picked up and how they are read.
type Options struct {
	// Include are shell patterns matched against base file name when walking
	// directories and archives.
	Include []string
	// Exclude are dockerignore style patterns matched against path relative
	// to the walked directory or archive root.
	Exclude []string
	// Charset is IANA name of code page for sources which are not UTF-8.
	Charset string
	// Lenient makes resulting library keep unresolved references.
	Lenient bool
	// Report receives copies of every loaded source when set.
	Report *config.Report
	// Skip are paths of files never loaded from directories, export puts
	// files it has written here.
	Skip []string
}

// NewOptions returns options from configuration.
func NewOptions(cfg *config.Config, rpt *config.Report) Options {
	return Options{
		Include: cfg.Source.Include,
		Exclude: cfg.Source.Exclude,
		Charset: cfg.Source.Charset,
		Lenient: cfg.Document.LenientReferences,
		Report:  rpt,
	}
}

type loader struct {
	log     *zap.Logger
	opts    Options
	cp      encoding.Encoding
	exclude *patternmatcher.PatternMatcher
	lib     *library.Library
}

// Load reads all tables from src, which could be a file, a directory, an
// archive or a path inside archive ("docs.zip/html/config_pg.js"). An
// explicitly named file must be a valid table source. Files found while
// walking directories and archives which fail to decode are logged and
// skipped.
func Load(ctx context.Context, src string, opts Options, log *zap.Logger) (*library.Library, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ld := &loader{
		log:  log.Named("source"),
		opts: opts,
		lib:  library.New(log, library.WithLenient(opts.Lenient)),
	}

	if len(opts.Charset) > 0 {
		cp, err := ianaindex.IANA.Encoding(opts.Charset)
		if err != nil || cp == nil {
			return nil, fmt.Errorf("unsupported character set %q: %w", opts.Charset, errors.Join(err, errors.ErrUnsupported))
		}
		ld.cp = cp
	}

	pm, err := patternmatcher.New(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("bad exclude patterns: %w", err)
	}
	ld.exclude = pm

	if err := ld.load(ctx, src); err != nil {
		return nil, err
	}
	if ld.lib.Len() == 0 {
		return nil, fmt.Errorf("no navigation tables found in %s", src)
	}
	return ld.lib, nil
}

func (ld *loader) load(ctx context.Context, src string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return ld.loadDir(ctx, head)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			pathIn := strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := ld.loadArchive(ctx, head, filepath.ToSlash(pathIn)); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		data, err := os.ReadFile(head)
		if err != nil {
			return err
		}
		return ld.add(data, filepath.Base(head), head, true)
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// selected checks relative slash separated path against include and exclude
// patterns.
func (ld *loader) selected(rel string) bool {
	excluded, err := ld.exclude.MatchesOrParentMatches(filepath.FromSlash(rel))
	if err != nil {
		ld.log.Warn("Unable to match exclude patterns", zap.String("path", rel), zap.Error(err))
	}
	if excluded {
		return false
	}
	base := path.Base(rel)
	return slices.ContainsFunc(ld.opts.Include, func(pattern string) bool {
		ok, err := path.Match(pattern, base)
		return err == nil && ok
	})
}

func (ld *loader) skipped(p string) bool {
	p = filepath.Clean(p)
	return slices.ContainsFunc(ld.opts.Skip, func(s string) bool {
		return filepath.Clean(s) == p
	})
}

func (ld *loader) loadDir(ctx context.Context, dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			ld.log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if !ld.selected(filepath.ToSlash(rel)) || ld.skipped(p) {
			ld.log.Debug("Skipping file", zap.String("file", p))
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return err
	}

	slices.SortFunc(files, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(filepath.ToSlash(a), filepath.ToSlash(b)):
			return -1
		}
		return 1
	})

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(dir, rel)
		data, err := os.ReadFile(p)
		if err != nil {
			ld.log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
			continue
		}
		if err := ld.add(data, filepath.ToSlash(rel), p, false); err != nil {
			ld.log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
		}
	}
	return nil
}

func (ld *loader) loadArchive(ctx context.Context, arc, pathIn string) error {
	var dec *encoding.Decoder
	if ld.cp != nil {
		dec = ld.cp.NewDecoder()
	}

	explicit := len(pathIn) > 0 && !strings.HasSuffix(pathIn, "/")
	return archive.Walk(arc, pathIn, dec, func(arc string, f *archive.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// single file named on command line is taken as is
		single := explicit && f.Name == strings.Trim(path.Clean("/"+pathIn), "/")
		if !single && !ld.selected(f.Name) {
			ld.log.Debug("Skipping file in archive", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}
		data, err := f.ReadAll(maxSourceSize)
		if err == nil {
			err = ld.add(data, f.Name, arc+":"+f.Name, single)
		}
		if err != nil {
			if single {
				return err
			}
			ld.log.Warn("Skipping file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
		}
		return nil
	})
}

// add decodes tables from data and puts them into library. Name is used to
// detect format and is stored in report, origin is for messages. Strict
// sources must contain at least one table.
func (ld *loader) add(data []byte, name, origin string, strict bool) error {
	text, err := toUTF8(data, ld.cp)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", origin, err)
	}

	tables, err := Decode(text, name)
	if err != nil {
		if !strict && errors.Is(err, errNotTable) {
			ld.log.Debug("Skipping file, not a navigation script", zap.String("file", origin))
			return nil
		}
		return err
	}
	if strict && len(tables) == 0 {
		return fmt.Errorf("no navigation tables found in %s", origin)
	}

	ld.opts.Report.StoreData(path.Join("sources", name), data)

	for _, t := range tables {
		if err := ld.lib.Add(t, origin); err != nil {
			return err
		}
	}
	ld.log.Debug("Source loaded", zap.String("file", origin), zap.Int("tables", len(tables)))
	return nil
}

// Decode reads tables from UTF-8 text in format selected by name extension.
// Tables without name get one from the base file name turned into identifier.
func Decode(text []byte, name string) ([]*nav.Table, error) {
	var (
		tables []*nav.Table
		err    error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".js":
		if !nav.Sniff(text) {
			return nil, fmt.Errorf("%s: %w", name, errNotTable)
		}
		tables, err = nav.ParseScript(text, name)
	case ".json":
		var t *nav.Table
		if t, err = nav.DecodeJSON(text, name); err == nil {
			tables = append(tables, t)
		}
	case ".yaml", ".yml":
		var t *nav.Table
		if t, err = nav.DecodeYAML(text, name); err == nil {
			tables = append(tables, t)
		}
	default:
		return nil, fmt.Errorf("%s: %w", name, errUnknownFormat)
	}
	if err != nil {
		return nil, err
	}

	base := nav.Identifier(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	for i, t := range tables {
		if len(t.Name()) == 0 {
			tables[i] = nav.NewTable(base, t.Entries()...)
		}
	}
	return tables, nil
}
