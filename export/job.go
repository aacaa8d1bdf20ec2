// Package export implements "export" command: tables are loaded from source,
// optionally resolved and written to destination in requested format.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"navtree/config"
	"navtree/library"
	"navtree/nav"
	"navtree/render"
	"navtree/source"
)

// Job describes single export run.
type Job struct {
	// Src is path to file, directory, archive or path inside archive.
	Src string
	// Dst is destination directory.
	Dst string
	// Root selects single table by name, empty means all tables nobody
	// refers to.
	Root string

	Format        config.OutputFmt
	Resolve       bool
	Overwrite     bool
	NameTemplate  string
	Transliterate bool

	Source source.Options
	Render render.Options
	Report *config.Report

	// files written by previous runs, never loaded back as sources
	produced map[string]bool
}

// NewJob fills job from configuration.
func NewJob(cfg *config.Config, rpt *config.Report, src, dst string, format config.OutputFmt) *Job {
	return &Job{
		Src:           src,
		Dst:           dst,
		Format:        format,
		Resolve:       cfg.Document.ResolveReferences,
		NameTemplate:  cfg.Document.OutputNameTemplate,
		Transliterate: cfg.Document.FileNameTransliterate,
		Source:        source.NewOptions(cfg, rpt),
		Render:        render.Options{Title: cfg.Document.NavTitle},
		Report:        rpt,
	}
}

// Run loads, renders and writes tables returning paths of written files.
func (j *Job) Run(ctx context.Context, log *zap.Logger) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := j.Source
	opts.Skip = slices.Clone(opts.Skip)
	for name := range j.produced {
		opts.Skip = append(opts.Skip, name)
	}
	lib, err := source.Load(ctx, j.Src, opts, log)
	if err != nil {
		return nil, fmt.Errorf("unable to load navigation tables: %w", err)
	}

	tables, err := j.selectTables(lib, log)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		outputName, err := j.writeTable(lib, t, written, log)
		if err != nil {
			return written, fmt.Errorf("unable to export table %q: %w", t.Name(), err)
		}
		written = append(written, outputName)
		if j.produced == nil {
			j.produced = make(map[string]bool)
		}
		j.produced[outputName] = true
	}
	return written, nil
}

// Produced reports whether file was written by this job.
func (j *Job) Produced(name string) bool {
	return j.produced[filepath.Clean(name)]
}

func (j *Job) selectTables(lib *library.Library, log *zap.Logger) ([]*nav.Table, error) {
	if len(j.Root) > 0 {
		t, ok := lib.Table(j.Root)
		if !ok {
			return nil, fmt.Errorf("table %q: %w", j.Root, library.ErrUnresolved)
		}
		return []*nav.Table{t}, nil
	}

	tables := lib.Roots()
	if len(tables) == 0 {
		// every table is part of a reference loop
		log.Warn("No root tables found, exporting everything", zap.Strings("tables", lib.Names()))
		for _, name := range lib.Names() {
			t, _ := lib.Table(name)
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func (j *Job) writeTable(lib *library.Library, t *nav.Table, written []string, log *zap.Logger) (string, error) {
	start := time.Now()

	origin := lib.Origin(t.Name())
	if j.Resolve {
		resolved, err := lib.Resolve(t.Name())
		if err != nil {
			return "", err
		}
		t = resolved
	}

	name, err := render.OutputName(t, j.Format, origin, j.NameTemplate, j.Transliterate)
	if err != nil {
		log.Warn("Unable to prepare output filename", zap.Error(err))
	}
	outputName := filepath.Join(j.Dst, name)
	for _, prev := range written {
		if prev == outputName {
			return "", fmt.Errorf("output file name collision: %s", outputName)
		}
	}
	for _, loaded := range lib.Names() {
		if filepath.Clean(lib.Origin(loaded)) == outputName {
			return "", fmt.Errorf("output file %s would replace source of table %q", outputName, loaded)
		}
	}

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !j.Overwrite {
			return "", fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Debug("Overwriting existing file", zap.String("file", outputName))
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, t, j.Format, j.Render); err != nil {
		return "", fmt.Errorf("unable to render: %w", err)
	}
	if err := os.WriteFile(outputName, buf.Bytes(), 0644); err != nil {
		return "", err
	}

	j.Report.Store("result/"+filepath.ToSlash(name), outputName)

	log.Info("Table exported", zap.String("table", t.Name()), zap.String("from", origin),
		zap.String("to", outputName), zap.Int("entries", nav.Count(t.Entries())), zap.Duration("elapsed", time.Since(start)))
	return outputName, nil
}
