package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"navtree/config"
	"navtree/library"
	"navtree/nav"
)

const driversScript = `var config_drivers =
[
    [ "USART", "config_drivers.html#usart", null ]
];
`

func writeSources(t *testing.T) string {
	t.Helper()
	sample, err := nav.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	script, err := nav.Marshal(sample)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	dir := t.TempDir()
	files := map[string][]byte{
		"config_pg.js":      script,
		"config_drivers.js": []byte(driversScript),
		"extra.yaml":        []byte("entries:\n  - title: Extra\n    target: extra.html\n"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return dir
}

func newTestJob(t *testing.T, src string, format config.OutputFmt) *Job {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return NewJob(cfg, nil, src, t.TempDir(), format)
}

func TestJob_Run(t *testing.T) {
	src := writeSources(t)
	job := newTestJob(t, src, config.OutputFmtJson)

	written, err := job.Run(context.Background(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{filepath.Join(job.Dst, "config_pg.json"), filepath.Join(job.Dst, "extra.json")}
	if len(written) != len(want) {
		t.Fatalf("written %v, want %v", written, want)
	}
	for i := range want {
		if written[i] != want[i] {
			t.Errorf("written[%d] = %s, want %s", i, written[i], want[i])
		}
	}

	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got, err := nav.DecodeJSON(data, want[0])
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	sample, _ := nav.Load()
	if !got.Equal(sample) {
		t.Error("exported table differs from source")
	}

	t.Run("existing output", func(t *testing.T) {
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("Run() error = %v, want already exists", err)
		}
		job.Overwrite = true
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); err != nil {
			t.Errorf("Run() with overwrite error = %v", err)
		}
	})
}

func TestJob_Resolve(t *testing.T) {
	src := writeSources(t)
	job := newTestJob(t, src, config.OutputFmtJs)
	job.Resolve = true
	job.Root = "config_pg"

	written, err := job.Run(context.Background(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("written %v", written)
	}
	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	table, err := nav.Parse(data, written[0])
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	e, _ := table.Lookup(6, 0)
	if e.Title != "USART" {
		t.Errorf("reference not resolved, got %q", e.Title)
	}
}

func TestJob_Errors(t *testing.T) {
	src := writeSources(t)

	t.Run("unknown root", func(t *testing.T) {
		job := newTestJob(t, src, config.OutputFmtJs)
		job.Root = "missing"
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); !errors.Is(err, library.ErrUnresolved) {
			t.Errorf("Run() error = %v, want ErrUnresolved", err)
		}
	})

	t.Run("unresolved reference", func(t *testing.T) {
		job := newTestJob(t, filepath.Join(src, "config_pg.js"), config.OutputFmtJs)
		job.Resolve = true
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); !errors.Is(err, library.ErrUnresolved) {
			t.Errorf("Run() error = %v, want ErrUnresolved", err)
		}
		job.Source.Lenient = true
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); err != nil {
			t.Errorf("lenient Run() error = %v", err)
		}
	})

	t.Run("name collision", func(t *testing.T) {
		job := newTestJob(t, src, config.OutputFmtTree)
		job.NameTemplate = "toc"
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); err == nil || !strings.Contains(err.Error(), "collision") {
			t.Errorf("Run() error = %v, want collision", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		job := newTestJob(t, src, config.OutputFmtJs)
		if _, err := job.Run(ctx, zaptest.NewLogger(t)); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestJob_DestinationIsSource(t *testing.T) {
	src := writeSources(t)

	t.Run("sources are not replaced", func(t *testing.T) {
		before, err := os.ReadFile(filepath.Join(src, "config_pg.js"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		job := newTestJob(t, src, config.OutputFmtJs)
		job.Dst = src
		job.Overwrite = true
		job.Root = "config_pg"
		if _, err := job.Run(context.Background(), zaptest.NewLogger(t)); err == nil || !strings.Contains(err.Error(), "replace source") {
			t.Errorf("Run() error = %v, want replace source", err)
		}
		after, err := os.ReadFile(filepath.Join(src, "config_pg.js"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !bytes.Equal(before, after) {
			t.Error("source file was changed")
		}
	})

	t.Run("own output is not loaded", func(t *testing.T) {
		job := newTestJob(t, src, config.OutputFmtJson)
		job.Dst = src

		first, err := job.Run(context.Background(), zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		want := []string{filepath.Join(src, "config_pg.json"), filepath.Join(src, "extra.json")}
		if !slices.Equal(first, want) {
			t.Fatalf("written %v, want %v", first, want)
		}
		for _, name := range want {
			if !job.Produced(name) {
				t.Errorf("Produced(%s) = false", name)
			}
		}

		// extra.json would be picked before extra.yaml and replaced by itself
		job.Overwrite = true
		second, err := job.Run(context.Background(), zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("second Run() error = %v", err)
		}
		if !slices.Equal(second, want) {
			t.Errorf("second run written %v, want %v", second, want)
		}
	})
}

func TestJob_Template(t *testing.T) {
	src := writeSources(t)
	job := newTestJob(t, src, config.OutputFmtXhtml)
	job.Root = "config_pg"
	job.NameTemplate = "{{ .Format }}/{{ .Source | upper }}"

	written, err := job.Run(context.Background(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := filepath.Join(job.Dst, "xhtml", "CONFIG_PG.xhtml"); len(written) != 1 || written[0] != want {
		t.Errorf("written %v, want %s", written, want)
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		p, dir string
		want   bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b/c.js", "/a/b", true},
		{"/a/bc", "/a/b", false},
		{"/a", "/a/b", false},
		{"/a/..b/c", "/a", true},
	}
	for _, tt := range tests {
		if got := within(filepath.FromSlash(tt.p), filepath.FromSlash(tt.dir)); got != tt.want {
			t.Errorf("within(%s, %s) = %v, want %v", tt.p, tt.dir, got, tt.want)
		}
	}
}
