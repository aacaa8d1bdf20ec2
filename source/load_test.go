package source

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"navtree/library"
	"navtree/nav"
)

const navtreeData = `/*
@licstart  The following is the entire license notice for the JavaScript code in this file.
@licend  The above is the entire license notice for the JavaScript code in this file
*/
var NAVTREE =
[
  [ "CMSIS", "index.html", [
    [ "Configuration", "config_pg.html", "config_pg" ]
  ] ]
];

var NAVTREEINDEX =
[
"index.html"
];

var SYNCONMSG = 'click to disable panel synchronisation';
var SYNCOFFMSG = 'click to enable panel synchronisation';
`

const driversData = `var config_drivers =
[
    [ "USART", "config_drivers.html#usart", null ],
    [ "SPI", "config_drivers.html#spi", null ]
];
`

const extraData = `entries:
  - title: Extra
    target: extra.html
`

func docFiles(t *testing.T) map[string]string {
	t.Helper()
	sample, err := nav.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	script, err := nav.Marshal(sample)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return map[string]string{
		"html/navtreedata.js":    navtreeData,
		"html/config_pg.js":      string(script),
		"html/config_drivers.js": driversData,
		"html/navtreeindex0.js":  `var NAVTREEINDEX0 = { "index.html": [0] };`,
		"html/search/all_0.js":   `var searchData = [ ['a', ['a.html']] ];`,
		"html/jquery.js":         `(function(){ return 1; })();`,
		"html/broken.js":         `var broken = [ [ "A" ] ];`,
		"html/extra.yaml":        extraData,
		"html/readme.txt":        "not a table",
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return dir
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "docs.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip Create() error = %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("zip Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}
	return zipPath
}

func defaultOptions() Options {
	return Options{
		Include: []string{"*.js", "*.json", "*.yaml", "*.yml"},
		Exclude: []string{"**/search", "**/navtreeindex*.js"},
	}
}

func rootNames(lib *library.Library) string {
	var names []string
	for _, r := range lib.Roots() {
		names = append(names, r.Name())
	}
	return fmt.Sprint(names)
}

func TestLoad_Directory(t *testing.T) {
	dir := writeTree(t, docFiles(t))

	lib, err := Load(context.Background(), dir, defaultOptions(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fmt.Sprint(lib.Names()); got != "[NAVTREE config_drivers config_pg extra]" {
		t.Errorf("Names() = %s", got)
	}
	if got := rootNames(lib); got != "[NAVTREE extra]" {
		t.Errorf("Roots() = %s", got)
	}

	sample, _ := nav.Load()
	if got, _ := lib.Table("config_pg"); !got.Equal(sample) {
		t.Error("config_pg differs from embedded table")
	}
	if got := lib.Origin("config_pg"); got != filepath.Join(dir, "html", "config_pg.js") {
		t.Errorf("Origin() = %s", got)
	}

	resolved, err := lib.Resolve("NAVTREE")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// 2 + 15 entries of config_pg + 2 drivers
	if n := nav.Count(resolved.Entries()); n != 19 {
		t.Errorf("Count() = %d, want 19", n)
	}
}

func TestLoad_Archive(t *testing.T) {
	zipPath := writeZip(t, docFiles(t))

	tests := []struct {
		name  string
		src   string
		names string
	}{
		{"whole archive", zipPath, "[NAVTREE config_drivers config_pg extra]"},
		{"directory in archive", filepath.Join(zipPath, "html"), "[NAVTREE config_drivers config_pg extra]"},
		{"file in archive", filepath.Join(zipPath, "html", "config_drivers.js"), "[config_drivers]"},
		{"excluded file named explicitly", filepath.Join(zipPath, "html", "navtreeindex0.js"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := Load(context.Background(), tt.src, defaultOptions(), zaptest.NewLogger(t))
			if len(tt.names) == 0 {
				if err == nil {
					t.Fatal("Load() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := fmt.Sprint(lib.Names()); got != tt.names {
				t.Errorf("Names() = %s, want %s", got, tt.names)
			}
		})
	}

	t.Run("broken file in archive", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(zipPath, "html", "broken.js"), defaultOptions(), zaptest.NewLogger(t))
		if !errors.Is(err, nav.ErrMalformedData) {
			t.Errorf("Load() error = %v, want ErrMalformedData", err)
		}
	})

	t.Run("missing path in archive", func(t *testing.T) {
		if _, err := Load(context.Background(), filepath.Join(zipPath, "latex"), defaultOptions(), zaptest.NewLogger(t)); err == nil {
			t.Error("Load() expected error")
		}
	})
}

func TestLoad_SingleFile(t *testing.T) {
	dir := writeTree(t, docFiles(t))
	html := filepath.Join(dir, "html")

	t.Run("script", func(t *testing.T) {
		lib, err := Load(context.Background(), filepath.Join(html, "navtreedata.js"), defaultOptions(), zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got := fmt.Sprint(lib.Names()); got != "[NAVTREE]" {
			t.Errorf("Names() = %s", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		lib, err := Load(context.Background(), filepath.Join(html, "extra.yaml"), defaultOptions(), zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if table, ok := lib.Table("extra"); !ok || table.Len() != 1 {
			t.Error("table named after file is missing")
		}
	})

	errorTests := []struct {
		name string
		file string
		want error
	}{
		{"malformed", "broken.js", nav.ErrMalformedData},
		{"unrelated script", "jquery.js", errNotTable},
		{"unknown format", "readme.txt", errUnknownFormat},
		{"no tables", "navtreeindex0.js", nil},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := Load(context.Background(), filepath.Join(html, tt.file), defaultOptions(), zaptest.NewLogger(t))
			if err == nil || lib != nil {
				t.Fatalf("Load() = %v, %v, want error", lib, err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("file with tail", func(t *testing.T) {
		if _, err := Load(context.Background(), filepath.Join(html, "extra.yaml", "more"), defaultOptions(), zaptest.NewLogger(t)); err == nil {
			t.Error("Load() expected error")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := Load(context.Background(), filepath.Join(dir, "nothing.js"), defaultOptions(), zaptest.NewLogger(t)); err == nil {
			t.Error("Load() expected error")
		}
	})
}

func TestLoad_Patterns(t *testing.T) {
	dir := writeTree(t, docFiles(t))

	opts := defaultOptions()
	opts.Include = []string{"config_*.js"}
	opts.Exclude = append(opts.Exclude, "html/config_drivers.js")

	lib, err := Load(context.Background(), dir, opts, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fmt.Sprint(lib.Names()); got != "[config_pg]" {
		t.Errorf("Names() = %s", got)
	}

	opts = defaultOptions()
	opts.Skip = []string{filepath.Join(dir, "html", "extra.yaml"), filepath.Join(dir, "html", ".", "config_drivers.js")}
	lib, err = Load(context.Background(), dir, opts, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fmt.Sprint(lib.Names()); got != "[NAVTREE config_pg]" {
		t.Errorf("Names() with skipped files = %s", got)
	}

	opts.Exclude = []string{"["}
	if _, err := Load(context.Background(), dir, opts, zaptest.NewLogger(t)); err == nil {
		t.Error("Load() expected error for bad pattern")
	}
}

func TestLoad_Charset(t *testing.T) {
	text, err := charmap.Windows1251.NewEncoder().String(`var legacy = [ [ "Настройка", "setup.html", null ] ];`)
	if err != nil {
		t.Fatalf("unable to encode: %v", err)
	}
	dir := writeTree(t, map[string]string{"legacy.js": text})

	opts := defaultOptions()
	if _, err := Load(context.Background(), dir, opts, zaptest.NewLogger(t)); err == nil {
		t.Error("Load() expected error without charset")
	}

	opts.Charset = "windows-1251"
	lib, err := Load(context.Background(), dir, opts, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	table, _ := lib.Table("legacy")
	if e, ok := table.Lookup(0); !ok || e.Title != "Настройка" {
		t.Errorf("unexpected entry %+v", e)
	}

	opts.Charset = "no-such-charset"
	if _, err := Load(context.Background(), dir, opts, zaptest.NewLogger(t)); err == nil {
		t.Error("Load() expected error for unknown charset")
	}
}

func TestLoad_Canceled(t *testing.T) {
	dir := writeTree(t, docFiles(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, dir, defaultOptions(), zaptest.NewLogger(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestDecode_Names(t *testing.T) {
	tables, err := Decode([]byte(`[ [ "A", null, null ] ]`), "dir/bare.js")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(tables) != 1 || tables[0].Name() != "bare" {
		t.Errorf("unexpected tables %v", tables)
	}

	// file names are not always identifiers, output must stay loadable
	tables, err = Decode([]byte(`{"entries": [{"title": "A", "target": "a.html"}]}`), "docs/my-nav.json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(tables) != 1 || tables[0].Name() != "my_nav" {
		t.Fatalf("unexpected tables %v", tables)
	}
	script, err := nav.Marshal(tables[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if again, err := nav.Parse(script, "my_nav.js"); err != nil || !again.Equal(tables[0]) {
		t.Errorf("Parse(Marshal()) = %v, %v\n%s", again, err, script)
	}

	tables, err = Decode([]byte(`{"name": "named", "entries": []}`), "other.JSON")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if tables[0].Name() != "named" {
		t.Errorf("Name() = %s", tables[0].Name())
	}
}
