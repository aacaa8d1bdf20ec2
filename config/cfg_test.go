package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.NavTitle != "Table of Contents" {
		t.Errorf("NavTitle = %q", cfg.Document.NavTitle)
	}
	if cfg.Document.OutputNameTemplate != "" {
		t.Errorf("OutputNameTemplate = %q, want empty", cfg.Document.OutputNameTemplate)
	}
	if cfg.Document.ResolveReferences {
		t.Error("ResolveReferences should be off by default")
	}
	if !slices.Contains(cfg.Source.Include, "*.js") {
		t.Errorf("Include = %v, want *.js present", cfg.Source.Include)
	}
	if !slices.Contains(cfg.Source.Exclude, "**/search") {
		t.Errorf("Exclude = %v, want search present", cfg.Source.Exclude)
	}
	if cfg.Check.MaxDepth != 0 || !cfg.Check.Anchors || !cfg.Check.DuplicateTargets {
		t.Errorf("unexpected check defaults: %+v", cfg.Check)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("file level = %q, want none", cfg.Logging.FileLogger.Level)
	}
	if !strings.HasSuffix(cfg.Reporting.Destination, "navtree-report.zip") {
		t.Errorf("report destination = %q", cfg.Reporting.Destination)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeConfig(t, `version: 1
document:
  output_name_template: "{{ .Name | upper }}"
  resolve_references: true
source:
  include: ["*.js"]
  exclude: []
  charset: windows-1251
check:
  max_depth: 4
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(tmp, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(tmp, "report.zip")+`
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	// template fields must not be expanded by configuration processing
	if cfg.Document.OutputNameTemplate != "{{ .Name | upper }}" {
		t.Errorf("OutputNameTemplate = %q", cfg.Document.OutputNameTemplate)
	}
	if !cfg.Document.ResolveReferences {
		t.Error("Expected ResolveReferences to be true")
	}
	if cfg.Document.NavTitle != "Table of Contents" {
		t.Errorf("NavTitle should keep default, got %q", cfg.Document.NavTitle)
	}
	if len(cfg.Source.Include) != 1 || len(cfg.Source.Exclude) != 0 {
		t.Errorf("patterns not overwritten: %v %v", cfg.Source.Include, cfg.Source.Exclude)
	}
	if cfg.Source.Charset != "windows-1251" {
		t.Errorf("Charset = %q", cfg.Source.Charset)
	}
	if cfg.Check.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", cfg.Check.MaxDepth)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("file mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not exist error, got %v", err)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid yaml",
			content: `version: 1
document:
  nav_title: x
  invalid indent
`,
		},
		{
			name: "unknown field",
			content: `version: 1
unknown_field: value
`,
		},
		{
			name:    "invalid version",
			content: "version: 2\n",
		},
		{
			name: "negative depth",
			content: `version: 1
check:
  max_depth: -1
`,
		},
		{
			name: "empty include",
			content: `version: 1
source:
  include: []
`,
		},
		{
			name: "bad log level",
			content: `version: 1
logging:
  console:
    level: loud
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.OutputNameTemplate = "{{ .Name }}-nav"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
	if cfg2.Document.OutputNameTemplate != cfg.Document.OutputNameTemplate {
		t.Errorf("OutputNameTemplate = %q, want %q", cfg2.Document.OutputNameTemplate, cfg.Document.OutputNameTemplate)
	}
}

func TestOutputFmt(t *testing.T) {
	tests := []struct {
		fmt  OutputFmt
		name string
		ext  string
	}{
		{OutputFmtJs, "js", ".js"},
		{OutputFmtJson, "json", ".json"},
		{OutputFmtYaml, "yaml", ".yaml"},
		{OutputFmtTree, "tree", ".txt"},
		{OutputFmtXhtml, "xhtml", ".xhtml"},
		{OutputFmtNcx, "ncx", ".ncx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fmt.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.fmt.Ext(); got != tt.ext {
				t.Errorf("Ext() = %q, want %q", got, tt.ext)
			}
			parsed, err := ParseOutputFmt(tt.name)
			if err != nil || parsed != tt.fmt {
				t.Errorf("ParseOutputFmt(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}

	if _, err := ParseOutputFmt("epub"); !errors.Is(err, ErrInvalidOutputFmt) {
		t.Errorf("ParseOutputFmt(epub) error = %v, want ErrInvalidOutputFmt", err)
	}
	if len(OutputFmtNames()) != len(tests) {
		t.Errorf("OutputFmtNames() = %v", OutputFmtNames())
	}
}
