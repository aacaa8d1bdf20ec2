package render

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"navtree/config"
	"navtree/nav"
)

// NameValues are available to output name template.
type NameValues struct {
	Context string
	// Name of the table.
	Name string
	// Format of the output, same as --to value.
	Format string
	// Source is base name of the file table was loaded from without extension.
	Source string
}

// OutputName returns relative path of output file for the table. Without
// template it is table name followed by format extension. Template may produce
// subdirectories separated by "/". Every path segment is cleaned and, if
// requested, transliterated. On template failure default name is returned
// along with the error.
func OutputName(t *nav.Table, format config.OutputFmt, src, tmpl string, transliterate bool) (string, error) {
	base := t.Name()
	if len(base) == 0 {
		base = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	defaultName := cleanSegment(base, transliterate) + format.Ext()

	if len(tmpl) == 0 {
		return defaultName, nil
	}

	expanded, err := expandTemplate(tmpl, NameValues{
		Context: string(config.OutputNameTemplateFieldName),
		Name:    t.Name(),
		Format:  format.String(),
		Source:  strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	})
	if err != nil {
		return defaultName, err
	}

	var segments []string
	for _, s := range strings.Split(filepath.ToSlash(expanded), "/") {
		if s = strings.TrimSpace(s); len(s) > 0 && s != "." && s != ".." {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return defaultName, nil
	}
	for i := range segments {
		segments[i] = cleanSegment(segments[i], transliterate)
	}
	segments[len(segments)-1] += format.Ext()
	return filepath.FromSlash(path.Join(segments...)), nil
}

func cleanSegment(segment string, transliterate bool) string {
	if transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}

func expandTemplate(field string, values NameValues) (string, error) {
	tmpl, err := template.New(values.Context).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", values.Context, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
