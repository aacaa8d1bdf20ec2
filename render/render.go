// Package render writes navigation tables in every supported output format.
package render

import (
	"fmt"
	"io"

	"navtree/config"
	"navtree/nav"
)

const defaultTitle = "Table of Contents"

// Options affect document formats (xhtml and ncx).
type Options struct {
	// Title of navigation document.
	Title string
}

func (o Options) title() string {
	if len(o.Title) == 0 {
		return defaultTitle
	}
	return o.Title
}

// Write renders table to w.
func Write(w io.Writer, t *nav.Table, format config.OutputFmt, opts Options) error {
	switch format {
	case config.OutputFmtJs:
		return nav.Write(w, t)
	case config.OutputFmtJson:
		return nav.EncodeJSON(w, t)
	case config.OutputFmtYaml:
		return nav.EncodeYAML(w, t)
	case config.OutputFmtTree:
		_, err := io.WriteString(w, Tree(t))
		return err
	case config.OutputFmtXhtml:
		_, err := XHTML(t, opts).WriteTo(w)
		return err
	case config.OutputFmtNcx:
		_, err := NCX(t, opts).WriteTo(w)
		return err
	}
	return fmt.Errorf("unsupported output format %d", format)
}
