package render

import (
	"github.com/beevik/etree"

	"navtree/nav"
)

// XHTML builds EPUB 3 navigation document. Entries without target become
// spans, references which were not resolved are kept in data-navtree-ref
// attribute.
func XHTML(t *nav.Table, opts Options) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")

	head := html.CreateElement("head")
	title := head.CreateElement("title")
	title.SetText(opts.title())

	body := html.CreateElement("body")

	navEl := body.CreateElement("nav")
	navEl.CreateAttr("epub:type", "toc")
	navEl.CreateAttr("id", "toc")

	h1 := navEl.CreateElement("h1")
	h1.SetText(opts.title())

	if t.Len() > 0 {
		buildNavOL(navEl, t.Entries(), newIDGenerator("nav-"))
	}

	doc.Indent(2)
	return doc
}

func buildNavOL(parent *etree.Element, entries []nav.Entry, ids *idGenerator) {
	ol := parent.CreateElement("ol")
	for _, e := range entries {
		li := ol.CreateElement("li")
		li.CreateAttr("id", ids.next(e.Title))

		var label *etree.Element
		if e.Target.IsSet() {
			label = li.CreateElement("a")
			label.CreateAttr("href", e.Target.String())
		} else {
			label = li.CreateElement("span")
		}
		label.SetText(e.Title)

		switch e.Children.Kind() {
		case nav.ChildrenInline:
			if e.Children.Len() > 0 {
				buildNavOL(li, e.Children.Entries(), ids)
			}
		case nav.ChildrenRef:
			li.CreateAttr("data-navtree-ref", e.Children.Ref())
		}
	}
}
