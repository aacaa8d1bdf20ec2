package render

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"navtree/nav"
)

// navtreeNamespace seeds name based uids, same table always gets the same uid.
var navtreeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("navtree"))

// NCX builds NCX 2005-1 document. NCX requires every point to have content,
// so entries without target use the first target found below them and are
// dropped (children are lifted to their level) when there is none.
func NCX(t *nav.Table, opts Options) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	head := ncx.CreateElement("head")

	metaUID := head.CreateElement("meta")
	metaUID.CreateAttr("name", "dtb:uid")
	metaUID.CreateAttr("content", uuid.NewSHA1(navtreeNamespace, []byte(t.Name())).String())

	metaDepth := head.CreateElement("meta")
	metaDepth.CreateAttr("name", "dtb:depth")

	metaTotal := head.CreateElement("meta")
	metaTotal.CreateAttr("name", "dtb:totalPageCount")
	metaTotal.CreateAttr("content", "0")

	metaMax := head.CreateElement("meta")
	metaMax.CreateAttr("name", "dtb:maxPageNumber")
	metaMax.CreateAttr("content", "0")

	docTitle := ncx.CreateElement("docTitle")
	text := docTitle.CreateElement("text")
	text.SetText(opts.title())

	navMap := ncx.CreateElement("navMap")

	b := &ncxBuilder{ids: newIDGenerator("np-")}
	b.points(navMap, t.Entries(), 1)
	metaDepth.CreateAttr("content", strconv.Itoa(max(b.depth, 1)))

	doc.Indent(2)
	return doc
}

type ncxBuilder struct {
	ids       *idGenerator
	playOrder int
	depth     int
}

func (b *ncxBuilder) points(parent *etree.Element, entries []nav.Entry, depth int) {
	for _, e := range entries {
		src, ok := firstTarget(e)
		if !ok {
			b.points(parent, e.Children.Entries(), depth)
			continue
		}

		b.playOrder++
		b.depth = max(b.depth, depth)

		navPoint := parent.CreateElement("navPoint")
		navPoint.CreateAttr("id", b.ids.next(e.Title))
		navPoint.CreateAttr("playOrder", strconv.Itoa(b.playOrder))

		navLabel := navPoint.CreateElement("navLabel")
		labelText := navLabel.CreateElement("text")
		labelText.SetText(e.Title)

		navContent := navPoint.CreateElement("content")
		navContent.CreateAttr("src", src)

		b.points(navPoint, e.Children.Entries(), depth+1)
	}
}

// firstTarget returns entry target or, when it has none, first non-empty
// target among its inline descendants in document order.
func firstTarget(e nav.Entry) (string, bool) {
	if e.Target.IsSet() && len(e.Target.String()) > 0 {
		return e.Target.String(), true
	}
	var found string
	_ = nav.Walk(e.Children.Entries(), func(_ []int, c nav.Entry) error {
		if len(found) > 0 {
			return nav.SkipChildren
		}
		if c.Target.IsSet() && len(c.Target.String()) > 0 {
			found = c.Target.String()
			return nav.SkipChildren
		}
		return nil
	})
	return found, len(found) > 0
}
