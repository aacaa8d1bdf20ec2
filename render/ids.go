package render

import (
	"strconv"

	"github.com/gosimple/slug"
)

// idGenerator makes unique element ids out of entry titles.
type idGenerator struct {
	prefix string
	used   map[string]int
}

func newIDGenerator(prefix string) *idGenerator {
	return &idGenerator{prefix: prefix, used: make(map[string]int)}
}

func (g *idGenerator) next(title string) string {
	base := slug.Make(title)
	if len(base) == 0 {
		base = "entry"
	}
	base = g.prefix + base
	g.used[base]++
	if n := g.used[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}
