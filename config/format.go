package config

//go:generate go tool go-enum --names --marshal

// Specification of requested output type.
// ENUM(js, json, yaml, tree, xhtml, ncx)
type OutputFmt int

// Ext returns file extension used for the format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtJs:
		return ".js"
	case OutputFmtJson:
		return ".json"
	case OutputFmtYaml:
		return ".yaml"
	case OutputFmtTree:
		return ".txt"
	case OutputFmtXhtml:
		return ".xhtml"
	case OutputFmtNcx:
		return ".ncx"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
