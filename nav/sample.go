package nav

import _ "embed"

// SampleName is the name of the embedded table.
const SampleName = "config_pg"

//go:embed data/config_pg.js
var sampleScript []byte

// Load returns navigation table of the "Create a project" help page exactly
// as authored. It fails only if embedded data is malformed.
func Load() (*Table, error) {
	return Parse(sampleScript, SampleName+".js")
}
