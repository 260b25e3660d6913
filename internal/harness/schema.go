package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// validateScenarioYAML unifies the YAML document with the embedded scenario
// schema and rejects documents that do not conform, before any decoding
// happens. Schema and document are built in the same context: cue values
// from different contexts cannot be unified.
func validateScenarioYAML(filename string, data []byte) error {
	cctx := cuecontext.New()

	root := cctx.CompileString(schemaSource)
	if err := root.Err(); err != nil {
		return fmt.Errorf("harness: compile scenario schema: %w", err)
	}
	schema := root.LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("harness: scenario schema missing #Scenario: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("harness: parse scenario %s: %w", filename, err)
	}
	doc := cctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("harness: build scenario %s: %w", filename, err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("harness: scenario %s does not match schema: %w", filename, err)
	}
	return nil
}
