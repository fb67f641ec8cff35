package calque

import (
	"github.com/calque-dev/calque/pipeline"
	"github.com/calque-dev/calque/translate"
)

// runOptions holds the fluent configuration accumulated before a
// terminal operation.
type runOptions struct {
	codecName  string
	translator translate.Translator
	config     pipeline.Config
}

// defaultRunOptions returns the default run configuration.
func defaultRunOptions() runOptions {
	return runOptions{
		codecName: "stext",
		config:    pipeline.DefaultConfig(),
	}
}
