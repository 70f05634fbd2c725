package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/nooga/esparse/pkg/parser"
)

// parseFlags are the parser options shared by parse and repl.
type parseFlags struct {
	sourceType  string
	plugins     []string
	strict      bool
	startLine   int
	filename    string
	optionsFile string
}

func (f *parseFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.sourceType, "source-type", "script", "script, module or unambiguous")
	fs.StringArrayVarP(&f.plugins, "plugin", "p", nil, "enable a plugin: name or name:{json options} (repeatable)")
	fs.BoolVar(&f.strict, "strict", false, "parse in strict mode")
	fs.IntVar(&f.startLine, "start-line", 1, "line number of the first input line")
	fs.StringVar(&f.filename, "filename", "", "source file name recorded in node locations")
	fs.StringVar(&f.optionsFile, "options", "", "read options from a JSON file")
}

// options builds parser options: the JSON file first, then any flag the user
// set explicitly.
func (f *parseFlags) options(fs *pflag.FlagSet) (parser.Options, error) {
	opts := parser.DefaultOptions()
	if f.optionsFile != "" {
		data, err := os.ReadFile(f.optionsFile)
		if err != nil {
			return opts, err
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return opts, fmt.Errorf("%s: %w", f.optionsFile, err)
		}
		if opts, err = parser.OptionsFromMap(m); err != nil {
			return opts, err
		}
	}

	if f.optionsFile == "" || fs.Changed("source-type") {
		opts.SourceType = parser.SourceType(f.sourceType)
	}
	if f.optionsFile == "" || fs.Changed("start-line") {
		opts.StartLine = f.startLine
	}
	if fs.Changed("strict") {
		strict := f.strict
		opts.StrictMode = &strict
	}
	if fs.Changed("filename") {
		opts.SourceFilename = f.filename
	}
	for _, s := range f.plugins {
		spec, err := parser.ParsePluginSpec(s)
		if err != nil {
			return opts, err
		}
		opts.Plugins = append(opts.Plugins, spec)
	}
	return opts, nil
}
