package parser

import (
	"fmt"

	"github.com/nooga/esparse/pkg/errors"
)

// SourceType selects the goal symbol of the input.
type SourceType string

const (
	SourceScript      SourceType = "script"
	SourceModule      SourceType = "module"
	SourceUnambiguous SourceType = "unambiguous" // module if the input uses import/export
)

// defaultMaxDepth bounds statement and expression recursion.
const defaultMaxDepth = 1500

// Options configures a parse. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	SourceType                  SourceType
	SourceFilename              string
	StartLine                   int
	AllowReturnOutsideFunction  bool
	AllowImportExportEverywhere bool
	Plugins                     Plugins

	// StrictMode forces strict mode on or off; nil follows SourceType.
	StrictMode *bool

	// ValidateRegExp compiles regular expression literals while tokenizing.
	ValidateRegExp bool

	// MaxDepth is the recursion limit; 0 means the default.
	MaxDepth int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		SourceType: SourceScript,
		StartLine:  1,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return defaultMaxDepth
}

// strict reports whether the input starts in strict mode.
func (o Options) strict() bool {
	if o.StrictMode != nil {
		return *o.StrictMode
	}
	return o.SourceType == SourceModule
}

// validate checks the option values that do not involve plugins.
func (o Options) validate() error {
	switch o.SourceType {
	case SourceScript, SourceModule, SourceUnambiguous:
	default:
		return &errors.ConfigError{Option: "sourceType", Msg: fmt.Sprintf("unknown source type %q", o.SourceType)}
	}
	if o.StartLine < 1 {
		return &errors.ConfigError{Option: "startLine", Msg: "must be at least 1"}
	}
	return ValidatePlugins(o.Plugins)
}

// OptionsFromMap builds options from a decoded JSON object such as
// {"sourceType": "module", "plugins": ["jsx", ["decorators", {...}]]}.
// Unknown keys are ignored; recognized keys of the wrong type are a
// *errors.ConfigError.
func OptionsFromMap(m map[string]any) (Options, error) {
	o := DefaultOptions()
	for key, raw := range m {
		switch key {
		case "sourceType":
			s, ok := raw.(string)
			if !ok {
				return o, typeError(key, "a string", raw)
			}
			o.SourceType = SourceType(s)
		case "sourceFilename":
			s, ok := raw.(string)
			if !ok {
				return o, typeError(key, "a string", raw)
			}
			o.SourceFilename = s
		case "startLine":
			f, ok := raw.(float64)
			if !ok {
				return o, typeError(key, "a number", raw)
			}
			o.StartLine = int(f)
		case "allowReturnOutsideFunction", "allowImportExportEverywhere", "strictMode", "validateRegExp":
			if raw == nil && key == "strictMode" {
				o.StrictMode = nil
				continue
			}
			b, ok := raw.(bool)
			if !ok {
				return o, typeError(key, "a boolean", raw)
			}
			switch key {
			case "allowReturnOutsideFunction":
				o.AllowReturnOutsideFunction = b
			case "allowImportExportEverywhere":
				o.AllowImportExportEverywhere = b
			case "strictMode":
				o.StrictMode = &b
			case "validateRegExp":
				o.ValidateRegExp = b
			}
		case "maxDepth":
			f, ok := raw.(float64)
			if !ok {
				return o, typeError(key, "a number", raw)
			}
			o.MaxDepth = int(f)
		case "plugins":
			list, ok := raw.([]any)
			if !ok {
				return o, typeError(key, "an array", raw)
			}
			ps, err := pluginsFromList(list)
			if err != nil {
				return o, err
			}
			o.Plugins = ps
		default:
			logger.Debugf("ignoring unknown option %q", key)
		}
	}
	return o, o.validate()
}

func typeError(key, want string, got any) error {
	return &errors.ConfigError{Option: key, Msg: fmt.Sprintf("must be %s, got %T", want, got)}
}
