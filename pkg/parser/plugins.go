package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nooga/esparse/pkg/errors"
)

// PluginSpec names a plugin and its options.
type PluginSpec struct {
	Name    string
	Options map[string]any
}

// Plugins is the ordered plugin list of a parser configuration.
type Plugins []PluginSpec

// Has reports whether the named plugin is listed.
func (ps Plugins) Has(name string) bool {
	for _, p := range ps {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Option returns an option of the first listed plugin with that name.
func (ps Plugins) Option(plugin, key string) (any, bool) {
	for _, p := range ps {
		if p.Name == plugin {
			v, ok := p.Options[key]
			return v, ok
		}
	}
	return nil, false
}

// Names returns the distinct plugin names, sorted.
func (ps Plugins) Names() []string {
	seen := make(map[string]bool, len(ps))
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// PluginsFromNames is a shorthand for option-less plugins.
func PluginsFromNames(names ...string) Plugins {
	ps := make(Plugins, len(names))
	for i, n := range names {
		ps[i] = PluginSpec{Name: n}
	}
	return ps
}

// ParsePluginSpec reads the command line form of a plugin: `name` or
// `name:{"key": value}`.
func ParsePluginSpec(s string) (PluginSpec, error) {
	name, rawOpts, hasOpts := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return PluginSpec{}, &errors.ConfigError{Option: "plugins", Msg: "empty plugin name"}
	}
	spec := PluginSpec{Name: name}
	if hasOpts {
		if err := json.Unmarshal([]byte(rawOpts), &spec.Options); err != nil {
			return PluginSpec{}, &errors.ConfigError{Option: name, Msg: fmt.Sprintf("invalid options: %v", err)}
		}
	}
	return spec, nil
}

// pluginsFromList decodes the JSON form: each entry is a name or a
// [name, options] pair.
func pluginsFromList(list []any) (Plugins, error) {
	ps := make(Plugins, 0, len(list))
	for _, entry := range list {
		switch e := entry.(type) {
		case string:
			ps = append(ps, PluginSpec{Name: e})
		case []any:
			if len(e) == 0 || len(e) > 2 {
				return nil, &errors.ConfigError{Option: "plugins", Msg: "a plugin entry must be [name] or [name, options]"}
			}
			name, ok := e[0].(string)
			if !ok {
				return nil, &errors.ConfigError{Option: "plugins", Msg: "plugin name must be a string"}
			}
			spec := PluginSpec{Name: name}
			if len(e) == 2 {
				opts, ok := e[1].(map[string]any)
				if !ok {
					return nil, &errors.ConfigError{Option: name, Msg: "plugin options must be an object"}
				}
				spec.Options = opts
			}
			ps = append(ps, spec)
		default:
			return nil, &errors.ConfigError{Option: "plugins", Msg: fmt.Sprintf("unexpected plugin entry of type %T", entry)}
		}
	}
	return ps, nil
}

// --- Known plugins ---

// PluginInfo describes a plugin name the parser accepts.
type PluginInfo struct {
	Name        string
	Layer       bool // replaces grammar productions
	Builtin     bool // the syntax is always on; the name is accepted for compatibility
	Description string
}

var knownPlugins = []PluginInfo{
	{Name: "estree", Layer: true, Description: "ESTree node shapes"},
	{Name: "jsx", Layer: true, Description: "JSX markup"},
	{Name: "flow", Layer: true, Description: "Flow type annotations"},
	{Name: "typescript", Layer: true, Description: "TypeScript type annotations"},

	{Name: "decorators", Description: "decorators, current proposal"},
	{Name: "decorators-legacy", Description: "decorators, legacy proposal"},
	{Name: "doExpressions", Description: "do { } expressions"},
	{Name: "exportDefaultFrom", Description: "export v from \"mod\""},
	{Name: "flowComments", Description: "Flow annotations inside /*:: */ comments"},
	{Name: "functionBind", Description: "the :: bind operator"},
	{Name: "functionSent", Description: "function.sent"},
	{Name: "pipelineOperator", Description: "the |> operator"},
	{Name: "throwExpressions", Description: "throw as an expression"},

	{Name: "asyncGenerators", Builtin: true},
	{Name: "bigInt", Builtin: true},
	{Name: "classPrivateMethods", Builtin: true},
	{Name: "classPrivateProperties", Builtin: true},
	{Name: "classProperties", Builtin: true},
	{Name: "dynamicImport", Builtin: true},
	{Name: "exportNamespaceFrom", Builtin: true},
	{Name: "importMeta", Builtin: true},
	{Name: "logicalAssignment", Builtin: true},
	{Name: "nullishCoalescingOperator", Builtin: true},
	{Name: "numericSeparator", Builtin: true},
	{Name: "objectRestSpread", Builtin: true},
	{Name: "optionalCatchBinding", Builtin: true},
	{Name: "optionalChaining", Builtin: true},
}

var pluginIndex = func() map[string]PluginInfo {
	m := make(map[string]PluginInfo, len(knownPlugins))
	for _, p := range knownPlugins {
		m[p.Name] = p
	}
	return m
}()

// KnownPlugins lists every accepted plugin name.
func KnownPlugins() []PluginInfo {
	out := make([]PluginInfo, len(knownPlugins))
	copy(out, knownPlugins)
	return out
}

func isBuiltinPlugin(name string) bool {
	return pluginIndex[name].Builtin
}

// pipelineProposals lists the accepted values of pipelineOperator.proposal.
var pipelineProposals = []string{"minimal"}

// ValidatePlugins checks names, combinations and required options.
func ValidatePlugins(ps Plugins) error {
	for _, p := range ps {
		if _, ok := pluginIndex[p.Name]; !ok {
			return unknownPlugin(p.Name)
		}
	}
	if ps.Has("decorators") {
		if ps.Has("decorators-legacy") {
			return &errors.ConfigError{Option: "decorators", Msg: "Cannot use the decorators and decorators-legacy plugin together"}
		}
		v, ok := ps.Option("decorators", "decoratorsBeforeExport")
		if !ok || v == nil {
			return &errors.ConfigError{Option: "decorators", Msg: "The 'decorators' plugin requires a 'decoratorsBeforeExport' option, whose value must be a boolean. " +
				"If you want to use the legacy decorators proposal, you should use the 'decorators-legacy' plugin instead of 'decorators'."}
		}
		if _, isBool := v.(bool); !isBool {
			return &errors.ConfigError{Option: "decorators", Msg: "'decoratorsBeforeExport' must be a boolean."}
		}
	}
	if ps.Has("flow") && ps.Has("typescript") {
		return &errors.ConfigError{Option: "flow", Msg: "Cannot combine flow and typescript plugins."}
	}
	if ps.Has("flow") && ps.Has("decorators-legacy") {
		return &errors.ConfigError{Option: "flow", Msg: "Cannot combine flow and decorators-legacy plugins."}
	}
	if ps.Has("pipelineOperator") {
		v, _ := ps.Option("pipelineOperator", "proposal")
		s, _ := v.(string)
		valid := false
		for _, p := range pipelineProposals {
			valid = valid || s == p
		}
		if !valid {
			quoted := make([]string, len(pipelineProposals))
			for i, p := range pipelineProposals {
				quoted[i] = "'" + p + "'"
			}
			return &errors.ConfigError{Option: "pipelineOperator", Msg: "'pipelineOperator' requires 'proposal' option whose value should be one of: " + strings.Join(quoted, ", ")}
		}
	}
	return nil
}

func unknownPlugin(name string) error {
	msg := fmt.Sprintf("unknown plugin %q", name)
	if s := suggestPlugin(name); s != "" {
		msg += fmt.Sprintf(", did you mean %q?", s)
	}
	return &errors.ConfigError{Option: name, Msg: msg}
}

// suggestPlugin returns the known name closest to name, or "".
func suggestPlugin(name string) string {
	names := make([]string, len(knownPlugins))
	for i, p := range knownPlugins {
		names[i] = p.Name
	}
	if ranks := fuzzy.RankFindFold(name, names); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", len(name)/2+1
	for _, n := range names {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(n)); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}
