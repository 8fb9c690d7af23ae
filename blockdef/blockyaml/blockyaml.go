// Package blockyaml loads a Nesting tree of block definitions from a YAML
// document, the declarative-authoring surface used by cmd/lineblock and the
// watch loop: instead of building BlockDefs by hand in Go, a caller can
// describe the same head/body/tail/nested shape as data and load it here.
package blockyaml

import (
	"gopkg.in/yaml.v3"

	"github.com/arnegrau/lineblock"
	"github.com/arnegrau/lineblock/blockdef"
	"github.com/arnegrau/lineblock/matcher"
)

// Parse error codes, in their own small band past blockdef's so a caller
// can tell a document-level failure from a BlockDef construction failure
// without string matching.
const (
	YAMLSyntaxError = lineblock.DefinitionErrors + 50 + iota
	UnknownMatcherKindError
	MissingPatternError
)

func yamlSyntaxError(err error) error {
	return lineblock.FormatError(YAMLSyntaxError, "invalid document: %v", err)
}

func unknownMatcherKindError(kind string) error {
	return lineblock.FormatError(UnknownMatcherKindError, "unknown matcher kind %q", kind)
}

func missingPatternError(kind string) error {
	return lineblock.FormatError(MissingPatternError, "matcher kind %q requires a non-empty pattern", kind)
}

// matcherDoc is the YAML shape of one matcher entry, e.g.:
//
//	- kind: pattern
//	  pattern: '^<<\s*head'
//	- kind: literal
//	  pattern: body
//	- kind: lineno
//	  pattern: "3,7-9"
//	  global: true
//	- kind: all_others
type matcherDoc struct {
	Kind    string `yaml:"kind"`
	Pattern string `yaml:"pattern"`
	Global  bool   `yaml:"global"`
}

// blockDoc is the YAML shape of one block definition. Strict is a pointer
// so a document that omits it can be told apart from one that explicitly
// sets "strict: false": only an omitted field falls back to
// Defaults.Strict, while an explicit value is kept as written.
type blockDoc struct {
	Name       string       `yaml:"name"`
	Head       []matcherDoc `yaml:"head"`
	Body       []matcherDoc `yaml:"body"`
	Tail       []matcherDoc `yaml:"tail"`
	LineCount  int          `yaml:"line_count"`
	UsageLimit int          `yaml:"usage_limit"`
	Strict     *bool        `yaml:"strict"`
	Priority   int          `yaml:"priority"`
	Nested     *nestingDoc  `yaml:"nested"`
}

// Defaults supplies the fallbacks applied to any block whose document
// leaves usage_limit, priority, or strict unset, typically loaded from the
// CLI's internal/config.RunConfig.
type Defaults struct {
	Priority   int
	UsageLimit int
	Strict     bool
}

// nestingDoc is the YAML shape of a nested spec: exactly one of One,
// Sequence, or Choice should be set.
type nestingDoc struct {
	One      *blockDoc   `yaml:"one"`
	Sequence []*blockDoc `yaml:"sequence"`
	Choice   []*blockDoc `yaml:"choice"`
}

// LoadNesting parses a YAML document (the top-level value is itself a
// nestingDoc shape) into a blockdef.Nesting tree ready to hand to
// driver.ParseStream/ParseFile, applying no configured defaults.
func LoadNesting(data []byte) (blockdef.Nesting, error) {
	return LoadNestingWithDefaults(data, Defaults{})
}

// LoadNestingWithDefaults is like LoadNesting, falling back to defaults
// for any block whose document omits usage_limit, priority, or strict.
func LoadNestingWithDefaults(data []byte, defaults Defaults) (blockdef.Nesting, error) {
	var doc nestingDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return blockdef.Nothing, yamlSyntaxError(err)
	}
	return buildNesting(&doc, defaults)
}

func buildNesting(doc *nestingDoc, defaults Defaults) (blockdef.Nesting, error) {
	if doc == nil {
		return blockdef.Nothing, nil
	}

	switch {
	case doc.One != nil:
		child, err := buildBlock(doc.One, defaults)
		if err != nil {
			return blockdef.Nothing, err
		}
		return blockdef.NestOne(child), nil

	case len(doc.Sequence) > 0:
		children, err := buildBlocks(doc.Sequence, defaults)
		if err != nil {
			return blockdef.Nothing, err
		}
		return blockdef.NestSequence(children...), nil

	case len(doc.Choice) > 0:
		children, err := buildBlocks(doc.Choice, defaults)
		if err != nil {
			return blockdef.Nothing, err
		}
		return blockdef.NestChoice(children...), nil

	default:
		return blockdef.Nothing, nil
	}
}

func buildBlocks(docs []*blockDoc, defaults Defaults) ([]*blockdef.BlockDef, error) {
	out := make([]*blockdef.BlockDef, 0, len(docs))
	for _, d := range docs {
		b, err := buildBlock(d, defaults)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func buildBlock(doc *blockDoc, defaults Defaults) (*blockdef.BlockDef, error) {
	head, err := buildMatchers(doc.Head)
	if err != nil {
		return nil, err
	}
	body, err := buildMatchers(doc.Body)
	if err != nil {
		return nil, err
	}
	tail, err := buildMatchers(doc.Tail)
	if err != nil {
		return nil, err
	}
	nested, err := buildNesting(doc.Nested, defaults)
	if err != nil {
		return nil, err
	}

	priority := doc.Priority
	if priority == 0 {
		priority = defaults.Priority
	}
	usageLimit := doc.UsageLimit
	if usageLimit == 0 {
		usageLimit = defaults.UsageLimit
	}
	strict := defaults.Strict
	if doc.Strict != nil {
		strict = *doc.Strict
	}

	return blockdef.New(blockdef.Params{
		Name:       doc.Name,
		Head:       head,
		Body:       body,
		Tail:       tail,
		LineCount:  doc.LineCount,
		UsageLimit: usageLimit,
		Strict:     strict,
		Priority:   priority,
		Nested:     nested,
	})
}

func buildMatchers(docs []matcherDoc) ([]matcher.Matcher, error) {
	out := make([]matcher.Matcher, 0, len(docs))
	for _, d := range docs {
		m, err := buildMatcher(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func buildMatcher(doc matcherDoc) (matcher.Matcher, error) {
	switch doc.Kind {
	case "pattern":
		if doc.Pattern == "" {
			return nil, missingPatternError(doc.Kind)
		}
		return matcher.NewPattern(doc.Kind, doc.Pattern, nil)
	case "literal":
		if doc.Pattern == "" {
			return nil, missingPatternError(doc.Kind)
		}
		return matcher.NewLiteral(doc.Kind, doc.Pattern, nil), nil
	case "lineno":
		return matcher.NewLineNo(doc.Kind, doc.Pattern, doc.Global, nil), nil
	case "all_others":
		return matcher.NewAllOthers(doc.Kind, nil), nil
	default:
		return nil, unknownMatcherKindError(doc.Kind)
	}
}
