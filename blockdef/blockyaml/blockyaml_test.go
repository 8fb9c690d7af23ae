package blockyaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnegrau/lineblock/blockdef"
)

func TestLoadNestingOne(t *testing.T) {
	doc := []byte(`
one:
  name: outer
  strict: true
  head:
    - kind: literal
      pattern: head
  body:
    - kind: literal
      pattern: body
  tail:
    - kind: literal
      pattern: tail
`)
	nesting, err := LoadNesting(doc)
	require.NoError(t, err)
	require.Equal(t, blockdef.KindOne, nesting.Kind)
	require.Len(t, nesting.Defs, 1)

	def := nesting.Defs[0]
	assert.Equal(t, "outer", def.Name())
	assert.True(t, def.Strict())
	assert.True(t, def.HasEndingCondition())
}

func TestLoadNestingChoiceWithPriority(t *testing.T) {
	doc := []byte(`
choice:
  - name: a
    priority: 1
    head:
      - kind: literal
        pattern: marker
    line_count: 1
  - name: b
    priority: 2
    head:
      - kind: literal
        pattern: marker
    line_count: 1
`)
	nesting, err := LoadNesting(doc)
	require.NoError(t, err)
	require.Equal(t, blockdef.KindChoice, nesting.Kind)
	require.Len(t, nesting.Defs, 2)
	assert.Equal(t, 1, nesting.Defs[0].Priority())
	assert.Equal(t, 2, nesting.Defs[1].Priority())
}

func TestLoadNestingEmptyIsNothing(t *testing.T) {
	nesting, err := LoadNesting([]byte(``))
	require.NoError(t, err)
	assert.Equal(t, blockdef.Nothing, nesting)
}

func TestLoadNestingUnknownMatcherKind(t *testing.T) {
	doc := []byte(`
one:
  name: outer
  head:
    - kind: bogus
`)
	_, err := LoadNesting(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestLoadNestingMissingPattern(t *testing.T) {
	doc := []byte(`
one:
  name: outer
  head:
    - kind: literal
      pattern: ""
`)
	_, err := LoadNesting(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "literal")
}

func TestLoadNestingMalformedYAML(t *testing.T) {
	_, err := LoadNesting([]byte("one: [this is not a mapping"))
	require.Error(t, err)
}

func TestLoadNestingWithDefaultsAppliesOmittedFields(t *testing.T) {
	doc := []byte(`
one:
  name: outer
  head:
    - kind: literal
      pattern: head
`)
	nesting, err := LoadNestingWithDefaults(doc, Defaults{Priority: 7, UsageLimit: 2, Strict: true})
	require.NoError(t, err)
	def := nesting.Defs[0]
	assert.Equal(t, 7, def.Priority())
	assert.True(t, def.Strict())
}

func TestLoadNestingWithDefaultsDoesNotOverrideExplicitStrict(t *testing.T) {
	doc := []byte(`
one:
  name: outer
  strict: false
  head:
    - kind: literal
      pattern: head
`)
	nesting, err := LoadNestingWithDefaults(doc, Defaults{Strict: true})
	require.NoError(t, err)
	assert.False(t, nesting.Defs[0].Strict())
}
