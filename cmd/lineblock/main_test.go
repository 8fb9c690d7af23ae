package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresFlags(t *testing.T) {
	defPath, inPath = "", ""
	root := newRootCmd()
	root.SetArgs([]string{"run"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--def")
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	defFile := filepath.Join(dir, "def.yaml")
	inFile := filepath.Join(dir, "in.txt")

	require.NoError(t, os.WriteFile(defFile, []byte(`
one:
  name: marker
  head:
    - kind: literal
      pattern: marker
  line_count: 1
`), 0o644))
	require.NoError(t, os.WriteFile(inFile, []byte("marker\n"), 0o644))

	defPath, inPath, verbose, explain = defFile, inFile, false, false
	root := newRootCmd()
	root.SetArgs([]string{"run", "--def", defFile, "--in", inFile})
	require.NoError(t, root.Execute())
}
