// Package testsupport holds small assertion helpers shared by the engine
// packages' plain-testing test files, plus a golden-transcript diff helper
// for the end-to-end driver tests.
package testsupport

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/arnegrau/lineblock"
)

func fatalf(t *testing.T, message string, params ...any) {
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

// Assert fails the test with message if cond is false.
func Assert(t *testing.T, cond bool, message string, params ...any) {
	t.Helper()
	if !cond {
		fatalf(t, message, params...)
	}
}

// Expect fails the test reporting expected vs. got if cond is false.
func Expect(t *testing.T, cond bool, expected, got any) {
	t.Helper()
	if !cond {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

// ExpectErrorCode fails the test unless e is a *lineblock.Error with code
// expected.
func ExpectErrorCode(t *testing.T, expected int, e error) {
	t.Helper()
	if e != nil {
		if le, ok := e.(*lineblock.Error); ok && le.Code == expected {
			return
		}
	}
	fatalf(t, "expecting error code %d, got %v", expected, e)
}

// DiffLines fails the test with a unified diff if want and got differ,
// useful for asserting a parse run's captured-line transcript matches a
// golden sequence without a wall of per-line assertions.
func DiffLines(t *testing.T, want, got []string) {
	t.Helper()
	if strings.Join(want, "\n") == strings.Join(got, "\n") {
		return
	}

	diff := difflib.UnifiedDiff{
		A:        want,
		B:        got,
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		t.Fatalf("transcript mismatch (and failed to render diff: %v)", err)
	}
	t.Fatalf("transcript mismatch:\n%s", text)
}
