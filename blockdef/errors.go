package blockdef

import (
	"github.com/arnegrau/lineblock"
)

// Construction-time error codes, within lineblock.DefinitionErrors' band.
const (
	ContradictoryTerminationError = lineblock.DefinitionErrors + iota
	AllOthersNotFinalError
	AllOthersNeedsHeadError
	AllOthersOnlyInBodyError
	MalformedNestingError
)

func contradictoryTerminationError(name string) *lineblock.Error {
	return lineblock.FormatError(ContradictoryTerminationError,
		"block %q: tail and line_count are mutually exclusive", name)
}

func allOthersNotFinalError(name string) *lineblock.Error {
	return lineblock.FormatError(AllOthersNotFinalError,
		"block %q: AllOthers must be the final matcher in body", name)
}

func allOthersNeedsHeadError(name string) *lineblock.Error {
	return lineblock.FormatError(AllOthersNeedsHeadError,
		"block %q: AllOthers in body requires a non-empty head", name)
}

func allOthersOnlyInBodyError(name string) *lineblock.Error {
	return lineblock.FormatError(AllOthersOnlyInBodyError,
		"block %q: AllOthers may only appear in body", name)
}

func malformedNestingError(name string) *lineblock.Error {
	return lineblock.FormatError(MalformedNestingError,
		"block %q: malformed nesting specification", name)
}
