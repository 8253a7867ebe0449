package pipeline

import (
	"github.com/systemstart/font-assistant/pkg/api"
	"github.com/systemstart/font-assistant/pkg/runner"
)

// Output tokens the external tools are known to print. They are the tools'
// only success contract; exit codes are not reliable.
const (
	okToken       = "Ok."
	doneToken     = "Done"
	notTTFToken   = "Not a TTF file"
	NotOKPrefix   = "NotOK:"
	missingXMLMsg = "metadata file missing"
)

var (
	// SplitSucceeded matches UniteTTC output after splitting a collection.
	SplitSucceeded = runner.StdoutContains(okToken)

	// UniteSucceeded matches UniteTTC output after building a collection.
	UniteSucceeded = runner.StdoutContains(okToken)

	// CollectionSucceeded matches AFDKO otf2otc output.
	CollectionSucceeded = runner.StdoutContains(doneToken)

	// MetadataSucceeded matches a silent ttfname3 run; anything it prints is
	// an error message.
	MetadataSucceeded runner.Predicate = runner.StdoutBlank

	// NotTrueType matches the UniteTTC rejection that makes combine fall back
	// to otf2otc.
	NotTrueType = runner.StderrContains(notTTFToken)
)

func toolReported(text string) error {
	return api.NewError(api.ErrToolReported, NotOKPrefix+text)
}
