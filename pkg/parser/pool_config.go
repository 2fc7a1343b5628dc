package parser

import (
	"github.com/gnana997/uiregistry/pkg/util"
)

// getDefaultPoolSize keeps the parser pool the same size as the scanner's
// worker pool so workers never block waiting on a parser.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
