//go:build debug

package parser

import (
	"os"

	"github.com/vektah/goparsify"
)

func init() {
	// Building with -tags debug sends goparsify's parser trace to stdout.
	goparsify.EnableLogging(os.Stdout)
}
