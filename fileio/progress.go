package fileio

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressFunc returns a writer fed with every transferred byte, or nil to
// skip progress reporting.
type ProgressFunc func(description string, size int64) io.Writer

// NewProgressBar reports progress as a byte counting bar rendered to out
func NewProgressBar(out io.Writer) ProgressFunc {
	return func(description string, size int64) io.Writer {
		if size <= 0 {
			return nil
		}
		return progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(description),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(out, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
}
