package analysis

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteTable prints a per-section summary table of the run.
func (r *RunSummary) WriteTable(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tSTATUS\tFILES\tTIME\tERROR")
	for i := range r.Sections {
		outcome := &r.Sections[i]
		status := "ok"
		errText := ""
		if !outcome.Success {
			status = "FAILED"
			if outcome.Err != nil {
				errText = outcome.Err.Error()
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			outcome.SectionID, status, len(outcome.CreatedFiles),
			outcome.Elapsed.Round(time.Millisecond), errText)
	}
	fmt.Fprintf(tw, "\t\t\t\t\n")
	fmt.Fprintf(tw, "total\t%d sections, %d failed\t\t%s\t\n",
		len(r.Sections), r.NumFailed(),
		r.Finished.Sub(r.Started).Round(time.Millisecond))
	_ = tw.Flush()
}
