package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/history"
	"tableflip.dev/dynlink/pkg/timeutil"
)

// HistoryOptions
type HistoryOptions struct {
	Clear bool
	Limit int
	Since string
}

func AddHistoryArgs(cmd *cobra.Command, o *HistoryOptions) {
	cmd.Flags().BoolVar(&o.Clear, "clear", false,
		"Delete every history entry.")
	cmd.Flags().IntVarP(&o.Limit, "limit", "n", 0,
		"Show at most this many entries. 0 shows all.")
	cmd.Flags().StringVar(&o.Since, "since", "",
		"Only show links generated within this age, e.g. 2h or 1w3d.")
}

// Filter applies --since and --limit to entries ordered newest first.
func (o *HistoryOptions) Filter(entries []history.Entry, now time.Time) ([]history.Entry, error) {
	age, err := timeutil.ParseAge(o.Since)
	if err != nil {
		return nil, err
	}
	if age > 0 {
		cutoff := now.Add(-age)
		kept := entries[:0:0]
		for _, e := range entries {
			if !e.Created.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if o.Limit > 0 && len(entries) > o.Limit {
		entries = entries[:o.Limit]
	}
	return entries, nil
}
