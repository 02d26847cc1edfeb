package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/eligibility"
	"github.com/five82/abwalk/internal/processing"
	"github.com/five82/abwalk/internal/reporter"
	"github.com/five82/abwalk/internal/util"
)

func newScanCommand() *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List which videos under a folder would be encoded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runScan(cmd, cfg, f.json)
		},
	}
	bindJobFlags(cmd, &f)
	return cmd
}

func runScan(cmd *cobra.Command, cfg *config.Config, jsonOutput bool) error {
	scan, err := processing.Scan(cfg, nil)
	if err != nil {
		return err
	}

	if jsonOutput {
		rep := reporter.NewJSONReporterWithWriter(cmd.OutOrStdout(), uuid.NewString())
		rep.Discovery(scan.DiscoverySummary())
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderScan(scan))
	fmt.Fprintf(out, "%d of %d video files would be encoded with %s\n",
		len(scan.Filter.Kept), len(scan.Discovery.Files), cfg.Backend)
	return nil
}

func renderScan(scan *processing.ScanResult) string {
	rows := make([][]string, 0, len(scan.Discovery.Files))
	for _, f := range scan.Filter.Kept {
		rows = append(rows, []string{f.Path, util.FormatBytes(f.Size), "encode", ""})
	}
	for _, ex := range scan.Filter.Excluded {
		rows = append(rows, []string{ex.File.Path, util.FormatBytes(ex.File.Size), "skip", eligibility.JoinReasons(ex.Reasons)})
	}
	return reporter.RenderTable(
		[]string{"File", "Size", "Action", "Reason"},
		rows,
		[]reporter.ColumnAlignment{reporter.AlignLeft, reporter.AlignRight, reporter.AlignLeft, reporter.AlignLeft},
	)
}
