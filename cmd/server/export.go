package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/models"
	"github.com/jengzang/reallocation-screener/internal/presentation"
)

var exportOpts struct {
	output      string
	noClean     bool
	filters     models.FilterState
	minDistance float64
	maxDistance float64
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered view as CSV",
	Long: `Applies the same cleaning and filters as the API and writes the result as
UTF-8 CSV with a byte-order mark. Without --output the CSV goes to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		req := exportRequest(cmd)

		var w io.Writer = cmd.OutOrStdout()
		if exportOpts.output != "" {
			f, err := os.Create(exportOpts.output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOpts.output, err)
			}
			defer f.Close()
			w = f
		}

		n, err := a.screening.Export(cmd.Context(), req, w)
		if err != nil {
			return err
		}
		logger.Info("export written", zap.Int("rows", n), zap.String("output", exportOpts.output))
		return nil
	},
}

// exportRequest builds the view request from flags; only flags that were set constrain the view
func exportRequest(cmd *cobra.Command) models.ViewRequest {
	clean := !exportOpts.noClean
	filters := exportOpts.filters
	flags := cmd.Flags()

	if flags.Changed("min-distance") {
		filters.DistanceMin = &exportOpts.minDistance
	}
	if flags.Changed("max-distance") {
		filters.DistanceMax = &exportOpts.maxDistance
	}
	for name, set := range map[string]*[]string{
		"prefecture":   &filters.Prefectures,
		"origin-city":  &filters.OriginCities,
		"dest-city":    &filters.DestCities,
		"display-name": &filters.DisplayNames,
		"owner":        &filters.Owners,
		"category":     &filters.Categories,
	} {
		if !flags.Changed(name) {
			*set = nil
		}
	}

	return models.ViewRequest{Clean: &clean, Filters: filters}
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.output, "output", "o", "", "output file (default stdout, suggested name "+presentation.ExportFilename+")")
	f.BoolVar(&exportOpts.noClean, "no-clean", false, "skip the cleaning rules")
	f.StringVar(&exportOpts.filters.DateFrom, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&exportOpts.filters.DateTo, "to", "", "last day, YYYY-MM-DD")
	f.StringSliceVar(&exportOpts.filters.Prefectures, "prefecture", nil, "destination prefectures")
	f.StringSliceVar(&exportOpts.filters.OriginCities, "origin-city", nil, "origin city/ward keys")
	f.StringSliceVar(&exportOpts.filters.DestCities, "dest-city", nil, "destination city/ward keys")
	f.StringSliceVar(&exportOpts.filters.DisplayNames, "display-name", nil, "partner display names")
	f.StringSliceVar(&exportOpts.filters.Owners, "owner", nil, "owning companies")
	f.StringSliceVar(&exportOpts.filters.Categories, "category", nil, "bike categories")
	f.Float64Var(&exportOpts.minDistance, "min-distance", 0, "minimum distance in km")
	f.Float64Var(&exportOpts.maxDistance, "max-distance", 0, "maximum distance in km")
}
