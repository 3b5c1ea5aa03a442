package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"energy-calculator/internal/calculator"
	"energy-calculator/internal/models"
	"energy-calculator/internal/services"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

const version = "1.0.0"

type options struct {
	logLevel string
	format   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "projector",
		Short: "Project 30-year household energy costs",
		Long: `projector calculates how much a household will spend on electricity over
the next 30 years given its monthly usage, the current price per kWh and an
expected annual rate increase.

Examples:
  projector project
  projector project --usage 1200 --price 14.5 --rate 4
  projector batch scenarios.tsv --format json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "table", "output format (table, json)")

	root.AddCommand(newProjectCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "projector version %s\n", version)
		},
	})

	return root
}

func (o *options) services() (*services.ProjectionService, *services.ScenarioBatchService) {
	logger := logging.NewStructuredLogger("energy-projector", version, logging.ParseLevel(o.logLevel))
	logger.SetOutput(os.Stderr)

	// No scrape endpoint for a one-shot process; metrics stay local.
	mc := metrics.NewCollectorWithRegistry("energy_projector", prometheus.NewRegistry())

	projections := services.NewProjectionService(logger, mc)
	return projections, services.NewScenarioBatchService(projections, logger, mc)
}

func (o *options) validateFormat() error {
	switch o.format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q: want table or json", o.format)
	}
}

func newProjectCmd(opts *options) *cobra.Command {
	raw := calculator.DefaultInputs

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project costs for a single household",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validateFormat(); err != nil {
				return err
			}
			projections, _ := opts.services()

			p, err := projections.Calculate(cmd.Context(), raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSON(out, p)
			}
			return writeProjectionTable(out, p)
		},
	}

	cmd.Flags().StringVarP(&raw.MonthlyUsage, "usage", "u", raw.MonthlyUsage, "average monthly usage in kWh")
	cmd.Flags().StringVarP(&raw.PricePerKwh, "price", "p", raw.PricePerKwh, "current price per kWh in cents")
	cmd.Flags().StringVarP(&raw.RateIncrease, "rate", "r", raw.RateIncrease, "expected annual rate increase in percent")

	return cmd
}

func newBatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [file]",
		Short: "Project every scenario in a tab-separated file",
		Long: `Reads one scenario per line as MONTHLY_KWH<TAB>PRICE_CENTS<TAB>RATE_PERCENT.
Blank lines and lines starting with # are skipped. Invalid lines are reported
and do not stop the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validateFormat(); err != nil {
				return err
			}
			_, batch := opts.services()

			res, err := batch.RunFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSON(out, res)
			}
			return writeBatchTable(out, res)
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeProjectionTable(w io.Writer, p *services.Projection) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tPrice per kWh\tAnnual Cost\tCumulative\t")

	cumulative := decimal.Zero
	for i, year := range p.Result.Years {
		cost := p.Result.AnnualCosts[i]
		cumulative = cumulative.Add(decimal.NewFromFloat(cost))
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n",
			year,
			calculator.FormatUnitPrice(p.Result.AnnualUnitPrices[i]),
			calculator.FormatCurrency(cost),
			calculator.FormatCurrency(cumulative.InexactFloat64()),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	return writeSummary(w, p.Summary)
}

func writeSummary(w io.Writer, s models.ProjectionSummary) error {
	_, err := fmt.Fprintf(w, "Total 30-year cost:   %s\nAverage annual cost:  %s\nYear 30 annual cost:  %s\n",
		s.TotalCost, s.AverageAnnualCost, s.FinalYearCost)
	return err
}

func writeBatchTable(w io.Writer, res *services.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Line\tUsage (kWh)\tPrice\tRate\tTotal\tAverage\tYear 30")
	for _, s := range res.Scenarios {
		fmt.Fprintf(tw, "%d\t%g\t%s\t%g%%\t%s\t%s\t%s\n",
			s.Line,
			s.Input.MonthlyConsumptionKwh,
			calculator.FormatUnitPrice(s.Input.UnitPriceCents),
			s.Input.AnnualRateIncreasePercent,
			s.Summary.TotalCost,
			s.Summary.AverageAnnualCost,
			s.Summary.FinalYearCost,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	p := message.NewPrinter(language.AmericanEnglish)
	p.Fprintf(w, "\nScenarios: %d  Projected: %d  Failed: %d\n", res.TotalLines, res.Projected, res.Failed)
	for i, msg := range res.Errors {
		if i == 10 {
			p.Fprintf(w, "  ... and %d more errors\n", len(res.Errors)-10)
			break
		}
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	return nil
}
