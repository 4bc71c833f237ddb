package report

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/edctrack/exposure/internal/app"
	"github.com/edctrack/exposure/internal/exposure"
)

type options struct {
	userID        string
	period        string
	start         string
	end           string
	visualization bool
}

// Command creates the report command.
func Command(session *app.Session) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and store an exposure report",
		Long: "Aggregates the user's scans over a daily, weekly or monthly window, compares the total " +
			"with the period limit and stores the report snapshot.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			report, err := session.App.Exposure.GenerateReport(cmd.Context(), req)
			if err != nil {
				return err
			}

			if opts.visualization {
				return session.Print(cmd.OutOrStdout(), exposure.VisualizationData(report))
			}
			return session.Print(cmd.OutOrStdout(), report)
		},
	}

	setupFlags(cmd, opts)
	return cmd
}

func (o *options) request() (exposure.ReportRequest, error) {
	period, err := exposure.ParsePeriodType(o.period)
	if err != nil {
		return exposure.ReportRequest{}, err
	}
	start, err := optionalTime("period_start", o.start)
	if err != nil {
		return exposure.ReportRequest{}, err
	}
	end, err := optionalTime("period_end", o.end)
	if err != nil {
		return exposure.ReportRequest{}, err
	}
	return exposure.ReportRequest{UserID: o.userID, PeriodType: period, Start: start, End: end}, nil
}

func optionalTime(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return exposure.ParseTime(field, raw)
}

func setupFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "", "User ID")
	cmd.Flags().StringVarP(&opts.period, "period", "p", string(exposure.PeriodMonthly), "Period type (daily, weekly, monthly)")
	cmd.Flags().StringVar(&opts.start, "start", "", "Period start, ISO 8601 (default: end minus one period)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Period end, ISO 8601 (default: now)")
	cmd.Flags().BoolVar(&opts.visualization, "visualization", false, "Print chart-ready series instead of the report")
	_ = cmd.MarkFlagRequired("user")
}
