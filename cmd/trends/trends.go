package trends

import (
	"github.com/spf13/cobra"

	"github.com/edctrack/exposure/internal/app"
	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
)

// result is the printed trend series.
type result struct {
	UserID     string                 `json:"user_id"`
	PeriodType exposure.PeriodType    `json:"period_type"`
	NumPeriods int                    `json:"num_periods"`
	Trends     []datastore.TrendPoint `json:"trends"`
}

// Command creates the trends command.
func Command(session *app.Session) *cobra.Command {
	var (
		userID  string
		period  string
		periods int
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show exposure totals for consecutive trailing periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType, err := exposure.ParsePeriodType(period)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("periods") {
				periods = session.App.Exposure.Policy().TrendPeriods()
			}

			engine := session.App.Exposure
			points, err := engine.ComputeTrend(cmd.Context(), userID, periodType, engine.Now(), periods)
			if err != nil {
				return err
			}

			return session.Print(cmd.OutOrStdout(), result{
				UserID:     userID,
				PeriodType: periodType,
				NumPeriods: periods,
				Trends:     points,
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	cmd.Flags().StringVarP(&period, "period", "p", string(exposure.PeriodMonthly), "Period type (daily, weekly, monthly)")
	cmd.Flags().IntVarP(&periods, "periods", "n", exposure.DefaultTrendPeriods, "Number of periods (default: exposure.trend_periods)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
