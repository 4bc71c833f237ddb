package current

import (
	"github.com/spf13/cobra"

	"github.com/edctrack/exposure/internal/app"
)

// DefaultDays is the rolling window used when --days is not given.
const DefaultDays = 30

// Command creates the current command.
func Command(session *app.Session) *cobra.Command {
	var (
		userID string
		days   int
	)

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show exposure over the last N days without storing a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := session.App.Exposure.CurrentExposure(cmd.Context(), userID, days)
			if err != nil {
				return err
			}
			return session.Print(cmd.OutOrStdout(), current)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	cmd.Flags().IntVar(&days, "days", DefaultDays, "Window length in days (1-365)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
