package alerts

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/edctrack/exposure/internal/app"
	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/errors"
)

// DefaultLimit caps alert listings when --limit is not given.
const DefaultLimit = 10

type checkResult struct {
	UserID        string                     `json:"user_id"`
	AlertsCreated int                        `json:"alerts_created"`
	Alerts        []*datastore.ExposureAlert `json:"alerts"`
}

type listResult struct {
	UserID string                    `json:"user_id"`
	Count  int                       `json:"count"`
	Alerts []datastore.ExposureAlert `json:"alerts"`
}

type actionResult struct {
	AlertID uint   `json:"alert_id"`
	Message string `json:"message"`
}

// Command creates the alerts command group.
func Command(session *app.Session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Check, list and update exposure alerts",
	}

	cmd.AddCommand(
		checkCommand(session),
		listCommand(session),
		actionCommand(session, "ack", "Acknowledge an alert", "Alert acknowledged successfully", false),
		actionCommand(session, "sent", "Mark an alert as delivered", "Alert marked as sent successfully", true),
	)
	return cmd
}

func checkCommand(session *app.Session) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Generate a weekly report and create any triggered alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := session.App.Alerts.CheckAndCreateAlerts(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if created == nil {
				created = []*datastore.ExposureAlert{}
			}
			return session.Print(cmd.OutOrStdout(), checkResult{
				UserID:        userID,
				AlertsCreated: len(created),
				Alerts:        created,
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func listCommand(session *app.Session) *cobra.Command {
	var (
		userID         string
		unacknowledged bool
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's alerts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := session.App.Alerts.GetUserAlerts(cmd.Context(), userID, unacknowledged, limit)
			if err != nil {
				return err
			}
			if list == nil {
				list = []datastore.ExposureAlert{}
			}
			return session.Print(cmd.OutOrStdout(), listResult{UserID: userID, Count: len(list), Alerts: list})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	cmd.Flags().BoolVar(&unacknowledged, "unacknowledged", false, "Only list alerts not yet acknowledged")
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultLimit, "Maximum number of alerts")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// actionCommand builds the ack and sent commands, which differ only in the
// flag they set.
func actionCommand(session *app.Session, use, short, message string, markSent bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <alert-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAlertID(args[0])
			if err != nil {
				return err
			}

			engine := session.App.Alerts
			if markSent {
				_, err = engine.MarkAlertSent(cmd.Context(), id)
			} else {
				_, err = engine.AcknowledgeAlert(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return session.Print(cmd.OutOrStdout(), actionResult{AlertID: id, Message: message})
		},
	}
}

func parseAlertID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.ValidationError("alert_id", "alert id must be a positive integer")
	}
	return uint(id), nil
}
