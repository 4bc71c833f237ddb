package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/edctrack/exposure/cmd/alerts"
	"github.com/edctrack/exposure/cmd/current"
	"github.com/edctrack/exposure/cmd/importscans"
	"github.com/edctrack/exposure/cmd/report"
	"github.com/edctrack/exposure/cmd/serve"
	"github.com/edctrack/exposure/cmd/trends"
	"github.com/edctrack/exposure/cmd/version"
	"github.com/edctrack/exposure/internal/app"
	"github.com/edctrack/exposure/internal/buildinfo"
	"github.com/edctrack/exposure/internal/conf"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	output     string
	debug      bool
}

// RootCommand creates and returns the root command. Subcommands other than
// version open the session before they run.
func RootCommand(session *app.Session) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "edc-exposure",
		Short:         "EDC exposure aggregation, reporting and alerting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, &flags)

	versionCmd := version.Command(session.Build)
	rootCmd.AddCommand(
		report.Command(session),
		trends.Command(session),
		current.Command(session),
		alerts.Command(session),
		importscans.Command(session),
		serve.Command(session),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Skip setup for the version command
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initialize(cmd.Context(), session, &flags)
	}

	return rootCmd
}

// initialize loads settings and opens the session.
func initialize(ctx context.Context, session *app.Session, flags *globalFlags) error {
	format, err := app.ParseFormat(flags.output)
	if err != nil {
		return err
	}
	session.Format = format

	settings, err := conf.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.debug {
		settings.Debug = true
	}

	return session.Open(ctx, settings)
}

func setupFlags(rootCmd *cobra.Command, flags *globalFlags) {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file (default: search ., ~/.config/edc-exposure, /etc/edc-exposure)")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", app.FormatJSON, "Output format (json or yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")
}

// Execute runs the CLI with args and closes the session afterwards.
func Execute(ctx context.Context, build *buildinfo.Context, args []string) error {
	session := app.NewSession(build)
	defer func() { _ = session.Close() }()

	rootCmd := RootCommand(session)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
