package importscans

import (
	"github.com/spf13/cobra"

	"github.com/edctrack/exposure/internal/app"
	"github.com/edctrack/exposure/internal/scanimport"
)

type result struct {
	File     string `json:"file"`
	Imported int    `json:"imported"`
}

// Command creates the import command.
func Command(session *app.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import product scans from a YAML or JSON file",
		Long: "Reads a document with a top-level \"scans\" list and stores every scan in one " +
			"transaction. Nothing is stored if any record is invalid.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := scanimport.Import(cmd.Context(), session.App.Store.Scans, args[0])
			if err != nil {
				return err
			}
			session.App.Exposure.InvalidateTrends()
			return session.Print(cmd.OutOrStdout(), result{File: args[0], Imported: n})
		},
	}
}
