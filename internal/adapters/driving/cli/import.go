package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Bulk import notes from a directory of description files",
	Long: `Import reads every JSON description file in the directory, creates the
referenced schools, courses and licenses, and converts every note link
synchronously. Notes already converted are skipped, so re-running over
the same directory is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	stats, err := importService.ImportDirectory(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Processed %d files across %d courses\n", stats.Files, stats.Courses)
	cmd.Printf("  imported: %d\n", stats.Imported)
	cmd.Printf("  skipped:  %d\n", stats.Skipped)
	if stats.Failed > 0 {
		cmd.Printf("  failed:   %d (see log for details)\n", stats.Failed)
	}
	return nil
}
