package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <document-id>",
	Short: "Convert an uploaded document synchronously",
	Long: `Convert runs conversion for a pending document in the foreground,
retrying transient upstream failures a few times. Useful when the
conversion workers are not running.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertService == nil {
		return errors.New("conversion service not configured")
	}

	if err := convertService.ConvertNow(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Document %s converted\n", args[0])
	return nil
}
