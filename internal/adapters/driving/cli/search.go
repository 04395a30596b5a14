package cli

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karmanotes/pipeline/internal/core/domain"
)

var (
	searchCourse string
	searchLimit  int
	searchOffset int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search converted notes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCourse, "course", "", "restrict results to a course ID")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := strings.Join(args, " ")
	results, err := searchService.Search(cmd.Context(), query, domain.SearchOptions{
		Limit:    searchLimit,
		Offset:   searchOffset,
		CourseID: searchCourse,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	if results == nil {
		results = []domain.SearchResult{}
	}
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results.")
		return nil
	}
	for _, res := range results {
		cmd.Printf("%s  %s (%.2f)\n", res.Note.ID, res.Note.Name, res.Score)
		if res.Snippet != "" {
			cmd.Printf("    %s\n", res.Snippet)
		}
	}
	return nil
}
