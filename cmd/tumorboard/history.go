package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tumorboard/internal/review"
	"github.com/pdiddy/tumorboard/internal/scoring"
	"github.com/pdiddy/tumorboard/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and search past review sessions",
	Long: `History lists past review sessions, shows one session's ranked
articles, and searches stored article titles and full text across all
sessions.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past review sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		summaries, err := s.Sessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reviews stored.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tDISEASE\tARTICLES\tTOP")
		for _, sum := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				sum.ID, sum.CreatedAt.Format("2006-01-02 15:04"),
				sum.Disease, sum.ArticleCount, sum.TopPoints)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <review-id>",
	Short: "Show one session's ranked articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		session, err := s.Session(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return review.FormatJSON(session, cmd.OutOrStdout())
		}
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return review.FormatYAML(session, cmd.OutOrStdout())
		}
		review.FormatTable(session, cmd.OutOrStdout())
		return nil
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		maxResults, _ := cmd.Flags().GetInt("max-results")
		hits, err := s.SearchArticles(cmd.Context(), args[0], maxResults)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
			return nil
		}

		for _, hit := range hits {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s #%d] %s (%d points)\n",
				hit.ReviewID, hit.Rank, hit.Article.Title, hit.Article.OverallPoints)
			if len(hit.Article.PointBreakdown) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n",
					scoring.FormatBreakdown(hit.Article.PointBreakdown))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().String("reviews-dir", "", "base directory for review history (default: reviews)")
	historyShowCmd.Flags().Bool("json", false, "output the session as JSON")
	historyShowCmd.Flags().Bool("yaml", false, "output the session as YAML")
	historySearchCmd.Flags().Int("max-results", 0, "maximum number of results (default 20)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*store.Store, error) {
	cfg := pipelineConfig().Store
	if dir, _ := cmd.Flags().GetString("reviews-dir"); dir != "" {
		cfg.ReviewsDir = dir
	}
	s, err := store.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening review history: %w", err)
	}
	return s, nil
}
