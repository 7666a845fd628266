package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tumorboard/internal/notes"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract disease or actionable events from case notes",
	Long: `Extract sends free-text case notes to the note understanding service
and prints what it finds. The disease subcommand returns the primary
disease; the events subcommand returns the list of actionable events
(genetic alterations, fusions, biomarkers) used to drive article scoring.`,
}

var extractDiseaseCmd = &cobra.Command{
	Use:   "disease",
	Short: "Extract the primary disease from case notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		caseNotes, err := readCaseNotes(cmd)
		if err != nil {
			return err
		}

		backend := notes.NewHTTPBackend(pipelineConfig().Notes)
		disease, err := backend.ExtractDisease(cmd.Context(), caseNotes)
		if err != nil {
			return fmt.Errorf("extracting disease: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), disease)
		return nil
	},
}

var extractEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Extract actionable events from case notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		caseNotes, err := readCaseNotes(cmd)
		if err != nil {
			return err
		}

		instructions, err := readOptionalFile(cmd, "instructions-file")
		if err != nil {
			return err
		}

		backend := notes.NewHTTPBackend(pipelineConfig().Notes)
		events, err := backend.ExtractEvents(cmd.Context(), caseNotes, instructions)
		if err != nil {
			return fmt.Errorf("extracting events: %w", err)
		}

		for _, event := range events {
			fmt.Fprintln(cmd.OutOrStdout(), event)
		}
		return nil
	},
}

func init() {
	for _, sub := range []*cobra.Command{extractDiseaseCmd, extractEventsCmd} {
		sub.Flags().String("case-file", "", "read case notes from file instead of stdin")
	}
	extractEventsCmd.Flags().String("instructions-file", "", "custom extraction prompt file (default: built-in prompt)")

	extractCmd.AddCommand(extractDiseaseCmd)
	extractCmd.AddCommand(extractEventsCmd)
	rootCmd.AddCommand(extractCmd)
}

// readCaseNotes returns the case notes from --case-file, or stdin when the
// flag is unset.
func readCaseNotes(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("case-file")
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading case file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading case notes from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no case notes provided (pipe them in or use --case-file)")
	}
	return string(data), nil
}

// readOptionalFile returns the contents of the file named by the flag, or
// empty when the flag is unset.
func readOptionalFile(cmd *cobra.Command, flag string) (string, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", flag, err)
	}
	return string(data), nil
}
