package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smith3v/tg-word-quiz/pkg/bot/importexport"
	"github.com/spf13/cobra"
)

// newCheckFileCmd parses a word list the same way an upload is parsed, so
// a file can be checked before it is handed out.
func newCheckFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-file <path>",
		Short: "Parse a CSV or XLSX word list and report what would be loaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			list, err := importexport.ParseWordList(filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("%s: %s", path, importexport.ParseErrorMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d words, %d rows skipped\n", path, len(list.Items), list.Skipped)
			for i, item := range list.Items {
				if i == 5 {
					fmt.Fprintf(cmd.OutOrStdout(), "  ...\n")
					break
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\n", item.Answer, item.Prompt)
			}
			return nil
		},
	}
}
