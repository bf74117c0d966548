package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/smith3v/tg-word-quiz/pkg/config"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tg-word-quiz",
		Short:         "Telegram bot that quizzes students on their word lists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckFileCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tg-word-quiz", version)
		},
	}
}

// configOptions builds config.Options from the parsed flags. The default
// config file is optional; one named with --config must exist.
func configOptions(cmd *cobra.Command) (config.Options, error) {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Options{}, err
	}
	envFile, err := flags.GetString("env-file")
	if err != nil {
		return config.Options{}, err
	}
	if !flags.Changed("config") {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			path = ""
		}
	}
	return config.Options{File: path, EnvFile: envFile, Flags: flags}, nil
}
