package main

import (
	"os"

	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
