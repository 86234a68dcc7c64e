package main

import (
	"context"
	"os"

	"github.com/desertthunder/ga4x/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
