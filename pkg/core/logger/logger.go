// Package logger builds the process-wide structured logger. Development
// mode (human-readable console output) is selected with DCF_ENV=dev.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// New constructs a sugared zap logger. The core math packages never log;
// this is for the pipeline, store and retrieval layers.
func New() *zap.SugaredLogger {
	var (
		l   *zap.Logger
		err error
	)
	if strings.ToLower(os.Getenv("DCF_ENV")) == "dev" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}
	return l.Sugar()
}
