// Package logger builds the process-wide zap logger. Production gets
// JSON, everything else gets the human-readable development encoder.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init constructs the logger for the given environment and installs it
// as the zap global. Callers hold the returned *zap.Logger; the global
// exists for the few places without access to it.
func Init(appEnv string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if appEnv == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	zap.ReplaceGlobals(log)
	return log, nil
}
