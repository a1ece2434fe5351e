package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/modelhost/containerstd/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("hostd", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
hostd - Model serving endpoints with customer-overridable handlers.

Handlers resolve per request: environment variable, programmatic
registration, customer script, built-in default.

Options:
`)
		flagSet.PrintDefaults()
	}

	addrFlag := flagSet.String("addr", ":8080", "Listen address for the serving endpoints.")
	modelPathFlag := flagSet.String("model-path", "", "Directory holding customer scripts. Defaults to $MODEL_PATH or /opt/ml/model.")
	scriptFlag := flagSet.String("script", "", "Customer script filename. Defaults to $CUSTOM_SCRIPT_FILENAME or model.hcl.")
	maxConcurrencyFlag := flagSet.Int("max-concurrency", 0, "In-flight invocation limit. 0 disables throttling.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Addr:           *addrFlag,
		ModelPath:      *modelPathFlag,
		ScriptFilename: *scriptFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		MaxConcurrency: *maxConcurrencyFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
