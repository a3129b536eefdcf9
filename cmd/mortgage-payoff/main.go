package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/iwvelando/mortgage-payoff/internal/config"
	"github.com/iwvelando/mortgage-payoff/internal/report"
	"github.com/iwvelando/mortgage-payoff/internal/server"
	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/iwvelando/mortgage-payoff/pkg/loans"
	"github.com/iwvelando/mortgage-payoff/pkg/output"
	"github.com/iwvelando/mortgage-payoff/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	pdfPath := flag.String("pdf", "", "optional path for a PDF schedule report")
	serve := flag.Bool("serve", false, "run the HTTP API server instead of a one-shot computation")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	// Optional .env for server settings; absence is fine.
	_ = godotenv.Load()

	if *serve {
		runServer(*serverConfigLocation, *logLevel)
		return
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	terms := conf.Loan.ToLoanTerms()
	engine := loans.NewAmortizationEngineWithPolicy(logger, conf.PMIPolicy.ToPMIPolicy())

	// Baseline schedule first; scenarios are compared against it.
	baselineSchedule, err := engine.ComputeSchedule(terms, loans.BaselinePlan())
	if err != nil {
		logger.Fatal("failed to compute baseline schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	results := []output.Result{{
		Name:     "baseline",
		Schedule: baselineSchedule,
		Summary:  loans.Summarize(terms, baselineSchedule),
	}}

	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			continue
		}
		plan := scenario.ToPaymentPlan()
		schedule, err := engine.ComputeSchedule(terms, plan)
		if err != nil {
			logger.Fatal("failed to compute scenario schedule",
				zap.String("op", "main"),
				zap.String("scenario", scenario.Name),
				zap.Error(err),
			)
		}
		savings, err := engine.Compare(terms, loans.BaselinePlan(), plan)
		if err != nil {
			logger.Fatal("failed to compare against baseline",
				zap.String("op", "main"),
				zap.String("scenario", scenario.Name),
				zap.Error(err),
			)
		}
		results = append(results, output.Result{
			Name:     scenario.Name,
			Schedule: schedule,
			Summary:  loans.Summarize(terms, schedule),
			Savings:  &savings,
		})
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	}

	if *pdfPath != "" {
		// Report the last scenario when one exists, otherwise the baseline.
		result := results[len(results)-1]
		pdf := report.NewSchedulePDF(terms, result.Summary, result.Savings)
		if err := pdf.WriteFile(result.Schedule, *pdfPath); err != nil {
			logger.Fatal("failed to write PDF report",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("wrote PDF report",
			zap.String("op", "main"),
			zap.String("path", *pdfPath),
			zap.String("scenario", result.Name),
		)
	}
}

func runServer(configLocation, logLevelOverride string) {
	serverConfig, err := server.LoadConfig(configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
		return
	}

	logger, err := initializeLogger(serverConfig.Logging, logLevelOverride)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler := server.NewHandler(logger, serverConfig, version)
	logger.Info("starting HTTP server",
		zap.String("op", "main"),
		zap.String("address", serverConfig.Address),
	)
	if err := http.ListenAndServe(serverConfig.Address, handler); err != nil {
		logger.Fatal("server terminated",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
