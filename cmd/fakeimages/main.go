package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"astro-highpass/internal/app"
	"astro-highpass/internal/infrastructure"
	"astro-highpass/internal/logging"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	infrastructure.RegisterFlags(fs)
	infrastructure.RegisterGeneratorFlags(fs)
	fs.Parse(os.Args[1:])

	logger := logging.Must("info")
	defer logger.Sync()

	config, err := infrastructure.NewYAMLConfigReader(logger, fs).ReadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to read config", zap.Error(err))
		return 1
	}

	logger = logging.Must(config.LogLevel, config.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, writer, err := infrastructure.NewImageIO(logger, config)
	if err != nil {
		logger.Error("Invalid image format", zap.Error(err))
		return 1
	}

	if config.ImageDir != "" {
		if err := os.MkdirAll(config.ImageDir, 0o755); err != nil {
			logger.Error("Failed to create image directory", zap.String("dir", config.ImageDir), zap.Error(err))
			return 1
		}
	}

	if err := app.NewGenerator(logger, config, writer).Generate(ctx, config.Indices()); err != nil {
		logger.Error("Failed to generate images", zap.Error(err))
		return 1
	}
	return 0
}
