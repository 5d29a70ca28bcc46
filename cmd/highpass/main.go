package main

import (
	"context"
	"flag"
	"fmt"
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
	fs.Parse(os.Args[1:])

	// Инициализация логгера
	logger := logging.Must("info")
	defer logger.Sync()

	// Чтение конфигурации
	config, err := infrastructure.NewYAMLConfigReader(logger, fs).ReadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to read config", zap.Error(err))
		return 1
	}

	// Обновляем уровень логирования
	logger = logging.Must(config.LogLevel, config.LogFile)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация компонентов
	reader, writer, err := infrastructure.NewImageIO(logger, config)
	if err != nil {
		logger.Error("Invalid image format", zap.Error(err))
		return 1
	}

	opts := []app.Option{app.WithWriter(writer)}
	if config.Redis.Addr != "" {
		sink, client, err := infrastructure.NewRedisSink(ctx, logger, config.Redis.Addr, config.Redis.Channel)
		if err != nil {
			logger.Error("Failed to connect result sink", zap.Error(err))
			return 1
		}
		defer client.Close()
		opts = append(opts, app.WithSink(sink))
	}

	runner := app.NewBatchRunner(logger, config, reader, opts...)

	// одно изображение, один процесс
	single, err := runner.RunSingle(ctx, 0)
	if err != nil {
		logger.Error("Failed to process image", zap.Int("index", 0), zap.Error(err))
		return 1
	}
	fmt.Printf("1 image/1 process: %.2f seconds\n", single.Elapsed.Seconds())

	report, err := runner.Run(ctx, config.Indices())
	fmt.Printf("%d images/%d processes: %.2f seconds\n", report.Images, report.Workers, report.Elapsed.Seconds())
	if err != nil {
		for _, failure := range report.Failures {
			logger.Error("Image failed",
				zap.Int("index", failure.Index),
				zap.Stringer("job", failure.JobID),
				zap.Error(failure.Err))
		}
		return 1
	}

	logger.Info("High-pass batch completed successfully",
		zap.Int("images", report.Images),
		zap.Duration("single", single.Elapsed),
		zap.Duration("batch", report.Elapsed))
	return 0
}
