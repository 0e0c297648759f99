package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/aws"
	"github.com/djelia-org/djelia-go/config"
	"github.com/djelia-org/djelia-go/execution"
	"github.com/djelia-org/djelia-go/metrics"
	"github.com/djelia-org/djelia-go/processor"
	"github.com/djelia-org/djelia-go/redis"
	"github.com/djelia-org/djelia-go/server"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		port string
		mock bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long: `Run an HTTP gateway in front of the Djelia API.

History is stored in Redis when REDIS_ADDR is set and in memory otherwise.
Synthesized audio is uploaded to S3 when S3_BUCKET is set.

Examples:
  djelia serve --port 8080
  djelia serve --mock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && !opts.verbose {
				zerolog.SetGlobalLevel(level)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, cleanup, err := buildGateway(ctx, cfg, mock)
			if err != nil {
				return err
			}
			defer cleanup()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(cfg.Port) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return srv.Shutdown()
			}
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default: $PORT or 8080)")
	cmd.Flags().BoolVar(&mock, "mock", false, "serve canned responses without calling the API")
	return cmd
}

// buildGateway wires the gateway from configuration.
func buildGateway(ctx context.Context, cfg *config.Config, mock bool) (*server.Server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var service processor.Service
	if mock {
		log.Warn().Msg("Serving mock responses")
		service = processor.NewMockService()
	} else {
		client, err := djelia.NewClient(cfg.APIKey, cfg.ClientOptions()...)
		if err != nil {
			return nil, nil, err
		}
		service = client
	}

	var history processor.HistoryStore
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.HistoryTTL())
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { rdb.Close() })
		history = rdb
	} else {
		log.Info().Msg("REDIS_ADDR not set, keeping history in memory")
		history = processor.NewMemoryHistory()
	}

	var sink djelia.SpeechSink
	if cfg.S3Bucket != "" {
		s3Sink, err := aws.NewS3Sink(cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("configure S3 sink: %w", err)
		}
		sink = s3Sink
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p := processor.New(service, history, sink, execution.NewManager(), metrics.New(reg))
	return server.New(p, reg), cleanup, nil
}
