package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/ngage-io/tally/internal/adapters/http/api"
	"github.com/ngage-io/tally/internal/adapters/http/swagger"
	app "github.com/ngage-io/tally/internal/app"
	"github.com/ngage-io/tally/internal/config"
	"github.com/ngage-io/tally/pkg/logger"
	"github.com/ngage-io/tally/pkg/metrics"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("TALLY_ADDR", ":8080")
			_ = os.Setenv("TALLY_QUEUE_SIZE", "1000")
			_ = os.Setenv("TALLY_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("TALLY_ADDR")
				_ = os.Unsetenv("TALLY_QUEUE_SIZE")
				_ = os.Unsetenv("TALLY_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop when the context expires", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should stop when the context expires", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing logger lifecycle", func() {
			convey.Convey("Then init and sync should report errors explicitly", func() {
				err := logger.Init()
				convey.So(err, convey.ShouldBeNil)
				convey.So(logger.Sync(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			// Set up test environment
			_ = os.Setenv("TALLY_ADDR", ":8080")
			_ = os.Setenv("TALLY_QUEUE_SIZE", "1000")
			_ = os.Setenv("TALLY_WORKER_COUNT", "2")
			defer func() {
				_ = os.Unsetenv("TALLY_ADDR")
				_ = os.Unsetenv("TALLY_QUEUE_SIZE")
				_ = os.Unsetenv("TALLY_WORKER_COUNT")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Load configuration
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				// Create service (without starting to avoid logger dependency)
				svc := app.New(
					app.WithWorkerCount(cfg.WorkerCount),
					app.WithQueueSize(cfg.QueueSize),
					app.WithDedupeSize(cfg.DedupeSize),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				// Create HTTP server
				server := api.NewServer(svc, svc, cfg.MaxLeaderboardLimit)
				convey.So(server, convey.ShouldNotBeNil)

				// Create HTTP mux
				mux := http.NewServeMux()
				convey.So(mux, convey.ShouldNotBeNil)

				// Register routes
				server.Register(ctx, mux)
				swagger.Register(ctx, mux)

				// Stop service
				svc.Stop()
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			// Set invalid configuration
			_ = os.Setenv("TALLY_AGGREGATION_METHOD", "mode")
			defer func() { _ = os.Unsetenv("TALLY_AGGREGATION_METHOD") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with invalid options", func() {
			convey.Convey("Then service should handle invalid options gracefully", func() {
				// Test with extreme values
				svc := app.New(
					app.WithWorkerCount(0),
					app.WithQueueSize(0),
					app.WithDedupeSize(0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationResourceCleanup(t *testing.T) {
	convey.Convey("Given main application resource cleanup", t, func() {
		convey.Convey("When testing service creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then service should be created successfully", func() {
				// Test that we can get stats without starting
				stats := svc.GetStats()
				convey.So(stats, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing multiple service creation cycles", func() {
			convey.Convey("Then multiple services should be created successfully", func() {
				for i := 0; i < 3; i++ {
					svc := app.New()
					convey.So(svc, convey.ShouldNotBeNil)

					stats := svc.GetStats()
					convey.So(stats, convey.ShouldNotBeNil)
				}
			})
		})
	})
}
