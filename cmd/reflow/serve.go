package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reflow-ui/reflow/internal/config"
	"github.com/reflow-ui/reflow/pkg/hooks"
	"github.com/reflow-ui/reflow/pkg/host"
	"github.com/reflow-ui/reflow/pkg/runtime"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo websocket host",
		Long: `Serve runs a websocket host with a demo counter program.

Connect to /ws and send JSON event frames:

  {"event": "inc"}
  {"event": "add", "payload": 5}
  {"event": "reset"}

Each event folds into one render; the host replies with a snapshot frame
after the layout commit, then flushes passive effects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides reflow.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to reflow.json")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(wd)
}

func runServe(cfg *config.Config) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rtOpts := []runtime.Option{runtime.WithLogger(logger.With("component", "runtime"))}
	if cfg.Metrics.Enabled {
		rtOpts = append(rtOpts, runtime.WithMetrics(runtime.NewMetrics()))
	}

	h := host.New(counterProgram,
		host.WithLogger(logger.With("component", "host")),
		host.WithConfig(host.Config{
			ReadTimeout:    cfg.Host.ReadTimeout(),
			WriteTimeout:   cfg.Host.WriteTimeout(),
			EventQueueSize: cfg.Host.EventQueueSize,
		}),
		host.WithRuntimeOptions(rtOpts...),
	)

	r := chi.NewRouter()
	r.Mount("/", h.Routes())
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	logger.Info("serving", "addr", cfg.Addr, "metrics", cfg.Metrics.Enabled)
	return http.ListenAndServe(cfg.Addr, r)
}

// counterSnapshot is the demo program's published view.
type counterSnapshot struct {
	Count   int    `json:"count"`
	Doubled int    `json:"doubled"`
	Label   string `json:"label"`
}

// counterProgram is the demo session body: a counter with a reducer, a
// memoized derivation, and one effect per phase.
func counterProgram(ctx *runtime.Ctx, sess *host.Session) {
	count, dispatch := hooks.UseReducer(ctx, func(n int, delta int) int {
		return n + delta
	}, 0)

	doubled := hooks.UseMemo(ctx, func() int { return count * 2 }, hooks.Deps{count})

	label, setLabel := hooks.UseState(ctx, "idle")

	sess.HandleFunc("inc", func(json.RawMessage) {
		dispatch.Dispatch(1)
	})
	sess.HandleFunc("add", func(payload json.RawMessage) {
		var delta int
		if err := json.Unmarshal(payload, &delta); err == nil {
			dispatch.Dispatch(delta)
		}
	})
	sess.HandleFunc("reset", func(json.RawMessage) {
		dispatch.Dispatch(-count)
		setLabel.Set("reset")
	})

	hooks.UseLayoutEffect(ctx, func() hooks.Cleanup {
		// Runs before the snapshot goes out.
		if count > 0 && label != "counting" {
			setLabel.Set("counting")
		}
		return nil
	}, hooks.Deps{count})

	hooks.UseEffect(ctx, func() hooks.Cleanup {
		slog.Debug("count changed", "count", count)
		return func() {
			slog.Debug("count cleanup", "count", count)
		}
	}, hooks.Deps{count})

	sess.Publish(counterSnapshot{Count: count, Doubled: doubled, Label: label})
}
