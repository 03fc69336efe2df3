package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/pkg/devtools"
	"github.com/vango-dev/reactive/pkg/telemetry"
)

type serveOptions struct {
	addr    string
	watches []string
	deep    bool
}

func serveCmd(configDir *string) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Serve the devtools inspector for a document",
		Long: `Load a document as root state and serve the devtools inspector.

The inspector exposes the state over HTTP, applies mutations, streams
watcher events over a WebSocket and serves Prometheus metrics. Snapshot
endpoints use the store configured in reactive.json.

Examples:
  reactivectl serve state.json
  reactivectl serve state.yaml --addr=:7070 --watch todos --deep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), *configDir, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from reactive.json)")
	cmd.Flags().StringArrayVarP(&opts.watches, "watch", "w", nil, "Path to watch on start (repeatable)")
	cmd.Flags().BoolVar(&opts.deep, "deep", false, "Watch nested changes below each path")

	return cmd
}

// newServer builds the inspector for the document at docPath.
func newServer(ctx context.Context, errOut io.Writer, configDir, docPath string, opts serveOptions) (*devtools.Server, *session, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, err
	}
	metrics := telemetry.NewMetrics(
		telemetry.WithNamespace(cfg.Metrics.Namespace),
		telemetry.WithRegistry(reg),
	)
	sess := openSession(configDir, cfg, errOut, metrics)

	root, err := sess.load(ctx, docPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := sess.store()
	if err != nil {
		return nil, nil, err
	}

	srv := devtools.New(sess.rt, root,
		devtools.WithLogger(sess.rt.Logger()),
		devtools.WithTracer(sess.tracer),
		devtools.WithRegistry(reg),
		devtools.WithStore(store),
	)
	for _, path := range opts.watches {
		if _, err := srv.Watch(path, opts.deep); err != nil {
			srv.Close()
			return nil, nil, err
		}
	}
	return srv, sess, nil
}

func runServe(ctx context.Context, out, errOut io.Writer, configDir, docPath string, opts serveOptions) error {
	srv, sess, err := newServer(ctx, errOut, configDir, docPath, opts)
	if err != nil {
		return err
	}

	addr := opts.addr
	if addr == "" {
		addr = sess.cfg.Devtools.Addr
	}
	success(out, "Inspecting %s", docPath)
	info(out, "http://%s/state", addr)
	info(out, "ws://%s/ws", addr)
	if len(opts.watches) > 0 {
		info(out, "watching %d path(s)", len(opts.watches))
	}

	return srv.ListenAndServe(ctx, addr)
}
