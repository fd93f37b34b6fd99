// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/concepts/internal/index"
	"github.com/pdiddy/concepts/internal/site"
	"github.com/pdiddy/concepts/internal/theme"
	"github.com/pdiddy/concepts/internal/watch"
	"github.com/pdiddy/concepts/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog, search, and theme over HTTP",
	Long: `Serve loads the collection, brings the full-text index up to date, and
serves the catalog API, search API, theme stylesheet, health check, and
Prometheus metrics. With --watch the collection is reloaded and re-indexed
whenever a markdown file under the content directory changes; a reload that
fails validation keeps the previous collection.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coll, err := loadContent(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	tokens, err := theme.Load(cfg.Theme.File)
	if err != nil {
		return err
	}

	store, err := openIndex(cfg)
	if err != nil {
		log.Warn("search disabled", "error", err)
		store = nil
	} else {
		defer store.Close()
		if _, err := store.Ingest(ctx, coll.Concepts, io.Discard); err != nil {
			return err
		}
	}

	srv := site.New(site.Options{
		Collection: coll,
		Index:      store,
		Theme:      tokens,
		BasePath:   cfg.Site.BasePath,
		Debounce:   cfg.Filter.Debounce,
		Logger:     log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Serve.Addr, cfg.Serve.ShutdownTimeout)
	})
	if cfg.Serve.Watch {
		w := watch.New(cfg.Content.Dir, func(paths []string) {
			reload(gctx, cfg, srv, store, paths)
		}, watch.WithLogger(log))
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	return g.Wait()
}

// reload re-reads the collection after a content change and swaps it in.
func reload(ctx context.Context, cfg types.Config, srv *site.Server, store *index.Store, changed []string) {
	log.Info("content changed, reloading", "files", len(changed))
	coll, err := loadContent(ctx, cfg, os.Stderr)
	if err != nil {
		log.Warn("reload rejected, keeping previous collection", "error", err)
		return
	}
	if store != nil {
		summary, err := store.Ingest(ctx, coll.Concepts, io.Discard)
		if err != nil {
			log.Warn("re-indexing failed", "error", err)
		} else if summary.Changed() {
			log.Info("index updated", "indexed", summary.Indexed, "updated", summary.Updated, "removed", summary.Removed)
		}
	}
	srv.Reload(coll)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Bool("watch", false, "reload content when files change")
	serveCmd.Flags().String("base-path", "", "path prefix the site is served under")

	for key, flag := range map[string]string{
		"serve.addr":     "addr",
		"serve.watch":    "watch",
		"site.base_path": "base-path",
	} {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd)
}
