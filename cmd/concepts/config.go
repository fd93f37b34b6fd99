package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/pdiddy/concepts/internal/content"
	"github.com/pdiddy/concepts/internal/index"
	"github.com/pdiddy/concepts/pkg/types"
)

// setDefaults registers every configuration key with its default so env
// variables and config files can set keys that have no flag.
func setDefaults() {
	d := types.Config{}.WithDefaults()
	viper.SetDefault("site.url", d.Site.URL)
	viper.SetDefault("site.base_path", d.Site.BasePath)
	viper.SetDefault("content.dir", d.Content.Dir)
	viper.SetDefault("content.schema", string(d.Content.Schema))
	viper.SetDefault("content.workers", d.Content.Workers)
	viper.SetDefault("index.dir", d.Index.Dir)
	viper.SetDefault("index.max_results", d.Index.MaxResults)
	viper.SetDefault("filter.debounce", d.Filter.Debounce)
	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("serve.watch", d.Serve.Watch)
	viper.SetDefault("serve.shutdown_timeout", d.Serve.ShutdownTimeout)
	viper.SetDefault("theme.file", d.Theme.File)
	viper.SetDefault("log.mode", d.Log.Mode)
}

// loadConfig reads the merged flag, env, and file configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// loadContent loads and validates the concept collection. Validation
// problems are listed on w before the error is returned.
func loadContent(ctx context.Context, cfg types.Config, w io.Writer) (*content.Collection, error) {
	coll, err := content.Load(ctx, cfg.Content, log)
	if err != nil {
		var verr *content.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				fmt.Fprintf(w, "  %s\n", p)
			}
			return nil, fmt.Errorf("%d problem(s) in %s (schema %s)", len(verr.Problems), cfg.Content.Dir, cfg.Content.Schema)
		}
		return nil, err
	}
	return coll, nil
}

func openIndex(cfg types.Config) (*index.Store, error) {
	return index.NewStore(cfg.Index, log)
}
