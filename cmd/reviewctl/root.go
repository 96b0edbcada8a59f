package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review"
	"github.com/kailas-cloud/review/internal/config"
	logpkg "github.com/kailas-cloud/review/internal/logger"
	"github.com/kailas-cloud/review/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	env      string
	cfgFile  string
	logLevel string
	out      io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{out: out}

	root := &cobra.Command{
		Use:   "reviewctl",
		Short: "Manage a ReView product catalog",
		Long: `reviewctl creates the catalog schema, loads catalog exports, and runs the
review-driven product finder and its tools against the configured database.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment name (config/<env>.yaml)")
	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path (overrides --env)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newMigrateCmd(opts),
		newLoadCmd(opts),
		newFindCmd(opts),
		newStatsCmd(opts),
		newToolsCmd(opts),
	)
	return root
}

func (o *globalOptions) loadConfig() (config.Config, error) {
	if o.cfgFile != "" {
		return config.LoadFile(o.cfgFile)
	}
	return config.Load(o.env)
}

// openClient builds an SDK client from the configuration file.
func (o *globalOptions) openClient(ctx context.Context) (*review.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logpkg.NewLogger("cli", o.logLevel)
	if err != nil {
		return nil, err
	}
	return review.New(ctx, clientOptions(&cfg, logger)...)
}

func clientOptions(cfg *config.Config, logger *zap.Logger) []review.Option {
	var opts []review.Option
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		opts = append(opts, review.WithSQLite(cfg.Database.DSN))
	default:
		opts = append(opts, review.WithPostgres(cfg.Database.DSN), review.WithMaxConns(cfg.Database.MaxConns))
	}

	if cfg.Embedding.Enabled() {
		opts = append(opts,
			review.WithOpenAI(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions),
			review.WithOpenAIBaseURL(cfg.Embedding.BaseURL),
		)
		if cfg.Cache.Enabled && len(cfg.Cache.Addrs) > 0 {
			opts = append(opts, review.WithEmbeddingCache(cfg.Cache.Addrs[0], cfg.Cache.Password, cfg.Cache.TTL()))
		}
	}

	s := cfg.Search
	opts = append(opts,
		review.WithSearchConfig(review.SearchConfig{
			SimilarityThreshold:    s.SimilarityThreshold,
			ReviewCandidates:       s.ReviewCandidates,
			SampleReviews:          s.SampleReviews,
			FallbackMinRatingCount: s.FallbackMinRatingCount,
			EmbeddingTimeout:       s.EmbeddingTimeout(),
			DefaultMinRating:       s.DefaultMinRating,
			DefaultLimit:           s.DefaultLimit,
			MaxLimit:               s.MaxLimit,
		}),
		review.WithLogger(logger),
	)
	return opts
}

// printJSON writes v indented. json.RawMessage and JSON strings are re-indented.
func printJSON(w io.Writer, v any) error {
	var data []byte
	var err error
	switch t := v.(type) {
	case string:
		data, err = indent([]byte(t))
	case json.RawMessage:
		data, err = indent(t)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func indent(raw []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
