package cmd

import (
	"context"
	"fmt"
	"os"

	"asset-resolver/core/catalog"
	"asset-resolver/core/config"
	"asset-resolver/core/graph"
	"asset-resolver/core/logger"
	"asset-resolver/core/provider"
	"asset-resolver/core/resolver"
	"asset-resolver/core/storage"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchOutput string
var fetchLocalOnly bool

// fetchCmd resolves a single key and writes the asset bytes out.
var fetchCmd = &cobra.Command{
	Use:   "fetch [key]",
	Short: "Resolve a single asset key",
	Long:  `Resolves the key through the provider chain (bundle store, then local fallback) and writes the asset bytes to stdout or a file.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runFetch(cmd.Context(), args[0])
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "write the asset to this file instead of stdout")
	fetchCmd.Flags().BoolVar(&fetchLocalOnly, "local-first", false, "consult the local fallback before the bundle store")
	RootCmd.AddCommand(fetchCmd)
}

func runFetch(ctx context.Context, key string) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	// Connect to the catalog database (Optional)
	var cat *catalog.Catalog
	if cfg.Resolver.CatalogEnabled {
		if conn, err := catalog.Connect(cfg.Catalog); err != nil {
			logg.Warn("Optional catalog connection failed", zap.Error(err))
		} else {
			cat = catalog.New(conn)
		}
	}

	sink := graph.New(logg)
	primary := provider.NewBundleProvider(store, cfg.Storage.Bucket, cat, sink, nil, logg)
	fallback := provider.NewLocalProvider(afero.NewOsFs(), cfg.Resolver.FallbackDir, nil, logg)
	chain := provider.NewChain(primary, fallback, sink, logg)
	res := resolver.New(chain, sink, logg)

	opts := []resolver.Option{}
	if fetchLocalOnly {
		opts = append(opts, resolver.WithFallbackFirst())
	}

	blob, err := resolver.TryGet[*provider.Blob](res, ctx, key, opts...)
	if err != nil {
		logg.Fatal("Fetch failed", zap.String("key", key), zap.Error(err))
	}

	if fetchOutput != "" {
		if err := os.WriteFile(fetchOutput, blob.Data, 0o644); err != nil {
			logg.Fatal("Failed to write output file", zap.Error(err))
		}
		logg.Info("Asset written",
			zap.String("key", key),
			zap.String("output", fetchOutput),
			zap.Int("bytes", len(blob.Data)),
		)
		return
	}

	_, _ = os.Stdout.Write(blob.Data)
}
