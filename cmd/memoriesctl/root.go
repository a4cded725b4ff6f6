package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/alumni-memories/internal/domain/memory"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/DjordjeVuckovic/alumni-memories/internal/storage/factory"
	"github.com/spf13/cobra"
)

type globals struct {
	out       io.Writer
	storeType string
	seedFile  string
	asJSON    bool
	verbose   bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := &globals{out: out}

	rootCmd := &cobra.Command{
		Use:           "memoriesctl",
		Short:         "Search and upload alumni memories from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if g.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVarP(&g.storeType, "storage", "s", "", "Storage backend: pg, es or in_mem (defaults to STORAGE_TYPE)")
	rootCmd.PersistentFlags().StringVar(&g.seedFile, "seed", "", "JSON file of memories loaded before the command runs")
	rootCmd.PersistentFlags().BoolVar(&g.asJSON, "json", false, "Print JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newSearchCmd(g),
		newSuggestCmd(g),
		newPopularTagsCmd(g),
		newUploadCmd(g),
		newSeedCmd(g),
	)
	return rootCmd
}

// open connects to the configured backend and applies --seed.
func (g *globals) open(ctx context.Context) (*factory.Backend, error) {
	if g.storeType != "" {
		if err := os.Setenv("STORAGE_TYPE", g.storeType); err != nil {
			return nil, err
		}
	}
	cfg, err := factory.LoadEnv()
	if err != nil {
		return nil, err
	}
	backend, err := factory.NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if g.seedFile != "" {
		n, err := seedFromFile(ctx, backend.Store, g.seedFile)
		if err != nil {
			backend.Close()
			return nil, err
		}
		slog.Debug("Seeded memories", "count", n, "file", g.seedFile)
	}
	return backend, nil
}

func (g *globals) printJSON(v any) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func seedFromFile(ctx context.Context, w storage.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var ms []memory.Memory
	if err := json.NewDecoder(f).Decode(&ms); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	if err := w.PutBulk(ctx, ms); err != nil {
		return 0, fmt.Errorf("seed memories: %w", err)
	}
	return len(ms), nil
}
