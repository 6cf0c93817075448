package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tesseradb/tessera/internal/manager"
	"github.com/tesseradb/tessera/pkg/graph"
	"github.com/tesseradb/tessera/pkg/insert"
	"github.com/tesseradb/tessera/pkg/loader"
	"github.com/tesseradb/tessera/pkg/pattern"
	"github.com/tesseradb/tessera/pkg/store"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var (
		dataDir  string
		keyspace string
		lowMem   bool
		verbose  bool
	)

	root := &cobra.Command{
		Use:           "tessera",
		Short:         "Tessera knowledge graph database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	defaultData := os.Getenv("TESSERA_DATA")
	if defaultData == "" {
		defaultData = "./data"
	}
	root.PersistentFlags().StringVar(&dataDir, "data", defaultData, "base directory for keyspace stores")
	root.PersistentFlags().StringVar(&keyspace, "keyspace", "default", "keyspace to operate on")
	root.PersistentFlags().BoolVar(&lowMem, "low-mem", false, "optimize for low-memory environments")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	openStore := func() (*store.GraphStore, *manager.StoreManager, error) {
		profile := manager.MemoryProfileDefault
		if lowMem {
			profile = manager.MemoryProfileLow
		}
		mgr := manager.NewStoreManager(dataDir, profile, false)
		s, err := mgr.GetStore(keyspace, true)
		if err != nil {
			return nil, nil, err
		}
		return s, mgr, nil
	}

	defineCmd := &cobra.Command{
		Use:   "define <file.yaml>",
		Short: "Apply the schema section of a pattern document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			s, mgr, err := openStore()
			if err != nil {
				return err
			}
			defer mgr.CloseAll()
			return applyDefines(cmd.Context(), s, doc)
		},
	}

	insertCmd := &cobra.Command{
		Use:   "insert <file.yaml>",
		Short: "Run the insert operation described by a pattern document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			s, mgr, err := openStore()
			if err != nil {
				return err
			}
			defer mgr.CloseAll()

			ctx := cmd.Context()
			if err := applyDefines(ctx, s, doc); err != nil {
				return err
			}
			result, err := insert.InsertAll(ctx, s, doc.Patterns(), nil)
			if err != nil {
				return err
			}
			printBindings(cmd, result)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the tessera version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tessera", version)
		},
	}

	root.AddCommand(defineCmd, insertCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func applyDefines(ctx context.Context, s *store.GraphStore, doc *loader.Document) error {
	for _, td := range doc.Define {
		if _, err := s.DefineType(ctx, td.Label, graph.Kind(td.Kind)); err != nil {
			return fmt.Errorf("define %s: %w", td.Label, err)
		}
	}
	return nil
}

func printBindings(cmd *cobra.Command, result map[pattern.Var]graph.Concept) {
	vars := make([]pattern.Var, 0, len(result))
	for v := range result {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	for _, v := range vars {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", v, result[v])
	}
}
