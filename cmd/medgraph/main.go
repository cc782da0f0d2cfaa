package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"medgraph/internal/bootstrap"
	"medgraph/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are bound once on the root command and read by every
// subcommand when it builds the app.
type globalFlags struct {
	dataDir     string
	configPath  string
	backend     string
	metricsAddr string
	asJSON      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "medgraph",
		Short:         "Patient relationship graph and consultation terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", defaultDataDir(), "directory for config, logs and the embedded database")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <data-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "override backend kind: http|neo4j|sqlite")
	root.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	root.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "print results as JSON")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newSearchCmd(flags))
	root.AddCommand(newGraphCmd(flags))
	root.AddCommand(newLinkCmd(flags, true))
	root.AddCommand(newLinkCmd(flags, false))
	root.AddCommand(newPersonCmd(flags))
	root.AddCommand(newDiseaseCmd(flags))
	root.AddCommand(newConsultCmd(flags))
	root.AddCommand(newVitalsCmd(flags))
	root.AddCommand(newDiagnoseCmd(flags))
	root.AddCommand(newDiagnosisStatusCmd(flags))
	root.AddCommand(newPrescribeCmd(flags))
	root.AddCommand(newTrackerCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "medgraph")
	}
	return ".medgraph"
}

func loadApp(ctx context.Context, flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.dataDir, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.backend != "" {
		cfg.Backend.Kind = flags.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	return bootstrap.New(ctx, cfg)
}

// withApp builds the app, runs fn and always releases the backend.
func withApp(flags *globalFlags, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := context.Background()
	app, err := loadApp(ctx, flags)
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)
	if err := app.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the medgraph terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, func(_ context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(app)
			})
		},
	}
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find patients whose name contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				hits, err := app.SearchCLI.Search(ctx, args[0])
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), hits)
				}
				if len(hits) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No patients found")
					return nil
				}
				for _, h := range hits {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", h.Name, h.Age)
				}
				return nil
			})
		},
	}
}

func newGraphCmd(flags *globalFlags) *cobra.Command {
	var width, height int
	graph := &cobra.Command{
		Use:   "graph <person>",
		Short: "Show a patient's relationship graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, drawing, err := app.GraphCLI.Show(ctx, args[0], width, height)
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				for _, r := range out.Relationships {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", r.Person, r.Disease)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), drawing)
				return nil
			})
		},
	}
	graph.Flags().IntVar(&width, "width", 80, "drawing width in cells")
	graph.Flags().IntVar(&height, "height", 24, "drawing height in cells")
	return graph
}

func newLinkCmd(flags *globalFlags, link bool) *cobra.Command {
	use, short := "link <person> <disease>", "Relate a patient to a disease"
	if !link {
		use, short = "unlink <person> <disease>", "Remove a patient-disease relationship"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				run := app.GraphCLI.Link
				if !link {
					run = app.GraphCLI.Unlink
				}
				out, err := run(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				return nil
			})
		},
	}
}

func newPersonCmd(flags *globalFlags) *cobra.Command {
	person := &cobra.Command{Use: "person", Short: "Patient commands"}

	var age int
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.EntityCLI.CreatePerson(ctx, args[0], age)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				return nil
			})
		},
	}
	create.Flags().IntVar(&age, "age", 0, "age in years")
	_ = create.MarkFlagRequired("age")

	list := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				persons, err := app.EntityCLI.ListPersons(ctx)
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), persons)
				}
				for _, p := range persons {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", p.ID, p.Age)
				}
				return nil
			})
		},
	}

	person.AddCommand(create, list)
	return person
}

func newDiseaseCmd(flags *globalFlags) *cobra.Command {
	disease := &cobra.Command{Use: "disease", Short: "Disease commands"}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a disease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.EntityCLI.CreateDisease(ctx, args[0], description)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				return nil
			})
		},
	}
	create.Flags().StringVar(&description, "description", "", "disease description")
	_ = create.MarkFlagRequired("description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List diseases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				diseases, err := app.EntityCLI.ListDiseases(ctx)
				if err != nil {
					return err
				}
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), diseases)
				}
				for _, d := range diseases {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.ID, d.ICD10, d.Description)
				}
				return nil
			})
		},
	}

	disease.AddCommand(create, list)
	return disease
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and client metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				persons, err := app.EntityCLI.ListPersons(ctx)
				if err != nil {
					return err
				}
				diseases, err := app.EntityCLI.ListDiseases(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "backend\t%s\n", app.Config.Backend.Kind)
				_, _ = fmt.Fprintf(w, "config\t%s\n", app.Config.Source)
				_, _ = fmt.Fprintf(w, "patients\t%d\n", len(persons))
				_, _ = fmt.Fprintf(w, "diseases\t%d\n", len(diseases))
				return printMetrics(w, app)
			})
		},
	}
}
