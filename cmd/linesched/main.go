package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshharrison/linesched/internal/claude"
	"github.com/joshharrison/linesched/internal/config"
	"github.com/joshharrison/linesched/internal/planner"
	"github.com/joshharrison/linesched/internal/production"
	"github.com/joshharrison/linesched/internal/reporter"
	"github.com/joshharrison/linesched/internal/server"
	"github.com/joshharrison/linesched/internal/state"
	"github.com/joshharrison/linesched/internal/ui"
)

var (
	cfg = config.Load()

	flagCatalog        string
	flagStateDir       string
	flagParallelism    int
	flagJSON           bool
	flagLogLevel       string
	flagLogFile        string
	flagOutput         string
	flagTicket         bool
	flagTicketTemplate string
	flagNoSave         bool
	flagVerbose        bool

	logger      *slog.Logger
	closeLogger = func() error { return nil }
)

func main() {
	if err := execute(newRootCmd(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and closes the log file whether or not the
// command failed. cobra skips post-run hooks when RunE errors.
func execute(rootCmd *cobra.Command, args []string) (err error) {
	defer func() {
		if cerr := closeLogger(); cerr != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "linesched",
		Short: "Sequence production runs on a flow-shop line",
		Long: `linesched expands product quantities into one job per unit, orders them
with the Campbell-Dudek-Smith heuristic over Johnson's rule, and simulates
the line to report start and end times, makespan and per-machine idle time.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLogger = config.SetupLogger(flagLogFile, config.ParseLogLevel(flagLogLevel))
			slog.SetDefault(logger)
			return nil
		},
	}

	// Global flags default to the environment.
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", cfg.CatalogPath, "Catalog YAML file (default: built-in line)")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", cfg.StateDir, "Directory for saved runs")
	rootCmd.PersistentFlags().IntVar(&flagParallelism, "parallelism", cfg.Parallelism, "Split points evaluated concurrently")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", cfg.LogLevel.String(), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", cfg.LogFile, "Also write JSON logs to this file")

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func loadCatalog() (*production.Catalog, error) {
	if flagCatalog == "" {
		return production.DefaultCatalog(), nil
	}
	return production.LoadCatalog(flagCatalog)
}

func planConfig() planner.PlanConfig {
	return planner.PlanConfig{
		Parallelism: flagParallelism,
		CatalogPath: flagCatalog,
		Logger:      logger,
	}
}

// readQuantities merges quantities from a JSON file (at a gjson path) with
// inline values; inline values win.
func readQuantities(file, path string, inline map[string]int) (map[string]int, error) {
	out := make(map[string]int)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read quantities: %w", err)
		}
		parsed, err := production.ParseQuantities(data, path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		for k, v := range parsed {
			out[k] = v
		}
	}
	for k, v := range inline {
		if v < 0 {
			return nil, fmt.Errorf("quantity for %q must be >= 0 (got %d)", k, v)
		}
		out[k] = v
	}
	return out, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, cancelling..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func planCmd() *cobra.Command {
	var (
		flagQuantities string
		flagPath       string
		flagQty        map[string]int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Sequence and simulate the given production quantities",
		Example: `  linesched plan --qty "Product A=1,Product C=3"
  linesched plan --quantities order.json --path order.lines`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			quantities, err := readQuantities(flagQuantities, flagPath, flagQty)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			plan, err := planner.Generate(ctx, catalog, quantities, planConfig())
			if err != nil {
				return fmt.Errorf("generate plan: %w", err)
			}
			return emitPlan(plan)
		},
	}

	cmd.Flags().StringVar(&flagQuantities, "quantities", "", "JSON file of product quantities")
	cmd.Flags().StringVar(&flagPath, "path", "", "Path to the quantities object inside the JSON file")
	cmd.Flags().StringToIntVar(&flagQty, "qty", nil, "Inline quantities (e.g. \"Product A=2,Product B=1\")")
	addOutputFlags(cmd)

	return cmd
}

func optimizeCmd() *cobra.Command {
	var (
		flagMinFile  string
		flagPath     string
		flagMin      map[string]int
		flagMaxNodes int
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Choose the most profitable product mix, then schedule it",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			minimums, err := readQuantities(flagMinFile, flagPath, flagMin)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			solver := &production.BranchAndBound{MaxNodes: flagMaxNodes}
			plan, err := planner.Optimize(ctx, catalog, solver, minimums, planConfig())
			if err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
			return emitPlan(plan)
		},
	}

	cmd.Flags().StringVar(&flagMinFile, "min-file", "", "JSON file of minimum quantities")
	cmd.Flags().StringVar(&flagPath, "path", "products_min", "Path to the minimums object inside the JSON file")
	cmd.Flags().StringToIntVar(&flagMin, "min", nil, "Inline minimum quantities (e.g. \"Product A=1\")")
	cmd.Flags().IntVar(&flagMaxNodes, "max-nodes", production.DefaultMaxNodes, "Search node limit for the mix solver")
	addOutputFlags(cmd)

	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Save plan JSON to file")
	cmd.Flags().BoolVar(&flagTicket, "ticket", false, "Print a dispatch ticket instead of the report")
	cmd.Flags().StringVar(&flagTicketTemplate, "ticket-template", "", "Custom dispatch ticket template path")
	cmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run in the state directory")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show every split candidate")
}

// emitPlan saves the plan and prints it in the requested form.
func emitPlan(plan *planner.Plan) error {
	if !flagNoSave {
		if err := state.NewStore(flagStateDir).Save(plan); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	if flagOutput != "" {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagOutput, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", flagOutput, err)
		}
	}

	rpt := reporter.New(plan)
	switch {
	case flagJSON:
		data, err := rpt.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case flagTicket || flagTicketTemplate != "":
		ticket, err := planner.RenderTicket(plan, flagTicketTemplate)
		if err != nil {
			return err
		}
		fmt.Print(ticket)
	default:
		ui.PrintLogo(os.Stdout)
		rpt.PrintReport(os.Stdout, flagVerbose)
		fmt.Println(rpt.Summary())
	}
	return nil
}

func showCmd() *cobra.Command {
	var (
		flagSummarize bool
		flagModel     string
	)

	cmd := &cobra.Command{
		Use:   "show [plan-id]",
		Short: "Show a saved run (default: the latest)",
		Example: `  linesched show
  linesched show line-1a2b3c4d --summarize`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.NewStore(flagStateDir)

			var (
				plan *planner.Plan
				err  error
			)
			if len(args) == 1 {
				plan, err = store.Load(args[0])
			} else {
				plan, err = store.Latest()
			}
			if errors.Is(err, state.ErrNoRuns) {
				return fmt.Errorf("no saved runs in %s", store.Dir())
			}
			if err != nil {
				return err
			}

			var narrative string
			if flagSummarize {
				client, err := claude.NewClient("", flagModel)
				if err != nil {
					return err
				}

				ctx, cancel := signalContext()
				defer cancel()

				logger.Info("requesting plan summary", "plan", plan.ID)
				narrative, err = client.SummarisePlan(ctx, plan)
				if err != nil {
					return fmt.Errorf("summarise plan: %w", err)
				}
			}

			rpt := reporter.New(plan)
			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				if !flagSummarize {
					fmt.Println(string(data))
					return nil
				}
				return outputJSON(struct {
					Schedule  json.RawMessage `json:"schedule"`
					Narrative string          `json:"narrative"`
				}{data, narrative})
			}
			rpt.PrintReport(os.Stdout, flagVerbose)
			if flagSummarize {
				fmt.Printf("\n%s\n%s\n", ui.BoldCyan("🧠 Summary"), narrative)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show every split candidate")
	cmd.Flags().BoolVar(&flagSummarize, "summarize", false, "Ask Claude for a narrative of the plan (needs ANTHROPIC_API_KEY)")
	cmd.Flags().StringVar(&flagModel, "model", cfg.Model, "Claude model for --summarize")

	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := state.NewStore(flagStateDir).List()
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(runs)
			}
			if len(runs) == 0 {
				fmt.Printf("%s No saved runs.\n", ui.Dim("∅"))
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tUNITS\tMAKESPAN")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Units, r.Makespan)
			}
			return tw.Flush()
		},
	}
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete every saved run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.NewStore(flagStateDir)
			if !store.Exists() {
				fmt.Printf("%s Nothing to clean in %s.\n", ui.Dim("∅"), store.Dir())
				return nil
			}
			if err := store.Clean(); err != nil {
				return fmt.Errorf("clean %s: %w", store.Dir(), err)
			}
			fmt.Printf("🧹 Removed %s\n", ui.Bold(store.Dir()))
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the machine and product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(catalog)
			}
			data, err := catalog.Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var flagAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			srv := server.New(catalog, &production.BranchAndBound{}, state.NewStore(flagStateDir), planConfig())
			fmt.Printf("🏭 %s listening on %s\n", ui.BoldCyan("linesched:"), ui.Bold(flagAddr))
			return srv.Run(ctx, flagAddr)
		},
	}

	cmd.Flags().StringVar(&flagAddr, "addr", cfg.Addr, "Listen address")

	return cmd
}

// --- Output helpers ---

func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
