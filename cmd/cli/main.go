package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gridsig/adapters/archive/sqlite"
	"gridsig/adapters/gridio"
	"gridsig/adapters/rng"
	"gridsig/adapters/viz"
	"gridsig/app"
	"gridsig/domain/core"
	"gridsig/domain/grid"
	"gridsig/domain/scan"
	"gridsig/internal"
	"gridsig/internal/config"
	"gridsig/internal/controls"
	"gridsig/internal/scanner"
	"gridsig/ports"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gridsig",
		Short: "Grid resonance scanning and empirical significance auditing",
	}

	rootCmd.AddCommand(
		newAuditCmd(),
		newArchiveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAuditCmd() *cobra.Command {
	var (
		gridFile   string
		streamFile string
		title      string
		indexMode  string
		region     []int
		nControls  int
		seed       int64
		alpha      float64
		histogram  bool
		htmlOut    bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Scan a grid against a byte stream and test the score against a null model",
		Long: `Scan a grid for the XOR pulse that maximizes symbol resonance, then test
whether the observed score is distinguishable from frequency-matched random
streams.

Example: gridsig audit --grid grid.json --stream digest.hex --seed 12345`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if gridFile == "" {
				gridFile = cfg.Paths.GridFile
			}
			if streamFile == "" {
				streamFile = cfg.Paths.StreamFile
			}
			if gridFile == "" || streamFile == "" {
				return fmt.Errorf("both --grid and --stream are required (or set GRIDSIG_GRID_FILE / GRIDSIG_STREAM_FILE)")
			}
			if nControls == 0 {
				nControls = cfg.Audit.NControls
			}
			if seed == 0 {
				seed = cfg.Audit.Seed
			}
			if alpha == 0 {
				alpha = cfg.Audit.Alpha
			}
			return runAudit(cmd.Context(), cfg, auditOptions{
				gridFile:   gridFile,
				streamFile: streamFile,
				title:      title,
				indexMode:  indexMode,
				region:     region,
				nControls:  nControls,
				seed:       seed,
				alpha:      alpha,
				histogram:  histogram,
				htmlOut:    htmlOut,
			})
		},
	}

	cmd.Flags().StringVar(&gridFile, "grid", "", "Grid file (.json int matrix or .xlsx)")
	cmd.Flags().StringVar(&streamFile, "stream", "", "Byte stream file (.hex digest or raw bytes)")
	cmd.Flags().StringVar(&title, "title", "resonance audit", "Report title")
	cmd.Flags().StringVar(&indexMode, "index", "linear", "Cell-to-stream index mapping: linear|column|row|diagonal")
	cmd.Flags().IntSliceVar(&region, "region", nil, "Scan region as row_start,row_end,col_start,col_end (default: full grid)")
	cmd.Flags().IntVar(&nControls, "controls", 0, "Number of Monte Carlo controls")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for deterministic control generation")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "Family-wise significance level")
	cmd.Flags().BoolVar(&histogram, "histogram", false, "Write a null-distribution histogram page")
	cmd.Flags().BoolVar(&htmlOut, "html", false, "Write an HTML report summary")

	return cmd
}

type auditOptions struct {
	gridFile   string
	streamFile string
	title      string
	indexMode  string
	region     []int
	nControls  int
	seed       int64
	alpha      float64
	histogram  bool
	htmlOut    bool
}

func runAudit(ctx context.Context, cfg *config.Config, opt auditOptions) error {
	logger := internal.DefaultLogger

	g, err := gridio.NewGridReader("").ReadGrid(opt.gridFile)
	if err != nil {
		return err
	}
	stream, err := gridio.NewStreamReader().ReadStream(opt.streamFile)
	if err != nil {
		return err
	}

	sc, err := scanner.NewScanner(scan.DefaultWeights())
	if err != nil {
		return err
	}
	indexFn, err := indexFuncFor(opt.indexMode)
	if err != nil {
		return err
	}
	sc.SetIndexFunc(indexFn)
	if cfg.Audit.Workers > 0 {
		sc.SetNumWorkers(cfg.Audit.Workers)
	}

	region := grid.FullRegion(g.Size())
	if len(opt.region) > 0 {
		if len(opt.region) != 4 {
			return fmt.Errorf("--region needs exactly 4 values, got %d", len(opt.region))
		}
		region = grid.Region{RowStart: opt.region[0], RowEnd: opt.region[1], ColStart: opt.region[2], ColEnd: opt.region[3]}
	}

	var archive ports.ReportArchive
	if cfg.Archive.Enabled {
		store, err := sqlite.Open(cfg.Archive.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		archive = store
	}

	svc := app.NewAuditService(sc, controls.NewGenerator(rng.NewAdapter()), archive, logger)
	result, err := svc.RunAudit(ctx, app.AuditRequest{
		Title:     opt.title,
		GridCtx:   grid.NewContext(g),
		Stream:    stream,
		Region:    region,
		NControls: opt.nControls,
		Seed:      opt.seed,
		Alpha:     opt.alpha,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Paths.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	base := filepath.Join(cfg.Paths.ReportDir, result.RunID.String())

	rec := result.Document.Tests["resonance_score"]
	fmt.Printf("=== %s ===\n", result.Document.Title)
	fmt.Printf("run %s (%d ms)\n", result.RunID, result.RuntimeMs)
	fmt.Printf("best pulse %d, score %.4f over %d cells\n",
		result.Scan.BestPulse, result.Scan.Score, result.Scan.Region.CellCount())
	fmt.Printf("p=%.6g against %d controls (threshold %.6g): significant=%v\n",
		rec.PValue, rec.Controls.Count, rec.Threshold, rec.Significant)

	if err := writeJSON(base+".json", result.Document); err != nil {
		return err
	}
	fmt.Printf("report: %s.json\n", base)

	if opt.histogram {
		if err := viz.WriteHistogram(base+"_controls.html", opt.title, result.Controls, result.Scan.Score); err != nil {
			return err
		}
		fmt.Printf("histogram: %s_controls.html\n", base)
	}
	if opt.htmlOut {
		md := markdownSummary(result)
		if err := viz.WriteHTMLReport(base+".html", opt.title, md); err != nil {
			return err
		}
		fmt.Printf("summary: %s.html\n", base)
	}
	return nil
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived audit reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := sqlite.Open(cfg.Archive.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s  %s  tests=%d  %s\n", e.RunID, e.CreatedAt, e.NTests, e.Title)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "Print an archived report document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			runID, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			store, err := sqlite.Open(cfg.Archive.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			doc, err := store.Get(cmd.Context(), runID)
			if err != nil {
				return err
			}
			return writeJSONTo(os.Stdout, doc)
		},
	})

	return cmd
}

func indexFuncFor(mode string) (scan.IndexFunc, error) {
	switch mode {
	case "linear":
		return scan.LinearIndex, nil
	case "column":
		return scan.ColumnIndex, nil
	case "row":
		return scan.RowIndex, nil
	case "diagonal":
		return scan.DiagonalIndex, nil
	default:
		return nil, fmt.Errorf("unknown index mode %q (want linear|column|row|diagonal)", mode)
	}
}
