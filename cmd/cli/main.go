package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gochart/adapters/excel"
	"gochart/app"
	"gochart/domain/chart"
	"gochart/domain/frame"
	"gochart/domain/schema"
	"gochart/internal"
	"gochart/internal/charts"
	"gochart/internal/config"
	"gochart/internal/container"
	"gochart/internal/report"
	"gochart/models"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gochart-cli",
		Short: "GoChart CLI for profiling data, resolving axes and building charts",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				internal.DefaultLogger.Debug("no .env file found, using system environment variables")
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSchemaCmd(),
		newResolveCmd(),
		newBuildCmd(),
		newRunCmd(),
		newBatchCmd(),
		newPreviewCmd(),
		newUsageCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSchemaCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "schema [data-file]",
		Short: "Profile a spreadsheet or CSV into a data summary",
		Long: `Read Sheet1 of an xlsx file (or a CSV) and infer column tribes,
distinct counts and SQL types.

Example: gochart-cli schema sales.xlsx > summary.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, _, err := readData(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default Sheet1)")
	return cmd
}

// chartFlags are shared by resolve and build
type chartFlags struct {
	summaryFile string
	dataFile    string
	chartType   string
	question    string
	title       string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.summaryFile, "summary", "", "Data summary JSON (profiled from --data when omitted)")
	cmd.Flags().StringVar(&f.dataFile, "data", "", "Spreadsheet or CSV holding the query result")
	cmd.Flags().StringVar(&f.chartType, "type", "", "Chart type, e.g. bar_chart")
	cmd.Flags().StringVar(&f.question, "question", "", "Question the chart answers")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title (defaults to the question)")
	_ = cmd.MarkFlagRequired("type")
}

func (f *chartFlags) chartRequest() (models.ChartRequest, error) {
	t, err := chart.ParseChartType(f.chartType)
	if err != nil {
		return models.ChartRequest{}, err
	}
	return models.ChartRequest{ChartType: t, Question: f.question, Title: f.title}, nil
}

func (f *chartFlags) summary(ctx context.Context) (*schema.DataSummary, error) {
	if f.summaryFile != "" {
		var s schema.DataSummary
		if err := readJSON(f.summaryFile, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	if f.dataFile == "" {
		return nil, fmt.Errorf("either --summary or --data is required")
	}
	s, _, err := readData(ctx, f.dataFile, "")
	return s, err
}

func newResolveCmd() *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Ask the model for the axis binding of one question",
		Long: `Resolve the axis binding for a chart type and question against a data summary.

Requires LLM_MODEL and TARGET_TOKEN_LIMIT (plus LLM_API_KEY for hosted models).

Example:
  gochart-cli resolve --summary summary.json --type bar_chart --question "Revenue by region"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cr, err := flags.chartRequest()
			if err != nil {
				return err
			}
			summary, err := flags.summary(ctx)
			if err != nil {
				return err
			}
			c, err := newContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			binding, err := c.Pipeline.ResolveOnly(ctx, *summary, cr)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), binding)
		},
	}
	flags.register(cmd)
	return cmd
}

func newBuildCmd() *cobra.Command {
	var flags chartFlags
	var bindingFile string
	var xlsxOut string
	var rowLimit int

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Shape a query result into a chart payload",
		Long: `Build the chart payload for a spreadsheet/CSV query result.

With --binding the binding is read from a flat JSON file and no model is
called; otherwise the binding is resolved first.

Example:
  gochart-cli build --data result.csv --type line_chart --binding binding.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cr, err := flags.chartRequest()
			if err != nil {
				return err
			}
			if flags.dataFile == "" {
				return fmt.Errorf("--data is required")
			}
			summary, rows, err := readData(ctx, flags.dataFile, "")
			if err != nil {
				return err
			}

			if bindingFile == "" {
				if flags.summaryFile != "" {
					if summary, err = flags.summary(ctx); err != nil {
						return err
					}
				}
				c, err := newContainer(ctx)
				if err != nil {
					return err
				}
				defer c.Shutdown(context.Background())

				cr.Result = rows
				res, err := c.Pipeline.Run(ctx, &models.PipelineRequest{Summary: *summary, Main: cr})
				if err != nil {
					return err
				}
				if len(res.Charts) == 0 {
					return fmt.Errorf("no chart produced: %s", res.Failures[0].Reason)
				}
				return writeJSON(cmd.OutOrStdout(), res.Charts[0])
			}

			var binding chart.AxisBinding
			if cr.ChartType.IsTable() {
				binding = chart.AllColumns()
			} else if err := readJSON(bindingFile, &binding); err != nil {
				return err
			}
			registry := charts.NewRegistry(charts.Deps{
				DateBuckets:   charts.NewDateBucketer(0),
				TableRowLimit: rowLimit,
			})
			payload, err := registry.Build(ctx, charts.Request{
				ChartID:  filepath.Base(flags.dataFile),
				Question: cr.Question,
				Title:    cr.Title,
				Position: 1,
				Type:     cr.ChartType,
				Binding:  binding,
				Frame:    rows,
			})
			if err != nil {
				return err
			}
			if tp, ok := payload.(*chart.TablePayload); ok && xlsxOut != "" {
				if err := excel.WriteTable(xlsxOut, "Chart", tp.Columns, tp.Rows); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Also write table_chart rows to this workbook")
	cmd.Flags().StringVar(&bindingFile, "binding", "", "Flat axis binding JSON; skips the model call")
	cmd.Flags().IntVar(&rowLimit, "row-limit", 100, "Row cap for table charts")
	return cmd
}

func newRunCmd() *cobra.Command {
	var withDB bool

	cmd := &cobra.Command{
		Use:   "run [request.json]",
		Short: "Run the full pipeline for a main question and its sub-questions",
		Long: `Run a PipelineRequest (data_summary, main, sub_requests) and print the result.

Requests carrying sql but no result are executed against DATABASE_URL when
--db is set.

Example: gochart-cli run request.json > result.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var req models.PipelineRequest
			if err := readJSON(args[0], &req); err != nil {
				return err
			}
			c, err := newContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			if withDB {
				if err := c.InitWithDatabase(ctx); err != nil {
					return err
				}
			}

			res, err := c.Pipeline.Run(ctx, &req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&withDB, "db", false, "Connect DATABASE_URL for SQL execution, feedback and usage")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var concurrency int
	var outDir string

	cmd := &cobra.Command{
		Use:   "batch [request-dir]",
		Short: "Run every request JSON in a directory concurrently",
		Long: `Run each *.json PipelineRequest in a directory and write <name>.result.json
next to it (or into --out). A failing request does not stop the others.

Example: gochart-cli batch ./requests --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			files, err := requestFiles(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = args[0]
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			c, err := newContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			var failed atomic.Int32
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for _, file := range files {
				g.Go(func() error {
					if err := runRequestFile(gctx, c.Pipeline, file, outDir); err != nil {
						failed.Add(1)
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", filepath.Base(file), err)
					}
					return gctx.Err()
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d requests, %d failed\n", len(files), failed.Load())
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum concurrent pipeline runs")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for result files")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var asHTML bool
	var maxRows int

	cmd := &cobra.Command{
		Use:   "preview [result.json]",
		Short: "Render a pipeline result as markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw struct {
				RunID  string            `json:"run_id"`
				Charts []json.RawMessage `json:"charts"`
			}
			if err := readJSON(args[0], &raw); err != nil {
				return err
			}
			payloads := make([]chart.Payload, 0, len(raw.Charts))
			for i, item := range raw.Charts {
				p, err := chart.DecodePayload(item)
				if err != nil {
					return fmt.Errorf("chart %d: %w", i, err)
				}
				payloads = append(payloads, p)
			}

			opts := report.Options{MaxRows: maxRows, Title: "Run " + raw.RunID}
			if asHTML {
				_, err := cmd.OutOrStdout().Write(report.HTML(payloads, opts))
				return err
			}
			_, err := io.WriteString(cmd.OutOrStdout(), report.Markdown(payloads, opts))
			return err
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	cmd.Flags().IntVar(&maxRows, "max-rows", 20, "Rows shown per table (0 for all)")
	return cmd
}

func newUsageCmd() *cobra.Command {
	var userID string
	var since time.Duration
	var detail bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Report persisted LLM token usage for a user",
		Long: `Summarize token usage recorded in DATABASE_URL for one user, by operation.
With --detail every recorded call is printed instead.

Example: gochart-cli usage --user u1 --since 168h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			if err := c.InitWithDatabase(ctx); err != nil {
				return err
			}

			end := time.Now().UTC()
			start := end.Add(-since)
			if detail {
				records, err := c.Usage.GetUserUsage(ctx, userID, start, end)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), records)
			}
			summary, err := c.Usage.GetUserUsageSummary(ctx, userID, start, end)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID the usage was attributed to")
	cmd.Flags().DurationVar(&since, "since", 30*24*time.Hour, "Look-back window")
	cmd.Flags().BoolVar(&detail, "detail", false, "Print individual calls")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg, internal.DefaultLogger)
}

func runRequestFile(ctx context.Context, pipeline *app.PipelineService, file, outDir string) error {
	var req models.PipelineRequest
	if err := readJSON(file, &req); err != nil {
		return err
	}
	res, err := pipeline.Run(ctx, &req)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(file), ".json") + ".result.json"
	out, err := os.Create(filepath.Join(outDir, name))
	if err != nil {
		return err
	}
	defer out.Close()
	return writeJSON(out, res)
}

func requestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".result.json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

func readData(ctx context.Context, path, sheet string) (*schema.DataSummary, *frame.Frame, error) {
	cfg := excel.DefaultExcelConfig()
	if sheet != "" {
		cfg.SheetName = sheet
	}
	return excel.NewDataReader(path, cfg).ReadSummary(ctx)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
