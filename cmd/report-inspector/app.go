package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-table-report/internal/config"
	"github.com/a3tai/mcp-table-report/internal/logging"
	"github.com/a3tai/mcp-table-report/internal/pdf"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the inspector CLI.
type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	page        int
	format      string
	interactive bool

	// newPrompter is replaced in tests
	newPrompter func(in io.Reader, out io.Writer) (prompter, error)
}

// New creates the inspector CLI.
func New() *App {
	app := &App{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		newPrompter: newLinePrompter,
	}

	app.root = &cobra.Command{
		Use:   "report-inspector",
		Short: "Inspect table report PDFs",
		Long: `report-inspector recovers the legend and the table grid of a table report
page and exposes the lower level steps used to get there: the raw layout
elements, the page content stream, embedded images and extraction timing.

Unless --dir is given, the directory of the PDF is used as the working
directory and relative outputs are written next to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := app.root.PersistentFlags()
	config.DefineFlags(flags, config.DefaultConfig())
	flags.IntVarP(&app.page, "page", "p", 0, "Zero-based page index")
	flags.StringVarP(&app.format, "format", "f", formatText, "Output format: text, json, yaml")
	flags.BoolVarP(&app.interactive, "interactive", "i", false, "Prompt for missing arguments")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newElementsCmd(),
		app.newAnalyzeCmd(),
		app.newMetadataCmd(),
		app.newStreamCmd(),
		app.newImagesCmd(),
		app.newTimingCmd(),
		app.newExportCmd(),
		app.newListCmd(),
	)

	return app
}

// WithIO sets custom input and output streams.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetIn(stdin)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "report-inspector version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// service builds a PDF service for the command. pdfPath is resolved to an
// absolute path and, unless --dir was set, its directory becomes the
// configured directory.
func (a *App) service(cmd *cobra.Command, pdfPath string) (*pdf.Service, string, error) {
	if pdfPath == "" {
		return a.serviceIn(cmd, "")
	}
	abs, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve %s: %w", pdfPath, err)
	}
	svc, _, err := a.serviceIn(cmd, filepath.Dir(abs))
	return svc, abs, err
}

// serviceIn builds a PDF service rooted at root unless --dir or its
// environment variable is set. It returns the configured directory.
func (a *App) serviceIn(cmd *cobra.Command, root string) (*pdf.Service, string, error) {
	flags := cmd.Flags()
	if root != "" && !flags.Changed("dir") && os.Getenv(config.EnvPrefix+"_DIR") == "" {
		if err := flags.Set("dir", root); err != nil {
			return nil, "", err
		}
	}

	cfg, err := config.FromFlagSet(flags)
	if err != nil {
		return nil, "", err
	}
	logging.Init(cfg.LoggingConfig())

	svc, err := pdf.NewService(cfg.ServiceConfig())
	if err != nil {
		return nil, "", fmt.Errorf("failed to create PDF service: %w", err)
	}
	return svc, cfg.PDFDirectory, nil
}
