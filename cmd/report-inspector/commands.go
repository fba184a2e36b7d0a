package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-table-report/internal/layout"
	"github.com/a3tai/mcp-table-report/internal/pdf"
	"github.com/a3tai/mcp-table-report/internal/tablereport"
)

// pageOptions holds per-command flags
type pageOptions struct {
	output string
	runs   int
}

// pageRequest collects the arguments of a page command from args, flags and,
// with --interactive, from prompts.
func (a *App) pageRequest(args []string, opts *pageOptions, wantOutput, wantRuns bool) (request, error) {
	r := request{page: a.page, output: opts.output, runs: opts.runs}
	if len(args) > 0 {
		r.path = args[0]
	}

	if a.interactive {
		p, err := a.newPrompter(a.stdin, a.stdout)
		if err != nil {
			return r, err
		}
		defer p.Close()
		if err := fill(p, &r, wantOutput, wantRuns); err != nil {
			return r, err
		}
	}

	if r.path == "" {
		return r, fmt.Errorf("PDF file path required")
	}
	if wantOutput && r.output == "" {
		return r, fmt.Errorf("output path required")
	}
	return r, a.checkFormat()
}

func (a *App) newElementsCmd() *cobra.Command {
	opts := &pageOptions{}
	return &cobra.Command{
		Use:   "elements [file.pdf]",
		Short: "List the layout elements of a page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, false, false)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFPageElements(pdf.PDFPageRequest{Path: path, Page: r.page})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				return formatCounts(result.Counts) + tablereport.FormatElements(result.Elements)
			})
		},
	}
}

func formatCounts(counts map[layout.Kind]int) string {
	var parts []string
	for _, kind := range []layout.Kind{
		layout.KindText, layout.KindLine, layout.KindRect, layout.KindCurve, layout.KindFigure, layout.KindOther,
	} {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, n))
		}
	}
	return "# " + strings.Join(parts, " ") + "\n"
}

func (a *App) newAnalyzeCmd() *cobra.Command {
	opts := &pageOptions{}
	return &cobra.Command{
		Use:   "analyze [file.pdf]",
		Short: "Recover the legend and the table of a page",
		Long: `Recover the legend and the table of a table report page.

Examples:
  report-inspector analyze report.pdf
  report-inspector analyze report.pdf --page 1 --format yaml
  report-inspector analyze --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, false, false)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFAnalyzeTableReport(pdf.PDFPageRequest{Path: path, Page: r.page})
			if err != nil {
				return err
			}
			return a.render(result.Summary, func() string {
				return tablereport.FormatText(result.Object)
			})
		},
	}
}

func (a *App) newMetadataCmd() *cobra.Command {
	opts := &pageOptions{}
	return &cobra.Command{
		Use:   "metadata [file.pdf]",
		Short: "Print the document information of a PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, false, false)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFMetadata(pdf.PDFMetadataRequest{Path: path})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				var b strings.Builder
				fmt.Fprintf(&b, "pages: %d\nsize: %d\n", result.Pages, result.Size)
				for _, f := range []struct{ k, v string }{
					{"title", result.Title},
					{"author", result.Author},
					{"subject", result.Subject},
					{"keywords", result.Keywords},
					{"creator", result.Creator},
					{"producer", result.Producer},
					{"created", result.CreationDate},
					{"modified", result.ModDate},
				} {
					if f.v != "" {
						fmt.Fprintf(&b, "%s: %s\n", f.k, f.v)
					}
				}
				return b.String()
			})
		},
	}
}

func (a *App) newStreamCmd() *cobra.Command {
	opts := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "stream [file.pdf]",
		Short: "Save the decoded content stream of a page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, true, false)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFSavePageStream(pdf.PDFSavePageStreamRequest{Path: path, Page: r.page, Output: r.output})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				return fmt.Sprintf("saved %d bytes to %s\n", result.Bytes, result.Output)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "stream.txt", "Output file, relative to --dir or the directory of the PDF")
	return cmd
}

func (a *App) newImagesCmd() *cobra.Command {
	opts := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "images [file.pdf]",
		Short: "Extract the images of a page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, true, false)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFExtractImages(pdf.PDFExtractImagesRequest{Path: path, Page: r.page, Output: r.output})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				var b strings.Builder
				fmt.Fprintf(&b, "%d image(s) saved to %s\n", result.TotalCount, result.Output)
				for _, img := range result.Images {
					fmt.Fprintf(&b, "  %s %dx%d %s\n", img.File, img.Width, img.Height, img.Format)
				}
				return b.String()
			})
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "images", "Output directory, relative to --dir or the directory of the PDF")
	return cmd
}

func (a *App) newTimingCmd() *cobra.Command {
	opts := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "timing [file.pdf]",
		Short: "Measure how long extracting a page takes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, false, true)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFMeasureOpening(pdf.PDFMeasureOpeningRequest{Path: path, Page: r.page, Runs: r.runs})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				var b strings.Builder
				for i, ms := range result.RunsMS {
					fmt.Fprintf(&b, "%d / %d: %.3f ms\n", i+1, result.Runs, ms)
				}
				fmt.Fprintf(&b, "average: %.3f ms (%d elements)\n", result.AverageMS, result.Elements)
				return b.String()
			})
		},
	}
	cmd.Flags().IntVarP(&opts.runs, "runs", "n", pdf.DefaultMeasureRuns, "Number of runs")
	return cmd
}

func (a *App) newExportCmd() *cobra.Command {
	opts := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "export [file.pdf]",
		Short: "Write the table and legend of a page to an XLSX workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.pageRequest(args, opts, true, false)
			if err != nil {
				return err
			}
			svc, path, err := a.service(cmd, r.path)
			if err != nil {
				return err
			}

			result, err := svc.PDFExportTable(pdf.PDFExportTableRequest{Path: path, Page: r.page, Output: r.output})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				return fmt.Sprintf("exported %d x %d table and %d legend fields to %s\n",
					result.Rows, result.Cols, result.Fields, result.Output)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "report.xlsx", "Output workbook, relative to --dir or the directory of the PDF")
	return cmd
}

func (a *App) newListCmd() *cobra.Command {
	var (
		query string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "List PDF reports below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.checkFormat(); err != nil {
				return err
			}
			var root string
			if len(args) > 0 {
				root = args[0]
				if info, err := os.Stat(root); err != nil || !info.IsDir() {
					return fmt.Errorf("not a directory: %s", root)
				}
			}
			svc, _, err := a.serviceIn(cmd, root)
			if err != nil {
				return err
			}

			result, err := svc.PDFListReports(pdf.PDFListReportsRequest{Query: query, Limit: limit})
			if err != nil {
				return err
			}
			return a.render(result, func() string {
				var b strings.Builder
				for _, f := range result.Files {
					fmt.Fprintf(&b, "%s\t%d\t%s\n", f.Path, f.Size, f.ModifiedTime)
				}
				return b.String()
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive file name filter")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of files (0 for no limit)")
	return cmd
}
