package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/zenithds/zenithds/internal/logger"
	"github.com/zenithds/zenithds/internal/version"
	zenithds "github.com/zenithds/zenithds/pkg/sdk"
)

type globalFlags struct {
	dataPath     string
	workers      int
	filenameMode string
	pattern      string
	verbose      bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "zenithctl",
		Short:         "Query CSV collections with zenithds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&g.dataPath, "data", envOr("DATA_PATH", "./data"), "directory holding the collections")
	pf.IntVar(&g.workers, "workers", 4, "file groups scanned in parallel")
	pf.StringVar(&g.filenameMode, "filename-mode", "pattern", "filename predicate mode: pattern or regex")
	pf.StringVar(&g.pattern, "pattern", "", "filename extraction pattern (pattern mode)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(
		newQueryCmd(g),
		newInsertCmd(g),
		newDeleteCmd(g),
		newRenderCmd(g),
		newVersionCmd(),
	)
	return root
}

func (g *globalFlags) client() (*zenithds.Client, error) {
	opts := []zenithds.Option{
		zenithds.WithDataPath(g.dataPath),
		zenithds.WithWorkers(g.workers),
	}
	switch g.filenameMode {
	case "pattern":
		opts = append(opts, zenithds.WithFilenamePattern(g.pattern))
	case "regex":
		opts = append(opts, zenithds.WithFilenameRegex())
	default:
		return nil, fmt.Errorf("unknown filename mode %q", g.filenameMode)
	}
	if g.verbose {
		l, err := logger.NewLogger("cli", "debug")
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		opts = append(opts, zenithds.WithEngineLogger(l))
	}
	return zenithds.New(opts...)
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	var (
		fields  []string
		where   []string
		page    int
		perPage int
	)
	cmd := &cobra.Command{
		Use:   "query <collection>",
		Short: "Select rows from a collection",
		Example: `  zenithctl query main -f name -f age -w "age >= 30" -w "__date >= 20240101"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			t, err := c.Select(cmd.Context(), args[0], fields, where)
			if err != nil {
				return err
			}
			rows := t.Rows
			if perPage > 0 {
				rows = t.Page(page, perPage)
			}
			renderTable(cmd.OutOrStdout(), t.Header, rows)
			_, _ = color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "%d of %d rows\n", len(rows), len(t.Rows))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field to project (repeatable)")
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "predicate `<field> <op> <value>` (repeatable)")
	cmd.Flags().IntVar(&page, "page", 0, "0-based page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "rows per page, 0 prints everything")
	return cmd
}

func newInsertCmd(g *globalFlags) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "insert <collection> <file.csv>",
		Short: "Store a local CSV file in a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			t, err := renderFile(cmd.Context(), c, args[1])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[1])
			}
			if err := c.Insert(cmd.Context(), args[0], name, t.Header, t.Rows); err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
				"inserted %s into %s (%d rows)\n", name, args[0], len(t.Rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name inside the collection (default: base name of the input)")
	return cmd
}

func newDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <filename>",
		Short: "Remove a file from a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "deleted %s from %s\n", args[1], args[0])
			return nil
		},
	}
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "render <file.csv|->",
		Short: "Parse a CSV file as a scan would and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			t, err := renderFile(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), t.Header, t.Rows)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// renderFile parses path, or stdin for "-", with the engine's CSV rules.
func renderFile(ctx context.Context, c *zenithds.Client, path string) (zenithds.Table, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return zenithds.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Render(ctx, data)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(header)
	tw.AppendBulk(rows)
	tw.Render()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
