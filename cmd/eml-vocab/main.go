package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sha1n/eml-vocab/internal/app"
	"github.com/sha1n/eml-vocab/internal/lookup"
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "eml-vocab"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand(version, programName, app.DefaultRunParams())
	rootCmd.SetArgs(args)

	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, programName string, params app.RunParams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "EML vocabulary statistics",
		Long:         "Collects, reports and explores the vocabulary used by element types across a corpus of EML metadata documents",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	app.RegisterGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newCollectCommand(params),
		newReportCommand(params),
		newQueryCommand(params),
		newBatchCommand(params),
		newMergeCommand(params),
		newSampleCommand(params),
		newLookupCommand(params),
		newExportCommand(params),
		newServeCommand(params, version),
	)

	return rootCmd
}

func newCollectCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <artifact> <selector>",
		Short: "Collect value statistics for the elements matched by a selector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunCollect(cmd.Context(), params, cmd.Flags(), args[0], args[1])
		},
	}
	app.RegisterCollectFlags(cmd.Flags())
	return cmd
}

func newReportCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <artifact>",
		Short: "Print the filtered vocabulary report of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunReport(cmd.Context(), params, cmd.Flags(), args[0])
		},
	}
	app.RegisterReportFlags(cmd.Flags())
	return cmd
}

func newQueryCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <selector> <document>",
		Short: "Print the structural path and text of every element a selector matches in one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			onlyText, _ := cmd.Flags().GetBool("only-text")
			field, _ := cmd.Flags().GetString("field")
			opts := app.QueryOptions{OnlyText: onlyText, Field: field}
			return app.RunQuery(cmd.Context(), params, cmd.Flags(), args[0], args[1], opts)
		},
	}
	app.RegisterQueryFlags(cmd.Flags())
	return cmd
}

func newBatchCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [presets]",
		Short: "Collect every preset of a YAML presets file, or the built-in presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presetsPath := ""
			if len(args) == 1 {
				presetsPath = args[0]
			}
			parallel, _ := cmd.Flags().GetInt("parallel")
			return app.RunBatch(cmd.Context(), params, cmd.Flags(), presetsPath, parallel)
		},
	}
	app.RegisterBatchFlags(cmd.Flags())
	return cmd
}

func newMergeCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <output> <artifact>...",
		Short: "Merge artifacts collected with the same selector",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunMerge(cmd.Context(), params, cmd.Flags(), args[0], args[1:])
		},
	}
	app.RegisterMergeFlags(cmd.Flags())
	return cmd
}

func newSampleCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample [count]",
		Short: "Link a random sample of the corpus into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := app.DefaultSampleCount
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid sample count %q: must be a positive integer", args[0])
				}
				count = n
			}
			sampleRoot, _ := cmd.Flags().GetString("sample-root")
			seed, _ := cmd.Flags().GetUint64("seed")
			return app.RunSample(cmd.Context(), params, cmd.Flags(), count, sampleRoot, seed)
		},
	}
	app.RegisterSampleFlags(cmd.Flags())
	return cmd
}

func newLookupCommand(params app.RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <artifact> <query>",
		Short: "Find the tags and values of an artifact that match a full-text query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, _ := cmd.Flags().GetString("tag")
			limit, _ := cmd.Flags().GetInt("limit")
			q := lookup.Query{Text: args[1], Tag: tag, Limit: limit}
			return app.RunLookup(cmd.Context(), params, cmd.Flags(), args[0], q)
		},
	}
	app.RegisterLookupFlags(cmd.Flags())
	return cmd
}

func newExportCommand(params app.RunParams) *cobra.Command {
	return &cobra.Command{
		Use:   "export <artifact> <database>",
		Short: "Write an artifact into a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunExport(cmd.Context(), params, cmd.Flags(), args[0], args[1])
		},
	}
}

func newServeCommand(params app.RunParams, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve <artifact>...",
		Short: "Serve report and lookup tools for artifacts over MCP stdio",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServe(cmd.Context(), params, cmd.Flags(), args, version)
		},
	}
}
