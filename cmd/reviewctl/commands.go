package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/review"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create catalog tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			_, err = fmt.Fprintln(opts.out, "schema is up to date")
			return err
		},
	}
}

func newLoadCmd(opts *globalOptions) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "load <file|->",
		Short: "Load a JSON catalog export, embedding rows without vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := opts.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if migrate {
				if err := client.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			var sum review.LoadSummary
			if args[0] == "-" {
				sum, err = client.Load(ctx, os.Stdin)
			} else {
				sum, err = client.LoadFile(ctx, args[0])
			}
			if err != nil {
				return fmt.Errorf("load: %w", err)
			}
			return printJSON(opts.out, sum)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema before loading")
	return cmd
}

func newFindCmd(opts *globalOptions) *cobra.Command {
	var (
		req       review.Requirements
		minRating float64
		maxRating float64
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find products matching an example review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("min-rating") {
				req.MinRating = &minRating
			}
			if cmd.Flags().Changed("max-rating") {
				req.MaxRating = &maxRating
			}

			client, err := opts.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			out, err := client.FindProductsByUserRequirements(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(opts.out, out)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.ExampleReview, "requirements", "r", "", "example review or requirements text (required)")
	f.StringVar(&req.Category, "category", "", "category to search within")
	f.Float64Var(&minRating, "min-rating", 0, "minimum product rating (default 4)")
	f.Float64Var(&maxRating, "max-rating", 0, "maximum product rating, inclusive")
	f.IntVarP(&req.Limit, "limit", "n", 0, "maximum number of products (default 5, max 50)")
	_ = cmd.MarkFlagRequired("requirements")
	return cmd
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count catalog rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(opts.out, stats)
		},
	}
}

func newToolsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List and invoke the LLM tools",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tool declarations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			defs := client.Tools()
			if asJSON {
				return printJSON(opts.out, defs)
			}
			tw := tabwriter.NewWriter(opts.out, 0, 4, 2, ' ', 0)
			for _, d := range defs {
				fmt.Fprintf(tw, "%s\t%s\n", d.Function.Name, d.Function.Description)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print full declarations with parameter schemas")

	invoke := &cobra.Command{
		Use:   "invoke <name> [json-args]",
		Short: "Invoke a tool with JSON arguments",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := json.RawMessage(`{}`)
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
			}

			client, err := opts.openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			out, err := client.InvokeTool(cmd.Context(), args[0], raw)
			if err != nil {
				return err
			}
			return printJSON(opts.out, out)
		},
	}

	cmd.AddCommand(list, invoke)
	return cmd
}
