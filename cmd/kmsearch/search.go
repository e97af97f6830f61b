package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/kmsearch/internal/domain/resource"
	"github.com/kailas-cloud/kmsearch/internal/domain/search/result"
)

type searchOutput struct {
	Data []resource.Document `json:"data"`
	Meta struct {
		Pagination result.Pagination `json:"pagination"`
	} `json:"meta"`
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Run a Khmer search and print the page as JSON",
		Long: `Run the cascading Khmer search against the configured database.

Examples:
  kmsearch search "សាលារៀន"
  kmsearch search --page 2 --page-size 10 "សៀវភៅ"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), &cfg, logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Search.Search(cmd.Context(), args[0], page, pageSize)
			if err != nil {
				return err
			}

			var out searchOutput
			out.Data = res.Documents
			out.Meta.Pagination = res.Pagination
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number (1-based)")
	cmd.Flags().IntVarP(&pageSize, "page-size", "s", 25, "documents per page")
	return cmd
}
