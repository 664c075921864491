package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-catalog-service/internal/category/hierarchy"
	"github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var showInactive bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree",
		Long: `Tree loads every category and prints the hierarchy in sibling order.

Example:
  catalogctl tree
  catalogctl tree --all
  catalogctl tree --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := repository.NewSQLRepository(db).FindAll(cmd.Context())
			if err != nil {
				return err
			}
			tree, err := hierarchy.BuildFullTree(records)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			}
			printTree(out, tree, showInactive)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showInactive, "all", false, "include inactive categories")
	return cmd
}

func printTree(w io.Writer, nodes []*model.TreeNode, showInactive bool) {
	for _, n := range nodes {
		if !n.IsActive && !showInactive {
			continue
		}
		marker := ""
		if !n.IsActive {
			marker = " [inactive]"
		}
		fmt.Fprintf(w, "%s%s (%s)%s\n", strings.Repeat("  ", n.Level), n.Name, n.Slug, marker)
		printTree(w, n.Subcategories, showInactive)
	}
}
