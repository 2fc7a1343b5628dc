package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gnana997/uiregistry/pkg/registry"
)

func newTokensCommand() *cobra.Command {
	var flags registryFlags
	var pattern, category string

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "List design tokens, optionally filtered by id glob or category",
		Example: `  uiregistry tokens --category color
  uiregistry tokens --pattern 'color.background.*'
  uiregistry tokens --pattern 'spacing.**'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			qs, err := openRegistry(flags)
			if err != nil {
				return err
			}
			tokens, err := qs.FilterTokens(pattern, category)
			if err != nil {
				return err
			}
			printTokens(cmd.OutOrStdout(), tokens)
			return nil
		},
	}

	addRegistryFlags(cmd, &flags)
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "glob over dot-separated token ids")
	cmd.Flags().StringVarP(&category, "category", "c", "", "token category (color, spacing, radius, ...)")
	return cmd
}

func printTokens(w io.Writer, tokens []registry.Token) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Token", "Variable", "Light", "Dark", "Used by"})
	for _, tok := range tokens {
		id := tok.ID
		if tok.Verified {
			id += " ✓"
		}
		tbl.AppendRow(table.Row{id, tok.Variable, tok.Light, tok.Dark, strings.Join(tok.UsedBy, ", ")})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d tokens", len(tokens))})
	fmt.Fprintln(w, tbl.Render())
}
