package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gnana997/uiregistry/pkg/registry"
)

type registryFlags struct {
	root string
	path string
}

func addRegistryFlags(cmd *cobra.Command, flags *registryFlags) {
	cmd.Flags().StringVar(&flags.root, "root", ".", "project root whose config locates the registry")
	cmd.Flags().StringVarP(&flags.path, "registry", "r", "", "registry file (default: the scan output path)")
}

// openRegistry loads the registry named by flags, falling back to the scan
// output path of the project config.
func openRegistry(flags registryFlags) (*registry.QueryService, error) {
	path := flags.path
	if path == "" {
		cfg, err := loadSettings(flags.root, scanFlags{})
		if err != nil {
			return nil, err
		}
		path = cfg.Output
	}
	qs, err := registry.LoadAndQuery(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry (run `uiregistry scan` first?): %w", err)
	}
	return qs, nil
}

func newInspectCommand() *cobra.Command {
	var flags registryFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <component>",
		Short: "Show a component's props, variants and tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := openRegistry(flags)
			if err != nil {
				return err
			}
			comp, ok := qs.Find(args[0])
			if !ok {
				return fmt.Errorf("component %q not found", args[0])
			}
			if asJSON {
				sub := &registry.Registry{Components: []registry.Component{*comp}}
				data, err := sub.MarshalIndent()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			printComponent(cmd.OutOrStdout(), comp)
			return nil
		},
	}

	addRegistryFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the registry entry as JSON")
	return cmd
}

func printComponent(w io.Writer, comp *registry.Component) {
	p := comp.Provenance
	fmt.Fprintf(w, "%s (%s)\n", comp.Name, comp.Category)
	fmt.Fprintf(w, "  source:   %s\n", comp.SourceFile)
	if p.ReExportedFrom != "" {
		fmt.Fprintf(w, "  exposed:  %s (%d hops)\n", p.ReExportedFrom, p.ResolutionDepth)
	}
	decl := string(p.DeclarationKind)
	if len(p.Wrappers) > 0 {
		decl += " via " + strings.Join(p.Wrappers, " > ")
	}
	fmt.Fprintf(w, "  declared: %s, %s export, %s analysis\n", decl, p.ExportKind, p.Analyzer)
	if len(comp.Composition) > 0 {
		fmt.Fprintf(w, "  renders:  %s\n", strings.Join(comp.Composition, ", "))
	}

	if len(comp.Props) > 0 {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.SetTitle("Props")
		tbl.AppendHeader(table.Row{"Name", "Type", "Required", "Default", "Description"})
		for _, prop := range comp.Props {
			typ := prop.Type
			if len(prop.AllowedValues) > 0 {
				typ = strings.Join(prop.AllowedValues, " | ")
			}
			desc := prop.Description
			if prop.Deprecated {
				desc = strings.TrimSpace("(deprecated) " + desc)
			}
			tbl.AppendRow(table.Row{prop.Name, typ, yesNo(prop.Required), prop.Default, desc})
		}
		fmt.Fprintln(w, tbl.Render())
	}

	if len(comp.Variants) > 0 {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.SetTitle("Variants")
		tbl.AppendHeader(table.Row{"Group", "Options", "Default"})
		for _, g := range comp.Variants {
			tbl.AppendRow(table.Row{g.Name, strings.Join(g.Options, ", "), comp.DefaultVariants[g.Name]})
		}
		fmt.Fprintln(w, tbl.Render())
	}

	if len(comp.TokensUsed) > 0 {
		fmt.Fprintf(w, "Tokens: %s\n", strings.Join(comp.TokensUsed, ", "))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
