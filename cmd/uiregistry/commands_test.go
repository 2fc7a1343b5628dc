package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiregistry/pkg/registry"
)

const buttonSource = `import * as React from "react"
import { cva, type VariantProps } from "class-variance-authority"

const buttonVariants = cva("inline-flex rounded-md", {
  variants: {
    variant: {
      default: "bg-primary text-primary-foreground",
      outline: "border border-input",
    },
  },
  defaultVariants: { variant: "default" },
})

export interface ButtonProps extends VariantProps<typeof buttonVariants> {
  /** Disables the button. */
  disabled?: boolean
}

export function Button({ variant, disabled = false }: ButtonProps) {
  return <button className={buttonVariants({ variant })} disabled={disabled} />
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"package.json":             `{"name":"acme-ui"}`,
		"components/ui/button.tsx": buttonSource,
		"components/ui/index.ts":   `export * from "./button"`,
		"components/ui/broken.tsx": `export function Broken( {`,
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanCommand(t *testing.T) {
	root := writeProject(t)
	metricsFile := filepath.Join(t.TempDir(), "scan.prom")

	out, err := execute(t, newScanCommand(), root, "--name", "acme", "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "1 component")
	assert.Contains(t, out, "Wrote "+filepath.Join(root, defaultOutput))
	assert.Contains(t, out, "parse_error")

	reg, err := registry.Load(filepath.Join(root, defaultOutput))
	require.NoError(t, err)
	assert.Equal(t, "acme", reg.Name)
	require.Len(t, reg.Components, 1)
	assert.Equal(t, "Button", reg.Components[0].Name)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "uiregistry_scans_total")
}

func TestScanCommand_Stdout(t *testing.T) {
	root := writeProject(t)

	out, err := execute(t, newScanCommand(), root, "--out", "-")
	require.NoError(t, err)

	reg, err := registry.LoadFromBytes([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), reg.Name)
	assert.NoFileExists(t, filepath.Join(root, defaultOutput))
}

func TestScanCommand_EmptyRoot(t *testing.T) {
	_, err := execute(t, newScanCommand(), t.TempDir())
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	root := writeProject(t)
	_, err := execute(t, newScanCommand(), root)
	require.NoError(t, err)

	out, err := execute(t, newInspectCommand(), "Button", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Button (actions)")
	assert.Contains(t, out, "Disables the button.")
	assert.Contains(t, out, "default, outline")

	out, err = execute(t, newInspectCommand(), "Button", "--root", root, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Button"`)

	_, err = execute(t, newInspectCommand(), "Missing", "--root", root)
	assert.ErrorContains(t, err, `component "Missing" not found`)
}

func TestInspectCommand_NoRegistry(t *testing.T) {
	_, err := execute(t, newInspectCommand(), "Button", "--registry", filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorContains(t, err, "uiregistry scan")
}

func TestTokensCommand(t *testing.T) {
	root := writeProject(t)
	_, err := execute(t, newScanCommand(), root)
	require.NoError(t, err)
	regPath := filepath.Join(root, defaultOutput)

	out, err := execute(t, newTokensCommand(), "--registry", regPath, "--pattern", "color.background.*")
	require.NoError(t, err)
	assert.Contains(t, out, "color.background.primary")
	assert.NotContains(t, out, "radius.md")
	assert.Contains(t, out, "Button")

	out, err = execute(t, newTokensCommand(), "--registry", regPath, "--category", "radius")
	require.NoError(t, err)
	assert.Contains(t, out, "radius.md")
	assert.NotContains(t, out, "color.background.primary")

	_, err = execute(t, newTokensCommand(), "--registry", regPath, "--pattern", "[")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, versionCmd())
	require.NoError(t, err)
	assert.Equal(t, "uiregistry "+version+"\n", out)
}
