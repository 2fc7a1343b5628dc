package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiregistry/pkg/registry"
	"github.com/gnana997/uiregistry/pkg/theme"
)

var fixedNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func testTheme() *theme.Context {
	return &theme.Context{
		Root:   "/p",
		Naming: theme.NamingBare,
		Light: theme.Variables{
			"--primary": "222.2 47.4% 11.2%",
			"--radius":  "0.5rem",
		},
		Dark: theme.Variables{
			"--primary": "210 40% 98%",
		},
	}
}

func TestAssemble_TokensAndOrdering(t *testing.T) {
	button := desc("Button", "button.tsx", true, registry.ExportNamed)
	button.classes = []string{"bg-primary", "px-4", "flex"}
	badge := desc("Badge", "badge.tsx", true, registry.ExportNamed)
	badge.classes = []string{"hover:bg-primary/80", "rounded-md"}

	as := &Assembler{Name: "ui", Root: "/p", Now: fixedNow}
	reg := as.Assemble([]*descriptor{button, badge}, nil)

	assert.Equal(t, "ui", reg.Name)
	assert.Equal(t, registry.SchemaVersion, reg.Version)
	assert.Equal(t, fixedNow(), reg.GeneratedAt)
	assert.Nil(t, reg.Theme)
	assert.Nil(t, reg.Diagnostics)

	require.Len(t, reg.Components, 2)
	assert.Equal(t, "Badge", reg.Components[0].Name)
	assert.Equal(t, "Button", reg.Components[1].Name)
	assert.Equal(t, []string{"color.background.primary", "spacing.padding.x.4"}, reg.Components[1].TokensUsed)
	assert.NotNil(t, reg.Components[0].Props)
	assert.Nil(t, reg.Components[1].Theme, "no theme, no annotations")

	ids := make([]string, len(reg.Tokens))
	for i, tok := range reg.Tokens {
		ids[i] = tok.ID
	}
	assert.Equal(t, []string{"color.background.primary", "radius.md", "spacing.padding.x.4"}, ids)

	primary := reg.Tokens[0]
	assert.Equal(t, []string{"bg-primary", "bg-primary/80"}, primary.Classes, "variant prefixes are stripped")
	assert.Equal(t, []string{"Badge", "Button"}, primary.UsedBy)
	assert.True(t, primary.Inferred)
	assert.False(t, primary.Verified)
	assert.Empty(t, primary.Variable)
}

func TestAssemble_ThemeVerifiesTokens(t *testing.T) {
	ctx := testTheme()
	button := desc("Button", "button.tsx", true, registry.ExportNamed)
	button.classes = []string{"bg-primary", "rounded-md"}
	button.theme = ctx

	reg := (&Assembler{Root: "/p", Theme: ctx, Now: fixedNow}).Assemble([]*descriptor{button}, nil)

	require.NotNil(t, reg.Theme)
	require.Len(t, reg.Tokens, 2)
	primary := reg.Tokens[0]
	assert.Equal(t, "color.background.primary", primary.ID)
	assert.Equal(t, "--primary", primary.Variable)
	assert.Equal(t, "hsl(222.2 47.4% 11.2%)", primary.Light)
	assert.Equal(t, "hsl(210 40% 98%)", primary.Dark)
	assert.True(t, primary.Verified)

	radius := reg.Tokens[1]
	assert.Equal(t, "--radius", radius.Variable)
	assert.Equal(t, "0.5rem", radius.Light)

	comp := reg.Components[0]
	require.NotEmpty(t, comp.Theme)
	assert.Equal(t, "bg-primary", comp.Theme[0].Class)
	assert.Equal(t, "--primary", comp.Theme[0].Variable)
}

func TestAssemble_TypedTokensAndDiagnostics(t *testing.T) {
	card := desc("Card", "card.tsx", true, registry.ExportNamed)
	card.component.TokensUsed = []string{"shadow.card"}
	diags := []registry.Diagnostic{
		{Kind: registry.DiagUnresolvedExport, File: "index.ts", Symbol: "Missing"},
		{Kind: registry.DiagParseError, File: "broken.tsx"},
	}

	reg := (&Assembler{Now: fixedNow}).Assemble([]*descriptor{card}, diags)

	require.Len(t, reg.Tokens, 1)
	assert.Equal(t, "shadow.card", reg.Tokens[0].ID)
	assert.Equal(t, "shadow", reg.Tokens[0].Category)
	assert.True(t, reg.Tokens[0].Inferred)
	assert.Equal(t, []string{"Card"}, reg.Tokens[0].UsedBy)
	assert.Equal(t, []string{}, reg.Tokens[0].Classes)

	require.Len(t, reg.Diagnostics, 2)
	assert.Equal(t, "broken.tsx", reg.Diagnostics[0].File)
	assert.Equal(t, "index.ts", reg.Diagnostics[1].File)
}

func TestAssemble_EmptyInput(t *testing.T) {
	reg := (&Assembler{Now: fixedNow}).Assemble(nil, nil)
	assert.NotNil(t, reg.Components)
	assert.NotNil(t, reg.Tokens)
	assert.Empty(t, reg.Components)
}
