package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiregistry/pkg/registry"
)

func structuralButton() registry.Component {
	return registry.Component{
		Name: "Button",
		Props: []registry.Prop{
			{Name: "variant", Type: "string", AllowedValues: []string{"default", "ghost"}, Default: "default", Origin: registry.OriginStructural},
			{Name: "asChild", Type: "unknown", Origin: registry.OriginStructural},
		},
		TokensUsed: []string{"color.background.primary"},
		Provenance: registry.Provenance{Analyzer: registry.AnalyzerStructural},
	}
}

func TestMergeTyped(t *testing.T) {
	typed := &TypedComponent{
		Name: "Button",
		Props: []TypedProp{
			{Name: "variant", Type: "enum", Required: false, AllowedValues: []string{"x"}, Description: "Look."},
			{Name: "asChild", Type: "boolean", DefaultValue: "false", Deprecated: true},
			{Name: "onClick", Type: "(...args: any[]) => any"},
		},
		Tokens: []string{"spacing.padding.x.4", "color.background.primary"},
	}

	merged := MergeTyped(structuralButton(), typed)
	assert.Equal(t, registry.AnalyzerMerged, merged.Provenance.Analyzer)
	require.Len(t, merged.Props, 3)

	variant := merged.Props[0]
	assert.Equal(t, "string", variant.Type)
	assert.Equal(t, []string{"default", "ghost"}, variant.AllowedValues, "structural allowed values are kept")
	assert.Equal(t, "default", variant.Default)
	assert.Equal(t, "Look.", variant.Description)
	assert.Equal(t, registry.OriginTypeAnalysis, variant.Origin)

	asChild := merged.Props[1]
	assert.Equal(t, "boolean", asChild.Type)
	assert.Equal(t, "false", asChild.Default)
	assert.True(t, asChild.Deprecated)

	onClick := merged.Props[2]
	assert.Equal(t, "onClick", onClick.Name)
	assert.Equal(t, "function", onClick.Type)
	assert.Equal(t, registry.OriginTypeAnalysis, onClick.Origin)

	assert.Equal(t, []string{"color.background.primary", "spacing.padding.x.4"}, merged.TokensUsed)
}

func TestMergeTyped_NilKeepsStructural(t *testing.T) {
	base := structuralButton()
	assert.Equal(t, base, MergeTyped(base, nil))
}

func TestMergeTyped_DoesNotMutateInput(t *testing.T) {
	base := structuralButton()
	MergeTyped(base, &TypedComponent{Props: []TypedProp{{Name: "variant", Type: "boolean"}}})
	assert.Equal(t, "string", base.Props[0].Type)
	assert.Equal(t, registry.OriginStructural, base.Props[0].Origin)
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, "actions", InferCategory("Button", "components/ui/button.tsx"))
	assert.Equal(t, "overlay", InferCategory("AlertDialog", "components/ui/alert-dialog.tsx"))
	assert.Equal(t, "forms", InferCategory("DatePicker", "x.tsx"))
	assert.Equal(t, "marketing", InferCategory("Hero", "marketing/hero.tsx"))
	assert.Equal(t, "charts", InferCategory("Sparkline", "src/charts/sparkline.tsx"))
	assert.Equal(t, DefaultCategory, InferCategory("Hero", "hero.tsx"))
	assert.Equal(t, DefaultCategory, InferCategory("Hero", "src/hero.tsx"))
}

func TestSplitCamel(t *testing.T) {
	assert.Equal(t, []string{"Alert", "Dialog", "Trigger"}, splitCamel("AlertDialogTrigger"))
	assert.Equal(t, []string{"Button"}, splitCamel("Button"))
}
