package scanner

import (
	"path"
	"strings"
	"unicode"
)

// DefaultCategory is used when neither the name nor the path suggests one.
const DefaultCategory = "components"

// categoryKeywords maps name words to categories. The words of a name are
// tried from the last one back, so AlertDialog lands in overlay.
var categoryKeywords = map[string]string{
	"Button": "actions", "Toggle": "actions", "Link": "actions",

	"Input": "forms", "Textarea": "forms", "Select": "forms", "Checkbox": "forms",
	"Radio": "forms", "Switch": "forms", "Slider": "forms", "Form": "forms",
	"Label": "forms", "Field": "forms", "Combobox": "forms", "Otp": "forms",
	"Calendar": "forms", "Picker": "forms",

	"Dialog": "overlay", "Modal": "overlay", "Drawer": "overlay", "Sheet": "overlay",
	"Popover": "overlay", "Tooltip": "overlay", "Dropdown": "overlay", "Menu": "overlay",
	"Hover": "overlay", "Context": "overlay", "Command": "overlay",

	"Card": "layout", "Separator": "layout", "Grid": "layout", "Stack": "layout",
	"Container": "layout", "Resizable": "layout", "Scroll": "layout", "Aspect": "layout",
	"Sidebar": "layout", "Collapsible": "layout", "Accordion": "layout",

	"Tabs": "navigation", "Nav": "navigation", "Navigation": "navigation",
	"Breadcrumb": "navigation", "Pagination": "navigation", "Menubar": "navigation",

	"Alert": "feedback", "Toast": "feedback", "Toaster": "feedback", "Sonner": "feedback",
	"Progress": "feedback", "Skeleton": "feedback", "Spinner": "feedback",

	"Table": "data-display", "Badge": "data-display", "Avatar": "data-display",
	"Chart": "data-display", "Carousel": "data-display", "List": "data-display",

	"Heading": "typography", "Text": "typography", "Typography": "typography",
	"Kbd": "typography", "Code": "typography",

	"Icon": "media", "Image": "media",
}

// InferCategory picks a category from the component name, then from the
// first directory of its source file, then falls back to DefaultCategory.
func InferCategory(name, relFile string) string {
	words := splitCamel(name)
	for i := len(words) - 1; i >= 0; i-- {
		if c, ok := categoryKeywords[words[i]]; ok {
			return c
		}
	}

	dir := path.Dir(relFile)
	if dir != "." && dir != "/" && dir != "" {
		first := strings.Split(strings.TrimPrefix(dir, "./"), "/")[0]
		if first == "src" {
			// src/ is structural, the next segment names the area
			parts := strings.Split(dir, "/")
			if len(parts) > 1 {
				first = parts[1]
			} else {
				first = ""
			}
		}
		if first != "" && !strings.HasPrefix(first, ".") {
			return strings.ToLower(first)
		}
	}
	return DefaultCategory
}

// splitCamel splits "AlertDialogTrigger" into its words.
func splitCamel(name string) []string {
	var words []string
	var cur []rune
	for _, r := range name {
		if unicode.IsUpper(r) && len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}
