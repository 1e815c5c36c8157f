package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// HoleFitTheme wraps the default Fyne theme with compact sizing so the
// drawing keeps most of the window.
type HoleFitTheme struct {
	base    fyne.Theme
	variant *fyne.ThemeVariant // nil follows the system
}

// NewHoleFitTheme builds the theme named by AppConfig.Theme: "light",
// "dark", or anything else to follow the system.
func NewHoleFitTheme(name string) *HoleFitTheme {
	t := &HoleFitTheme{base: theme.DefaultTheme()}
	t.SetVariantName(name)
	return t
}

// SetVariantName switches between "light", "dark" and "system".
func (t *HoleFitTheme) SetVariantName(name string) {
	var v fyne.ThemeVariant
	switch name {
	case "light":
		v = theme.VariantLight
	case "dark":
		v = theme.VariantDark
	default:
		t.variant = nil
		return
	}
	t.variant = &v
}

// Color delegates to the base theme, forcing the configured variant.
func (t *HoleFitTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.variant != nil {
		variant = *t.variant
	}
	return t.base.Color(name, variant)
}

// Font delegates to the base theme.
func (t *HoleFitTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *HoleFitTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *HoleFitTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
