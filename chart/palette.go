package chart

// This file contains the closed category palettes used by all charts.

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"gonum.org/v1/plot/vg/draw"
)

// Style is the visual identity of one category.
type Style struct {
	Color  color.Color
	Marker draw.GlyphDrawer
}

// Palette maps category names to styles. Names outside the palette are
// rejected rather than assigned an arbitrary style.
type Palette map[string]Style

// UnknownCategoryError is returned for a category without a style.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("no style for category %q", e.Category)
}

// Style returns the style of a category.
func (p Palette) Style(name string) (Style, error) {
	s, ok := p[name]
	if !ok {
		return Style{}, &UnknownCategoryError{Category: name}
	}
	return s, nil
}

// Names returns the categories of the palette in lexical order.
func (p Palette) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hexPalette(colors map[string]string, marker draw.GlyphDrawer) Palette {
	p := make(Palette, len(colors))
	for name, hex := range colors {
		p[name] = Style{Color: mustHex(hex), Marker: marker}
	}
	return p
}

func mustHex(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		panic("invalid color " + s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		panic("invalid color " + s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// Algorithms is the palette of join algorithm families.
var Algorithms = hexPalette(map[string]string{
	"SHJ":              "#e8c600",
	"SHJ-L0":           "#0fb5ae",
	"SHJ-L1":           "#4046ca",
	"SHJ-L2":           "#f68511",
	"SHJ-L3":           "#de3d82",
	"SHJ-L4":           "#7e84fa",
	"NLJ-L4":           "#bce931",
	"OPAQUE":           "#008f5d",
	"FK-EPHI-L2":       "#72e06a",
	"FK-MERG-L2":       "#cb5d00",
	"FK-MERG-L3":       "#147af3",
	"FK-MERG-L4":       "#7326d3",
	"FK-MERG-L4-SPLIT": "#4c748a",
	"FK-SORT-L2":       "#b44b20",
	"FK-SORT-L3":       "#7b8b3d",
	"FK-SORT-L4":       "#c7b186",
	"NFK-JOIN-L2":      "#e6ab48",
	"NFK-JOIN-L3":      "#885a20",
	"SHJ_Graphos":      "#51725b",
}, draw.CircleGlyph{})

// Datasets is the palette of dataset configurations.
var Datasets = hexPalette(map[string]string{
	"synth-1": "#fd7f6f",
	"synth-2": "#7eb0d5",
	"tpch-1":  "#b2e061",
}, draw.SquareGlyph{})

// Phases is the palette of the per-phase timers of a self-join.
var Phases = hexPalette(map[string]string{
	"leftInitTime":   "#0fb5ae",
	"leftBuildTime":  "#4046ca",
	"leftProbeTime":  "#f68511",
	"rightInitTime":  "#de3d82",
	"rightBuildTime": "#7e84fa",
	"rightProbeTime": "#72e06a",
}, draw.BoxGlyph{})
