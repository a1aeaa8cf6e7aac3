/*
PURPOSE:
  Assigns a stable color to each encoder within one report.

REQUIREMENTS:
  Implementation-discovered:
  - The same encoder must keep its color across every page of a report.
  - A fresh report starts from the first color again.

ARCHITECTURE INTEGRATION:
  - Called by: internal/report/chart.go

ERROR HANDLING:
  - None.

IMPLEMENTATION RULES:
  - Colors cycle once the list is exhausted.

USAGE:
  pal := newPalette()
  c := pal.colorFor("Huffman")

RELATED FILES:
  - internal/report/chart.go
*/

package report

import "image/color"

// defaultColors cycles red, yellow, green, blue, magenta, cyan, black.
var defaultColors = []color.Color{
	color.RGBA{R: 255, A: 255},
	color.RGBA{R: 191, G: 191, A: 255},
	color.RGBA{G: 128, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 191, B: 191, A: 255},
	color.RGBA{G: 191, B: 191, A: 255},
	color.RGBA{A: 255},
}

// palette hands out colors for one report pass. An encoder keeps the color it
// was first given on every page.
type palette struct {
	colors   []color.Color
	next     int
	assigned map[string]color.Color
}

func newPalette() *palette {
	return &palette{
		colors:   defaultColors,
		assigned: make(map[string]color.Color),
	}
}

func (p *palette) colorFor(name string) color.Color {
	if c, ok := p.assigned[name]; ok {
		return c
	}
	c := p.colors[p.next%len(p.colors)]
	p.next++
	p.assigned[name] = c
	return c
}
