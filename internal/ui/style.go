package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
)

// PrintLogo renders the colored linesched logo to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	belt := color.New(color.FgYellow)
	rollers := color.New(color.FgCyan, color.Faint)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +-----+   +-----+   +-----+")
	brand.Fprintln(w, "   | M 1 |-->| M 2 |-->| M 3 |")
	frame.Fprintln(w, "   +-----+   +-----+   +-----+")
	belt.Fprintln(w, "   ===========================")
	rollers.Fprintln(w, "    o   o   o   o   o   o   o")
	tag.Fprintf(w, "   %s Flow-shop line scheduler\n", Bold("linesched"))
	fmt.Fprintln(w)
}

// productColors is a palette of distinct background colors for Gantt bars.
var productColors = []*color.Color{
	color.New(color.BgMagenta, color.FgBlack),
	color.New(color.BgCyan, color.FgBlack),
	color.New(color.BgYellow, color.FgBlack),
	color.New(color.BgGreen, color.FgBlack),
	color.New(color.BgHiBlue, color.FgBlack),
	color.New(color.BgHiRed, color.FgBlack),
	color.New(color.BgHiWhite, color.FgBlack),
}

// productColorIndex hashes a product label to a palette index.
func productColorIndex(product string) int {
	var h uint32
	for _, c := range product {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(productColors)))
}

// ProductBar renders s with the product's palette color.
// The same product always gets the same color.
func ProductBar(product, s string) string {
	return productColors[productColorIndex(product)].Sprint(s)
}

// ProductLabel returns the product name in its palette color.
func ProductLabel(product string) string {
	return ProductBar(product, " "+product+" ")
}

// Utilization returns a colored percentage: green when the machine is well
// used, yellow in between, red when it mostly sits idle.
func Utilization(frac float64) string {
	s := fmt.Sprintf("%3.0f%%", frac*100)
	switch {
	case frac >= 0.75:
		return Green(s)
	case frac >= 0.4:
		return Yellow(s)
	default:
		return Red(s)
	}
}

// Overrun returns a warning marker for machines past capacity.
func Overrun(amount int) string {
	if amount <= 0 {
		return Dim("-")
	}
	return BoldRed(fmt.Sprintf("+%d over", amount))
}
