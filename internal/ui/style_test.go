package ui

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestProductColorIndexStable(t *testing.T) {
	a := productColorIndex("Product A")
	for i := 0; i < 5; i++ {
		assert.Equal(t, a, productColorIndex("Product A"))
	}
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, len(productColors))
}

func TestPlainOutput(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	assert.Equal(t, " Product A ", ProductLabel("Product A"))
	assert.Equal(t, " 50%", Utilization(0.5))
	assert.Equal(t, "+3 over", Overrun(3))
	assert.Equal(t, "-", Overrun(0))
}

func TestSprintFuncsPlain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	for _, f := range []func(a ...interface{}) string{
		Bold, Dim, Cyan, Green, Red, Yellow,
		BoldCyan, BoldGreen, BoldRed, BoldYellow, BoldMagenta,
	} {
		assert.Equal(t, "M1", f("M1"))
	}
}
