package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney_GroupsDigits(t *testing.T) {
	assert.Equal(t, "0", Money(0))
	assert.Equal(t, "950", Money(950))
	assert.Equal(t, "1 000", Money(1000))
	assert.Equal(t, "12 345 678", Money(12345678))
	assert.Equal(t, "-4 500", Money(-4500))
}

func TestProgressBar_Bounds(t *testing.T) {
	assert.Contains(t, ProgressBar(0, 10, 10), "0%")
	assert.Contains(t, ProgressBar(10, 10, 10), "100%")
	// Zero total must not divide by zero.
	assert.NotEmpty(t, ProgressBar(0, 0, 10))
}
