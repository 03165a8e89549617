package mods

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampMonotonic(t *testing.T) {
	as := assert.New(t)

	as.Equal(int64(10), clampMonotonic(5, 10))
	as.Equal(int64(5), clampMonotonic(5, 5))

	// A backward jump advances by one tick instead.
	as.Equal(int64(101), clampMonotonic(100, 90))
	as.Equal(int64(101), clampMonotonic(100, 0))
}
