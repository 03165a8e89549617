package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixAddr(t *testing.T) {
	as := assert.New(t)

	// Loaded at the preferred base: addresses pass through.
	as.Equal(RawGetSpawnByID, FixAddr(PreferredBase, RawGetSpawnByID))

	// Rebased image: the slide applies uniformly.
	as.Equal(uintptr(0x6196E0), FixAddr(0x420000, RawGetSpawnByID))
	as.Equal(uintptr(0x1025A087), FixAddr(0x10000000, 0x65A087))
}
