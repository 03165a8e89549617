package mods

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestCombatAbilitiesPatchAndRestore(t *testing.T) {
	as := assert.New(t)

	buf := []byte{0x74, 0x09, 0xCC, 0xCC}
	m := &CombatAbilities{target: uintptr(unsafe.Pointer(&buf[0]))}

	as.NoError(m.Initialize(nil))
	as.Equal([]byte{0x90, 0x90, 0xCC, 0xCC}, buf)

	m.Shutdown()
	as.Equal([]byte{0x74, 0x09, 0xCC, 0xCC}, buf)
}

func TestCombatAbilitiesWrongBytesLeftAlone(t *testing.T) {
	as := assert.New(t)

	// Not the expected JE; already patched or a different build.
	buf := []byte{0xEB, 0x09}
	m := &CombatAbilities{target: uintptr(unsafe.Pointer(&buf[0]))}

	as.NoError(m.Initialize(nil))
	as.Equal([]byte{0xEB, 0x09}, buf)

	m.Shutdown()
	as.Equal([]byte{0xEB, 0x09}, buf)
}
