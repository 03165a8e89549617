package hooks

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestInsnLength(t *testing.T) {
	as := assert.New(t)

	cases := []struct {
		name string
		code []byte
		want int
	}{
		{"push ebp", []byte{0x55}, 1},
		{"mov ebp, esp", []byte{0x8B, 0xEC}, 2},
		{"sub esp, imm8", []byte{0x83, 0xEC, 0x10}, 3},
		{"sub esp, imm32", []byte{0x81, 0xEC, 0x00, 0x01, 0x00, 0x00}, 6},
		{"push imm32", []byte{0x68, 0x78, 0x56, 0x34, 0x12}, 5},
		{"mov eax, imm32", []byte{0xB8, 0x01, 0x00, 0x00, 0x00}, 5},
		{"mov eax, [disp32]", []byte{0xA1, 0x00, 0x10, 0x40, 0x00}, 5},
		{"mov eax, [ebp+8]", []byte{0x8B, 0x45, 0x08}, 3},
		{"mov eax, [esp+4]", []byte{0x8B, 0x44, 0x24, 0x04}, 4},
		{"mov ecx, [abs]", []byte{0x8B, 0x0D, 0x00, 0x10, 0x40, 0x00}, 6},
		{"mov eax, fs:[0]", []byte{0x64, 0xA1, 0x00, 0x00, 0x00, 0x00}, 6},
		{"call rel32", []byte{0xE8, 0x00, 0x00, 0x00, 0x00}, 5},
		{"xor eax, eax", []byte{0x33, 0xC0}, 2},
	}
	for _, c := range cases {
		got, err := insnLength(c.code)
		as.NoError(err, c.name)
		as.Equal(c.want, got, c.name)
	}
}

func TestInsnLengthUnsupported(t *testing.T) {
	_, err := insnLength([]byte{0x0F, 0x1F, 0x00})
	assert.Error(t, err)
}

func TestPrologueLength(t *testing.T) {
	as := assert.New(t)

	// Classic MSVC prologue: push ebp; mov ebp, esp; sub esp, 0x10.
	// Padded so the decoder's lookahead stays inside the buffer.
	code := make([]byte, 32)
	copy(code, []byte{0x55, 0x8B, 0xEC, 0x83, 0xEC, 0x10})

	n, err := prologueLength(uintptr(unsafe.Pointer(&code[0])), 5)
	as.NoError(err)
	as.Equal(6, n) // cannot split sub esp, so 6 bytes, not 5

	n, err = prologueLength(uintptr(unsafe.Pointer(&code[0])), 3)
	as.NoError(err)
	as.Equal(3, n)
}

func TestRelocateStolenFixesRel32(t *testing.T) {
	as := assert.New(t)

	target := uintptr(0x401000)
	tramp := uintptr(0x7F0000)
	dest := uintptr(0x40F000)

	// call dest; push ebp; mov ebp, esp; nop; nop
	stolen := make([]byte, 10)
	stolen[0] = 0xE8
	binary.LittleEndian.PutUint32(stolen[1:], uint32(int32(int64(dest)-int64(target)-5)))
	copy(stolen[5:], []byte{0x55, 0x8B, 0xEC, 0x90, 0x90})

	as.NoError(relocateStolen(stolen, target, tramp))

	rel := int32(binary.LittleEndian.Uint32(stolen[1:5]))
	as.Equal(int64(dest), int64(tramp)+5+int64(rel))
	as.Equal([]byte{0x55, 0x8B, 0xEC, 0x90, 0x90}, stolen[5:])
}

func TestRelocateStolenJmpAfterPush(t *testing.T) {
	as := assert.New(t)

	target := uintptr(0x500000)
	tramp := uintptr(0x410000)
	dest := uintptr(0x500200)

	// push ebp; jmp dest
	stolen := make([]byte, 6)
	stolen[0] = 0x55
	stolen[1] = 0xE9
	binary.LittleEndian.PutUint32(stolen[2:], uint32(int32(int64(dest)-int64(target)-6)))

	as.NoError(relocateStolen(stolen, target, tramp))

	rel := int32(binary.LittleEndian.Uint32(stolen[2:6]))
	as.Equal(int64(dest), int64(tramp)+6+int64(rel))
	as.Equal(byte(0x55), stolen[0])
}

func TestRelocateStolenRefusesUndecodable(t *testing.T) {
	err := relocateStolen([]byte{0x0F, 0x1F, 0x00}, 0x401000, 0x500000)
	assert.Error(t, err)
}
