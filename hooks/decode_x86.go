package hooks

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/thjmod/edgeproxy/memory"
)

// prologueLength walks whole x86 instructions from target until at least
// min bytes are covered. Only the opcodes that actually open the client's
// function prologues are decoded; anything else is refused rather than
// guessed at.
func prologueLength(target uintptr, min int) (int, error) {
	n := 0
	for n < min {
		l, err := insnLength(memory.ReadBytes(target+uintptr(n), 16))
		if err != nil {
			return 0, errors.Wrapf(err, "hooks: decode at %#x", target+uintptr(n))
		}
		n += l
	}
	return n, nil
}

func insnLength(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, errors.New("empty instruction buffer")
	}
	op := b[0]
	switch {
	case op == 0x55 || op == 0x56 || op == 0x57 || op == 0x53: // push reg
		return 1, nil
	case op >= 0x58 && op <= 0x5F: // pop reg
		return 1, nil
	case op == 0x90: // nop
		return 1, nil
	case op == 0xC3: // ret
		return 1, nil
	case op == 0xCC: // int3
		return 1, nil
	case op == 0x6A: // push imm8
		return 2, nil
	case op == 0x68: // push imm32
		return 5, nil
	case op == 0xB8 || op == 0xB9 || op == 0xBA: // mov reg, imm32
		return 5, nil
	case op == 0xE9 || op == 0xE8: // jmp/call rel32
		return 5, nil
	case op == 0xA1 || op == 0xA3: // mov eax, [moffs32] / mov [moffs32], eax
		return 5, nil
	case op == 0x33 || op == 0x8B || op == 0x89 || op == 0x3B: // xor/mov/cmp r,r/m
		return modrmLength(b[1:], 1)
	case op == 0x83: // grp1 r/m, imm8
		l, err := modrmLength(b[1:], 1)
		if err != nil {
			return 0, err
		}
		return l + 1, nil
	case op == 0x81: // grp1 r/m, imm32
		l, err := modrmLength(b[1:], 1)
		if err != nil {
			return 0, err
		}
		return l + 4, nil
	case op == 0x64 && len(b) > 1: // fs: prefix
		l, err := insnLength(b[1:])
		if err != nil {
			return 0, err
		}
		return l + 1, nil
	}
	return 0, errors.Errorf("unsupported opcode %#02x", op)
}

// relocateStolen rewrites rel32 call/jmp displacements in a stolen
// prologue so they still reach their original destinations once the bytes
// execute at tramp instead of target. The displacement is relative to the
// end of the instruction, so moving the instruction by (tramp - target)
// shifts the landing point by the same amount unless corrected.
func relocateStolen(stolen []byte, target, tramp uintptr) error {
	delta := int32(int64(target) - int64(tramp))
	for off := 0; off < len(stolen); {
		l, err := insnLength(stolen[off:])
		if err != nil {
			return errors.Wrapf(err, "hooks: relocate at %#x+%d", target, off)
		}
		op := stolen[off]
		if op == 0xE8 || op == 0xE9 {
			rel := int32(binary.LittleEndian.Uint32(stolen[off+1 : off+5]))
			binary.LittleEndian.PutUint32(stolen[off+1:], uint32(rel+delta))
		}
		off += l
	}
	return nil
}

// modrmLength returns base (opcode bytes) + ModRM + SIB + displacement.
func modrmLength(b []byte, base int) (int, error) {
	if len(b) == 0 {
		return 0, errors.New("truncated modrm")
	}
	modrm := b[0]
	mod := modrm >> 6
	rm := modrm & 7
	n := base + 1
	sibNoBase := false
	if mod != 3 && rm == 4 { // SIB byte
		if len(b) < 2 {
			return 0, errors.New("truncated sib")
		}
		n++
		sibNoBase = mod == 0 && b[1]&7 == 5
	}
	switch mod {
	case 0:
		if rm == 5 || sibNoBase { // disp32, no base register
			n += 4
		}
	case 1:
		n++
	case 2:
		n += 4
	}
	return n, nil
}
