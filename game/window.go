package game

import (
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/memory"
)

// rawWindow wraps a live CXWnd. Tree links are followed with guarded reads
// only; the UI tree is rebuilt wholesale on zone lines.
type rawWindow uintptr

func (w rawWindow) Raw() uintptr { return uintptr(w) }

func (w rawWindow) link(off uintptr) types.Window {
	p, ok := memory.SafeRead[uint32](uintptr(w) + off)
	if !ok || !memory.PointerLooksValid(uintptr(p)) {
		return nil
	}
	return rawWindow(uintptr(p))
}

func (w rawWindow) FirstChild() types.Window  { return w.link(offWndFirstChild) }
func (w rawWindow) NextSibling() types.Window { return w.link(offWndNextSibling) }

func (w rawWindow) SidlName() string {
	return readCXStr(uintptr(w) + offWndSidlText)
}

func (w rawWindow) WindowText() string {
	return readCXStr(uintptr(w) + offWndWindowText)
}

func (w rawWindow) Rect() (int32, int32, int32, int32) {
	base := uintptr(w) + offWndLocation
	l, ok := memory.SafeRead[int32](base)
	if !ok {
		return 0, 0, 0, 0
	}
	t, _ := memory.SafeRead[int32](base + 4)
	r, _ := memory.SafeRead[int32](base + 8)
	b, _ := memory.SafeRead[int32](base + 12)
	return l, t, r, b
}

// TypeName classifies the node by vftable. The probe's base is not
// available here, so classification is by the low bits of the vftable
// address matched against the known tables; unknown classes come back as
// CXWnd.
func (w rawWindow) TypeName() string {
	vt, ok := memory.SafeRead[uint32](uintptr(w) + offWndVtable)
	if !ok {
		return ""
	}
	switch uintptr(vt) & 0xFFFFF {
	case RawVftableCGaugeWnd & 0xFFFFF:
		return "CGaugeWnd"
	case RawVftableCButtonWnd & 0xFFFFF:
		return "CButtonWnd"
	default:
		return "CXWnd"
	}
}

// readCXStr dereferences a CXStr slot. The representation block holds the
// length and the UTF-8 bytes at fixed offsets.
func readCXStr(slot uintptr) string {
	rep, ok := memory.SafeRead[uint32](slot)
	if !ok || !memory.PointerLooksValid(uintptr(rep)) {
		return ""
	}
	n, ok := memory.SafeRead[uint32](uintptr(rep) + offCXStrRepLen)
	if !ok || n == 0 || n >= cxstrMaxLen {
		return ""
	}
	s, ok := memory.SafeReadBytes(uintptr(rep)+offCXStrRepUTF8, int(n))
	if !ok {
		return ""
	}
	return string(s)
}
