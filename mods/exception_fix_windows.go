package mods

/*
// FS:[0] anchors the current thread's SEH registration chain on x86.

static unsigned int edge_seh_head(void) {
	unsigned int head;
	__asm__ volatile ("movl %%fs:0, %0" : "=r"(head));
	return head;
}

static void edge_seh_set_head(unsigned int head) {
	__asm__ volatile ("movl %0, %%fs:0" : : "r"(head));
}
*/
import "C"

import (
	"github.com/thjmod/edgeproxy/memory"
)

type fsSEHChain struct{}

func liveSEHChain() SEHChain { return fsSEHChain{} }

func (fsSEHChain) Head() uintptr        { return uintptr(C.edge_seh_head()) }
func (fsSEHChain) SetHead(addr uintptr) { C.edge_seh_set_head(C.uint(addr)) }

func (fsSEHChain) Record(addr uintptr) (uintptr, uintptr, bool) {
	next, ok := memory.SafeRead[uint32](addr)
	if !ok {
		return 0, 0, false
	}
	handler, ok := memory.SafeRead[uint32](addr + 4)
	if !ok {
		return 0, 0, false
	}
	return uintptr(next), uintptr(handler), true
}

func (fsSEHChain) SetNext(addr, next uintptr) bool {
	if !memory.PointerLooksValid(addr) {
		return false
	}
	memory.Write(addr, uint32(next))
	return true
}
