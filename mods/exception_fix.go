package mods

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/host/types"
)

// sehEndOfChain terminates the registration list.
const sehEndOfChain uintptr = 0xFFFFFFFF

// SEHChain is the per-thread exception registration list. The live
// implementation reads FS:[0]; tests supply an in-memory chain.
type SEHChain interface {
	Head() uintptr
	SetHead(addr uintptr)
	// Record reads one registration record: its Next link and handler.
	Record(addr uintptr) (next, handler uintptr, ok bool)
	// SetNext rewrites a record's Next link.
	SetNext(addr, next uintptr) bool
}

// SEHRecord is one dumped chain entry.
type SEHRecord struct {
	Addr    uintptr
	Next    uintptr
	Handler uintptr
}

// ExceptionFix unlinks the client's global exception filter from the SEH
// chain. The filter swallows every crash in the main loop, which hides
// real faults from crash handlers and the OS. The client occasionally
// re-registers it, so the chain is re-checked about once a second.
type ExceptionFix struct {
	types.NopMod

	chain      SEHChain
	filterAddr uintptr
	fixed      bool
	recheck    rate.Sometimes
	host       types.HostLike
	log        *zap.SugaredLogger
}

func NewExceptionFix(base uintptr) *ExceptionFix {
	return &ExceptionFix{
		chain:      liveSEHChain(),
		filterAddr: game.FixAddr(base, game.RawExceptionFilter),
		recheck:    rate.Sometimes{Interval: time.Second},
	}
}

func (m *ExceptionFix) Name() string { return "exception_fix" }

func (m *ExceptionFix) Initialize(h types.HostLike) error {
	m.log = zap.S().Named("exception_fix")
	m.host = h

	m.log.Infof("exception filter at %#x", m.filterAddr)
	m.fixed = m.unlinkFilter()

	return h.AddCommand("sehchain", m.cmdSEHChain)
}

func (m *ExceptionFix) Shutdown() {
	m.host.RemoveCommand("sehchain")
}

// OnPulse re-checks the chain: zoning and some UI paths re-register the
// filter.
func (m *ExceptionFix) OnPulse() {
	m.recheck.Do(func() {
		if !m.fixed {
			m.fixed = m.unlinkFilter()
		}
	})
}

// unlinkFilter walks the chain and removes the record whose handler is
// the client's filter. Head removal rewrites the chain anchor; interior
// removal rewrites the predecessor's link.
func (m *ExceptionFix) unlinkFilter() bool {
	if m.filterAddr == 0 || m.chain == nil {
		return false
	}
	var prev uintptr
	cur := m.chain.Head()
	for i := 0; cur != sehEndOfChain && cur != 0 && i < 256; i++ {
		next, handler, ok := m.chain.Record(cur)
		if !ok {
			return false
		}
		if handler == m.filterAddr {
			if prev == 0 {
				m.chain.SetHead(next)
			} else if !m.chain.SetNext(prev, next) {
				return false
			}
			m.log.Infof("unlinked exception filter record at %#x", cur)
			return true
		}
		prev = cur
		cur = next
	}
	m.log.Debugf("exception filter not in chain yet")
	return false
}

// Dump snapshots the chain for diagnostics.
func (m *ExceptionFix) Dump() []SEHRecord {
	if m.chain == nil {
		return nil
	}
	var out []SEHRecord
	cur := m.chain.Head()
	for i := 0; cur != sehEndOfChain && cur != 0 && i < 256; i++ {
		next, handler, ok := m.chain.Record(cur)
		if !ok {
			break
		}
		out = append(out, SEHRecord{Addr: cur, Next: next, Handler: handler})
		cur = next
	}
	return out
}

func (m *ExceptionFix) cmdSEHChain(types.Spawn, string) {
	m.host.WriteChat("SEH chain:")
	for _, r := range m.Dump() {
		marker := ""
		if r.Handler == m.filterAddr {
			marker = " <- client filter"
		}
		m.host.WriteChat("  %#x: next=%#x handler=%#x%s", r.Addr, r.Next, r.Handler, marker)
	}
}
