package mods

import (
	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/hooks"
	"github.com/thjmod/edgeproxy/host/types"
)

// SpellbookUnlock detours six class-restriction checks to always-allow, so
// multiclass characters can scribe, mem and cast from every spellbook and
// use any item. The detours never call the originals.
type SpellbookUnlock struct {
	types.NopMod

	base      uintptr
	mgr       *hooks.Manager
	installed []string
	log       *zap.SugaredLogger
}

func NewSpellbookUnlock(base uintptr, mgr *hooks.Manager) *SpellbookUnlock {
	return &SpellbookUnlock{base: base, mgr: mgr}
}

func (m *SpellbookUnlock) Name() string { return "spellbook_unlock" }

func (m *SpellbookUnlock) Initialize(types.HostLike) error {
	m.log = zap.S().Named("spellbook_unlock")
	m.install()
	m.log.Infof("%d unlock hooks installed", len(m.installed))
	return nil
}

func (m *SpellbookUnlock) Shutdown() {
	for _, name := range m.installed {
		if err := m.mgr.Remove(name); err != nil {
			m.log.Warnf("remove %s: %v", name, err)
		}
	}
	m.installed = nil
}

// hook installs one detour and records it for shutdown. Install failures
// are non-fatal: the restriction simply stays in place.
func (m *SpellbookUnlock) hook(name string, target, detour uintptr) {
	if _, err := m.mgr.Install(name, target, detour); err != nil {
		m.log.Warnf("install %s: %v", name, err)
		return
	}
	m.installed = append(m.installed, name)
}
