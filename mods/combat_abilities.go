package mods

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/memory"
)

// CombatAbilities NOPs the conditional jump that closes the combat
// abilities window for non-melee classes, so multiclass characters can
// always open it. The patch is verified against the expected bytes first
// and restored on shutdown.
type CombatAbilities struct {
	types.NopMod

	target uintptr
	saved  []byte
	log    *zap.SugaredLogger
}

var (
	combatAbilitiesJE  = []byte{0x74, 0x09}
	combatAbilitiesNOP = []byte{0x90, 0x90}
)

func NewCombatAbilities(base uintptr) *CombatAbilities {
	return &CombatAbilities{target: game.FixAddr(base, game.RawCombatAbilitiesJE)}
}

func (m *CombatAbilities) Name() string { return "combat_abilities" }

func (m *CombatAbilities) Initialize(types.HostLike) error {
	m.log = zap.S().Named("combat_abilities")

	cur, ok := memory.SafeReadBytes(m.target, len(combatAbilitiesJE))
	if !ok {
		m.log.Warnf("cannot read gate at %#x", m.target)
		return nil
	}
	if !bytes.Equal(cur, combatAbilitiesJE) {
		m.log.Warnf("unexpected bytes % x at %#x, already patched or wrong build", cur, m.target)
		return nil
	}

	saved, err := memory.Patch(m.target, combatAbilitiesNOP)
	if err != nil {
		m.log.Warnf("patch failed: %v", err)
		return nil
	}
	m.saved = saved
	m.log.Infof("combat abilities gate patched at %#x", m.target)
	return nil
}

func (m *CombatAbilities) Shutdown() {
	if m.saved == nil {
		return
	}
	if err := memory.Restore(m.target, m.saved); err != nil {
		m.log.Warnf("restore failed: %v", err)
	}
	m.saved = nil
}
