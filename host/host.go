// Package host owns the mod lifecycle and fans client events out to every
// registered mod. It knows nothing about how those events are produced;
// the detour bridge and the simulator both drive the same surface.
package host

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/host/types"
)

// Host drives registered mods through their lifecycle and event callbacks.
type Host struct {
	mods   []types.Mod // registration order
	initOK int
	game   types.GameProbe

	commands commandTable
	chatSink func(line string)

	// PreShutdown runs once before the first mod Shutdown. The proxy uses
	// it to pull all detours while the mods still exist.
	PreShutdown func()

	log *zap.SugaredLogger
}

func New(game types.GameProbe) *Host {
	h := &Host{
		game: game,
		log:  zap.S().Named("host"),
	}
	h.commands.init()
	return h
}

// Register queues a mod for initialization. Registration order is the
// initialization order. A nil mod or a name collision is refused.
func (h *Host) Register(mod types.Mod) error {
	if mod == nil {
		return errors.New("host: register nil mod")
	}
	name := mod.Name()
	if name == "" {
		return errors.New("host: register mod with empty name")
	}
	for _, m := range h.mods {
		if m.Name() == name {
			return errors.Errorf("host: mod %q already registered", name)
		}
	}
	h.mods = append(h.mods, mod)
	return nil
}

// InitializeAll brings every registered mod up, in registration order. A
// mod whose Initialize fails is logged and stays registered: it keeps
// receiving events and is expected to no-op until shutdown.
func (h *Host) InitializeAll() {
	for _, mod := range h.mods {
		if err := mod.Initialize(h); err != nil {
			h.log.Errorf("mod %s failed to initialize: %v", mod.Name(), err)
			continue
		}
		h.initOK++
		h.log.Infof("mod %s up", mod.Name())
	}
}

// ShutdownAll tears the mods down in reverse registration order, after
// PreShutdown has pulled the detours, then clears the registry.
func (h *Host) ShutdownAll() {
	if h.PreShutdown != nil {
		h.PreShutdown()
	}
	for i := len(h.mods) - 1; i >= 0; i-- {
		mod := h.mods[i]
		h.guard(mod.Name(), "shutdown", mod.Shutdown)
		h.log.Infof("mod %s down", mod.Name())
	}
	h.mods = nil
	h.initOK = 0
}

// FindMod returns the registered mod with the given name, or nil. Mods use
// it for the few cross-mod lookups that exist.
func (h *Host) FindMod(name string) types.Mod {
	for _, m := range h.mods {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// Game exposes the client probe to mods.
func (h *Host) Game() types.GameProbe { return h.game }

// ActiveMods reports how many mods initialized cleanly. Used by the
// post-init log line and by tests checking init-failure tolerance.
func (h *Host) ActiveMods() int { return h.initOK }

// Pulse runs once per client frame.
func (h *Host) Pulse() {
	for _, mod := range h.mods {
		h.guard(mod.Name(), "pulse", mod.OnPulse)
	}
}

// GameStateChanged fans a client state transition out to every active mod.
func (h *Host) GameStateChanged(state int) {
	for _, mod := range h.mods {
		m := mod
		h.guard(m.Name(), "state change", func() { m.OnGameStateChange(state) })
	}
}

// SpawnAdded fans a new spawn out to every active mod.
func (h *Host) SpawnAdded(sp types.Spawn) {
	for _, mod := range h.mods {
		m := mod
		h.guard(m.Name(), "add spawn", func() { m.OnAddSpawn(sp) })
	}
}

// SpawnRemoved fans a despawn out to every active mod.
func (h *Host) SpawnRemoved(sp types.Spawn) {
	for _, mod := range h.mods {
		m := mod
		h.guard(m.Name(), "remove spawn", func() { m.OnRemoveSpawn(sp) })
	}
}

// IncomingMessage offers a server packet to the active mods in order. The
// first mod that returns suppress short-circuits the rest, and the packet
// never reaches the client's own handler.
func (h *Host) IncomingMessage(opcode uint32, data []byte) types.MessageAction {
	action := types.MessagePass
	for _, mod := range h.mods {
		m := mod
		h.guard(m.Name(), "message", func() {
			action = m.OnIncomingMessage(opcode, data)
		})
		if action == types.MessageSuppress {
			return types.MessageSuppress
		}
	}
	return types.MessagePass
}

// guard runs a mod callback with panic isolation. One misbehaving mod must
// never take the client process down.
func (h *Host) guard(name, what string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Errorf("mod %s panicked in %s: %v", name, what, rec)
		}
	}()
	fn()
}
