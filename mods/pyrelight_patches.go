package mods

import (
	"strings"

	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/hooks"
	"github.com/thjmod/edgeproxy/host/types"
)

// Chat lines the food/drink filter can suppress.
var foodDrinkPatterns = []string{
	"You are out of drink",
	"You are out of food",
	"You and your mount are thirsty.",
	"You and your mount are hungry.",
	"You are hungry",
	"You are thirsty",
	"You take a bite out of",
	"You take a bite of",
	"You take a drink from",
	"Ahhh. That was tasty.",
	"Ahhh. That was refreshing.",
	"Chomp, chomp, chomp...",
	"Glug, glug, glug...",
	"You could not possibly eat any more, you would explode",
	"You could not possibly drink any more, you would explode",
	"You could not possibly consume more alcohol",
}

// memCheckerTargets are the client's integrity check entry points. The
// bypass stays off: the three-byte return patch breaks zone-in, and the
// checks do not currently flag our detours. Kept for the day they do.
var memCheckerTargets = []struct {
	Name string
	Raw  uintptr
}{
	{"MemChecker0", game.RawMemChecker0},
	{"MemChecker1", game.RawMemChecker1},
	{"MemChecker2", game.RawMemChecker2},
	{"MemChecker3", game.RawMemChecker3},
}

const memCheckerBypassEnabled = false

// PyrelightPatches carries the client fixes inherited from the Pyrelight
// DLL: a toggleable food/drink chat spam filter on the client's chat
// output, and a gamma ramp saved at startup and restored if the client
// crashes (a full-screen crash otherwise leaves the desktop washed out).
type PyrelightPatches struct {
	types.NopMod

	base       uintptr
	mgr        *hooks.Manager
	filterFood bool
	chatHooked bool
	host       types.HostLike
	log        *zap.SugaredLogger
}

func NewPyrelightPatches(base uintptr, mgr *hooks.Manager) *PyrelightPatches {
	return &PyrelightPatches{base: base, mgr: mgr}
}

func (m *PyrelightPatches) Name() string { return "pyrelight_patches" }

func (m *PyrelightPatches) Initialize(h types.HostLike) error {
	m.log = zap.S().Named("pyrelight_patches")
	m.host = h

	if memCheckerBypassEnabled {
		m.patchMemCheckers()
	}

	if m.saveGammaRamp() {
		m.installGammaCrashHandler()
	}
	m.installChatFilter()

	return h.AddCommand("filterfood", m.cmdFilterFood)
}

func (m *PyrelightPatches) Shutdown() {
	m.host.RemoveCommand("filterfood")
	m.removeChatFilter()
	m.restoreGammaRamp()
}

// IsFoodDrinkMessage reports whether a chat line is consumable spam the
// filter should eat.
func (m *PyrelightPatches) IsFoodDrinkMessage(msg string) bool {
	if !m.filterFood || msg == "" {
		return false
	}
	for _, pat := range foodDrinkPatterns {
		if strings.Contains(msg, pat) {
			return true
		}
	}
	return false
}

// cmdFilterFood toggles the filter, or forces it with "on"/"off".
func (m *PyrelightPatches) cmdFilterFood(_ types.Spawn, args string) {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		m.filterFood = true
	case "off":
		m.filterFood = false
	default:
		m.filterFood = !m.filterFood
	}
	state := "OFF"
	if m.filterFood {
		state = "ON"
	}
	m.host.WriteChat("Food/drink message filter: %s", state)
}
