// Package mods holds the individual gameplay fixes and extensions the
// framework hosts. Each mod is self-contained: it registers commands and
// hooks at Initialize and takes them down again at Shutdown. Registration
// order matters only in that events fan out in this order and shutdown
// runs in reverse.
package mods

import (
	"path/filepath"

	"github.com/thjmod/edgeproxy/hooks"
	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/types"
)

// Config file names, looked up in the game directory.
const (
	statsConfigName = "thj_stats.ini"
	racesConfigName = "thj_races.ini"
	zonesConfigName = "thj_zones.ini"
)

// RegisterAll registers the full mod set. Safety and environment checks
// go first so their output lands in the log before anything patches
// client code; UI-facing mods come last.
func RegisterAll(h *host.Host, base uintptr, mgr *hooks.Manager, configDir string) error {
	set := []types.Mod{
		NewVersionCheck(base),
		NewExceptionFix(base),
		NewCpuSpeedFix(mgr),
		NewMq2Prevention(),
		NewCombatAbilities(base),
		NewSpellbookUnlock(base, mgr),
		NewStatsOverride(base, mgr, filepath.Join(configDir, statsConfigName)),
		NewPyrelightPatches(base, mgr),
		NewWhoMulticlass(),
		NewMultiPet(),
		NewPetWindow(),
		NewRaceInjection(base, filepath.Join(configDir, racesConfigName)),
		NewZoneInjection(base, filepath.Join(configDir, zonesConfigName)),
	}
	for _, m := range set {
		if err := h.Register(m); err != nil {
			return err
		}
	}
	return nil
}
