package mods

import (
	"encoding/binary"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/thjmod/edgeproxy/hooks"
	"github.com/thjmod/edgeproxy/host/types"
)

// Stat identifiers shared with the server's stat broadcast.
const (
	StatMaxMana      = 0
	StatCurMana      = 1
	StatMaxEndurance = 2
	StatCurEndurance = 3
	StatMaxHP        = 4
	StatCurHP        = 5
)

// OpEdgeStats is the server's stat-override broadcast opcode.
const OpEdgeStats uint32 = 0x1338

// statEntrySize is one packed {type uint8, value int32} entry.
const statEntrySize = 5

// StatsOverride fixes the stat display for classes the client believes
// have no mana or endurance. Five client functions are detoured and their
// results pass through a three-tier resolution: a server-sent override
// wins, then a configured placeholder when the client reports zero, then
// the client's own value.
type StatsOverride struct {
	types.NopMod

	base        uintptr
	mgr         *hooks.Manager
	configPath  string
	testDefault int

	mu        sync.Mutex
	overrides map[uint8]int32

	installed []string
	log       *zap.SugaredLogger
}

// statsTestDefault stands in for server data until the stat broadcast is
// live everywhere. Non-zero so a working hook is visible in the UI.
const statsTestDefault = 100

func NewStatsOverride(base uintptr, mgr *hooks.Manager, configPath string) *StatsOverride {
	return &StatsOverride{
		base:        base,
		mgr:         mgr,
		configPath:  configPath,
		testDefault: statsTestDefault,
		overrides:   make(map[uint8]int32),
	}
}

func (m *StatsOverride) Name() string { return "stats_override" }

func (m *StatsOverride) Initialize(types.HostLike) error {
	m.log = zap.S().Named("stats_override")
	m.loadConfig()
	m.install()
	m.log.Infof("%d stat hooks installed, test default %d", len(m.installed), m.testDefault)
	return nil
}

func (m *StatsOverride) Shutdown() {
	for _, name := range m.installed {
		if err := m.mgr.Remove(name); err != nil {
			m.log.Warnf("remove %s: %v", name, err)
		}
	}
	m.installed = nil
	m.mu.Lock()
	m.overrides = make(map[uint8]int32)
	m.mu.Unlock()
	m.uninstallGlobal()
}

// loadConfig reads the placeholder value from thj_stats.ini. A missing or
// malformed file keeps the built-in default.
func (m *StatsOverride) loadConfig() {
	if m.configPath == "" {
		return
	}
	cfg, err := ini.Load(m.configPath)
	if err != nil {
		m.log.Debugf("no stats config: %v", err)
		return
	}
	if v, err := cfg.Section("Stats").Key("TestDefault").Int(); err == nil {
		m.testDefault = v
	}
}

// Resolve applies the three-tier priority to one stat reading.
func (m *StatsOverride) Resolve(stat uint8, original int32) int32 {
	m.mu.Lock()
	v, ok := m.overrides[stat]
	m.mu.Unlock()
	if ok {
		return v
	}
	if original == 0 {
		return int32(m.testDefault)
	}
	return original
}

// Override returns the server-sent value for a stat, if any.
func (m *StatsOverride) Override(stat uint8) (int32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.overrides[stat]
	return v, ok
}

// OnIncomingMessage consumes the stat broadcast. The opcode is unknown to
// the client, so the packet is suppressed even when malformed.
func (m *StatsOverride) OnIncomingMessage(opcode uint32, data []byte) types.MessageAction {
	if opcode != OpEdgeStats {
		return types.MessagePass
	}
	if len(data) < 4 {
		m.log.Warnf("stat broadcast too small (%d bytes)", len(data))
		return types.MessageSuppress
	}
	count := binary.LittleEndian.Uint32(data)
	if uint64(len(data)) < 4+uint64(count)*statEntrySize {
		m.log.Warnf("stat broadcast count=%d but only %d bytes", count, len(data))
		return types.MessageSuppress
	}

	m.mu.Lock()
	for i := uint32(0); i < count; i++ {
		entry := data[4+i*statEntrySize:]
		stat := entry[0]
		value := int32(binary.LittleEndian.Uint32(entry[1:5]))
		m.overrides[stat] = value
	}
	m.mu.Unlock()
	m.log.Infof("received %d stat overrides", count)
	return types.MessageSuppress
}

// OnGameStateChange drops overrides when leaving the world; the server
// re-sends them on the next zone-in.
func (m *StatsOverride) OnGameStateChange(state int) {
	if state == types.GameStateInGame {
		return
	}
	m.mu.Lock()
	m.overrides = make(map[uint8]int32)
	m.mu.Unlock()
}
