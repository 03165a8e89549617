package mods

import (
	"encoding/binary"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/thjmod/edgeproxy/host/types"
)

// ZoneDef is one custom zone entry, from thj_zones.ini.
type ZoneDef struct {
	ID        int
	ShortName string
	LongName  string
	Expansion int
}

// ZoneLinker inserts owned zone records into the client's zone table.
// game.ZoneTable implements it over live client memory; tests use an
// in-memory fake.
type ZoneLinker interface {
	// Occupied reports whether the slot already holds a record (also true
	// for out-of-range ids or an unresolved world).
	Occupied(id int) bool
	Link(id int, record []byte) error
	UnlinkAll()
}

// EQZoneInfo record layout. Records we build leave the vtable null; the
// client only calls virtuals on zones the server actually loads.
const (
	zoneInfoSize     = 0x1F8
	offZoneExpansion = 0x008
	offZoneID        = 0x00C
	offZoneShort     = 0x010 // char[129]
	offZoneLong      = 0x091 // char[257]

	zoneShortNameCap = 128
	zoneLongNameCap  = 256
)

// ZoneInjection adds custom zone entries to the client's zone table when
// the character enters the world, so /zone names and map labels resolve
// for server-side zones the stock client never shipped with. Config:
//
//	[Zones]
//	Count=2
//	Zone0=700,customzone,Custom Zone Name,0
//	Zone1=701,anotherzone,Another Zone,0
//
// Occupied slots and out-of-range ids are skipped. Injection re-arms at
// character select.
type ZoneInjection struct {
	types.NopMod

	// Linker writes into the client zone table; nil stages the
	// definitions without injecting.
	Linker ZoneLinker

	configPath string
	zones      []ZoneDef
	injected   bool
	log        *zap.SugaredLogger
}

func NewZoneInjection(base uintptr, configPath string) *ZoneInjection {
	return &ZoneInjection{
		Linker:     defaultZoneLinker(base),
		configPath: configPath,
	}
}

func (m *ZoneInjection) Name() string { return "zone_injection" }

func (m *ZoneInjection) Initialize(types.HostLike) error {
	m.log = zap.S().Named("zone_injection")
	m.zones = loadZoneConfig(m.configPath, m.log)
	if len(m.zones) == 0 {
		m.log.Info("no zones configured")
		return nil
	}
	m.log.Infof("%d zone definitions loaded", len(m.zones))
	return nil
}

func (m *ZoneInjection) Shutdown() {
	if m.Linker != nil {
		m.Linker.UnlinkAll()
	}
	m.zones = nil
	m.injected = false
}

func (m *ZoneInjection) OnGameStateChange(state int) {
	switch state {
	case types.GameStateInGame:
		if !m.injected && len(m.zones) > 0 {
			m.inject()
		}
	case types.GameStateCharSelect:
		m.injected = false
	}
}

func (m *ZoneInjection) inject() {
	if m.Linker == nil {
		m.log.Warn("zone table unavailable, zone definitions staged only")
		return
	}
	for _, z := range m.zones {
		if m.Linker.Occupied(z.ID) {
			m.log.Infof("zone slot %d occupied or out of range, skipping %s", z.ID, z.ShortName)
			continue
		}
		m.log.Infof("injecting zone %s id %d", z.ShortName, z.ID)
		if err := m.Linker.Link(z.ID, buildZoneRecord(z)); err != nil {
			m.log.Warnf("zone %d: %v", z.ID, err)
			continue
		}
		m.log.Infof("loaded zone %s id %d", z.ShortName, z.ID)
	}
	m.injected = true
}

// buildZoneRecord lays out one EQZoneInfo. Names longer than the client's
// fixed fields are truncated.
func buildZoneRecord(z ZoneDef) []byte {
	rec := make([]byte, zoneInfoSize)
	binary.LittleEndian.PutUint32(rec[offZoneExpansion:], uint32(z.Expansion))
	binary.LittleEndian.PutUint32(rec[offZoneID:], uint32(z.ID))
	copyCString(rec[offZoneShort:], z.ShortName, zoneShortNameCap)
	copyCString(rec[offZoneLong:], z.LongName, zoneLongNameCap)
	return rec
}

// copyCString writes s NUL-terminated into dst, truncated to max bytes of
// text.
func copyCString(dst []byte, s string, max int) {
	if len(s) > max {
		s = s[:max]
	}
	copy(dst, s)
	dst[len(s)] = 0
}

func loadZoneConfig(path string, log *zap.SugaredLogger) []ZoneDef {
	if path == "" {
		return nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		log.Debugf("no zone config: %v", err)
		return nil
	}
	sec := cfg.Section("Zones")
	count := sec.Key("Count").MustInt(0)

	var zones []ZoneDef
	for i := 0; i < count; i++ {
		v := sec.Key("Zone" + strconv.Itoa(i)).String()
		def, ok := parseZoneDef(v)
		if !ok {
			continue
		}
		zones = append(zones, def)
		log.Infof("config zone %d: id=%d short=%s long=%s exp=%d",
			i, def.ID, def.ShortName, def.LongName, def.Expansion)
	}
	return zones
}

// parseZoneDef parses "zoneId,shortName,longName[,expansion]".
func parseZoneDef(v string) (ZoneDef, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 3 {
		return ZoneDef{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ZoneDef{}, false
	}
	def := ZoneDef{
		ID:        id,
		ShortName: strings.TrimSpace(parts[1]),
		LongName:  strings.TrimSpace(parts[2]),
	}
	if def.ShortName == "" || def.LongName == "" {
		return ZoneDef{}, false
	}
	if len(parts) >= 4 {
		def.Expansion, _ = strconv.Atoi(strings.TrimSpace(parts[3]))
	}
	return def, true
}
