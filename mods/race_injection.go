package mods

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/thjmod/edgeproxy/host/types"
)

// RaceDef is one custom race model to load, from thj_races.ini.
type RaceDef struct {
	ID     int
	Model  string
	Gender int
}

// RaceInjection feeds extra race models to the client's model loader when
// the character enters the world. Definitions come from thj_races.ini:
//
//	[Races]
//	Count=2
//	Race0=700,ELF,0
//	Race1=701,DWF,1
//
// Injection re-arms at character select so models load again on the next
// entry.
type RaceInjection struct {
	types.NopMod

	// AddModel invokes the client's CRaces::AddModel. Tests swap in a
	// recorder; a nil value (model loader unavailable) stages the
	// definitions without injecting.
	AddModel func(raceID, gender int, model string) error

	configPath string
	races      []RaceDef
	injected   bool
	log        *zap.SugaredLogger
}

func NewRaceInjection(base uintptr, configPath string) *RaceInjection {
	return &RaceInjection{
		AddModel:   clientAddModel(base),
		configPath: configPath,
	}
}

func (m *RaceInjection) Name() string { return "race_injection" }

func (m *RaceInjection) Initialize(types.HostLike) error {
	m.log = zap.S().Named("race_injection")
	m.races = loadRaceConfig(m.configPath, m.log)
	if len(m.races) == 0 {
		m.log.Info("no races configured")
		return nil
	}
	m.log.Infof("%d race definitions loaded", len(m.races))
	return nil
}

func (m *RaceInjection) Shutdown() {
	m.races = nil
	m.injected = false
}

func (m *RaceInjection) OnGameStateChange(state int) {
	switch state {
	case types.GameStateInGame:
		if !m.injected && len(m.races) > 0 {
			m.inject()
		}
	case types.GameStateCharSelect:
		m.injected = false
	}
}

func (m *RaceInjection) inject() {
	if m.AddModel == nil {
		m.log.Warn("model loader unavailable, race definitions staged only")
		return
	}
	for _, r := range m.races {
		m.log.Infof("injecting race %s gender %d id %d", r.Model, r.Gender, r.ID)
		if err := m.AddModel(r.ID, r.Gender, r.Model); err != nil {
			m.log.Warnf("race %d: %v", r.ID, err)
			return
		}
		m.log.Infof("loaded race %s gender %d as id %d", r.Model, r.Gender, r.ID)
	}
	m.injected = true
}

// loadRaceConfig reads [Races] Count and RaceN keys. A missing file or an
// empty section is not an error; the mod idles.
func loadRaceConfig(path string, log *zap.SugaredLogger) []RaceDef {
	if path == "" {
		return nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		log.Debugf("no race config: %v", err)
		return nil
	}
	sec := cfg.Section("Races")
	count := sec.Key("Count").MustInt(0)

	var races []RaceDef
	for i := 0; i < count; i++ {
		v := sec.Key("Race" + strconv.Itoa(i)).String()
		def, ok := parseRaceDef(v)
		if !ok {
			continue
		}
		races = append(races, def)
		log.Infof("config race %d: id=%d model=%s gender=%d", i, def.ID, def.Model, def.Gender)
	}
	return races
}

// parseRaceDef parses "raceId,modelName[,gender]".
func parseRaceDef(v string) (RaceDef, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return RaceDef{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return RaceDef{}, false
	}
	def := RaceDef{ID: id, Model: strings.TrimSpace(parts[1])}
	if def.Model == "" {
		return RaceDef{}, false
	}
	if len(parts) >= 3 {
		def.Gender, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
	}
	return def, true
}
