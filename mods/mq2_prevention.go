package mods

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thjmod/edgeproxy/host/types"
)

// Known MacroQuest2 module names, checked for foreign instances.
var mq2Modules = []string{
	"MQ2Main.dll",
	"MQ2AutoLogin.dll",
	"MQ2Map.dll",
	"MQ2ChatWnd.dll",
	"MQ2HUD.dll",
	"MQ2ItemDisplay.dll",
}

// MQ2's injector announces itself with this window class.
const mq2WindowClass = "MacroQuest2"

// Mq2Prevention warns when a foreign MacroQuest2 instance shares the
// process or machine. Detection only: forcibly unloading foreign DLLs
// would crash the client.
type Mq2Prevention struct {
	types.NopMod

	// Detect reports a foreign MQ2 presence and what gave it away.
	// Replaced in tests; the default scans loaded modules and windows.
	Detect func() (string, bool)

	rescan rate.Sometimes
	host   types.HostLike
	log    *zap.SugaredLogger
}

func NewMq2Prevention() *Mq2Prevention {
	m := &Mq2Prevention{
		rescan: rate.Sometimes{Interval: 5 * time.Second},
	}
	m.Detect = m.scan
	return m
}

func (m *Mq2Prevention) Name() string { return "mq2_prevention" }

func (m *Mq2Prevention) Initialize(h types.HostLike) error {
	m.log = zap.S().Named("mq2_prevention")
	m.host = h

	if what, found := m.Detect(); found {
		m.log.Warnf("MQ2 detected at startup (%s), expect conflicts", what)
	} else {
		m.log.Infof("no MQ2 detected")
	}
	return nil
}

func (m *Mq2Prevention) OnPulse() {
	m.rescan.Do(func() {
		if what, found := m.Detect(); found {
			m.log.Warnf("MQ2 detected during runtime (%s)", what)
			m.host.WriteChat("WARNING: MacroQuest2 detected (%s). This may cause conflicts.", what)
		}
	})
}
