package mods

import (
	"strings"

	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/host/types"
	"github.com/thjmod/edgeproxy/memory"
)

// VersionCheck compares the build stamp compiled into the client image
// against the stamp this framework's offsets were taken from. Warn-only:
// near builds mostly work and blocking would make experimentation painful.
type VersionCheck struct {
	types.NopMod

	// ReadStamp supplies the client's build date/time strings. Tests
	// replace it; the default reads the client image.
	ReadStamp func() (date, time string)

	log *zap.SugaredLogger
}

func NewVersionCheck(base uintptr) *VersionCheck {
	return &VersionCheck{
		ReadStamp: func() (string, string) {
			d, _ := memory.SafeReadCString(game.FixAddr(base, game.RawVersionDate), 16)
			t, _ := memory.SafeReadCString(game.FixAddr(base, game.RawVersionTime), 16)
			return d, t
		},
	}
}

func (m *VersionCheck) Name() string { return "version_check" }

func (m *VersionCheck) Initialize(h types.HostLike) error {
	m.log = zap.S().Named("version_check")

	h.WriteChat("%s v%s loaded", types.APPNAME, types.VERSION)

	date, clock := m.ReadStamp()
	m.log.Infof("expected client %s %s, found %s %s",
		types.ExpectedClientDate, types.ExpectedClientTime, date, clock)

	if !m.StampMatches(date, clock) {
		m.log.Warnf("client version mismatch, continuing anyway")
		h.WriteChat("Warning: client build %s %s does not match expected %s %s",
			date, clock, types.ExpectedClientDate, types.ExpectedClientTime)
	}
	return nil
}

// StampMatches compares on the expected strings' prefixes, mirroring how
// the stamp is compared against a possibly longer buffer.
func (m *VersionCheck) StampMatches(date, clock string) bool {
	return strings.HasPrefix(date, types.ExpectedClientDate) &&
		strings.HasPrefix(clock, types.ExpectedClientTime)
}
