package host_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/host/types"
)

// scriptedMod records lifecycle calls into a shared journal so ordering
// across mods can be asserted.
type scriptedMod struct {
	types.NopMod
	name    string
	journal *[]string
	initErr error

	messageAction types.MessageAction
	onMessage     func(opcode uint32, data []byte)
	onInit        func(h types.HostLike) error
}

func (m *scriptedMod) Name() string { return m.name }

func (m *scriptedMod) Initialize(h types.HostLike) error {
	*m.journal = append(*m.journal, "init:"+m.name)
	if m.initErr != nil {
		return m.initErr
	}
	if m.onInit != nil {
		return m.onInit(h)
	}
	return nil
}

func (m *scriptedMod) Shutdown() {
	*m.journal = append(*m.journal, "down:"+m.name)
}

func (m *scriptedMod) OnPulse() {
	*m.journal = append(*m.journal, "pulse:"+m.name)
}

func (m *scriptedMod) OnIncomingMessage(opcode uint32, data []byte) types.MessageAction {
	*m.journal = append(*m.journal, "msg:"+m.name)
	if m.onMessage != nil {
		m.onMessage(opcode, data)
	}
	return m.messageAction
}

func newTestHost() *host.Host {
	return host.New(hosttest.NewFakeProbe())
}

func TestLifecycleOrdering(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()

	var journal []string
	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, h.Register(&scriptedMod{name: name, journal: &journal}))
	}

	h.InitializeAll()
	as.Equal([]string{"init:alpha", "init:beta", "init:gamma"}, journal)

	preShutdownAt := -1
	h.PreShutdown = func() { preShutdownAt = len(journal) }

	h.ShutdownAll()
	as.Equal([]string{
		"init:alpha", "init:beta", "init:gamma",
		"down:gamma", "down:beta", "down:alpha",
	}, journal)
	// Detour removal ran before the first mod shutdown.
	as.Equal(3, preShutdownAt)
}

func TestInitFailureKeepsModRegistered(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()

	var journal []string
	require.NoError(t, h.Register(&scriptedMod{name: "ok1", journal: &journal}))
	require.NoError(t, h.Register(&scriptedMod{name: "broken", journal: &journal, initErr: errors.New("no config")}))
	require.NoError(t, h.Register(&scriptedMod{name: "ok2", journal: &journal}))

	h.InitializeAll()
	as.Equal(2, h.ActiveMods())

	// A failed mod stays in the registry and keeps receiving events; it
	// is the mod's job to no-op.
	journal = nil
	h.Pulse()
	as.Equal([]string{"pulse:ok1", "pulse:broken", "pulse:ok2"}, journal)

	journal = nil
	h.ShutdownAll()
	as.Equal([]string{"down:ok2", "down:broken", "down:ok1"}, journal)
	as.Nil(h.FindMod("ok1")) // registry cleared
}

func TestRegisterRejects(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()
	var journal []string

	as.Error(h.Register(nil))
	as.NoError(h.Register(&scriptedMod{name: "pets", journal: &journal}))
	as.Error(h.Register(&scriptedMod{name: "pets", journal: &journal}))
}

func TestMessageShortCircuit(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()

	var journal []string
	require.NoError(t, h.Register(&scriptedMod{name: "first", journal: &journal}))
	require.NoError(t, h.Register(&scriptedMod{name: "eater", journal: &journal, messageAction: types.MessageSuppress}))
	require.NoError(t, h.Register(&scriptedMod{name: "starved", journal: &journal}))
	h.InitializeAll()
	journal = nil

	action := h.IncomingMessage(0x1339, []byte{1, 0})
	as.Equal(types.MessageSuppress, action)
	as.Equal([]string{"msg:first", "msg:eater"}, journal)

	// Without a suppressor every mod sees the packet and it passes.
	h2 := newTestHost()
	require.NoError(t, h2.Register(&scriptedMod{name: "a", journal: &journal}))
	require.NoError(t, h2.Register(&scriptedMod{name: "b", journal: &journal}))
	h2.InitializeAll()
	journal = nil
	as.Equal(types.MessagePass, h2.IncomingMessage(0x4D59, nil))
	as.Equal([]string{"msg:a", "msg:b"}, journal)
}

func TestZeroModsIsQuiet(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()

	h.InitializeAll()
	h.Pulse()
	h.GameStateChanged(types.GameStateInGame)
	as.Equal(types.MessagePass, h.IncomingMessage(0x578c, nil))
	as.False(h.DispatchCommand(nil, "/pets"))
	h.ShutdownAll()
	as.Zero(h.ActiveMods())
}

func TestPanicIsolation(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()

	var journal []string
	panicky := &scriptedMod{name: "panicky", journal: &journal}
	panicky.onMessage = func(uint32, []byte) { panic("bad offset") }
	require.NoError(t, h.Register(panicky))
	require.NoError(t, h.Register(&scriptedMod{name: "steady", journal: &journal}))
	h.InitializeAll()
	journal = nil

	as.NotPanics(func() {
		as.Equal(types.MessagePass, h.IncomingMessage(0x1338, nil))
	})
	// The panicking mod did not stop the fan-out.
	as.Contains(journal, "msg:steady")
}

func TestFindMod(t *testing.T) {
	as := assert.New(t)
	h := newTestHost()

	var journal []string
	pets := &scriptedMod{name: "multi_pet", journal: &journal}
	require.NoError(t, h.Register(pets))

	as.Equal(types.Mod(pets), h.FindMod("multi_pet"))
	as.Nil(h.FindMod("nope"))
}
