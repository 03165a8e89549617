package mods_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/mods"
)

func petWindowTree() *hosttest.FakeWindow {
	return &hosttest.FakeWindow{
		Addr: 0x1000, Sidl: "PetInfoWindow", Type: "CSidlScreenWnd",
		L: 10, T: 20, R: 210, B: 320,
		Children: []*hosttest.FakeWindow{
			{Addr: 0x1100, Type: "CGaugeWnd", Text: "Pet HP"},
			{Addr: 0x1200, Type: "CButtonWnd", Text: "Attack"},
			{Addr: 0x1300, Type: "CGaugeWnd", Text: "Pet 2"},
			{Addr: 0x1400, Type: "CGaugeWnd", Text: "Pet 3"},
		},
	}
}

func newPetWindowHarness(t *testing.T) (*host.Host, *hosttest.FakeProbe, *mods.PetWindow, *[]string) {
	t.Helper()
	p := hosttest.NewFakeProbe()
	h := host.New(p)
	var lines []string
	h.SetChatSink(func(line string) { lines = append(lines, line) })
	m := mods.NewPetWindow()
	require.NoError(t, h.Register(m))
	h.InitializeAll()
	return h, p, m, &lines
}

func TestPetWindowFindsGauges(t *testing.T) {
	as := assert.New(t)
	h, p, m, _ := newPetWindowHarness(t)

	p.Wnds = []*hosttest.FakeWindow{
		{Addr: 0x900, Sidl: "InventoryWindow"},
		petWindowTree(),
	}

	as.True(h.DispatchCommand(p.Player, "/petwindebug create"))

	g2, g3 := m.Gauges()
	require.NotNil(t, g2)
	require.NotNil(t, g3)
	as.Equal(uintptr(0x1300), g2.Raw())
	as.Equal(uintptr(0x1400), g3.Raw())
}

func TestPetWindowMissingWindow(t *testing.T) {
	as := assert.New(t)
	h, p, m, lines := newPetWindowHarness(t)

	as.True(h.DispatchCommand(p.Player, "/petwindebug"))
	as.Contains(*lines, "  PetInfoWindow NOT FOUND (is it open?)")

	g2, g3 := m.Gauges()
	as.Nil(g2)
	as.Nil(g3)
}

func TestPetWindowChildDump(t *testing.T) {
	as := assert.New(t)
	h, p, _, lines := newPetWindowHarness(t)
	p.Wnds = []*hosttest.FakeWindow{petWindowTree()}

	as.True(h.DispatchCommand(p.Player, "/petwindebug children"))
	as.Contains(*lines, "  Total immediate children: 4")
}

func TestPetWindowCacheDroppedOnStateChange(t *testing.T) {
	as := assert.New(t)
	h, p, m, _ := newPetWindowHarness(t)
	p.Wnds = []*hosttest.FakeWindow{petWindowTree()}

	h.DispatchCommand(p.Player, "/petwindebug create")
	g2, _ := m.Gauges()
	as.NotNil(g2)

	h.GameStateChanged(1)
	g2, g3 := m.Gauges()
	as.Nil(g2)
	as.Nil(g3)
}
