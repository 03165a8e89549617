package mods_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/mods"
)

func newPyrelightHarness(t *testing.T) (*host.Host, *hosttest.FakeProbe, *mods.PyrelightPatches, *[]string) {
	t.Helper()
	p := hosttest.NewFakeProbe()
	h := host.New(p)
	var lines []string
	h.SetChatSink(func(line string) { lines = append(lines, line) })
	m := mods.NewPyrelightPatches(0x400000, nil)
	require.NoError(t, h.Register(m))
	h.InitializeAll()
	return h, p, m, &lines
}

func TestFoodFilterDefaultOff(t *testing.T) {
	as := assert.New(t)
	_, _, m, _ := newPyrelightHarness(t)

	as.False(m.IsFoodDrinkMessage("Chomp, chomp, chomp..."))
}

func TestFoodFilterToggleAndMatch(t *testing.T) {
	as := assert.New(t)
	h, p, m, lines := newPyrelightHarness(t)

	as.True(h.DispatchCommand(p.Player, "/filterfood"))
	as.Contains(*lines, "Food/drink message filter: ON")

	as.True(m.IsFoodDrinkMessage("Glug, glug, glug... You down the water."))
	as.True(m.IsFoodDrinkMessage("You take a bite of the iron ration."))
	as.False(m.IsFoodDrinkMessage("You have slain a rat!"))
	as.False(m.IsFoodDrinkMessage(""))

	as.True(h.DispatchCommand(p.Player, "/filterfood off"))
	as.Contains(*lines, "Food/drink message filter: OFF")
	as.False(m.IsFoodDrinkMessage("Glug, glug, glug..."))

	as.True(h.DispatchCommand(p.Player, "/filterfood on"))
	as.True(m.IsFoodDrinkMessage("You are out of food."))
}
