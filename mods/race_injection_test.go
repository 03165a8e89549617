package mods_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/mods"
)

func TestRaceInjectionOnEnterWorld(t *testing.T) {
	as := assert.New(t)
	path := writeConfig(t, "thj_races.ini", `[Races]
Count=3
Race0=700,ELF,0
Race1=701,DWF,1
Race2=nonsense
`)

	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewRaceInjection(0x400000, path)

	var calls []mods.RaceDef
	m.AddModel = func(raceID, gender int, model string) error {
		calls = append(calls, mods.RaceDef{ID: raceID, Model: model, Gender: gender})
		return nil
	}
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.GameStateChanged(5)
	as.Equal([]mods.RaceDef{
		{ID: 700, Model: "ELF", Gender: 0},
		{ID: 701, Model: "DWF", Gender: 1},
	}, calls)

	// Already injected; staying in world must not re-inject.
	h.GameStateChanged(5)
	as.Len(calls, 2)

	// Character select re-arms.
	h.GameStateChanged(1)
	h.GameStateChanged(5)
	as.Len(calls, 4)
}

func TestRaceInjectionNoLoaderStagesOnly(t *testing.T) {
	as := assert.New(t)
	path := writeConfig(t, "thj_races.ini", `[Races]
Count=1
Race0=700,ELF,0
`)

	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewRaceInjection(0x400000, path)
	m.AddModel = nil
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	// Must not panic; definitions stay staged.
	h.GameStateChanged(5)
	as.NotNil(m)
}

func TestRaceInjectionEmptyConfig(t *testing.T) {
	as := assert.New(t)
	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewRaceInjection(0x400000, "")

	called := false
	m.AddModel = func(int, int, string) error { called = true; return nil }
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.GameStateChanged(5)
	as.False(called)
}
