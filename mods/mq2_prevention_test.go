package mods_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/mods"
)

func TestMq2DetectionWarnsInChat(t *testing.T) {
	as := assert.New(t)
	h := host.New(hosttest.NewFakeProbe())
	var lines []string
	h.SetChatSink(func(line string) { lines = append(lines, line) })

	m := mods.NewMq2Prevention()
	m.Detect = func() (string, bool) { return "module MQ2Main.dll", true }
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.Pulse()
	require.Len(t, lines, 1)
	as.Contains(lines[0], "MacroQuest2")
	as.Contains(lines[0], "MQ2Main.dll")
}

func TestMq2CleanScanStaysQuiet(t *testing.T) {
	as := assert.New(t)
	h := host.New(hosttest.NewFakeProbe())
	var lines []string
	h.SetChatSink(func(line string) { lines = append(lines, line) })

	m := mods.NewMq2Prevention()
	m.Detect = func() (string, bool) { return "", false }
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.Pulse()
	as.Empty(lines)
}
