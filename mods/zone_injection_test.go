package mods_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thjmod/edgeproxy/host"
	"github.com/thjmod/edgeproxy/host/hosttest"
	"github.com/thjmod/edgeproxy/mods"
)

// fakeZoneLinker records links into a plain map.
type fakeZoneLinker struct {
	records  map[int][]byte
	unlinked bool
}

func newFakeZoneLinker() *fakeZoneLinker {
	return &fakeZoneLinker{records: map[int][]byte{}}
}

func (l *fakeZoneLinker) Occupied(id int) bool {
	if id < 0 || id >= 1000 {
		return true
	}
	_, ok := l.records[id]
	return ok
}

func (l *fakeZoneLinker) Link(id int, record []byte) error {
	l.records[id] = record
	return nil
}

func (l *fakeZoneLinker) UnlinkAll() {
	l.records = map[int][]byte{}
	l.unlinked = true
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestZoneInjectionOnEnterWorld(t *testing.T) {
	as := assert.New(t)
	path := writeConfig(t, "thj_zones.ini", `[Zones]
Count=3
Zone0=700,customzone,Custom Zone Name,1
Zone1=1200,toolarge,Out Of Range,0
Zone2=broken
`)

	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewZoneInjection(0x400000, path)
	linker := newFakeZoneLinker()
	m.Linker = linker
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.GameStateChanged(5)

	require.Len(t, linker.records, 1)
	rec := linker.records[700]
	require.Len(t, rec, 0x1F8)
	as.Equal(uint32(700), binary.LittleEndian.Uint32(rec[0x00C:]))
	as.Equal(uint32(1), binary.LittleEndian.Uint32(rec[0x008:]))
	as.Equal("customzone", cstringAt(rec, 0x010))
	as.Equal("Custom Zone Name", cstringAt(rec, 0x091))
}

func TestZoneInjectionSkipsOccupiedAndRearms(t *testing.T) {
	as := assert.New(t)
	path := writeConfig(t, "thj_zones.ini", `[Zones]
Count=1
Zone0=5,qeynos2,North Qeynos,0
`)

	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewZoneInjection(0x400000, path)
	linker := newFakeZoneLinker()
	linker.records[5] = make([]byte, 0x1F8) // client already has this zone
	m.Linker = linker
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.GameStateChanged(5)
	as.Len(linker.records, 1) // untouched

	// Leaving to char select re-arms; a free slot now gets filled.
	delete(linker.records, 5)
	h.GameStateChanged(1)
	h.GameStateChanged(5)
	as.Len(linker.records, 1)
	as.Contains(linker.records, 5)
}

func TestZoneInjectionShutdownUnlinks(t *testing.T) {
	as := assert.New(t)
	path := writeConfig(t, "thj_zones.ini", `[Zones]
Count=1
Zone0=700,customzone,Custom Zone,0
`)

	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewZoneInjection(0x400000, path)
	linker := newFakeZoneLinker()
	m.Linker = linker
	require.NoError(t, h.Register(m))
	h.InitializeAll()
	h.GameStateChanged(5)

	h.ShutdownAll()
	as.True(linker.unlinked)
	as.Empty(linker.records)
}

func TestZoneInjectionMissingConfigIdles(t *testing.T) {
	as := assert.New(t)
	h := host.New(hosttest.NewFakeProbe())
	h.SetChatSink(func(string) {})
	m := mods.NewZoneInjection(0x400000, filepath.Join(t.TempDir(), "absent.ini"))
	linker := newFakeZoneLinker()
	m.Linker = linker
	require.NoError(t, h.Register(m))
	h.InitializeAll()

	h.GameStateChanged(5)
	as.Empty(linker.records)
}

func cstringAt(b []byte, off int) string {
	end := off
	for end < len(b) && b[end] != 0 {
		end++
	}
	return string(b[off:end])
}
