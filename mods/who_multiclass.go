package mods

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/host/types"
)

// OpWhoAllResponse is the server's /who reply.
const OpWhoAllResponse uint32 = 0x578c

// whoHeaderSize is the fixed WhoAllReturnStruct prefix; playerCount sits
// in its last dword.
const whoHeaderSize = 0x40

// classNames indexes class bitmask positions: bit 0 is Warrior, bit 15 is
// Berserker. Standard single-class IDs are the same table, 1-based.
var classNames = [16]string{
	"Warrior", "Cleric", "Paladin", "Ranger",
	"Shadow Knight", "Druid", "Monk", "Bard",
	"Rogue", "Shaman", "Necromancer", "Wizard",
	"Magician", "Enchanter", "Beastlord", "Berserker",
}

var raceNames = map[uint32]string{
	1: "Human", 2: "Barbarian", 3: "Erudite", 4: "Wood Elf",
	5: "High Elf", 6: "Dark Elf", 7: "Half Elf", 8: "Dwarf",
	9: "Troll", 10: "Ogre", 11: "Halfling", 12: "Gnome",
	128: "Iksar", 130: "Vah Shir", 330: "Froglok", 522: "Drakkin",
}

// rankTags maps the rank string IDs the server sends to display prefixes.
var rankTags = map[uint32]string{
	12312: " * GM * ",
	12315: " TRADER ",
	6056:  " BUYER ",
}

// Anonymous display format string IDs.
const (
	whoFormatAnon     = 5024
	whoFormatRoleplay = 5023
)

// whoEntry is one decoded player row.
type whoEntry struct {
	formatMsgID uint32
	name        string
	rankMsgID   uint32
	guild       string
	zoneMsgID   uint32
	zone        uint32
	class       uint32
	level       uint32
	race        uint32
	account     string
}

// WhoMulticlass reformats /who output. Multiclass servers send a class
// bitmask in the class field; the stock client only understands IDs 1-16
// and renders everything else as "Unknown (Unknown)". The packet is
// decoded here, printed with slash-joined class lists, and suppressed so
// the client's own handler never sees it.
type WhoMulticlass struct {
	types.NopMod

	host types.HostLike
	log  *zap.SugaredLogger
}

func NewWhoMulticlass() *WhoMulticlass {
	return &WhoMulticlass{}
}

func (m *WhoMulticlass) Name() string { return "who_multiclass" }

func (m *WhoMulticlass) Initialize(h types.HostLike) error {
	m.host = h
	m.log = zap.S().Named("who_multiclass")
	m.log.Infof("listening for OP_WhoAllResponse (%#04x)", OpWhoAllResponse)
	return nil
}

func (m *WhoMulticlass) OnIncomingMessage(opcode uint32, data []byte) types.MessageAction {
	if opcode != OpWhoAllResponse || len(data) <= whoHeaderSize {
		return types.MessagePass
	}
	entries, count, ok := parseWhoResponse(data)
	if !ok {
		// Truncated or unparseable; let the client handler have it.
		return types.MessagePass
	}
	m.log.Infof("who response: %d player(s)", count)
	for _, e := range entries {
		m.host.WriteChat("%s", formatWhoLine(e))
	}
	switch count {
	case 0:
		m.host.WriteChat("There are no players in EverQuest that match those who filters.")
	case 1:
		m.host.WriteChat("There is %d player in EverQuest.", count)
	default:
		m.host.WriteChat("There are %d players in EverQuest.", count)
	}
	return types.MessageSuppress
}

// parseWhoResponse decodes the header and every player row. ok is false
// when any row runs off the end of the buffer.
func parseWhoResponse(data []byte) (entries []whoEntry, count uint32, ok bool) {
	if len(data) < whoHeaderSize {
		return nil, 0, false
	}
	count = binary.LittleEndian.Uint32(data[0x3C:])

	r := whoReader{buf: data, off: whoHeaderSize}
	for i := uint32(0); i < count; i++ {
		var e whoEntry
		var pad1, pad2, unk0, unk1, ending uint32
		good := r.u32(&e.formatMsgID) && r.u32(&pad1) && r.u32(&pad2) &&
			r.str(&e.name) && r.u32(&e.rankMsgID) && r.str(&e.guild) &&
			r.u32(&unk0) && r.u32(&unk1) &&
			r.u32(&e.zoneMsgID) && r.u32(&e.zone) &&
			r.u32(&e.class) && r.u32(&e.level) && r.u32(&e.race) &&
			r.str(&e.account) && r.u32(&ending)
		if !good {
			return nil, 0, false
		}
		entries = append(entries, e)
	}
	return entries, count, true
}

// whoReader walks the variable-length player rows.
type whoReader struct {
	buf []byte
	off int
}

func (r *whoReader) u32(out *uint32) bool {
	if r.off+4 > len(r.buf) {
		return false
	}
	*out = binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return true
}

func (r *whoReader) str(out *string) bool {
	end := bytes.IndexByte(r.buf[r.off:], 0)
	if end < 0 {
		return false
	}
	*out = string(r.buf[r.off : r.off+end])
	r.off += end + 1
	return true
}

// formatWhoLine renders one row in the Pyrelight format, rank tag first:
// "* GM *  Morsal - Level 100 Iksar  (Shaman/Necromancer/Magician)".
func formatWhoLine(e whoEntry) string {
	tag := rankTags[e.rankMsgID]
	race := raceName(e.race)

	switch e.formatMsgID {
	case whoFormatAnon:
		return tag + " " + e.name + "[ANONYMOUS]"
	case whoFormatRoleplay:
		return tag + " " + e.name + "[ANONYMOUS] " + race
	}

	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(e.name)
	if e.guild != "" {
		b.WriteByte(' ')
		b.WriteString(e.guild)
	}
	b.WriteString(" - Level ")
	b.WriteString(strconv.FormatUint(uint64(e.level), 10))
	b.WriteByte(' ')
	b.WriteString(race)
	b.WriteString("  (")
	b.WriteString(className(e.class))
	b.WriteByte(')')
	return b.String()
}

// className renders a class field that is either a stock 1-based ID or a
// bitmask with one bit per class.
func className(class uint32) string {
	if class == 0 {
		return "Unknown"
	}
	if bits.OnesCount32(class) == 1 && class >= 1 && class <= 16 {
		return classNames[class-1]
	}
	var parts []string
	for i, name := range classNames {
		if class&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "/")
}

func raceName(race uint32) string {
	if name, ok := raceNames[race]; ok {
		return name
	}
	return "Unknown"
}
