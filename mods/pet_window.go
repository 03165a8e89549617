package mods

import (
	"strings"

	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/host/types"
)

// petInfoSidl is the SIDL screen name of the stock pet window.
const petInfoSidl = "PetInfoWindow"

// Gauge labels the patched EQUI_PetInfoWindow.xml adds for secondary pets.
const (
	pet2GaugeText = "Pet 2"
	pet3GaugeText = "Pet 3"
)

// petWindowChildCap bounds sibling walks over client-owned lists.
const petWindowChildCap = 200

// PetWindow locates the live pet window and the extra HP gauges the
// modified UI XML defines for secondary pets. /petwindebug dumps what it
// finds; the child walk output is how the gauge offsets were mapped in
// the first place.
type PetWindow struct {
	types.NopMod

	host types.HostLike
	log  *zap.SugaredLogger

	wnd    types.Window
	gauge2 types.Window
	gauge3 types.Window
}

func NewPetWindow() *PetWindow {
	return &PetWindow{}
}

func (m *PetWindow) Name() string { return "pet_window" }

func (m *PetWindow) Initialize(h types.HostLike) error {
	m.host = h
	m.log = zap.S().Named("pet_window")
	return h.AddCommand("petwindebug", m.cmdDebug)
}

func (m *PetWindow) Shutdown() {
	m.host.RemoveCommand("petwindebug")
	m.wnd, m.gauge2, m.gauge3 = nil, nil, nil
}

// Window pointers do not survive UI teardown.
func (m *PetWindow) OnGameStateChange(int) {
	m.wnd, m.gauge2, m.gauge3 = nil, nil, nil
}

// Gauges returns the cached secondary pet HP gauges, nil until
// /petwindebug create has located them.
func (m *PetWindow) Gauges() (pet2, pet3 types.Window) {
	return m.gauge2, m.gauge3
}

// findPetInfoWindow scans the window manager's top-level list by SIDL
// name.
func (m *PetWindow) findPetInfoWindow() types.Window {
	for _, w := range m.host.Game().Windows() {
		if w != nil && w.SidlName() == petInfoSidl {
			return w
		}
	}
	return nil
}

func (m *PetWindow) cmdDebug(_ types.Spawn, args string) {
	sub := ""
	if f := strings.Fields(args); len(f) > 0 {
		sub = strings.ToLower(f[0])
	}
	switch sub {
	case "children":
		m.debugChildren()
	case "create":
		m.findGauges()
	default:
		m.debugFind()
	}
}

func (m *PetWindow) debugFind() {
	m.host.WriteChat("--- PetWindow: Find ---")
	m.wnd = m.findPetInfoWindow()
	if m.wnd == nil {
		m.host.WriteChat("  PetInfoWindow NOT FOUND (is it open?)")
		m.host.WriteChat("-----------------------")
		return
	}

	l, t, r, b := m.wnd.Rect()
	m.host.WriteChat("  PetInfoWindow FOUND at %#08x", m.wnd.Raw())
	m.host.WriteChat("  Size: %d x %d  Pos: (%d,%d)", r-l, b-t, l, t)
	m.host.WriteChat("  Use '/petwindebug children' to dump the widget tree")
	m.host.WriteChat("-----------------------")
}

// debugChildren dumps the immediate children of the pet window: widget
// type, geometry, child count, SIDL name, text. Full details go to the
// log file.
func (m *PetWindow) debugChildren() {
	m.host.WriteChat("--- PetWindow: Children ---")
	if m.wnd == nil {
		m.wnd = m.findPetInfoWindow()
	}
	if m.wnd == nil {
		m.host.WriteChat("  PetInfoWindow not found. Run /petwindebug first.")
		return
	}

	i := 0
	for child := m.wnd.FirstChild(); child != nil && i < petWindowChildCap; child = child.NextSibling() {
		l, t, r, b := child.Rect()
		kids := countChildren(child)

		line := ""
		if sidl := child.SidlName(); sidl != "" {
			line += " sidl='" + sidl + "'"
		}
		if text := child.WindowText(); text != "" {
			line += " text='" + text + "'"
		}
		m.host.WriteChat("  [%d] %s %dx%d @(%d,%d) kids=%d%s",
			i, child.TypeName(), r-l, b-t, l, t, kids, line)
		m.log.Infof("child[%d]: addr=%#08x type=%s rect=(%d,%d,%d,%d) kids=%d sidl=%q text=%q",
			i, child.Raw(), child.TypeName(), l, t, r, b, kids,
			child.SidlName(), child.WindowText())
		i++
	}

	m.host.WriteChat("  Total immediate children: %d", i)
	m.host.WriteChat("---------------------------")
}

// findGauges walks the pet window's children for the Pet 2 / Pet 3 HP
// gauges the patched UI XML defines, and caches them for later updates.
func (m *PetWindow) findGauges() {
	m.host.WriteChat("--- PetWindow: Find Gauges ---")
	if m.wnd == nil {
		m.wnd = m.findPetInfoWindow()
	}
	if m.wnd == nil {
		m.host.WriteChat("  PetInfoWindow not found.")
		return
	}

	gauges := 0
	i := 0
	for child := m.wnd.FirstChild(); child != nil && i < petWindowChildCap; child = child.NextSibling() {
		i++
		if child.TypeName() != "CGaugeWnd" {
			continue
		}
		gauges++
		switch child.WindowText() {
		case pet2GaugeText:
			m.gauge2 = child
			m.host.WriteChat("  Found Pet 2 gauge at %#08x", child.Raw())
		case pet3GaugeText:
			m.gauge3 = child
			m.host.WriteChat("  Found Pet 3 gauge at %#08x", child.Raw())
		default:
			m.host.WriteChat("  Gauge: text='%s'", child.WindowText())
		}
	}

	m.host.WriteChat("  Total gauges found: %d", gauges)
	if m.gauge2 == nil {
		m.host.WriteChat("  Pet 2 gauge NOT found! Check EQUI_PetInfoWindow.xml has PIW_Pet2HPGauge")
	}
	if m.gauge3 == nil {
		m.host.WriteChat("  Pet 3 gauge NOT found! Check EQUI_PetInfoWindow.xml has PIW_Pet3HPGauge")
	}
	m.host.WriteChat("------------------------------")
}

func countChildren(w types.Window) int {
	n := 0
	for c := w.FirstChild(); c != nil && n < 500; c = c.NextSibling() {
		n++
	}
	return n
}
