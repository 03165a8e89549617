package game

/*
#include <stdlib.h>

// Thiscall wrappers for calling into the client. GCC has no __thiscall on
// function pointer typedefs for all targets, but __fastcall with a dummy
// edx argument produces the same register assignment the client expects
// (ecx = this, edx = scratch).

typedef void* (__fastcall *getspawnbyid_t)(void* mgr, void* edx, int id);
static void* call_get_spawn_by_id(void* fn, void* mgr, int id) {
	return ((getspawnbyid_t)fn)(mgr, 0, id);
}

typedef void (__fastcall *dspchat_t)(void* self, void* edx,
	const char* msg, int color, int allowLog, int doPercentConversion);
static void call_dsp_chat(void* fn, void* self, const char* msg, int color) {
	((dspchat_t)fn)(self, 0, msg, color, 1, 1);
}

typedef void (__fastcall *addmodel_t)(void* races, void* edx,
	int raceId, int gender, const char* modelName);
static void call_add_race_model(void* fn, void* races, int raceId, int gender,
	const char* modelName) {
	((addmodel_t)fn)(races, 0, raceId, gender, modelName);
}
*/
import "C"

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// chatColorDefault is the client's standard white chat color.
const chatColorDefault = 273

// AttachClientCalls wires the probe's spawn lookup to the client's own
// GetSpawnByID. Call once the image base is known.
func (p *Probe) AttachClientCalls() {
	fn := unsafe.Pointer(p.fix(RawGetSpawnByID))
	p.SetSpawnLookup(func(mgr uintptr, id uint32) uintptr {
		r := C.call_get_spawn_by_id(fn, unsafe.Pointer(mgr), C.int(id))
		return uintptr(r)
	})
}

// ChatSink returns a function that prints one line into the client's chat
// window, suitable for host.SetChatSink. Lines are dropped while out of
// world.
func (p *Probe) ChatSink() func(line string) {
	fn := unsafe.Pointer(p.fix(RawDspChat))
	return func(line string) {
		eq := p.instance(rawInstEverQuest)
		if eq == 0 {
			return
		}
		msg := C.CString(line)
		defer C.free(unsafe.Pointer(msg))
		C.call_dsp_chat(fn, unsafe.Pointer(eq), msg, chatColorDefault)
	}
}

// AddRaceModel invokes the client's model loader for one race entry.
// Fails when the CRaces singleton is not up yet; callers retry on the
// next in-world transition.
func (p *Probe) AddRaceModel(raceID, gender int, model string) error {
	races := p.instance(rawInstRaceManager)
	if races == 0 {
		return errors.New("game: race manager unresolved")
	}
	name := C.CString(model)
	defer C.free(unsafe.Pointer(name))
	C.call_add_race_model(unsafe.Pointer(p.fix(RawAddRaceModel)),
		unsafe.Pointer(races), C.int(raceID), C.int(gender), name)
	return nil
}

// ClientBase resolves the client executable's load address.
func ClientBase() uintptr {
	var h windows.Handle
	err := windows.GetModuleHandleEx(0, nil, &h)
	if err != nil {
		return 0
	}
	return uintptr(h)
}

const gameWindowClass = "_EverQuestwndclass"

var (
	moduser32       = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW = moduser32.NewProc("FindWindowW")
)

// GameWindowPresent reports whether the client's top-level window exists
// yet. The init worker polls this before bringing the framework up.
func GameWindowPresent() bool {
	cls, err := windows.UTF16PtrFromString(gameWindowClass)
	if err != nil {
		return false
	}
	h, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(cls)), 0)
	return h != 0
}
