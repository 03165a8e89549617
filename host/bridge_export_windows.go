package host

import "C"

import (
	"unsafe"

	"github.com/thjmod/edgeproxy/game"
	"github.com/thjmod/edgeproxy/host/types"
)

//export edgeBridgePulse
func edgeBridgePulse() {
	if h := bridgeHost; h != nil {
		h.Pulse()
	}
}

//export edgeBridgeGameState
func edgeBridgeGameState(state C.int) {
	if h := bridgeHost; h != nil {
		h.GameStateChanged(int(state))
	}
}

//export edgeBridgeAddSpawn
func edgeBridgeAddSpawn(spawn unsafe.Pointer) {
	h := bridgeHost
	if h == nil || spawn == nil {
		return
	}
	h.SpawnAdded(game.WrapSpawn(uintptr(spawn)))
}

//export edgeBridgeRemoveSpawn
func edgeBridgeRemoveSpawn(spawn unsafe.Pointer) {
	h := bridgeHost
	if h == nil || spawn == nil {
		return
	}
	h.SpawnRemoved(game.WrapSpawn(uintptr(spawn)))
}

// edgeBridgeMessage returns nonzero when the packet should reach the
// client's own handler.
//
//export edgeBridgeMessage
func edgeBridgeMessage(opcode C.ulong, buffer unsafe.Pointer, size C.ulong) C.int {
	h := bridgeHost
	if h == nil {
		return 1
	}
	var data []byte
	if buffer != nil && size > 0 {
		data = C.GoBytes(buffer, C.int(size))
	}
	if h.IncomingMessage(uint32(opcode), data) == types.MessageSuppress {
		return 0
	}
	return 1
}

// edgeBridgeCommand returns nonzero when a registered handler consumed the
// line; the detour then suppresses the client's own dispatcher.
//
//export edgeBridgeCommand
func edgeBridgeCommand(player unsafe.Pointer, line *C.char) C.int {
	h := bridgeHost
	if h == nil || line == nil {
		return 0
	}
	if h.DispatchCommand(game.WrapSpawn(uintptr(player)), C.GoString(line)) {
		return 1
	}
	return 0
}
