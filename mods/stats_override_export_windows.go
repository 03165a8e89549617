package mods

import "C"

//export edgeResolveStat
func edgeResolveStat(stat C.int, original C.int) C.int {
	m := statsInstance
	if m == nil {
		return original
	}
	return C.int(m.Resolve(uint8(stat), int32(original)))
}
