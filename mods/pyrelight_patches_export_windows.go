package mods

import "C"

//export edgeFilterChatLine
func edgeFilterChatLine(msg *C.char) C.int {
	m := pyrelightInstance
	if m == nil || msg == nil {
		return 0
	}
	if m.IsFoodDrinkMessage(C.GoString(msg)) {
		return 1
	}
	return 0
}

//export edgeGammaCrash
func edgeGammaCrash() {
	if m := pyrelightInstance; m != nil {
		m.restoreGammaRamp()
	}
}
