//go:build !windows

package mods

func (m *PyrelightPatches) saveGammaRamp() bool       { return false }
func (m *PyrelightPatches) restoreGammaRamp()         {}
func (m *PyrelightPatches) installGammaCrashHandler() {}
func (m *PyrelightPatches) installChatFilter()        {}
func (m *PyrelightPatches) removeChatFilter()         {}
func (m *PyrelightPatches) patchMemCheckers()         {}
