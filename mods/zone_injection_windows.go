package mods

import "github.com/thjmod/edgeproxy/game"

func defaultZoneLinker(base uintptr) ZoneLinker { return game.NewZoneTable(base) }
