package mods

import "github.com/thjmod/edgeproxy/game"

// clientAddModel binds the client's CRaces::AddModel for this image base.
func clientAddModel(base uintptr) func(raceID, gender int, model string) error {
	return game.NewProbe(base).AddRaceModel
}
