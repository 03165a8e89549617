package types

// MessageAction is the result of a mod's incoming-message handler.
type MessageAction int

const (
	// MessagePass lets the message continue to the next mod and, if every
	// mod passes, to the client's original handler.
	MessagePass MessageAction = iota
	// MessageSuppress stops dispatch; the original handler never runs.
	// A mod that mutated the buffer must return MessageSuppress.
	MessageSuppress
)

// CommandHandler handles a registered slash command. player is the local
// player (nil when not in game); args is the line after the command token,
// leading whitespace trimmed (empty when the command was typed bare).
type CommandHandler func(player Spawn, args string)

// Mod is the contract every mod implements. The host owns a mod from
// registration through Shutdown and walks the registry in registration
// order for every event.
//
// Initialize runs once, on the init worker's goroutine, after the game
// window exists and before the event bridge hooks are installed. A mod
// whose Initialize returns an error stays registered and keeps receiving
// events; it is responsible for no-oping afterwards.
type Mod interface {
	Name() string
	Initialize(h HostLike) error

	// Shutdown runs in reverse registration order, after all hooks are removed.
	Shutdown()

	// OnPulse runs every client frame, on the client's main thread.
	OnPulse()

	// OnIncomingMessage sees every world message. data is valid only for
	// the duration of the call.
	OnIncomingMessage(opcode uint32, data []byte) MessageAction

	OnAddSpawn(sp Spawn)
	OnRemoveSpawn(sp Spawn)

	// OnGameStateChange fires when the client's game state integer changes.
	// GameStateInGame is the only value with assigned meaning here.
	OnGameStateChange(state int)
}

// HostLike is the service handle mods receive at Initialize. It stays valid
// until Shutdown returns.
type HostLike interface {
	// AddCommand registers a slash command. Duplicate registrations are
	// rejected with ErrDuplicateCommand-style errors from the host package.
	AddCommand(name string, fn CommandHandler) error
	RemoveCommand(name string)

	// WriteChat prints a formatted line to the client's chat window.
	WriteChat(format string, args ...any)

	// Game returns the probe for the client's singletons.
	Game() GameProbe

	// FindMod looks up another registered mod by name, nil if absent.
	// Cross-mod access goes through here rather than package globals.
	FindMod(name string) Mod
}

// NopMod provides no-op defaults for the optional Mod methods. Embed it and
// override what the mod actually uses.
type NopMod struct{}

func (NopMod) Shutdown()                                      {}
func (NopMod) OnPulse()                                       {}
func (NopMod) OnIncomingMessage(uint32, []byte) MessageAction { return MessagePass }
func (NopMod) OnAddSpawn(Spawn)                               {}
func (NopMod) OnRemoveSpawn(Spawn)                            {}
func (NopMod) OnGameStateChange(int)                          {}
