package host

import "fmt"

// SetChatSink points WriteChat at the client's chat window. Until the
// detour bridge wires the real sink, lines land in the log only.
func (h *Host) SetChatSink(sink func(line string)) {
	h.chatSink = sink
}

// WriteChat prints a line into the client's chat window. Mods use this for
// all player-facing output.
func (h *Host) WriteChat(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	h.log.Debugf("chat: %s", line)
	if h.chatSink != nil {
		h.chatSink(line)
	}
}
