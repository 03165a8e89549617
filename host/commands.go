package host

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/thjmod/edgeproxy/host/types"
)

// commandTable maps slash-command names to handlers. Lookup is
// case-insensitive; names are stored lowered.
type commandTable struct {
	mu       sync.RWMutex
	handlers map[string]types.CommandHandler
}

func (c *commandTable) init() {
	c.handlers = make(map[string]types.CommandHandler)
}

// AddCommand registers a slash command. The leading slash is optional in
// the name. Duplicate names are rejected so two mods cannot silently fight
// over a command.
func (h *Host) AddCommand(name string, fn types.CommandHandler) error {
	key := normalizeCommand(name)
	if key == "" {
		return errors.New("host: empty command name")
	}
	if fn == nil {
		return errors.Errorf("host: nil handler for command /%s", key)
	}

	h.commands.mu.Lock()
	defer h.commands.mu.Unlock()
	if _, exists := h.commands.handlers[key]; exists {
		zap.S().Named("host").Warnf("command /%s already registered, rejecting duplicate", key)
		return errors.Errorf("host: command /%s already registered", key)
	}
	h.commands.handlers[key] = fn
	return nil
}

// RemoveCommand drops a slash command. Removing an unknown command is a
// no-op.
func (h *Host) RemoveCommand(name string) {
	key := normalizeCommand(name)
	h.commands.mu.Lock()
	defer h.commands.mu.Unlock()
	delete(h.commands.handlers, key)
}

// DispatchCommand routes one chat line. It returns true when a registered
// handler consumed the line, which tells the caller to suppress the
// client's own command processing.
func (h *Host) DispatchCommand(player types.Spawn, line string) bool {
	name, args := splitCommand(line)
	if name == "" {
		return false
	}

	h.commands.mu.RLock()
	fn, ok := h.commands.handlers[name]
	h.commands.mu.RUnlock()
	if !ok {
		return false
	}

	h.guard("command:/"+name, "dispatch", func() { fn(player, args) })
	return true
}

func normalizeCommand(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	return strings.ToLower(name)
}

// splitCommand takes "/Pets list  " apart into ("pets", "list").
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", ""
	}
	line = line[1:]
	if line == "" {
		return "", ""
	}
	name, args, _ := strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}
