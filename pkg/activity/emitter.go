package activity

import (
	"context"
	"fmt"
	"strings"
)

// ChannelStateQueue is the channel applied to events that do not set one.
const ChannelStateQueue = "statequeue"

// Config controls activity emission defaults.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = ChannelStateQueue
	}
	normalizedHooks := cloneHooks(hooks)
	return &Emitter{
		hooks:   normalizedHooks,
		enabled: cfg.Enabled && len(normalizedHooks) > 0,
		channel: channel,
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// HookError reports the hook that stopped an emission.
type HookError struct {
	Index int
	Verb  string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("activity: hook %d rejected %s: %v", e.Index, e.Verb, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Emit forwards the event to the hooks in order, applying the default channel
// when missing. Unlike Hooks.Notify it stops at the first hook error, which is
// returned as a *HookError; later hooks do not see the event.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	normalized := NormalizeEvent(event)
	if !normalized.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for i, hook := range e.hooks {
		if err := hook.Notify(ctx, normalized); err != nil {
			return &HookError{Index: i, Verb: normalized.Verb, Err: err}
		}
	}
	return nil
}

func cloneHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	return Hooks(normalized)
}

// Channel returns the channel applied to events that do not set one.
func (e *Emitter) Channel() string {
	if e == nil {
		return ""
	}
	return e.channel
}
