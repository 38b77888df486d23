// Package chat implements multi-turn chat sessions with mode switching
// between plain chat, retrieval and agent drivers.
package chat

import "strings"

// Mode selects how user input is handled.
type Mode string

const (
	// ModeChat talks to the model directly.
	ModeChat Mode = "chat"
	// ModeRAG answers from the knowledge base.
	ModeRAG Mode = "rag"
	// ModeAuto routes between chat and rag per message.
	ModeAuto Mode = "auto"
	// ModeAgent hands input to the skill agent.
	ModeAgent Mode = "agent"
)

// Command is a slash command recognized by the chat loop.
type Command string

const (
	CommandNone  Command = ""
	CommandChat  Command = "/chat"
	CommandRAG   Command = "/rag"
	CommandAuto  Command = "/auto"
	CommandAgent Command = "/agent"
	CommandStats Command = "/stats"
	CommandClear Command = "/clear"
	CommandReset Command = "/reset"
	CommandHelp  Command = "/help"
)

// ParseCommand recognizes slash commands. Matching is case-insensitive
// and ignores surrounding whitespace, but the command must be the whole
// message: "/clear now" is ordinary input, not a command.
func ParseCommand(input string) Command {
	switch Command(strings.ToLower(strings.TrimSpace(input))) {
	case CommandChat:
		return CommandChat
	case CommandRAG:
		return CommandRAG
	case CommandAuto:
		return CommandAuto
	case CommandAgent:
		return CommandAgent
	case CommandStats:
		return CommandStats
	case CommandClear:
		return CommandClear
	case CommandReset:
		return CommandReset
	case CommandHelp:
		return CommandHelp
	default:
		return CommandNone
	}
}

// ModeForCommand maps a mode-switching command to its mode. The second
// return is false for non-mode commands.
func ModeForCommand(cmd Command) (Mode, bool) {
	switch cmd {
	case CommandChat:
		return ModeChat, true
	case CommandRAG:
		return ModeRAG, true
	case CommandAuto:
		return ModeAuto, true
	case CommandAgent:
		return ModeAgent, true
	default:
		return "", false
	}
}

// HelpText lists the available commands for display to the user.
func HelpText() string {
	return strings.TrimSpace(`
Available commands:
  /chat   - talk to the model directly
  /rag    - answer from the knowledge base
  /auto   - route each message automatically
  /agent  - use the skill agent
  /stats  - show session and knowledge base stats
  /clear  - clear the knowledge base
  /reset  - clear conversation history
  /help   - show this help
`)
}
