package ui

import (
	"strconv"
	"strings"
)

type CommandKind int

const (
	CmdChat CommandKind = iota
	CmdQuit
	CmdWho
	CmdHistory
	CmdSearch
	CmdHelp
	CmdUnknown
)

const defaultHistory = 20

// Command is one line typed by the user.
type Command struct {
	Kind  CommandKind
	Text  string
	Limit int
}

// ParseCommand reads a "/name args" line. Anything else is chat text;
// "//" escapes a message that starts with a slash.
func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: CmdChat, Text: line}
	}
	if strings.HasPrefix(trimmed, "//") {
		return Command{Kind: CmdChat, Text: trimmed[1:]}
	}

	name, args, _ := strings.Cut(trimmed[1:], " ")
	args = strings.TrimSpace(args)
	switch strings.ToLower(name) {
	case "quit", "exit":
		return Command{Kind: CmdQuit}
	case "who":
		return Command{Kind: CmdWho}
	case "history":
		limit := defaultHistory
		if n, err := strconv.Atoi(args); err == nil && n > 0 {
			limit = n
		}
		return Command{Kind: CmdHistory, Limit: limit}
	case "search":
		return Command{Kind: CmdSearch, Text: args, Limit: defaultHistory}
	case "help":
		return Command{Kind: CmdHelp}
	default:
		return Command{Kind: CmdUnknown, Text: name}
	}
}

const helpText = `Commands:
  /who             list participants
  /history [n]     show the last n transcript entries
  /search <terms>  search the transcript
  /quit            leave the chat`
