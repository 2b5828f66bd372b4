package editcmd

import (
	"errors"
	"sort"
	"strings"
)

type handler func(env *Env, b *Builder, args []string) (Result, error)

type command struct {
	usage string
	run   handler
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"pos1":         {usage: "pos1 [x y z]", run: cmdPos(1)},
		"pos2":         {usage: "pos2 [x y z]", run: cmdPos(2)},
		"sel":          {usage: "sel [clear]", run: cmdSel},
		"tp":           {usage: "tp <x> <y> <z>", run: cmdTeleport},
		"dim":          {usage: "dim <id>", run: cmdDimension},
		"set":          {usage: "set <block>", run: cmdSet},
		"copy":         {usage: "copy", run: cmdCopy},
		"cut":          {usage: "cut", run: cmdCut},
		"paste":        {usage: "paste", run: cmdPaste},
		"undo":         {usage: "undo [times]", run: cmdUndo},
		"redo":         {usage: "redo [times]", run: cmdRedo},
		"clearhistory": {usage: "clearhistory", run: cmdClearHistory},
		"history":      {usage: "history", run: cmdHistory},
		"dump":         {usage: "dump", run: cmdDump},
		"help":         {usage: "help", run: cmdHelp},
	}
}

// Names lists the command names in order.
func Names() []string {
	out := make([]string, 0, len(commands))
	for name := range commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Execute parses and runs one command line for b. When the command fails while b's history
// is recording, the recording is cancelled so the next edit starts clean.
func Execute(env *Env, b *Builder, line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}, badRequest("empty command")
	}
	name := strings.ToLower(strings.TrimLeft(fields[0], "/"))
	cmd, ok := commands[name]
	if !ok {
		return Result{}, badRequest("unknown command %q", name)
	}
	res, err := cmd.run(env, b, fields[1:])
	if err != nil && b.History != nil && b.History.IsRecording() {
		if cerr := b.History.Cancel(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return res, err
}

func usage(name string) error {
	return badRequest("usage: %s", commands[name].usage)
}
