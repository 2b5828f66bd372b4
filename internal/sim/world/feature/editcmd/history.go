package editcmd

import (
	"fmt"
	"strings"
)

func cmdUndo(env *Env, b *Builder, args []string) (Result, error) {
	return step(b, args, "undo")
}

func cmdRedo(env *Env, b *Builder, args []string) (Result, error) {
	return step(b, args, "redo")
}

// step undoes or redoes up to n entries, stopping early when none are left.
func step(b *Builder, args []string, kind string) (Result, error) {
	n, ok := parseTimes(args)
	if !ok {
		return Result{}, usage(kind)
	}
	move := b.History.Undo
	verb := "Undid"
	if kind == "redo" {
		move = b.History.Redo
		verb = "Redid"
	}
	done := 0
	for done < n {
		none, err := move()
		if err != nil {
			return Result{}, fmt.Errorf("%s %d of %d: %w", kind, done+1, n, err)
		}
		if none {
			break
		}
		done++
	}
	if done == 0 {
		return Result{Lines: []string{fmt.Sprintf("Nothing left to %s.", kind)}}, nil
	}
	return Result{
		Lines: []string{fmt.Sprintf("%s %d operation(s).", verb, done)},
		Op:    &Op{Action: strings.ToUpper(kind), Dimension: b.Dimension, Count: done},
	}, nil
}

func cmdClearHistory(env *Env, b *Builder, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, usage("clearhistory")
	}
	if err := b.History.Clear(); err != nil {
		return Result{}, err
	}
	return Result{Lines: []string{"History cleared."}}, nil
}

func cmdHistory(env *Env, b *Builder, args []string) (Result, error) {
	entries := b.History.Entries()
	if len(entries) == 0 {
		return Result{Lines: []string{"History is empty."}}, nil
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf("%d entries, cursor at %d.", len(entries), b.History.Cursor()))
	for _, e := range entries {
		mark := " "
		if e.Applied {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s #%d %s at %s size %s", mark, e.ID, e.Label, e.At, e.Size))
	}
	return Result{Lines: lines}, nil
}

func cmdHelp(env *Env, b *Builder, args []string) (Result, error) {
	names := Names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, commands[name].usage)
	}
	return Result{Lines: lines}, nil
}
