package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Scan(ctx context.Context, payload string) error
	History(ctx context.Context) error
	Codes(ctx context.Context) error
	Create(ctx context.Context, content string) error
	Delete(ctx context.Context, code string) error
	Refresh(ctx context.Context) error
	Zoom(ctx context.Context, factor string) error
	Torch(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	State(ctx context.Context) error
}

const helpText = "Available commands: scan <payload>, history, codes, create <text>, delete <code>, " +
	"refresh, zoom <factor>, torch, start, stop, state, exit"

// runREPL starts a simple read–eval–print loop over reader.
//
// The first token of each line is the command; the remainder of the line,
// with inner spaces preserved, is its argument. The prompt shows the capture
// state from statusFn. The loop exits on EOF or on "exit" / "quit".
//
// Errors returned by command handlers are ignored here; handlers print their
// own errors. Command handlers may read further input (y/n prompts) from
// the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("qrscan (%s) > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		cmd, arg := splitCommand(line)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "scan":
			_ = a.Scan(ctx, arg)

		case "history":
			_ = a.History(ctx)

		case "codes":
			_ = a.Codes(ctx)

		case "create":
			_ = a.Create(ctx, arg)

		case "delete":
			_ = a.Delete(ctx, arg)

		case "refresh":
			_ = a.Refresh(ctx)

		case "zoom":
			_ = a.Zoom(ctx, arg)

		case "torch":
			_ = a.Torch(ctx)

		case "start":
			_ = a.Start(ctx)

		case "stop":
			_ = a.Stop(ctx)

		case "state":
			_ = a.State(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", ""
	}
	cmd = parts[0]
	return cmd, strings.TrimSpace(line[len(cmd):])
}
