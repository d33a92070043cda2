package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Add(ctx context.Context, path string) error
	Remove(path string) error
	Clear() error
	List(ctx context.Context) error
	Upload(ctx context.Context, name string) error
	CancelUpload() error
	Scan(ctx context.Context, letter string) error
	Watch(ctx context.Context) error
	Reports(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the uploader CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//   - help             — show available commands
//   - add <path>       — add a file to the pending batch
//   - remove <path>    — drop a file from the pending batch
//   - clear            — empty the pending batch
//   - list             — show the pending batch with statuses
//   - upload <name>    — upload the batch into a remote folder called name
//   - cancel           — cancel the running upload
//   - scan [letter]    — probe drive letters for a device, starting at letter
//   - watch            — poll for device arrivals until interrupted
//   - reports          — show recent batch history
//   - exit | quit      — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mup> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: add, remove, clear, (l)ist, upload, cancel, scan, watch, reports, exit")

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <path>")
				continue
			}
			_ = a.Add(ctx, strings.Join(args, " "))

		case "remove":
			if len(args) == 0 {
				printlnFn("Usage: remove <path>")
				continue
			}
			_ = a.Remove(strings.Join(args, " "))

		case "clear":
			_ = a.Clear()

		case "l", "list":
			_ = a.List(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <folder name>")
				continue
			}
			_ = a.Upload(ctx, strings.Join(args, " "))

		case "cancel":
			_ = a.CancelUpload()

		case "scan":
			letter := ""
			if len(args) > 0 {
				letter = args[0]
			}
			_ = a.Scan(ctx, letter)

		case "watch":
			_ = a.Watch(ctx)

		case "reports":
			_ = a.Reports(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
