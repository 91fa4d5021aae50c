package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	Ping(ctx context.Context) error
	Ensure(ctx context.Context) error
	Show(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Answer(ctx context.Context, args []string) error
	Audit(ctx context.Context, args []string) error
	Recommend(ctx context.Context) error
	Match(ctx context.Context, args []string) error
	Rescore(ctx context.Context) error
	Reconcile(ctx context.Context) error
	Export(ctx context.Context) error
}

const helpText = `Available commands:
  ping                      check the server
  ensure                    resolve (or create) your vault
  show                      list vault items by category
  add <category> [mine]     add an item; "mine" marks it user-authored
  answer <category>         record a free-text answer
  audit [force]             show the vault audit
  recommend                 show improvement recommendations
  match [limit]             rank items against a requirement
  rescore                   recompute tiers and freshness
  reconcile                 repair per-category counters
  export                    upload the audit report
  exit | quit               leave the program`

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit", or ctx cancellation. Command errors are
// reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "cv (%s)> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText)
		case "ping":
			cmdErr = a.Ping(ctx)
		case "ensure":
			cmdErr = a.Ensure(ctx)
		case "show", "ls":
			cmdErr = a.Show(ctx)
		case "add":
			cmdErr = a.Add(ctx, args)
		case "answer":
			cmdErr = a.Answer(ctx, args)
		case "audit":
			cmdErr = a.Audit(ctx, args)
		case "recommend":
			cmdErr = a.Recommend(ctx)
		case "match":
			cmdErr = a.Match(ctx, args)
		case "rescore":
			cmdErr = a.Rescore(ctx)
		case "reconcile":
			cmdErr = a.Reconcile(ctx)
		case "export":
			cmdErr = a.Export(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, describeError(cmdErr))
		}
	}
}

// describeError renders err for the operator, unwrapping gRPC statuses.
func describeError(err error) string {
	if errors.Is(err, errUsage) {
		return err.Error()
	}
	st, ok := status.FromError(err)
	if !ok {
		return "error: " + err.Error()
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return "not signed in: " + st.Message()
	case codes.PermissionDenied:
		return "access denied: " + st.Message()
	case codes.InvalidArgument:
		return "invalid input: " + st.Message()
	case codes.NotFound:
		return "not found: " + st.Message()
	case codes.Unavailable:
		return "server unavailable"
	default:
		return fmt.Sprintf("error (%s): %s", st.Code(), st.Message())
	}
}
