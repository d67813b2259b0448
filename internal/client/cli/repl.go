package cli

import (
	"bufio"
	"context"
	"fmt"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/spf13/cobra"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	signedIn() bool
	Exec(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the storeit shell.
//
// Each line is split with shell quoting rules, so names containing spaces
// can be given as "my report.pdf". The first word selects the command:
//
//	help             show available commands
//	help <command>   show the usage of one command
//	exit, quit       leave the shell
//
// Everything else is one of the file commands and is passed to Exec. Errors
// already shown to the user are not repeated; other errors are printed and
// the loop goes on. The loop exits at the end of input.
//
// Commands that prompt read from the same reader, so a line is never
// consumed ahead of them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("storeit %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			printlnFn()
			return
		}
		parts, err := shlex.Split(line, true)
		if err != nil {
			printlnFn("Parse error:", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if len(parts) == 1 {
				printlnFn(helpText(a.signedIn()))
				continue
			}
			_ = a.Exec(ctx, parts)

		case "shell":
			printlnFn("Already in the shell")

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.Exec(ctx, parts); err != nil && !isReported(err) {
				printlnFn("Error:", err)
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Exec runs one shell line against a fresh command tree bound to a.
func (a *App) Exec(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(fileCommands(func() *App { return a })...)
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.out)
	return root.ExecuteContext(ctx)
}

// Shell runs the interactive loop until exit or EOF.
func (a *App) Shell(ctx context.Context) error {
	a.interactive = true
	defer func() { a.interactive = false }()

	printlnFn("Welcome to storeit (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
