package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jakechorley/gift-registry/pkg/core/workflow"
)

// sessionVerb drives the claim workflow from the interactive prompt
type sessionVerb struct {
	usage string
	short string
	run   func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error
}

var sessionVerbs = map[string]sessionVerb{
	"select": {
		usage: "select <gift_id>",
		short: "Start claiming an available gift",
		run: func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: select <gift_id>")
			}
			if err := wf.Begin(args[0]); err != nil {
				return err
			}
			view := wf.View()
			fmt.Fprintf(out, "\nClaiming: %s\n", giftLine(*view.Editing))
			if view.Draft != "" {
				fmt.Fprintf(out, "Name: %s (type 'name <your name>' to change)\n", view.Draft)
			} else {
				fmt.Fprintln(out, "Type 'name <your name>' then 'confirm'")
			}
			return nil
		},
	},
	"name": {
		usage: "name <your name>",
		short: "Set the name the claim is recorded under",
		run: func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error {
			return wf.SetName(strings.Join(args, " "))
		},
	},
	"confirm": {
		usage: "confirm",
		short: "Submit the claim",
		run: func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error {
			gift, err := wf.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\n✓ Thank you for claiming this gift!")
			printConfirmation(out, gift)
			fmt.Fprintln(out, "Type 'export --ics' or 'export --copy' to save the details, 'close' to keep browsing.")
			return nil
		},
	},
	"cancel": {
		usage: "cancel",
		short: "Abandon the current claim",
		run: func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error {
			wf.Cancel()
			return nil
		},
	},
	"close": {
		usage: "close",
		short: "Close the confirmation and keep browsing",
		run: func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error {
			wf.Dismiss()
			printGifts(out, wf.View())
			return nil
		},
	},
	"show": {
		usage: "show <gift_id>",
		short: "Reopen the details of a gift you claimed",
		run: func(ctx context.Context, wf *workflow.Workflow, out io.Writer, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: show <gift_id>")
			}
			gift, err := wf.Show(args[0])
			if err != nil {
				return err
			}
			printConfirmation(out, gift)
			return nil
		},
	},
}

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (authenticate once, run multiple commands)",
		Long: `Start an interactive session where you can browse and claim gifts without re-authenticating.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			wf, err := app.Workflow()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\n🎄 Starting interactive session...")
			fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

			if err := wf.Load(app.Ctx); err != nil {
				fmt.Fprintf(out, "❌ Error: %v\n\n", err)
			} else {
				printGifts(out, wf.View())
			}

			// Get all sibling commands (excluding interactive itself)
			commands := make(map[string]*cobra.Command)
			if root := cmd.Parent(); root != nil {
				for _, subCmd := range root.Commands() {
					if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
						commands[subCmd.Name()] = subCmd
					}
				}
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())

			for {
				fmt.Fprint(out, "> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				// Parse command (respecting quotes)
				parts, err := parseCommandLine(line)
				if err != nil {
					fmt.Fprintf(out, "❌ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Fprintln(out, "👋 Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(out, commands)
					continue
				}

				if verb, ok := sessionVerbs[cmdName]; ok {
					if err := verb.run(app.Ctx, wf, out, cmdArgs); err != nil {
						fmt.Fprintf(out, "❌ %v\n\n", err)
					}
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Fprintf(out, "❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				runSubcommand(targetCmd, cmdArgs, out)
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

// runSubcommand runs a sibling command's RunE directly, bypassing Execute so
// PersistentPreRunE does not rebuild the app
func runSubcommand(targetCmd *cobra.Command, args []string, out io.Writer) {
	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	})

	if err := targetCmd.ParseFlags(args); err != nil {
		fmt.Fprintf(out, "❌ Error parsing flags: %v\n\n", err)
		return
	}
	args = targetCmd.Flags().Args()

	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, args); err != nil {
			fmt.Fprintf(out, "❌ Error: %v\n\n", err)
			return
		}
	}

	targetCmd.SetOut(out)
	if targetCmd.RunE != nil {
		if err := targetCmd.RunE(targetCmd, args); err != nil {
			fmt.Fprintf(out, "❌ Error: %v\n\n", err)
		}
	} else if targetCmd.Run != nil {
		targetCmd.Run(targetCmd, args)
	}
}

func printInteractiveHelp(out io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(out, "\nClaiming:")
	verbNames := make([]string, 0, len(sessionVerbs))
	for name := range sessionVerbs {
		verbNames = append(verbNames, name)
	}
	sort.Strings(verbNames)
	for _, name := range verbNames {
		verb := sessionVerbs[name]
		fmt.Fprintf(out, "  %-30s %s\n", verb.usage, verb.short)
	}

	fmt.Fprintln(out, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(out, "  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Fprintln(out, "\n  help                           Show this help message")
	fmt.Fprintln(out, "  exit, quit                     Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting quoted strings
// Supports both single and double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune // 0 if not in quote, '"' or '\'' if in quote

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}
