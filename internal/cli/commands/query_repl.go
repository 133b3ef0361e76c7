package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/querymind-labs/querymind/internal/engine"
)

func runQueryREPL(cmd *cobra.Command, eng *engine.Engine, opts *QueryOptions) error {
	historyFile := filepath.Join(filepath.Dir(eng.Path()), ".querymind_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "querymind> ",
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(eng),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connected to %s\n", eng.Path())
	fmt.Fprintln(out, "Ask questions in plain English. Type .help for commands, .quit to exit")
	fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if handleDotCommand(cmd, eng, line, opts.Format) {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		if err := executeAndRender(cmd, eng, line, opts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		fmt.Fprintln(out)
	}

	return nil
}

func handleDotCommand(cmd *cobra.Command, eng *engine.Engine, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)
		return true

	case ".tables":
		info := eng.Info()
		names := make([]string, 0, len(info.Tables))
		for name := range info.Tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%s (%d rows)\n", name, info.Tables[name].RowCount)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		tbl, ok := eng.Info().Tables[parts[1]]
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Unknown table: %s\n", parts[1])
			return true
		}
		for _, col := range tbl.Columns {
			fmt.Fprintf(out, "%s %s\n", col.Name, col.Type)
		}
		return true

	case ".suggest":
		for _, s := range eng.Suggestions() {
			fmt.Fprintf(out, "- %s\n", s.Query)
		}
		return true

	case ".sql":
		if len(parts) < 2 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .sql <question>")
			return true
		}
		explanation, err := eng.Explain(strings.Join(parts[1:], " "))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		fmt.Fprintln(out, explanation.GeneratedSQL)
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List discovered tables
  .schema <name>   Show columns of a table
  .suggest         Show example questions for this database
  .sql <question>  Show the SQL a question translates to, without running it
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - Questions are plain English, no SQL required
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer over table names and
// dot-commands.
func newREPLCompleter(eng *engine.Engine) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	if info := eng.Info(); info != nil {
		names := make([]string, 0, len(info.Tables))
		for name := range info.Tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			items = append(items, readline.PcItem(name))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".suggest"),
		readline.PcItem(".sql"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
