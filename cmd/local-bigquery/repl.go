package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/novucs/local-bigquery/internal/app"
	"github.com/novucs/local-bigquery/internal/bq"
	"github.com/novucs/local-bigquery/internal/common"
	"github.com/novucs/local-bigquery/internal/query"
)

const replHelp = `Commands:
  help          show this help
  reset         delete all data and start fresh
  clear         clear the screen
  exit          leave the shell

Anything else is executed as SQL against project %q.
`

// runREPL drives the interactive SQL shell against the default project.
func runREPL(cfg *common.Config, logger arbor.ILogger) {
	application, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	fmt.Printf("local-bigquery %s (project %q, data dir %s)\n",
		common.GetVersion(), cfg.Projects.Default, cfg.Storage.DataDir)
	fmt.Println(`Type "help" for help, "exit" to leave.`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for {
		fmt.Print("bq> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(strings.TrimSuffix(line, ";")) {
		case "":
			continue
		case "help":
			fmt.Printf(replHelp, cfg.Projects.Default)
			continue
		case "exit", "quit":
			return
		case "clear":
			fmt.Print("\033[2J\033[H")
			continue
		case "reset":
			if err := application.Engine.Reset(context.Background()); err != nil {
				fmt.Printf("reset failed: %v\n", err)
			} else {
				fmt.Println("All data deleted.")
			}
			continue
		}

		out, err := application.Executor.Execute(context.Background(), query.Request{
			Project: cfg.Projects.Default,
			Query:   line,
		})
		if err != nil {
			// Cancelled statements are not worth reporting at the prompt.
			if strings.Contains(err.Error(), "Query interrupted") {
				continue
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		printOutput(out)
	}
}

// printOutput renders a result as an aligned text table.
func printOutput(out *query.Output) {
	if out == nil || out.Schema == nil || len(out.Schema.Fields) == 0 {
		fmt.Println("OK")
		return
	}
	headers := make([]string, len(out.Schema.Fields))
	widths := make([]int, len(out.Schema.Fields))
	for i, f := range out.Schema.Fields {
		headers[i] = f.Name
		widths[i] = len(f.Name)
	}
	cells := make([][]string, len(out.Rows))
	for i, row := range out.Rows {
		cells[i] = make([]string, len(headers))
		for j := range headers {
			text := "NULL"
			if j < len(row.F) {
				text = cellText(row.F[j])
			}
			cells[i][j] = text
			if len(text) > widths[j] {
				widths[j] = len(text)
			}
		}
	}

	printRow(headers, widths)
	separators := make([]string, len(headers))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	printRow(separators, widths)
	for _, row := range cells {
		printRow(row, widths)
	}
	fmt.Printf("(%d rows)\n", len(out.Rows))
}

func printRow(values []string, widths []int) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%-*s", widths[i], v)
	}
	fmt.Println(strings.Join(parts, " | "))
}

// cellText flattens one wire cell for terminal display.
func cellText(cell bq.TableCell) string {
	switch {
	case cell.Value != nil:
		return *cell.Value
	case cell.Record != nil:
		inner := make([]string, len(cell.Record.F))
		for i, c := range cell.Record.F {
			inner[i] = cellText(c)
		}
		return "{" + strings.Join(inner, ", ") + "}"
	case cell.Array != nil:
		inner := make([]string, len(cell.Array))
		for i, c := range cell.Array {
			inner[i] = cellText(c)
		}
		return "[" + strings.Join(inner, ", ") + "]"
	default:
		return "NULL"
	}
}
