package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bizdesk/internal/app"
	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
)

var errExit = errors.New("exit")

// session is one interactive browsing session over a single view.
type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	user   core.SessionContext
	reader *bufio.Reader
	out    io.Writer

	res *app.ListResult
}

// Run starts the interactive browser for view. It reads slash commands from
// reader until /exit or end of input. The table state lives in memory for the
// length of the session; /reload fetches the rows again and keeps it.
func Run(ctx context.Context, svc app.ApplicationService, s core.SessionContext, view string, reader *bufio.Reader, out io.Writer) error {
	res, err := svc.ListView(ctx, s, app.ListRequest{View: view})
	if err != nil {
		return err
	}
	b := &session{ctx: ctx, svc: svc, user: s, reader: reader, out: out, res: res}

	fmt.Fprintf(out, "%s (%s)\n", res.View.Title, s.DisplayName())
	fmt.Fprintln(out, "Use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	printTable(out, b.res.Table.View(), 0)

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if err := b.dispatch(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func (b *session) dispatch(input string) error {
	if !strings.HasPrefix(input, "/") {
		// Bare text is a search.
		input = "/search " + input
	}
	cmd, rest, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	t := b.res.Table

	switch strings.ToLower(cmd) {
	case "search", "s":
		t.SetSearch(rest)

	case "filter", "f":
		if len(args) == 0 {
			printFilters(b.out, t)
			return nil
		}
		key, v, err := ParseFilter(rest, t.Config().Filters)
		if err != nil {
			return fmt.Errorf("%s: %w", b.res.View.Name, err)
		}
		t.SetFilter(key, v)

	case "clear", "c":
		if len(args) == 0 {
			t.SetSearch("")
			t.ClearFilters()
		} else {
			for _, key := range args {
				t.ClearFilter(key)
			}
		}

	case "select", "sel":
		if len(args) == 0 {
			fmt.Fprintln(b.out, "Usage: /select <id> [id...]")
			return nil
		}
		for _, id := range args {
			t.ToggleRow(id)
		}
		fmt.Fprintf(b.out, "%d selected\n", len(t.Selected()))
		return nil

	case "selectall", "all":
		t.SelectAll()
		fmt.Fprintf(b.out, "%d selected\n", len(t.Selected()))
		return nil

	case "hide", "show":
		if len(args) == 0 {
			printColumns(b.out, t)
			return nil
		}
		for _, key := range args {
			t.SetColumnVisible(key, strings.EqualFold(cmd, "show"))
		}

	case "open", "o":
		if len(args) != 1 {
			fmt.Fprintln(b.out, "Usage: /open <id>")
			return nil
		}
		rec, err := b.svc.Record(b.ctx, b.user, b.res.View.Name, args[0])
		if err != nil {
			return err
		}
		PrintRecord(b.out, rec)
		return nil

	case "bulk":
		if len(args) == 0 {
			printBulkActions(b.out, b.res, b.user)
			return nil
		}
		if err := confirmBulk(b, args[0]); err != nil {
			return err
		}
		return b.reload()

	case "export", "x":
		if len(args) == 0 {
			fmt.Fprintln(b.out, "Usage: /export csv|md|txt")
			return nil
		}
		return exportView(b.out, t.View(), args[0])

	case "reload", "r":
		return b.reload()

	case "help", "h":
		printHelp(b.out)
		return nil

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(b.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
		return nil
	}

	printTable(b.out, t.View(), len(t.Selected()))
	return nil
}

// reload fetches the rows again, carrying the current table state over.
func (b *session) reload() error {
	res, err := b.svc.ListView(b.ctx, b.user, app.ListRequest{
		View:  b.res.View.Name,
		Query: datatable.StateOf(b.res.Table).Values(),
	})
	if err != nil {
		return err
	}
	b.res = res
	printTable(b.out, res.Table.View(), len(res.Table.Selected()))
	return nil
}

// ParseFilter reads "key=value" against the filters a view declares. A date
// range filter takes "start..end" with either bound empty, and a single date
// selects that day. Other filters keep the value whole, so ".." is literal.
func ParseFilter(arg string, defs []datatable.Filter) (string, datatable.FilterValue, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", datatable.FilterValue{}, fmt.Errorf("filter %q: want key=value or key=start..end: %w", arg, core.ErrInvalidInput)
	}
	def, found := findFilter(defs, key)
	if !found {
		return "", datatable.FilterValue{}, fmt.Errorf("no filter %q: %w", key, core.ErrInvalidInput)
	}
	value = strings.TrimSpace(value)
	start, end, isRange := strings.Cut(value, "..")

	switch def.Type {
	case datatable.FilterDateRange:
		if !isRange {
			return key, datatable.Range(value, value), nil
		}
		return key, datatable.Range(strings.TrimSpace(start), strings.TrimSpace(end)), nil
	case datatable.FilterDate:
		if isRange {
			return "", datatable.FilterValue{}, fmt.Errorf("filter %q takes one date, not a range: %w", key, core.ErrInvalidInput)
		}
	}
	return key, datatable.Scalar(value), nil
}

func findFilter(defs []datatable.Filter, key string) (datatable.Filter, bool) {
	for _, f := range defs {
		if f.Key == key {
			return f, true
		}
	}
	return datatable.Filter{}, false
}
