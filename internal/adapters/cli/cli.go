// Package cli is the terminal adapter: a cobra command tree over the
// ApplicationService. Every command signs in first; the session decides
// which views and actions are available, exactly as in the browser.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bizdesk/internal/adapters/repl"
	"bizdesk/internal/app"
	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// OpenFunc builds the service once flags have been parsed.
type OpenFunc func(ctx context.Context) (app.ApplicationService, func(), error)

type runtime struct {
	open     OpenFunc
	username string
	password string

	svc     app.ApplicationService
	session core.SessionContext
	close   func()
}

type runtimeKey struct{}

func fromCommand(cmd *cobra.Command) *runtime {
	rt, _ := cmd.Context().Value(runtimeKey{}).(*runtime)
	return rt
}

// NewRootCmd returns the bizdesk command tree. Commands that need no data
// (help, completion, schema) never call open.
func NewRootCmd(open OpenFunc) *cobra.Command {
	rt := &runtime{open: open}
	root := &cobra.Command{
		Use:           "bizdesk",
		Short:         "Browse and export business records from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" || cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			if err := rt.start(cmd.Context()); err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.close != nil {
				rt.close()
			}
		},
	}
	root.PersistentFlags().StringVarP(&rt.username, "user", "u", os.Getenv("BIZDESK_USER"), "username (env BIZDESK_USER)")
	root.PersistentFlags().StringVar(&rt.password, "password", os.Getenv("BIZDESK_PASSWORD"), "password (env BIZDESK_PASSWORD)")

	root.AddCommand(
		newViewsCommand(),
		newListCommand(),
		newShowCommand(),
		newDashboardCommand(),
		newBulkCommand(),
		newBrowseCommand(),
		newSchemaCommand(),
	)
	return root
}

func (rt *runtime) start(ctx context.Context) error {
	if rt.username == "" || rt.password == "" {
		return fmt.Errorf("sign in with --user and --password, or set BIZDESK_USER and BIZDESK_PASSWORD")
	}
	svc, closeFn, err := rt.open(ctx)
	if err != nil {
		return err
	}
	s, err := svc.Authenticate(ctx, rt.username, rt.password)
	if err != nil {
		closeFn()
		return fmt.Errorf("sign in as %s: %w", rt.username, err)
	}
	rt.svc, rt.session, rt.close = svc, s, closeFn
	return nil
}

func newViewsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the views you can open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := fromCommand(cmd)
			printViews(cmd.OutOrStdout(), rt.svc.Views(rt.session), rt.session)
			return nil
		},
	}
}

type listOptions struct {
	search  string
	filters []string
	hide    []string
	format  string
	output  string
}

func newListCommand() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <view>",
		Short: "Print the rows of a view",
		Long: `Print the rows of a view after search and filters.

Only the visible columns are written. Columns hidden by default stay hidden
unless --hide is given, which replaces the default list.`,
		Example: `  bizdesk list invoices --filter status=Overdue
  bizdesk list invoices --filter issue_date=2024-01-01..2024-03-31 --format csv
  bizdesk list clients --search acme --hide "" --format xlsx --output clients.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "search term")
	cmd.Flags().StringArrayVarP(&opts.filters, "filter", "f", nil, "filter as key=value or key=start..end (repeatable)")
	cmd.Flags().StringSliceVar(&opts.hide, "hide", nil, "columns to hide; replaces the view's defaults")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table, csv, md, xlsx")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// listQuery turns the search and hide flags into the table state query.
func listQuery(opts listOptions, hideSet bool) url.Values {
	q := url.Values{}
	if opts.search != "" {
		q.Set(datatable.ParamSearch, opts.search)
	}
	if hideSet {
		q.Set(datatable.ParamHidden, strings.Join(opts.hide, ","))
	}
	return q
}

// applyFilters reads each --filter against the view's filters and sets it.
func applyFilters(t *datatable.Table, view string, args []string) error {
	for _, arg := range args {
		key, v, err := repl.ParseFilter(arg, t.Config().Filters)
		if err != nil {
			return fmt.Errorf("view %s: %w", view, err)
		}
		t.SetFilter(key, v)
	}
	return nil
}

func runList(cmd *cobra.Command, view string, opts listOptions) error {
	rt := fromCommand(cmd)
	q := listQuery(opts, cmd.Flags().Changed("hide"))
	res, err := rt.svc.ListView(cmd.Context(), rt.session, app.ListRequest{View: view, Query: q})
	if err != nil {
		return err
	}
	if err := applyFilters(res.Table, view, opts.filters); err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	v := res.Table.View()
	switch opts.format {
	case "table", "txt", "text":
		err = v.WriteText(w)
	case "csv":
		err = v.WriteCSV(w)
	case "md", "markdown":
		err = v.WriteMarkdown(w)
	case "xlsx":
		if opts.output == "" {
			return fmt.Errorf("--format xlsx needs --output: %w", core.ErrInvalidInput)
		}
		err = v.WriteXLSX(w, res.View.Title)
	default:
		return fmt.Errorf("unknown format %q: %w", opts.format, core.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", opts.format, err)
	}
	if opts.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d of %d rows to %s\n", len(v.Rows), v.Total, opts.output)
	}
	return nil
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <view> <id>",
		Short: "Print every field of one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := fromCommand(cmd)
			rec, err := rt.svc.Record(cmd.Context(), rt.session, args[0], args[1])
			if err != nil {
				return err
			}
			repl.PrintRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func newDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Print your overview: records per view and money totals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := fromCommand(cmd)
			d, err := rt.svc.Dashboard(cmd.Context(), rt.session)
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newBulkCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "bulk <view> <action> <id>...",
		Short: "Apply a bulk action to records",
		Example: `  bizdesk bulk invoices status:Paid 3 4
  bizdesk bulk clients delete 7 --yes`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := fromCommand(cmd)
			req := app.BulkRequest{View: args[0], Action: args[1], IDs: args[2:]}
			plan, err := rt.svc.PlanBulk(cmd.Context(), rt.session, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if skipped := len(req.IDs) - len(plan.IDs); skipped > 0 {
				fmt.Fprintf(out, "%d id(s) not found and skipped.\n", skipped)
			}
			if !yes {
				fmt.Fprintf(out, "%s %d record(s) of %s? (y/n): ", plan.Action.Label, len(plan.IDs), plan.View.Title)
				choice, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				choice = strings.TrimSpace(strings.ToLower(choice))
				if choice != "y" && choice != "yes" {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}
			req.IDs = plan.IDs
			res, err := rt.svc.BulkAction(cmd.Context(), rt.session, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d record(s) updated.\n", res.Label, res.Affected)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <view>",
		Short: "Search, filter and select rows of a view interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := fromCommand(cmd)
			return repl.Run(cmd.Context(), rt.svc, rt.session, args[0], bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
		},
	}
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "schema",
		Short:       "Print the JSON Schema of a views file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := views.SchemaJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func printViews(w io.Writer, defs []views.Definition, s core.SessionContext) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"VIEW", "TITLE", "BULK ACTIONS"})
	for _, d := range defs {
		var bulk []string
		for _, b := range d.BulkFor(s) {
			bulk = append(bulk, b.Value)
		}
		tw.AppendRow(table.Row{d.Name, d.Title, strings.Join(bulk, ", ")})
	}
	tw.Render()
}

func printDashboard(w io.Writer, d *app.DashboardResult) {
	fmt.Fprintf(w, "%s\n%s\n\n", d.Title, d.Greeting)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"VIEW", "RECORDS"})
	for _, c := range d.Cards {
		var count any = c.Count
		if c.Err != "" {
			count = c.Err
		}
		tw.AppendRow(table.Row{c.Title, count})
	}
	tw.Render()

	if len(d.Totals) == 0 {
		return
	}
	fmt.Fprintln(w)
	tt := table.NewWriter()
	tt.SetOutputMirror(w)
	tt.SetStyle(table.StyleLight)
	tt.AppendHeader(table.Row{"MEASURE", "CURRENCY", "AMOUNT"})
	for _, t := range d.Totals {
		tt.AppendRow(table.Row{t.Label, t.Currency, views.Money(t.Amount, t.Currency)})
	}
	tt.Render()
}
