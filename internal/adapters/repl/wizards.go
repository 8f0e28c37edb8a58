package repl

import (
	"fmt"
	"strings"

	"bizdesk/internal/app"
	"bizdesk/internal/datatable"
)

// confirmBulk plans action on the selection, lists the affected rows and
// runs it only after an explicit yes.
func confirmBulk(b *session, action string) error {
	req := app.BulkRequest{View: b.res.View.Name, Action: action, IDs: b.res.Table.Selected()}
	plan, err := b.svc.PlanBulk(b.ctx, b.user, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(b.out, "%s will apply to %d record(s):\n", plan.Action.Label, len(plan.IDs))
	for _, row := range plan.Rows {
		label := ""
		if len(plan.View.Columns) > 0 {
			label = datatable.DisplayString(row[plan.View.Columns[0].Key])
		}
		fmt.Fprintf(b.out, "  %-8s %s\n", datatable.RowID(row), label)
	}
	if plan.Action.Danger {
		fmt.Fprintln(b.out, "WARNING: this cannot be undone.")
	}

	fmt.Fprint(b.out, "\nProceed? (y/n): ")
	choice, _ := b.reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(b.out, "Cancelled.")
		return nil
	}

	req.IDs = plan.IDs
	res, err := b.svc.BulkAction(b.ctx, b.user, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(b.out, "%s: %d record(s) updated.\n", res.Label, res.Affected)
	return nil
}
