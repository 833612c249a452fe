package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"agro-backoffice/internal/app"
	"agro-backoffice/internal/core"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Deps is what the command tree needs from main. Migrate is nil when the
// binary was built without schema access.
type Deps struct {
	Svc     app.ApplicationService
	Migrate func(ctx context.Context) ([]string, error)
	Log     *zap.Logger
}

// NewRootCommand builds the back-office command tree.
func NewRootCommand(d Deps) *cobra.Command {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	root := &cobra.Command{
		Use:   "app",
		Short: "Back-office for purchases, production, bills, expenses and reports",
		Long: `app is the operator console for the mill back-office.

It shares the database and business rules with the HTTP server, so anything
done here is visible in the admin API and the report panel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(d),
		newReportCmd(d),
		newBillCmd(d),
		newMarkPaidCmd(d),
		newStockCmd(d),
	)
	return root
}

func newMigrateCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if d.Migrate == nil {
				return fmt.Errorf("migrations are not available in this build")
			}
			applied, err := d.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Schema is up to date.")
				return nil
			}
			for _, f := range applied {
				fmt.Fprintf(out, "applied %s\n", f)
			}
			d.Log.Info("migrations applied", zap.Int("count", len(applied)))
			return nil
		},
	}
}

func newReportCmd(d Deps) *cobra.Command {
	var from, to string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "report [kind]",
		Short: "Run a report over a date window",
		Long: "Run a report. Kinds: " + strings.Join(reportKindNames(), ", ") + `.
Without a kind the daily sales report runs. Missing or invalid dates fall back
to the trailing default window.`,
		Example: `  app report sales_profit --from 2024-01-01 --to 2024-01-31
  app report monthly_sales --csv > sales.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.ReportRequest{StartDate: from, EndDate: to}
			if len(args) == 1 {
				req.ReportType = args[0]
			}
			res, err := d.Svc.RunReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asCSV {
				return writeReportCSV(cmd.OutOrStdout(), res.Report)
			}
			printReport(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Window end, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of a table")
	return cmd
}

func newStockCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Show current stock of raw materials and finished products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := d.Svc.RunReport(cmd.Context(), app.ReportRequest{ReportType: string(core.ReportInventorySummary)})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newBillCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "bill <id>",
		Short: "Print a bill with its totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := d.Svc.GetBill(cmd.Context(), id)
			if err != nil {
				return err
			}
			printBill(cmd.OutOrStdout(), res.Detail)
			return nil
		},
	}
}

func newMarkPaidCmd(d Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-paid <id>...",
		Short: "Flag one or more bills as paid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			res, err := d.Svc.MarkBillsPaid(cmd.Context(), app.MarkPaidRequest{BillIDs: ids})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bill(s) marked paid.\n", res.Updated)
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrInvalidInput, s)
	}
	return id, nil
}

func reportKindNames() []string {
	names := make([]string, len(core.ReportKinds))
	for i, k := range core.ReportKinds {
		names[i] = string(k)
	}
	return names
}

// ── Rendering ────────────────────────────────────────────────────────────────

func writeReportCSV(w io.Writer, rep *core.Report) error {
	header, rows := rep.Table()
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func printReport(w io.Writer, res *app.ReportResult) {
	rep := res.Report
	title := strings.ToUpper(strings.ReplaceAll(string(rep.Kind), "_", " "))
	window := rep.StartDate + " to " + rep.EndDate
	if res.Defaulted {
		window += " (default window)"
	}

	header, rows := rep.Table()
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	total := 0
	for _, wd := range widths {
		total += wd + 2
	}
	if total < 40 {
		total = 40
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", total))
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "  Window : %s\n", window)
	fmt.Fprintln(w, strings.Repeat("=", total))
	printRow(w, header, widths)
	fmt.Fprintln(w, strings.Repeat("-", total))
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (no data)")
	}
	for _, row := range rows {
		printRow(w, row, widths)
	}
	fmt.Fprintln(w, strings.Repeat("=", total))
}

// printRow left-aligns the first column and right-aligns the rest.
func printRow(w io.Writer, cells []string, widths []int) {
	var b strings.Builder
	for i, cell := range cells {
		if i == 0 {
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		} else {
			fmt.Fprintf(&b, "  %*s", widths[i], cell)
		}
	}
	fmt.Fprintln(w, b.String())
}

func printBill(w io.Writer, d *core.BillDetail) {
	b := d.Bill
	customer := "Walk-in"
	if b.CustomerName != nil {
		customer = *b.CustomerName
	}
	status := "UNPAID"
	if b.IsPaid {
		status = "PAID"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  BILL #%d  %s  [%s]\n", b.ID, b.BillDate.Format(core.DateLayout), status)
	fmt.Fprintf(w, "  Customer : %s\n", customer)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-24s %10s %10s %12s\n", "PRODUCT", "QTY (kg)", "RATE", "AMOUNT")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, l := range d.Lines {
		fmt.Fprintf(w, "  %-24s %10s %10s %12s\n",
			l.ProductName, l.QuantityKg.StringFixed(2), l.PricePerUnit.StringFixed(2), l.TotalPrice.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 62))
	t := d.Totals
	fmt.Fprintf(w, "  %-46s %12s\n", "Subtotal", t.Subtotal.StringFixed(2))
	if b.HasGST {
		fmt.Fprintf(w, "  %-46s %12s\n", "GST (18%)", t.GSTAmount.StringFixed(2))
	}
	if !t.OtherExpenses.IsZero() {
		fmt.Fprintf(w, "  %-46s %12s\n", "Other expenses", t.OtherExpenses.StringFixed(2))
	}
	fmt.Fprintf(w, "  %-46s %12s\n", "GRAND TOTAL", t.GrandTotal.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 62))
}
