package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/source"
	"github.com/theirongolddev/debtburn/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagDebtName        string
	flagDebtType        string
	flagDebtPrincipal   string
	flagDebtOutstanding string
	flagDebtRate        string
	flagDebtEMI         string
	flagDebtTenure      int
	flagDebtID          string
	flagReplace         bool
)

var debtsCmd = &cobra.Command{
	Use:     "debts",
	Aliases: []string{"ls"},
	Short:   "List the debts in your portfolio",
	RunE:    runDebtsList,
}

var debtsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a debt (interactive without --name)",
	RunE:  runDebtsAdd,
}

var debtsRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove"},
	Short:   "Remove debts by id (a unique id prefix is enough)",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDebtsRemove,
}

var debtsImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import debts from TOML, JSON or JSONL files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDebtsImport,
}

func init() {
	f := debtsAddCmd.Flags()
	f.StringVar(&flagDebtID, "id", "", "Update the debt with this id instead of adding one")
	f.StringVar(&flagDebtName, "name", "", "Debt name")
	f.StringVar(&flagDebtType, "type", "other", "credit_card, personal_loan, emi or other")
	f.StringVar(&flagDebtPrincipal, "principal", "", "Original amount borrowed (default: outstanding)")
	f.StringVar(&flagDebtOutstanding, "outstanding", "", "Current balance")
	f.StringVar(&flagDebtRate, "rate", "0", "Annual interest rate in percent")
	f.StringVar(&flagDebtEMI, "emi", "", "Minimum monthly payment")
	f.IntVar(&flagDebtTenure, "tenure", 0, "Remaining tenure in months (informational)")

	debtsImportCmd.Flags().BoolVar(&flagReplace, "replace", false, "Replace the portfolio instead of merging")

	debtsCmd.AddCommand(debtsAddCmd, debtsRemoveCmd, debtsImportCmd)
	rootCmd.AddCommand(debtsCmd)
}

func runDebtsList(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	debts, err := st.ListDebts(cmd.Context(), activeUser())
	if err != nil {
		return err
	}
	if flagJSON {
		if debts == nil {
			debts = []model.Debt{}
		}
		return printJSON(debts)
	}
	if len(debts) == 0 {
		printNoDebts()
		return nil
	}

	cur := currency()
	rows := make([][]string, 0, len(debts))
	for _, d := range debts {
		tenure := "-"
		if d.RemainingTermMonths > 0 {
			tenure = cli.FormatMonths(d.RemainingTermMonths)
		}
		rows = append(rows, []string{
			shortID(d.ID),
			d.Name,
			d.Kind.Label(),
			cur.Money(d.Outstanding),
			cli.FormatRate(d.AnnualRate),
			cur.Money(d.MinimumPayment),
			tenure,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Debts  %s", activeUser()),
		Headers: []string{"ID", "Name", "Type", "Outstanding", "Rate", "EMI", "Tenure"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// debtForm collects a debt interactively.
func debtForm(d *debtInput) *huh.Form {
	kinds := make([]huh.Option[string], 0, len(model.Kinds()))
	for _, k := range model.Kinds() {
		kinds = append(kinds, huh.NewOption(k.Label(), string(k)))
	}
	amount := func(required bool) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" && !required {
				return nil
			}
			v, err := money.Parse(s)
			if err != nil {
				return errors.New("enter a number like 42000")
			}
			if v.Sign() < 0 {
				return errors.New("must not be negative")
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&d.name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name cannot be empty")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Type").Options(kinds...).Value(&d.kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("Outstanding balance").Value(&d.outstanding).Validate(amount(true)),
			huh.NewInput().Title("Annual interest rate (%)").Value(&d.rate).Validate(amount(true)),
			huh.NewInput().Title("Minimum monthly payment").Value(&d.emi).Validate(amount(true)),
			huh.NewInput().Title("Original principal").Description("Optional").Value(&d.principal).Validate(amount(false)),
			huh.NewInput().Title("Remaining tenure (months)").Description("Optional").Value(&d.tenure).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
						return errors.New("enter a whole number of months")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase16())
}

// debtInput is the raw text of a debt before parsing.
type debtInput struct {
	id          string
	name        string
	kind        string
	principal   string
	outstanding string
	rate        string
	emi         string
	tenure      string
}

func (in debtInput) toDebt(userID string) (model.Debt, error) {
	kind, err := model.ParseKind(in.kind)
	if err != nil {
		return model.Debt{}, err
	}
	d := model.Debt{
		ID:     in.id,
		UserID: userID,
		Name:   strings.TrimSpace(in.name),
		Kind:   kind,
	}
	if d.Name == "" {
		return d, errors.New("debt name is required")
	}

	fields := []struct {
		flag string
		raw  string
		dst  *money.Amount
	}{
		{"outstanding", in.outstanding, &d.Outstanding},
		{"rate", in.rate, &d.AnnualRate},
		{"emi", in.emi, &d.MinimumPayment},
	}
	for _, f := range fields {
		v, err := money.Parse(f.raw)
		if err != nil {
			return d, fmt.Errorf("--%s: %w", f.flag, err)
		}
		*f.dst = v
	}

	d.Principal = d.Outstanding
	if strings.TrimSpace(in.principal) != "" {
		if d.Principal, err = money.Parse(in.principal); err != nil {
			return d, fmt.Errorf("--principal: %w", err)
		}
	}
	if t := strings.TrimSpace(in.tenure); t != "" {
		if d.RemainingTermMonths, err = strconv.Atoi(t); err != nil {
			return d, fmt.Errorf("--tenure: %w", err)
		}
	}

	// Reuse the planner's checks so a stored debt is always plannable.
	probe := d
	if probe.ID == "" {
		probe.ID = "new"
	}
	if err := payoff.Validate([]model.Debt{probe}, money.Zero, planOptions(false)); err != nil {
		return d, err
	}
	return d, nil
}

func runDebtsAdd(cmd *cobra.Command, _ []string) error {
	in := debtInput{
		id:          flagDebtID,
		name:        flagDebtName,
		kind:        flagDebtType,
		principal:   flagDebtPrincipal,
		outstanding: flagDebtOutstanding,
		rate:        flagDebtRate,
		emi:         flagDebtEMI,
	}
	if flagDebtTenure > 0 {
		in.tenure = strconv.Itoa(flagDebtTenure)
	}

	if in.name == "" {
		in.kind = string(model.KindCreditCard)
		if err := debtForm(&in).Run(); err != nil {
			return err
		}
	}

	d, err := in.toDebt(activeUser())
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if d.ID != "" {
		existing, err := resolveDebt(cmd, st, d.ID)
		if err != nil {
			return err
		}
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	}

	saved, err := st.SaveDebt(cmd.Context(), d)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(saved)
	}
	fmt.Printf("  Saved %s (%s) %s at %s\n", saved.Name, shortID(saved.ID),
		currency().Money(saved.Outstanding), cli.FormatRate(saved.AnnualRate))
	return nil
}

// resolveDebt finds one of the active user's debts by id or unique id prefix.
func resolveDebt(cmd *cobra.Command, st *store.Store, ref string) (model.Debt, error) {
	debts, err := st.ListDebts(cmd.Context(), activeUser())
	if err != nil {
		return model.Debt{}, err
	}
	var matches []model.Debt
	for _, d := range debts {
		if d.ID == ref {
			return d, nil
		}
		if strings.HasPrefix(d.ID, ref) {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 0:
		return model.Debt{}, fmt.Errorf("%w: %s", store.ErrDebtNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Debt{}, fmt.Errorf("id prefix %q matches %d debts", ref, len(matches))
	}
}

func runDebtsRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, ref := range args {
		d, err := resolveDebt(cmd, st, ref)
		if err != nil {
			return err
		}
		if err := st.DeleteDebt(cmd.Context(), d.ID); err != nil {
			return err
		}
		fmt.Printf("  Removed %s (%s)\n", d.Name, shortID(d.ID))
	}
	return nil
}

func runDebtsImport(cmd *cobra.Command, args []string) error {
	var (
		debts     []model.Debt
		badLines  int
		fileCount int
	)
	for _, arg := range args {
		files, err := source.ScanDir(arg)
		if err != nil {
			return err
		}
		for _, f := range files {
			res := source.ParseFile(f.Path)
			if res.Err != nil {
				return fmt.Errorf("%s: %w", f.Path, res.Err)
			}
			progress("%s: %d debts", f.Path, len(res.Debts))
			debts = append(debts, res.Debts...)
			badLines += res.ParseErrors
			fileCount++
		}
	}
	if len(debts) == 0 {
		return fmt.Errorf("no debts found in %s", strings.Join(args, ", "))
	}

	for i := range debts {
		if debts[i].ID == "" {
			debts[i].ID = uuid.NewString()
		}
	}
	if err := payoff.Validate(debts, money.Zero, planOptions(false)); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.ImportDebts(cmd.Context(), activeUser(), debts, flagReplace)
	if err != nil {
		return err
	}

	fmt.Printf("  Imported %d debts from %d file(s) into %q\n", n, fileCount, activeUser())
	if badLines > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf("skipped %d malformed line(s)", badLines)))
	}
	return nil
}
