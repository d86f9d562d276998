// Package tui provides the interactive Bubble Tea dashboard for debtburn.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/debtburn/internal/cli"
	"github.com/theirongolddev/debtburn/internal/config"
	"github.com/theirongolddev/debtburn/internal/model"
	"github.com/theirongolddev/debtburn/internal/money"
	"github.com/theirongolddev/debtburn/internal/payoff"
	"github.com/theirongolddev/debtburn/internal/source"
	"github.com/theirongolddev/debtburn/internal/store"
	"github.com/theirongolddev/debtburn/internal/tui/components"
	"github.com/theirongolddev/debtburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DebtsLoadedMsg is sent when the portfolio has been read from the store.
type DebtsLoadedMsg struct {
	Debts    []model.Debt
	Err      error
	LoadTime time.Duration
}

// Options configures the dashboard.
type Options struct {
	DSN       string
	User      string
	Extra     money.Amount
	Step      money.Amount // extra-payment increment for +/-
	MaxMonths int
	Currency  cli.Currency
	// Setup runs the first-run wizard once the portfolio has loaded.
	Setup bool
}

const (
	tabOverview = iota
	tabSnowball
	tabAvalanche
	tabDebts
	tabCount
)

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	debts    []model.Debt
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// Plan for the current extra payment
	extra    money.Amount
	analysis payoff.Analysis
	planErr  error
	planned  bool
	now      func() time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string

	// Per-tab state
	scroll     [tabCount]int // schedule offset per plan tab
	debtCursor int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner   spinner.Model
	reloading bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 180
	minContentHeight = 5
	scrollOverhead   = 10
)

// DefaultStep is the +/- increment when none is configured.
var DefaultStep = money.FromInt(1000)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Step.Sign() <= 0 {
		opts.Step = DefaultStep
	}
	if opts.MaxMonths <= 0 {
		opts.MaxMonths = payoff.DefaultMaxMonths
	}
	if opts.Currency.Symbol == "" {
		opts.Currency = cli.DefaultCurrency
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		extra:     opts.Extra,
		needSetup: opts.Setup,
		now:       time.Now,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDebtsCmd(a.opts.DSN, a.opts.User),
		a.spinner.Tick,
	)
}

// replan recomputes both strategies for the current debts and extra payment.
func (a *App) replan() {
	a.planned = false
	a.planErr = nil
	if len(a.debts) == 0 {
		a.analysis = payoff.Analysis{}
		return
	}

	analysis, err := payoff.Plan(a.debts, a.extra, a.now(), payoff.Options{
		MaxMonths:      a.opts.MaxMonths,
		Decimals:       a.opts.Currency.Decimals,
		Parallel:       true,
		RecordSchedule: true,
	})
	if err != nil {
		a.planErr = err
		return
	}
	a.analysis = analysis
	a.planned = true

	for i := range a.scroll {
		a.scroll[i] = 0
	}
	if a.debtCursor >= len(a.debts) {
		a.debtCursor = max(len(a.debts)-1, 0)
	}
}

func (a *App) setExtra(v money.Amount) {
	if v.Sign() < 0 {
		v = money.Zero
	}
	if v.Equal(a.extra) {
		return
	}
	a.extra = v
	a.replan()
	a.status = "extra " + a.opts.Currency.Money(a.extra) + "/mo"
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			a.scrollBy(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DebtsLoadedMsg:
		a.loaded = true
		a.reloading = false
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.debts = msg.Debts
			a.replan()
		}
		if a.status == "reloading" {
			a.status = ""
		}

		if a.needSetup && a.setupForm == nil {
			vals := SetupDefaults(loadConfigOrDefault())
			a.setupVals = &vals
			a.setupForm = NewSetupForm(len(a.debts), a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded && !a.reloading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.reloading {
			a.reloading = true
			a.status = "reloading"
			return a, tea.Batch(loadDebtsCmd(a.opts.DSN, a.opts.User), a.spinner.Tick)
		}
		return a, nil
	case "+", "=":
		a.setExtra(a.extra.Add(a.opts.Step))
	case "-", "_":
		a.setExtra(a.extra.Sub(a.opts.Step))
	case "0":
		a.setExtra(a.opts.Extra)
	case "j", "down":
		a.scrollBy(1)
	case "k", "up":
		a.scrollBy(-1)
	case "ctrl+d":
		a.scrollBy(max((a.height-scrollOverhead)/2, 1))
	case "ctrl+u":
		a.scrollBy(-max((a.height-scrollOverhead)/2, 1))
	case "g":
		a.scrollBy(-1 << 30)
	case "G":
		a.scrollBy(1 << 30)
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

// scrollBy moves the cursor on the debts tab or the schedule offset on a
// plan tab, clamped to the list bounds.
func (a *App) scrollBy(n int) {
	switch a.activeTab {
	case tabDebts:
		a.debtCursor = clamp(a.debtCursor+n, 0, len(a.debts)-1)
	case tabSnowball, tabAvalanche:
		rows := len(a.planFor(a.activeTab).Schedule)
		a.scroll[a.activeTab] = clamp(a.scroll[a.activeTab]+n, 0, rows-1)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func (a App) planFor(tab int) payoff.PlanResult {
	if tab == tabAvalanche {
		return a.analysis.Avalanche
	}
	return a.analysis.Snowball
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		vals := *a.setupVals
		a.setupForm = nil
		a.needSetup = false
		return a, a.finishSetup(vals)
	case huh.StateAborted:
		a.setupForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

// finishSetup persists the wizard answers and applies them to the running
// dashboard. Loading the sample portfolio happens in the background.
func (a *App) finishSetup(vals SetupValues) tea.Cmd {
	cfg, err := ApplySetup(loadConfigOrDefault(), vals)
	if err != nil {
		a.status = err.Error()
		return nil
	}
	if err := config.Save(cfg); err != nil {
		a.status = "could not save config: " + err.Error()
	} else {
		a.status = "saved " + config.Path()
	}

	theme.SetActive(cfg.Appearance.Theme)
	a.opts.Currency = cli.Currency{Symbol: cfg.General.CurrencySymbol, Decimals: cfg.General.CurrencyDecimals}
	a.opts.Extra = cfg.General.DefaultExtra
	a.extra = cfg.General.DefaultExtra

	userChanged := cfg.General.User != a.opts.User
	a.opts.User = cfg.General.User

	switch {
	case vals.LoadSample:
		a.reloading = true
		return importSampleCmd(a.opts.DSN, a.opts.User)
	case userChanged:
		a.reloading = true
		return loadDebtsCmd(a.opts.DSN, a.opts.User)
	}
	a.replan()
	return nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  debtburn needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ debtburn") +
		subtitleStyle.Render(" · Debt Payoff Planner") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading debts...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, name string, binds [][2]string) {
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, bind := range binds {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
		b.WriteString("\n")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", [][2]string{
		{"o s a d", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll schedule / select debt"},
		{"^d ^u", "Half-page scroll"},
	})
	section(&b, "Plan", [][2]string{
		{"+ -", "Raise / lower extra payment by " + a.opts.Currency.Money(a.opts.Step)},
		{"0", "Reset extra to " + a.opts.Currency.Money(a.opts.Extra)},
		{"r", "Reload debts"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	filter := pill.Render(" ") + accent.Render(a.opts.User) +
		pill.Render(" │ extra ") + accent.Render(a.opts.Currency.Money(a.extra)+"/mo") +
		pill.Render(" │ step ") + pill.Render(a.opts.Currency.Money(a.opts.Step))
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filter)

	right := fmt.Sprintf("loaded in %s", a.loadTime.Round(time.Millisecond))
	isErr := false
	switch {
	case a.loadErr != nil:
		right, isErr = a.loadErr.Error(), true
	case a.planErr != nil:
		right, isErr = a.planErr.Error(), true
	case a.status != "":
		right = a.status
	}
	statusBar := components.RenderStatusBar(w, "[?]help [+/-]extra [r]eload [q]uit", right, isErr)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = a.renderMessage(cw, "Could not load debts", a.loadErr.Error())
	case len(a.debts) == 0:
		content = a.renderMessage(cw, "No debts yet",
			"Add one with `debtburn debts add`, import a file with `debtburn debts import`,\n"+
				"or load the demo portfolio with `debtburn sample`. Press r to reload.")
	case !a.planned:
		msg := "The portfolio could not be planned."
		if a.planErr != nil {
			msg = a.planErr.Error()
		}
		content = a.renderMessage(cw, "Invalid portfolio", msg)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabSnowball, tabAvalanche:
			content = a.renderPlanTab(a.planFor(a.activeTab), a.scroll[a.activeTab], cw, contentH)
		case tabDebts:
			content = a.renderDebtsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderMessage(cw int, title, body string) string {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(body)
	return components.ContentCard(title, text, cw)
}

// ─── Commands ───────────────────────────────────────────────────

func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// loadDebtsCmd reads the user's portfolio from the store.
func loadDebtsCmd(dsn, user string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		st, err := store.Open(dsn)
		if err != nil {
			return DebtsLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		defer func() { _ = st.Close() }()

		debts, err := st.ListDebts(ctx, user)
		return DebtsLoadedMsg{Debts: debts, Err: err, LoadTime: time.Since(start)}
	}
}

// importSampleCmd stores the demo portfolio for user and reloads it.
func importSampleCmd(dsn, user string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		st, err := store.Open(dsn)
		if err != nil {
			return DebtsLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		defer func() { _ = st.Close() }()

		if _, err := st.ImportDebts(ctx, user, source.SampleDebts(user), false); err != nil {
			return DebtsLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		debts, err := st.ListDebts(ctx, user)
		return DebtsLoadedMsg{Debts: debts, Err: err, LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
