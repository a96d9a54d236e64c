package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/apod/internal/browser"
	"github.com/matheuskafuri/apod/internal/cache"
	"github.com/matheuskafuri/apod/internal/nasa"
	"github.com/matheuskafuri/apod/internal/update"
	"github.com/matheuskafuri/apod/internal/viewmodel"
)

const toastDuration = 4 * time.Second

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeHome mode = iota
	modeNormal
	modeSearch
	modeHelp
)

// ViewModel is the part of the view-model the UI drives.
type ViewModel interface {
	StartEvent(ctx context.Context, ev viewmodel.Event)
	Subscribe() (<-chan viewmodel.State, func())
	Effects() <-chan viewmodel.Effect
}

type App struct {
	ctx     context.Context
	vm      ViewModel
	states  <-chan viewmodel.State
	effects <-chan viewmodel.Effect
	unsub   func()

	photos []cache.Photo // everything in view-model state
	shown  []cache.Photo // photos after the search filter
	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model

	loading       bool
	refresh       bool
	toast         string
	toastSeq      int
	previewScroll int
	today         nasa.Date
	version       string
	updateVersion string
	pageDays      int
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	VM ViewModel
	// Refresh downloads today's picture on start.
	Refresh bool
	// BrowseMode skips the home screen.
	BrowseMode bool
	Version    string
	PageDays   int
}

func NewApp(ctx context.Context, opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	if opts.PageDays <= 0 {
		opts.PageDays = viewmodel.DefaultPageDays
	}

	startMode := modeHome
	if opts.BrowseMode {
		startMode = modeNormal
	}

	states, unsub := opts.VM.Subscribe()
	return &App{
		ctx:         ctx,
		vm:          opts.VM,
		states:      states,
		effects:     opts.VM.Effects(),
		unsub:       unsub,
		searchInput: ti,
		spinner:     sp,
		mode:        startMode,
		refresh:     opts.Refresh,
		today:       nasa.Today(),
		version:     opts.Version,
		pageDays:    opts.PageDays,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForState(a.states),
		waitForEffect(a.effects),
		a.startEvent(viewmodel.FetchDatabasePhotos{}),
		checkUpdateCmd(a.ctx, a.version),
	}
	if a.refresh {
		cmds = append(cmds, a.startEvent(viewmodel.DownloadPhotoOfToday{}))
	}
	return tea.Batch(cmds...)
}

func waitForState(ch <-chan viewmodel.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg{state: st}
	}
}

func waitForEffect(ch <-chan viewmodel.Effect) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return effectMsg{effect: e}
	}
}

func (a *App) startEvent(ev viewmodel.Event) tea.Cmd {
	vm, ctx := a.vm, a.ctx
	return func() tea.Msg {
		vm.StartEvent(ctx, ev)
		return nil
	}
}

func checkUpdateCmd(ctx context.Context, version string) tea.Cmd {
	return func() tea.Msg {
		res := update.Check(ctx, version)
		if res == nil {
			return nil
		}
		return updateMsg{version: res.LatestVersion}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func clearToastCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case stateMsg:
		wasLoading := a.loading
		a.applyState(msg.state)
		cmds := []tea.Cmd{waitForState(a.states)}
		if a.loading && !wasLoading {
			cmds = append(cmds, a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case effectMsg:
		return a, tea.Batch(a.showToast(msg.effect.Toast), waitForEffect(a.effects))

	case openErrMsg:
		return a, a.showToast(msg.err.Error())

	case clearToastMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case updateMsg:
		a.updateVersion = msg.version
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) applyState(st viewmodel.State) {
	a.loading = st.Loading

	var selected string
	if p := a.selected(); p != nil {
		selected = p.Date
	}

	a.photos = st.Photos
	a.shown = filterPhotos(a.photos, a.searchInput.Value())

	// Keep the cursor on the same picture when older ones are appended
	a.cursor = 0
	for i, p := range a.shown {
		if p.Date == selected {
			a.cursor = i
			break
		}
	}
}

func (a *App) showToast(text string) tea.Cmd {
	a.toastSeq++
	a.toast = text
	return clearToastCmd(a.toastSeq)
}

func (a *App) selected() *cache.Photo {
	if len(a.shown) == 0 || a.cursor >= len(a.shown) {
		return nil
	}
	return &a.shown[a.cursor]
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.shown)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if p := a.selected(); p != nil {
			return a, openBrowserCmd(p.URL)
		}
		return a, nil
	case "O":
		if p := a.selected(); p != nil {
			return a, openBrowserCmd(p.BestURL())
		}
		return a, nil
	case "m":
		return a, a.startEvent(viewmodel.LoadMoreDays{})
	case "t":
		return a, a.startEvent(viewmodel.DownloadPhotoOfToday{})
	case "r":
		return a, a.startEvent(viewmodel.FetchDatabasePhotos{})
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "h":
		a.mode = modeHome
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "e", "b":
		a.mode = modeNormal
		return a, nil
	case "t":
		a.mode = modeNormal
		return a, a.startEvent(viewmodel.DownloadPhotoOfToday{})
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.applySearch()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.applySearch()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.applySearch()
	return a, cmd
}

func (a *App) applySearch() {
	a.shown = filterPhotos(a.photos, a.searchInput.Value())
	a.cursor = 0
	a.previewScroll = 0
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  apod")
	}

	if a.mode == modeHome {
		var latest *cache.Photo
		if len(a.photos) > 0 {
			latest = &a.photos[0]
		}
		return a.withBottomBar(renderHomeScreen(a.width, a.height, latest, a.loading, a.updateVersion), "enter browse  t today  q quit")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  h home  q quit")
	}

	headerHeight := 1
	searchHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - searchHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	headerLeft := headerStyle.Render("apod")
	headerRight := headerDateStyle.Render(a.today.Time().Format("Jan 2, 2006"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	search := searchHintStyle.Render("/ search titles")
	if a.mode == modeSearch {
		search = a.searchInput.View()
	} else if q := a.searchInput.Value(); q != "" {
		search = searchHintStyle.Render(fmt.Sprintf("filter: %q  (/ to change, esc in search to clear)", q))
	}

	innerListW := listWidth - 4
	listContent := renderList(a.shown, a.cursor, contentHeight, innerListW, a.today)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(a.selected(), innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	info := statusInfo{
		shown:     len(a.shown),
		total:     len(a.photos),
		query:     a.searchInput.Value(),
		searching: a.mode == modeSearch,
		loading:   a.loading,
		toast:     a.toast,
	}
	if n := len(a.photos); n > 0 {
		info.oldest = a.photos[n-1].Date
	}
	status := renderStatusBar(info, a.width)
	if a.loading {
		status = a.spinner.View() + " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, search, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("apod")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through pictures\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open picture in browser\n" +
		"  O             Open HD picture in browser\n" +
		fmt.Sprintf("  m             Load %d more days\n", a.pageDays) +
		"  t             Download today's picture\n" +
		"  r             Reload from cache\n" +
		"  /             Search titles\n\n" +
		dim.Render("General") + "\n" +
		"  h             Go to home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application and blocks until the user quits.
func Run(ctx context.Context, opts RunOpts) error {
	app := NewApp(ctx, opts)
	defer app.unsub()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
