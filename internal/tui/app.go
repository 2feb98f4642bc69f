// Package tui provides a terminal dashboard over the collector database.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/storage"
)

// App is the main TUI application.
type App struct {
	db *storage.DB
}

// NewApp creates a new TUI application.
func NewApp(db *storage.DB) *App {
	return &App{db: db}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newModel(a.db), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// appModel is the main bubbletea model.
type appModel struct {
	db        *storage.DB
	dashboard *Dashboard
	spinner   spinner.Model
	ready     bool
	width     int
	height    int
	err       error
}

func newModel(db *storage.DB) appModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)

	return appModel{
		db:      db,
		spinner: s,
	}
}

// Init initializes the model.
func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadData(m.db),
	)
}

// Update handles messages.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadData(m.db)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}

	case dataMsg:
		m.ready = true
		m.dashboard = NewDashboard(msg, m.width, m.height)

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m appModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render("Error: " + m.err.Error())
	}

	if !m.ready {
		return LoadingStyle.Render(m.spinner.View() + " Loading...")
	}

	return m.dashboard.View()
}

// Messages
type dataMsg struct {
	Data *DashboardData
}

type errMsg struct {
	err error
}

func loadData(db *storage.DB) tea.Cmd {
	return func() tea.Msg {
		data, err := fetchDashboardData(db)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{Data: data}
	}
}

func fetchDashboardData(db *storage.DB) (*DashboardData, error) {
	hostStorage := storage.NewHostStorage(db)

	stats, err := hostStorage.Stats()
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		Total:      stats.Total,
		Selected:   stats.Selected,
		ByProvider: stats.ByProvider,
		ByCountry:  stats.ByCountry,
	}

	page, err := hostStorage.List(model.HostFilter{Page: 1, PerPage: 15})
	if err != nil {
		return nil, err
	}

	for _, h := range page.Hosts {
		name := h.Domain
		if name == "" {
			name = h.IP
		}
		data.Recent = append(data.Recent, HostInfo{
			Host:     name,
			IP:       h.IP,
			Provider: h.Provider,
			Country:  h.Country,
			Status:   h.StatusCode,
		})
	}

	return data, nil
}
