// Package tui is a terminal front end: search a locality by name or pick a
// region from the list, then read current conditions and the forecast.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/navigation"
	"github.com/couchcryptid/weather-map-service/internal/weather"
)

// State is the screen being shown.
type State int

const (
	StateSearch State = iota
	StateRegions
	StateLoading
	StateDisplay
)

const defaultFetchTimeout = 15 * time.Second

// Deps are the collaborators behind the model.
type Deps struct {
	Fetcher    domain.WeatherFetcher
	Navigation *navigation.Controller
	// Regions lists every selectable region, bound or not.
	Regions  []string
	Location *time.Location
	Timeout  time.Duration
}

type regionItem struct {
	name     string
	locality string
}

func (i regionItem) Title() string { return i.name }

func (i regionItem) Description() string {
	if i.locality == "" {
		return "no data"
	}
	return i.locality
}

func (i regionItem) FilterValue() string { return i.name }

// selection records what the navigation session decided for one click.
type selection struct {
	locality string
	notice   string
}

func (s *selection) Navigate(_ context.Context, locality string) error {
	s.locality = locality
	return nil
}

func (s *selection) Notice(_ context.Context, msg string) error {
	s.notice = msg
	return nil
}

// Model is the bubbletea model.
type Model struct {
	state  State
	width  int
	height int

	search  textinput.Model
	regions list.Model
	spinner spinner.Model

	deps    Deps
	tracker *weather.Tracker

	locality string
	notice   string
	err      error
	weather  *domain.Weather
}

// NewModel creates the model in the search state.
func NewModel(deps Deps) Model {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultFetchTimeout
	}

	ti := textinput.New()
	ti.Placeholder = "Enter a city name (e.g. Denver)..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	bindings := deps.Navigation.Bindings()
	items := make([]list.Item, 0, len(deps.Regions))
	for _, name := range deps.Regions {
		loc, _ := bindings.Resolve(name)
		items = append(items, regionItem{name: name, locality: loc})
	}
	l := list.New(items, list.NewDefaultDelegate(), 40, 20)
	l.Title = "Regions"
	l.SetShowHelp(false)

	return Model{
		state:   StateSearch,
		search:  ti,
		regions: l,
		spinner: s,
		deps:    deps,
		tracker: &weather.Tracker{},
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.regions.SetSize(max(msg.Width-4, 20), max(msg.Height-8, 5))
		return m, nil

	case weatherFetchedMsg:
		if !m.tracker.Accept(msg.ticket) {
			// Superseded by a later search or cancelled with esc.
			return m, nil
		}
		m.tracker.Reset()
		m.state = StateDisplay
		m.err = msg.err
		m.weather = nil
		if msg.err == nil {
			wx := msg.wx
			wx.Forecast = domain.SortedForecast(wx.Forecast)
			m.weather = &wx
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case StateSearch:
			return m.handleSearch(msg)
		case StateRegions:
			return m.handleRegions(msg)
		case StateLoading:
			if msg.Type == tea.KeyEsc {
				m.tracker.Reset()
				return m.toSearch(), textinput.Blink
			}
			return m, nil
		case StateDisplay:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc", "s", "b":
				return m.toSearch(), textinput.Blink
			}
			return m, nil
		}
	}

	return m, nil
}

func (m Model) toSearch() Model {
	m.state = StateSearch
	m.search.SetValue("")
	m.search.Focus()
	m.err = nil
	m.weather = nil
	return m
}

func (m Model) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.search.Value())
		if query == "" {
			return m, nil
		}
		m.notice = ""
		return m.begin(query)
	case tea.KeyTab:
		m.state = StateRegions
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.notice = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleRegions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.regions.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.regions, cmd = m.regions.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyEsc:
		m.state = StateSearch
		m.search.Focus()
		return m, textinput.Blink
	case tea.KeyEnter:
		item, ok := m.regions.SelectedItem().(regionItem)
		if !ok {
			return m, nil
		}
		return m.selectRegion(item.name)
	}

	var cmd tea.Cmd
	m.regions, cmd = m.regions.Update(msg)
	return m, cmd
}

// selectRegion runs the click through the navigation controller: a bound
// region starts a fetch, an unbound one leaves a notice on the search screen.
func (m Model) selectRegion(region string) (tea.Model, tea.Cmd) {
	sel := &selection{}
	session := m.deps.Navigation.Session(sel, sel)
	if err := session.HandleSelection(context.Background(), domain.Selection{Region: region}); err != nil {
		m.err = err
		return m, nil
	}
	if sel.notice != "" {
		m.notice = sel.notice
		m.state = StateSearch
		m.search.Focus()
		return m, textinput.Blink
	}
	m.notice = ""
	return m.begin(sel.locality)
}

func (m Model) begin(locality string) (tea.Model, tea.Cmd) {
	ticket := m.tracker.Begin(locality)
	m.locality = locality
	m.state = StateLoading
	m.err = nil
	m.weather = nil
	m.search.Blur()
	return m, tea.Batch(m.spinner.Tick, fetchWeather(m.deps.Fetcher, ticket, m.deps.Timeout))
}

// errorText maps a fetch failure to the message shown to the user.
func errorText(err error) string {
	if errors.Is(err, domain.ErrLocalityNotFound) {
		return "City not found. Check the spelling and try again."
	}
	return "Weather data is temporarily unavailable. Please try again later."
}
