package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/weather-map-service/internal/domain"
)

const forecastRows = 8

var compass = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// View renders the current screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Weather Map"))
	b.WriteString("\n\n")

	switch m.state {
	case StateSearch:
		if m.notice != "" {
			b.WriteString(noticeStyle.Render(m.notice))
			b.WriteString("\n\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n\n")
		}
		b.WriteString(m.search.View())
		b.WriteString(helpStyle.Render("enter: search • tab: regions • ctrl+c: quit"))
	case StateRegions:
		b.WriteString(m.regions.View())
		b.WriteString(helpStyle.Render("enter: select • /: filter • tab: search"))
	case StateLoading:
		fmt.Fprintf(&b, "%s Fetching weather for %s...", m.spinner.View(), m.locality)
		b.WriteString(helpStyle.Render("esc: cancel"))
	case StateDisplay:
		b.WriteString(m.displayView())
		b.WriteString(helpStyle.Render("esc: back to search • q: quit"))
	}
	return b.String()
}

func (m Model) displayView() string {
	if m.err != nil {
		return paneStyle.Render(titleStyle.Render(m.locality) + "\n\n" + errorStyle.Render(errorText(m.err)))
	}
	if m.weather == nil {
		return ""
	}

	wx := m.weather
	c := wx.Current
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
	}

	current := strings.Join([]string{
		titleStyle.Render(c.Locality),
		c.Description,
		"",
		row("Temperature", fmt.Sprintf("%.1f%s", c.Temperature, wx.Units.TemperatureLabel())),
		row("Humidity", fmt.Sprintf("%.0f%%", c.Humidity)),
		row("Wind", fmt.Sprintf("%.1f %s %s", c.WindSpeed, wx.Units.SpeedLabel(), arrow(c.WindDirection))),
	}, "\n")

	lines := []string{titleStyle.Render("Forecast")}
	if len(wx.Forecast) == 0 {
		lines = append(lines, "No forecast data available")
	}
	for i, p := range wx.Forecast {
		if i == forecastRows {
			break
		}
		lines = append(lines, forecastLine(p, wx.Units, m))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(current),
		paneStyle.Render(strings.Join(lines, "\n")))
}

func forecastLine(p domain.ForecastPoint, units domain.Units, m Model) string {
	return fmt.Sprintf("%s  %6.1f%s  %5.1f %s %s  %s",
		p.Time.In(m.deps.Location).Format("Mon 15:04"),
		p.Temperature, units.TemperatureLabel(),
		p.WindSpeed, units.SpeedLabel(), arrow(p.WindDirection),
		intensityText(p))
}

func intensityText(p domain.ForecastPoint) string {
	if p.Precipitation != nil {
		return fmt.Sprintf("rain %.1f mm", *p.Precipitation)
	}
	return fmt.Sprintf("clouds %.0f%%", p.CloudCoverage)
}

// arrow points where the wind blows towards, matching the chart's vectors.
func arrow(deg float64) string {
	i := int((deg+22.5)/45) % len(compass)
	if i < 0 {
		i += len(compass)
	}
	return compass[i]
}
