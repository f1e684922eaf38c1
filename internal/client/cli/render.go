package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	climodels "github.com/dmitrijs2005/tokenquest/internal/client/models"
	"github.com/dmitrijs2005/tokenquest/internal/client/services"
	"github.com/dmitrijs2005/tokenquest/internal/models"
)

const timeLayout = "2006-01-02 15:04"

type styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Muted   lipgloss.Style
	Energy  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Padding(0, 1),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Energy:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// table renders rows under headers with columns padded to the widest cell.
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) add(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *table) render(st styles) string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(st.Title.Render(t.title))
		sb.WriteString("\n")
	}
	if len(t.rows) == 0 {
		sb.WriteString(st.Muted.Render("  (empty)"))
		sb.WriteString("\n")
		return sb.String()
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	sep := st.Muted.Render("|")
	line := func(cells []string, style lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	line(t.headers, st.Header)
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(st.Muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range t.rows {
		line(row, st.Cell)
	}
	return sb.String()
}

func renderEntities(w io.Writer, st styles, kind models.Kind, es []models.Entity) {
	t := newTable(strings.ToUpper(kind.Collection()[:1])+kind.Collection()[1:], "#", "ID", "Title", "Energy", "Status", "Description")
	for i, e := range es {
		status := "pending"
		if e.Resolved {
			status = kind.ResolvedWord()
			if e.ResolvedAt != nil {
				status += " " + e.ResolvedAt.Local().Format(timeLayout)
			}
		}
		t.add(strconv.Itoa(i+1), shortID(e.ID), e.Title, strconv.FormatInt(e.EnergyValue, 10), status, e.Description)
	}
	fmt.Fprint(w, t.render(st))
}

func renderAccount(w io.Writer, st styles, a *models.Account) {
	name := a.DisplayName
	if name == "" {
		name = a.ID
	}
	fmt.Fprintf(w, "%s %s\n", st.Title.Render(name), st.Energy.Render(fmt.Sprintf("⚡ %d", a.Energy)))
}

func renderStats(w io.Writer, st styles, s *services.Stats, streak int) {
	t := newTable("Stats", "Metric", "Value")
	t.add("Energy", strconv.FormatInt(s.Account.Energy, 10))
	t.add("Energy earned", strconv.FormatInt(s.EnergyEarned, 10))
	t.add("Energy spent", strconv.FormatInt(s.EnergySpent, 10))
	t.add("Missions", fmt.Sprintf("%d/%d", s.CompletedMissions, s.Missions))
	t.add("Rewards", fmt.Sprintf("%d/%d", s.RedeemedRewards, s.Rewards))
	t.add("Missions completed (all time)", strconv.FormatInt(s.Account.CompletedMissions, 10))
	t.add("Rewards redeemed (all time)", strconv.FormatInt(s.Account.RedeemedRewards, 10))
	t.add("Streak (days)", strconv.Itoa(streak))
	fmt.Fprint(w, t.render(st))
}

func renderJournal(w io.Writer, st styles, es []climodels.JournalEntry) {
	t := newTable("Journal", "ID", "Created", "Mood", "Title")
	for _, e := range es {
		t.add(shortID(e.ID), e.CreatedAt.Local().Format(timeLayout), string(e.Mood), e.Title)
	}
	fmt.Fprint(w, t.render(st))
}

func renderJournalEntry(w io.Writer, st styles, e *climodels.JournalEntry) {
	fmt.Fprintf(w, "%s %s\n", st.Title.Render(e.Title), st.Muted.Render(fmt.Sprintf("(%s, %s)", e.Mood, e.CreatedAt.Local().Format(timeLayout))))
	fmt.Fprintln(w, e.Content)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
