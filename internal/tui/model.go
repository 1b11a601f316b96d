// Package tui is the interactive itinerary builder: a catalog checklist over
// one draft, with title and date fields and a save action.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/catalog"
	"github.com/travelmate/tripplanner/internal/draft"
	"github.com/travelmate/tripplanner/internal/syncengine"
)

// Saver persists a draft. *syncengine.Engine satisfies it.
type Saver interface {
	Save(ctx context.Context, d *draft.Draft) (*client.Schedule, error)
}

type focus int

const (
	focusTitle focus = iota
	focusStart
	focusEnd
	focusCatalog
	focusCount
)

type catalogMsg struct {
	items []client.CatalogItem
	err   error
}

type saveMsg struct {
	schedule *client.Schedule
	err      error
}

// Model is the builder's Bubble Tea model.
type Model struct {
	ctx     context.Context
	catalog *catalog.Catalog
	draft   *draft.Draft
	saver   Saver
	lang    language.Tag
	keys    keyMap

	inputs  [3]textinput.Model
	focus   focus
	cursor  int
	loading bool
	saving  bool
	spin    spinner.Model
	errMsg  string
	result  *client.Schedule
	aborted bool
}

// New builds a model editing d. The catalog is fetched the first time the
// attractions list is focused.
func New(ctx context.Context, cat *catalog.Catalog, d *draft.Draft, saver Saver, lang language.Tag) Model {
	m := Model{
		ctx:     ctx,
		catalog: cat,
		draft:   d,
		saver:   saver,
		lang:    lang,
		keys:    defaultKeys(),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	placeholders := [3]string{"Trip title", client.DateLayout, client.DateLayout}
	values := [3]string{d.Title(), d.StartDate().String(), d.EndDate().String()}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 120
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[focusTitle].Focus()
	return m
}

// Result is the saved schedule, nil until a save succeeds.
func (m Model) Result() *client.Schedule { return m.result }

// Aborted reports whether the user quit without saving.
func (m Model) Aborted() bool { return m.aborted }

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = syncengine.UserMessage(msg.err)
			return m, nil
		}
		m.errMsg = ""
		return m, nil

	case saveMsg:
		m.saving = false
		if msg.err != nil {
			m.errMsg = syncengine.UserMessage(msg.err)
			return m, nil
		}
		m.result = msg.schedule
		m.errMsg = ""
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.aborted = m.result == nil
			return m, tea.Quit
		}
		// Nothing mutates the draft while a save is in flight.
		if m.saving {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Save):
			return m.startSave()
		case key.Matches(msg, m.keys.Next):
			return m.setFocus((m.focus + 1) % focusCount)
		case key.Matches(msg, m.keys.Prev):
			return m.setFocus((m.focus + focusCount - 1) % focusCount)
		}
		if m.focus == focusCatalog {
			return m.updateCatalog(msg)
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) setFocus(f focus) (tea.Model, tea.Cmd) {
	m.focus = f
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if f == focusCatalog {
		return m.maybeLoad()
	}
	return m, m.inputs[f].Focus()
}

// maybeLoad starts the catalog fetch unless it is cached or running.
// A failed fetch is retried only by focusing the list again.
func (m Model) maybeLoad() (tea.Model, tea.Cmd) {
	if m.loading || m.catalog.Loaded() {
		return m, nil
	}
	m.loading = true
	cat, ctx := m.catalog, m.ctx
	return m, func() tea.Msg {
		items, err := cat.Load(ctx)
		return catalogMsg{items: items, err: err}
	}
}

func (m Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.catalog.Entries(m.draft)
	if len(entries) == 0 {
		if key.Matches(msg, m.keys.Toggle) && !m.catalog.Loaded() {
			return m.maybeLoad()
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor >= len(entries) {
			m.cursor = len(entries) - 1
		}
		e := entries[m.cursor]
		if e.Selected {
			m.draft.Remove(e.Item.ID)
		} else {
			m.draft.Add(e.Item)
		}
		m.errMsg = ""
	}
	return m, nil
}

// startSave copies the fields into the draft and hands it to the saver.
func (m Model) startSave() (tea.Model, tea.Cmd) {
	start, err := client.ParseDate(strings.TrimSpace(m.inputs[focusStart].Value()))
	if err != nil {
		m.errMsg = "Dates must be in " + client.DateLayout + " format."
		return m, nil
	}
	end, err := client.ParseDate(strings.TrimSpace(m.inputs[focusEnd].Value()))
	if err != nil {
		m.errMsg = "Dates must be in " + client.DateLayout + " format."
		return m, nil
	}
	m.draft.SetTitle(m.inputs[focusTitle].Value())
	m.draft.SetDates(start, end)

	m.saving = true
	m.errMsg = ""
	saver, ctx, d := m.saver, m.ctx, m.draft
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		s, err := saver.Save(ctx, d)
		return saveMsg{schedule: s, err: err}
	})
}

func (m Model) View() string {
	var b strings.Builder

	heading := "New itinerary"
	if m.draft.Mode() == draft.ModeEdit {
		heading = fmt.Sprintf("Edit itinerary #%d", m.draft.ScheduleID())
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")

	labels := [3]string{"Title", "Start", "End"}
	for i, in := range m.inputs {
		marker := "  "
		if m.focus == focus(i) {
			marker = cursorStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, labelStyle.Render(fmt.Sprintf("%-5s", labels[i])), in.View())
	}

	b.WriteString("\n")
	header := "Attractions"
	if m.focus == focusCatalog {
		header = cursorStyle.Render("> ") + header
	} else {
		header = "  " + header
	}
	b.WriteString(header + "\n")
	b.WriteString(m.catalogView())

	fmt.Fprintf(&b, "\n%s %d items, total %s\n",
		labelStyle.Render("Selected:"), m.draft.Len(),
		totalStyle.Render(FormatCost(m.lang, m.draft.TotalCost())))

	switch {
	case m.saving:
		b.WriteString(m.spin.View() + " Saving...\n")
	case m.result != nil:
		b.WriteString(okStyle.Render("Itinerary saved") + "\n")
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}

	help := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		help = append(help, k.Help().Key+" "+k.Help().Desc)
	}
	b.WriteString("\n" + helpStyle.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

func (m Model) catalogView() string {
	if m.loading {
		return mutedStyle.Render("    loading attractions...") + "\n"
	}
	entries := m.catalog.Entries(m.draft)
	if len(entries) == 0 {
		if m.catalog.Loaded() {
			return mutedStyle.Render("    no attractions available") + "\n"
		}
		return mutedStyle.Render("    tab here to load attractions") + "\n"
	}
	var b strings.Builder
	for i, e := range entries {
		prefix := "    "
		if m.focus == focusCatalog && i == m.cursor {
			prefix = "  " + cursorStyle.Render("> ")
		}
		box := mutedStyle.Render(boxUnchecked)
		name := e.Item.Name
		if e.Selected {
			box = selectedStyle.Render(boxChecked)
			name = selectedStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", prefix, box, name, labelStyle.Render(FormatCost(m.lang, e.Item.Cost)))
	}
	return b.String()
}

// Run drives m until the user saves or quits and returns the final model.
func Run(m Model, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, err
	}
	fm, ok := final.(Model)
	if !ok {
		return m, fmt.Errorf("unexpected model %T", final)
	}
	return fm, nil
}
