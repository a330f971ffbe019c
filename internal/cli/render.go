package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"taskboard/internal/colors"
	"taskboard/internal/format"
	"taskboard/internal/model"
	"taskboard/internal/store"
	"taskboard/internal/view"
)

const (
	columnWidth   = 34
	listNameWidth = 48
	markdownWrap  = 100
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleMuted  = lipgloss.NewStyle().Faint(true)
	styleUrgent = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e05252"))
	styleColumn = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(columnWidth)
)

// applyColorProfilePreference honours NO_COLOR and otherwise follows the
// terminal.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	if c := strings.ToLower(os.Getenv("COLORTERM")); (strings.Contains(c, "truecolor") || strings.Contains(c, "24bit")) && profile != termenv.Ascii {
		profile = termenv.TrueColor
	}
	lipgloss.SetColorProfile(profile)
}

// envelope is the output shape of every command: {"data": ...}. text, when
// set, is used for --format text.
type envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
	text func(w io.Writer) error
}

func (e envelope) RenderText(w io.Writer) error {
	if e.text == nil {
		return format.WriteJSON(w, e.Data, true)
	}
	return e.text(w)
}

func swatch(reg model.Registry, name string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Hex(reg.Color(name))))
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return xansi.Truncate(s, width, "…")
}

func pad(s string, width int) string {
	if n := xansi.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func statusLabel(t *model.Task) string {
	if t.IsClosed() {
		return string(t.Status)
	}
	return fmt.Sprintf("%s %d%%", t.Status, t.DisplayProgress())
}

func taskLine(b *store.Board, t *model.Task) string {
	name := truncate(t.Name, listNameWidth)
	if t.IsUrgent {
		name = styleUrgent.Render("! ") + name
	}
	assignee := t.AssigneeName()
	if assignee == "" {
		assignee = "unassigned"
	}
	return strings.Join([]string{
		styleMuted.Render(pad(t.ID, 14)),
		pad(statusLabel(t), 16),
		t.DueDate.String(),
		pad(name, listNameWidth+2),
		swatch(b.People, assignee).Render(assignee),
	}, "  ")
}

func renderTaskList(w io.Writer, b *store.Board, tasks []*model.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, styleMuted.Render("No tasks."))
		return err
	}
	for _, t := range tasks {
		if _, err := fmt.Fprintln(w, taskLine(b, t)); err != nil {
			return err
		}
	}
	return nil
}

func renderTask(w io.Writer, b *store.Board, t *model.Task) error {
	var sb strings.Builder
	title := t.Name
	if t.IsUrgent {
		title = styleUrgent.Render("URGENT ") + title
	}
	fmt.Fprintln(&sb, styleHeader.Render(title))
	fmt.Fprintf(&sb, "%s  %s\n", styleMuted.Render("id"), t.ID)
	fmt.Fprintf(&sb, "%s  %s\n", styleMuted.Render("status"), statusLabel(t))
	fmt.Fprintf(&sb, "%s  %s\n", styleMuted.Render("due"), t.DueDate)
	if a := t.AssigneeName(); a != "" {
		fmt.Fprintf(&sb, "%s  %s\n", styleMuted.Render("assignee"), swatch(b.People, a).Render(a))
	}
	fmt.Fprintf(&sb, "%s  %s\n", styleMuted.Render("category"), swatch(b.Categories, t.Category).Render(t.Category))
	if t.IsArchived {
		fmt.Fprintf(&sb, "%s\n", styleMuted.Render("archived"))
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(&sb, "\n%s\n", d)
	}
	if len(t.Links) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", styleHeader.Render("Links"))
		for i, l := range t.Links {
			fmt.Fprintf(&sb, "  [%d] %s %s\n", i, l.Name, styleMuted.Render(l.URL))
		}
	}
	if len(t.Subtasks) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", styleHeader.Render("Sub-tasks"))
		writeSubtasks(&sb, b, t.Subtasks, 1)
	}
	if lines := view.LogSummary(t); len(lines) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", styleHeader.Render("Log"))
		for _, l := range lines {
			who := ""
			if l.Assignee != nil {
				who = " " + swatch(b.People, *l.Assignee).Render(*l.Assignee)
			}
			fmt.Fprintf(&sb, "  %s%s  %s\n", styleMuted.Render(l.Timestamp.Local().Format("2006-01-02 15:04")), who, l.Message)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeSubtasks(sb *strings.Builder, b *store.Board, subs []*model.Task, depth int) {
	for _, s := range subs {
		mark := "[ ]"
		if s.IsClosed() {
			mark = "[x]"
		}
		fmt.Fprintf(sb, "%s%s %s  %s  %s  %s\n", strings.Repeat("  ", depth), mark, truncate(s.Name, listNameWidth), s.DueDate, swatch(b.People, s.AssigneeName()).Render(s.AssigneeName()), styleMuted.Render(s.ID))
		writeSubtasks(sb, b, s.Subtasks, depth+1)
	}
}

func card(b *store.Board, t *model.Task) string {
	name := truncate(t.Name, columnWidth-2)
	if t.IsUrgent {
		name = styleUrgent.Render(truncate("! "+t.Name, columnWidth-2))
	}
	lines := []string{
		name,
		swatch(b.Categories, t.Category).Render(truncate(t.Category, columnWidth-2)),
		fmt.Sprintf("%s  %d%%", t.DueDate, t.DisplayProgress()),
	}
	if a := t.AssigneeName(); a != "" {
		lines = append(lines, swatch(b.People, a).Render(truncate(a, columnWidth-2)))
	}
	if n := len(t.Subtasks); n > 0 {
		lines = append(lines, styleMuted.Render(fmt.Sprintf("%d sub-task(s)", n)))
	}
	return strings.Join(lines, "\n")
}

func renderColumns(w io.Writer, b *store.Board, cols []view.Column) error {
	rendered := make([]string, 0, len(cols))
	for _, c := range cols {
		parts := []string{styleHeader.Render(fmt.Sprintf("%s (%d)", c.Status, len(c.Tasks)))}
		for _, t := range c.Tasks {
			parts = append(parts, "", card(b, t))
		}
		rendered = append(rendered, styleColumn.Render(strings.Join(parts, "\n")))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	return err
}

func renderDue(w io.Writer, b *store.Board, title string, entries []view.DueEntry) error {
	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("%s (%d)", title, len(entries))))
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, styleMuted.Render("  Nothing due."))
		return err
	}
	for _, e := range entries {
		marker := "  "
		if e.HasDueSubtask && !e.SelfDue {
			marker = "↳ "
		}
		if _, err := fmt.Fprintln(w, marker+taskLine(b, e.Task)); err != nil {
			return err
		}
		for _, s := range e.DueSubtasks {
			if _, err := fmt.Fprintf(w, "      %s  %s  %s\n", styleMuted.Render("sub-task"), s.DueDate, truncate(s.Name, listNameWidth)); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderBoard(w io.Writer, b *store.Board, v view.BoardView) error {
	if err := renderColumns(w, b, v.Columns); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := renderDue(w, b, "Due today", v.Today); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return renderDue(w, b, "Due this week", v.Week)
}

func renderDashboard(w io.Writer, b *store.Board, v view.DashboardView) error {
	s := v.Stats
	stat := func(label string, n int) string {
		return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Render(fmt.Sprintf("%s\n%d", label, n))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Open", s.Open),
		stat("In Progress", s.InProgress),
		stat("Overdue", s.Overdue),
		stat("Due today", s.DueToday),
		stat("Due this week", s.DueThisWeek),
		stat("Closed", s.Closed),
	))
	fmt.Fprintln(w, styleHeader.Render("Urgent"))
	if err := renderTaskList(w, b, v.Urgent); err != nil {
		return err
	}
	fmt.Fprintln(w, styleHeader.Render("Upcoming"))
	return renderTaskList(w, b, v.Upcoming)
}

type registryEntry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	InUse int    `json:"inUse"`
}

func renderRegistry(w io.Writer, entries []registryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, styleMuted.Render("None registered."))
		return err
	}
	for _, e := range entries {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Hex(e.Color))).Render("●")
		if _, err := fmt.Fprintf(w, "%s %s  %s  %s\n", dot, pad(e.Name, 24), styleMuted.Render(e.Color), styleMuted.Render(fmt.Sprintf("%d task(s)", e.InUse))); err != nil {
			return err
		}
	}
	return nil
}

func renderEvents(w io.Writer, evs []store.Event) error {
	for _, e := range evs {
		if _, err := fmt.Fprintf(w, "%s  %s  %s\n", styleMuted.Render(e.TS.Local().Format("2006-01-02 15:04:05")), pad(e.Type, 18), e.EntityID); err != nil {
			return err
		}
	}
	return nil
}

var (
	mdRendererMu sync.Mutex
	mdRenderer   *glamour.TermRenderer
)

// renderMarkdown renders md for the terminal, returning md unchanged if
// glamour cannot.
func renderMarkdown(md string) string {
	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	if mdRenderer == nil {
		style := envOr("TASKBOARD_MD_STYLE", "dark")
		if lipgloss.ColorProfile() == termenv.Ascii {
			style = "notty"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(markdownWrap),
		)
		if err != nil {
			return md
		}
		mdRenderer = r
	}
	out, err := mdRenderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
