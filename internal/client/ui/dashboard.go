// Package ui is the interactive terminal dashboard for taskctl.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"task-manager/backend/internal/apperror"
	"task-manager/backend/internal/client/tasklist"
	"task-manager/backend/internal/task/domain"
)

// TaskList is the controller the dashboard drives.
type TaskList interface {
	State() tasklist.State
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, in domain.CreateInput) (*domain.Task, error)
	Update(ctx context.Context, id string, in domain.UpdateInput) (*domain.Task, error)
	ToggleStatus(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type mode int

const (
	modeList mode = iota
	modeDetail
	modeCreate
	modeEdit
	modeConfirmDelete
	modeConfirmLogout
)

// Task form fields, in tab order. The form is shared by create and edit.
const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldPriority
	fieldCount
)

// doneMsg reports the outcome of a controller call.
type doneMsg struct {
	err    error
	notice string
}

type loggedOutMsg struct{ err error }

// detailMsg carries the task fetched for the detail view.
type detailMsg struct {
	task *domain.Task
	err  error
}

// MsgSessionExpired is shown when the server rejects the stored token.
const MsgSessionExpired = "Session expired, run taskctl login"

// Dashboard is the bubbletea model for the task list.
type Dashboard struct {
	ctx    context.Context
	tasks  TaskList
	name   string
	logout func(ctx context.Context) error

	styles  styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	form    []textinput.Model
	focus   int

	mode    mode
	detail  *domain.Task
	editing *domain.Task
	cursor  int
	busy   bool
	notice string
	err    error
	width  int

	// LoggedOut is set when the user confirmed logout.
	LoggedOut bool
	// SessionExpired is set when a call failed authentication and the local session was cleared.
	SessionExpired bool
}

// NewDashboard returns a dashboard for userName. logout is called when the user confirms logout.
func NewDashboard(ctx context.Context, tasks TaskList, userName string, logout func(ctx context.Context) error) *Dashboard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	form := make([]textinput.Model, fieldCount)
	placeholders := [fieldCount]string{"Title", "Description", "Due date (YYYY-MM-DD)", "Priority (high/medium/low)"}
	for i := range form {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		form[i] = ti
	}
	form[fieldDueDate].CharLimit = 10

	return &Dashboard{
		ctx:     ctx,
		tasks:   tasks,
		name:    FirstName(userName),
		logout:  logout,
		styles:  newStyles(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		form:    form,
	}
}

// FirstName returns the first word of name, or "User" when it is blank.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "User"
	}
	return fields[0]
}

func (d *Dashboard) Init() tea.Cmd {
	d.busy = true
	return tea.Batch(d.spinner.Tick, d.run(func(ctx context.Context) error { return d.tasks.Load(ctx) }, ""))
}

// run executes call off the update loop and reports back with a doneMsg.
func (d *Dashboard) run(call func(ctx context.Context) error, notice string) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: call(d.ctx), notice: notice}
	}
}

func (d *Dashboard) selected() *domain.Task {
	tasks := d.tasks.State().Tasks
	if d.cursor < 0 || d.cursor >= len(tasks) {
		return nil
	}
	return tasks[d.cursor]
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.help.Width = msg.Width
		return d, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case doneMsg:
		d.busy = false
		if apperror.Is(msg.err, apperror.KindAuth) {
			return d, d.expire()
		}
		d.err = msg.err
		if msg.err == nil {
			d.notice = msg.notice
		} else {
			d.notice = ""
		}
		if n := len(d.tasks.State().Tasks); d.cursor >= n {
			d.cursor = max(n-1, 0)
		}
		return d, nil

	case detailMsg:
		d.busy = false
		if apperror.Is(msg.err, apperror.KindAuth) {
			return d, d.expire()
		}
		if d.mode != modeDetail {
			return d, nil
		}
		if msg.err != nil {
			d.err = msg.err
			d.mode = modeList
			return d, nil
		}
		d.detail = msg.task
		return d, nil

	case loggedOutMsg:
		d.err = msg.err
		d.LoggedOut = msg.err == nil
		if d.LoggedOut {
			return d, tea.Quit
		}
		return d, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return d, tea.Quit
		}
		switch d.mode {
		case modeCreate, modeEdit:
			return d.updateForm(msg)
		case modeConfirmDelete:
			return d.updateConfirmDelete(msg)
		case modeConfirmLogout:
			return d.updateConfirmLogout(msg)
		case modeDetail:
			switch {
			case key.Matches(msg, d.keys.Back, d.keys.Open) || msg.String() == "q":
				d.mode = modeList
				d.detail = nil
			case key.Matches(msg, d.keys.Edit) && d.detail != nil:
				return d, d.openForm(modeEdit, d.detail)
			}
			return d, nil
		}
		return d.updateList(msg)
	}
	return d, nil
}

func (d *Dashboard) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if d.busy && !key.Matches(msg, d.keys.Quit) {
		return d, nil
	}
	n := len(d.tasks.State().Tasks)
	switch {
	case key.Matches(msg, d.keys.Quit):
		return d, tea.Quit
	case msg.String() == "L":
		d.mode = modeConfirmLogout
	case key.Matches(msg, d.keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(msg, d.keys.Down):
		if d.cursor < n-1 {
			d.cursor++
		}
	case key.Matches(msg, d.keys.Next):
		d.cursor = 0
		return d, d.start(func(ctx context.Context) error { return d.tasks.Next(ctx) }, "")
	case key.Matches(msg, d.keys.Prev):
		d.cursor = 0
		return d, d.start(func(ctx context.Context) error { return d.tasks.Prev(ctx) }, "")
	case key.Matches(msg, d.keys.Refresh):
		return d, d.start(func(ctx context.Context) error { return d.tasks.Refresh(ctx) }, "")
	case key.Matches(msg, d.keys.Open):
		if t := d.selected(); t != nil {
			d.mode = modeDetail
			d.detail = nil
			d.notice = ""
			return d, d.fetchDetail(t.ID)
		}
	case key.Matches(msg, d.keys.Edit):
		if t := d.selected(); t != nil {
			return d, d.openForm(modeEdit, t)
		}
	case key.Matches(msg, d.keys.Toggle):
		if t := d.selected(); t != nil {
			return d, d.start(func(ctx context.Context) error {
				_, err := d.tasks.ToggleStatus(ctx, t)
				return err
			}, "Task updated")
		}
	case key.Matches(msg, d.keys.Delete):
		if d.selected() != nil {
			d.mode = modeConfirmDelete
		}
	case key.Matches(msg, d.keys.Create):
		return d, d.openForm(modeCreate, nil)
	}
	return d, nil
}

// openForm switches to m with the form cleared, or filled from t when editing.
func (d *Dashboard) openForm(m mode, t *domain.Task) tea.Cmd {
	d.mode = m
	d.editing = t
	d.err = nil
	d.notice = ""
	d.focus = fieldTitle
	for i := range d.form {
		d.form[i].Reset()
		d.form[i].Blur()
	}
	if t != nil {
		d.form[fieldTitle].SetValue(t.Title)
		d.form[fieldDescription].SetValue(t.Description)
		d.form[fieldDueDate].SetValue(t.DueDate.String())
		d.form[fieldPriority].SetValue(string(t.Priority))
		for i := range d.form {
			d.form[i].CursorEnd()
		}
	}
	return d.form[fieldTitle].Focus()
}

func (d *Dashboard) fetchDetail(id string) tea.Cmd {
	d.busy = true
	d.err = nil
	return tea.Batch(d.spinner.Tick, func() tea.Msg {
		task, err := d.tasks.Get(d.ctx, id)
		return detailMsg{task: task, err: err}
	})
}

// expire clears the local session and quits.
func (d *Dashboard) expire() tea.Cmd {
	d.SessionExpired = true
	d.err = apperror.Auth(MsgSessionExpired)
	return func() tea.Msg {
		if d.logout != nil {
			_ = d.logout(d.ctx)
		}
		return tea.Quit()
	}
}

func (d *Dashboard) start(call func(ctx context.Context) error, notice string) tea.Cmd {
	d.busy = true
	d.err = nil
	return tea.Batch(d.spinner.Tick, d.run(call, notice))
}

func (d *Dashboard) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d.mode = modeList
	t := d.selected()
	if t == nil || (msg.String() != "y" && msg.String() != "Y") {
		return d, nil
	}
	return d, d.start(func(ctx context.Context) error { return d.tasks.Delete(ctx, t.ID) }, "Task deleted")
}

func (d *Dashboard) updateConfirmLogout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d.mode = modeList
	if msg.String() != "y" && msg.String() != "Y" {
		return d, nil
	}
	if d.logout == nil {
		d.LoggedOut = true
		return d, tea.Quit
	}
	return d, func() tea.Msg { return loggedOutMsg{err: d.logout(d.ctx)} }
}

func (d *Dashboard) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		d.mode = modeList
		d.editing = nil
		d.err = nil
		return d, nil
	case "tab", "down":
		return d, d.focusField((d.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return d, d.focusField((d.focus + fieldCount - 1) % fieldCount)
	case "enter":
		if d.focus < fieldCount-1 {
			return d, d.focusField(d.focus + 1)
		}
		return d.submitForm()
	}
	var cmd tea.Cmd
	d.form[d.focus], cmd = d.form[d.focus].Update(msg)
	return d, cmd
}

func (d *Dashboard) focusField(i int) tea.Cmd {
	d.form[d.focus].Blur()
	d.focus = i
	return d.form[i].Focus()
}

func (d *Dashboard) submitForm() (tea.Model, tea.Cmd) {
	in := d.formInput()
	check := in
	if _, err := check.Normalize(); err != nil {
		d.err = err
		return d, nil
	}
	editing := d.editing
	d.mode = modeList
	d.editing = nil
	d.detail = nil
	if editing == nil {
		return d, d.start(func(ctx context.Context) error {
			_, err := d.tasks.Create(ctx, in)
			return err
		}, "Task created")
	}
	return d, d.start(func(ctx context.Context) error {
		_, err := d.tasks.Update(ctx, editing.ID, fullUpdate(check))
		return err
	}, "Task updated")
}

// fullUpdate turns a normalized form into an update that sets every editable field.
func fullUpdate(in domain.CreateInput) domain.UpdateInput {
	return domain.UpdateInput{
		Title:       &in.Title,
		Description: &in.Description,
		DueDate:     &in.DueDate,
		Priority:    &in.Priority,
	}
}

func (d *Dashboard) formInput() domain.CreateInput {
	return domain.CreateInput{
		Title:       d.form[fieldTitle].Value(),
		Description: d.form[fieldDescription].Value(),
		DueDate:     d.form[fieldDueDate].Value(),
		Priority:    domain.Priority(strings.ToLower(strings.TrimSpace(d.form[fieldPriority].Value()))),
	}
}

func (d *Dashboard) View() string {
	var b strings.Builder
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		d.styles.title.Render("Task Manager"),
		"   ",
		d.styles.dim.Render("Hi, "+d.name),
	)
	b.WriteString(header + "\n")

	switch d.mode {
	case modeCreate, modeEdit:
		b.WriteString(d.viewForm())
	case modeDetail:
		b.WriteString(d.viewDetail())
	default:
		b.WriteString(d.viewList())
	}

	b.WriteString("\n")
	switch {
	case d.err != nil:
		b.WriteString(d.styles.err.Render(apperror.Message(d.err, "Something went wrong")) + "\n")
	case d.notice != "":
		b.WriteString(d.styles.dim.Render(d.notice) + "\n")
	}
	switch d.mode {
	case modeConfirmDelete:
		if t := d.selected(); t != nil {
			b.WriteString(d.styles.err.Render(fmt.Sprintf("Delete %q? (y/N)", t.Title)) + "\n")
		}
	case modeConfirmLogout:
		b.WriteString(d.styles.err.Render("Are you sure you want to logout? (y/N)") + "\n")
	case modeList:
		b.WriteString(d.help.View(d.keys) + d.styles.dim.Render(" • L logout") + "\n")
	}
	return b.String()
}

func (d *Dashboard) viewList() string {
	s := d.tasks.State()
	if d.busy {
		return d.spinner.View() + " Loading tasks...\n"
	}
	if len(s.Tasks) == 0 {
		return d.styles.dim.Render("No tasks available") + "\n"
	}
	var b strings.Builder
	for i, t := range s.Tasks {
		check := "[ ]"
		title := d.styles.pending.Render(t.Title)
		if t.Status == domain.StatusCompleted {
			check = "[x]"
			title = d.styles.completed.Render(t.Title)
		}
		line := fmt.Sprintf("%s %s  %s  %s", check, title,
			priorityStyle(string(t.Priority)).Render(string(t.Priority)),
			d.styles.dim.Render("due "+t.DueDate.String()))
		if i == d.cursor {
			line = d.styles.selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if s.TotalPages > 1 {
		b.WriteString("\n" + d.styles.dim.Render(fmt.Sprintf("Page %d of %d (%d tasks)", s.Page, s.TotalPages, s.Total)) + "\n")
	}
	return b.String()
}

func (d *Dashboard) viewDetail() string {
	t := d.detail
	if t == nil {
		if d.busy {
			return d.spinner.View() + " Loading task...\n"
		}
		return ""
	}
	row := func(label, value string) string {
		return d.styles.label.Render(label) + value + "\n"
	}
	body := row("Title", t.Title) +
		row("Description", t.Description) +
		row("Due", t.DueDate.String()) +
		row("Priority", priorityStyle(string(t.Priority)).Render(string(t.Priority))) +
		row("Status", string(t.Status)) +
		row("Created", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	return d.styles.box.Render(strings.TrimRight(body, "\n")) + "\n" + d.styles.dim.Render("e to edit • esc to go back") + "\n"
}

func (d *Dashboard) viewForm() string {
	var b strings.Builder
	heading := "New task"
	if d.mode == modeEdit {
		heading = "Edit task"
	}
	b.WriteString(d.styles.dim.Render(heading) + "\n")
	for i := range d.form {
		b.WriteString(d.form[i].View() + "\n")
	}
	b.WriteString(d.styles.dim.Render("tab next field • enter on last field to save • esc cancel") + "\n")
	return b.String()
}
