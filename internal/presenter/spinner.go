package presenter

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Spinner shows progress for one step and is resolved exactly once.
type Spinner interface {
	Succeed(msg string)
	Fail(msg string)
}

// noopSpinner is used in quiet mode.
type noopSpinner struct{}

func (noopSpinner) Succeed(string) {}
func (noopSpinner) Fail(string)    {}

// lineSpinner prints the step and its outcome without animation. Used when
// the progress stream is not a terminal.
type lineSpinner struct {
	w    io.Writer
	st   styles
	once sync.Once
}

func newLineSpinner(w io.Writer, st styles, msg string) *lineSpinner {
	fmt.Fprintln(w, st.spinner.Render("-")+" "+msg)
	return &lineSpinner{w: w, st: st}
}

func (s *lineSpinner) Succeed(msg string) {
	s.once.Do(func() { fmt.Fprintln(s.w, s.st.success.Render("✔")+" "+msg) })
}

func (s *lineSpinner) Fail(msg string) {
	s.once.Do(func() { fmt.Fprintln(s.w, s.st.failure.Render("✖")+" "+msg) })
}

// stopMsg ends the spinner program.
type stopMsg struct{}

type spinnerModel struct {
	spin     spinner.Model
	text     string
	stopping bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopMsg:
		m.stopping = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.stopping {
		return ""
	}
	return m.spin.View() + " " + m.text
}

// teaSpinner animates a bubbles spinner on the progress stream. The program
// never reads stdin and leaves signal handling to the caller.
type teaSpinner struct {
	w       io.Writer
	st      styles
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

func newTeaSpinner(w io.Writer, st styles, msg string) *teaSpinner {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.spinner

	s := &teaSpinner{
		w:  w,
		st: st,
		program: tea.NewProgram(
			spinnerModel{spin: sp, text: msg},
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_, _ = s.program.Run()
	}()
	return s
}

func (s *teaSpinner) stop() {
	s.program.Send(stopMsg{})
	<-s.done
}

func (s *teaSpinner) Succeed(msg string) {
	s.once.Do(func() {
		s.stop()
		fmt.Fprintln(s.w, s.st.success.Render("✔")+" "+msg)
	})
}

func (s *teaSpinner) Fail(msg string) {
	s.once.Do(func() {
		s.stop()
		fmt.Fprintln(s.w, s.st.failure.Render("✖")+" "+msg)
	})
}
