package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"
	"github.com/verte-zerg/tickup/internal/scheduler"
)

// Run shows p full screen until the user quits. Log output is diverted
// to logOut while the program owns the terminal.
func Run(cfg model.Config, p *page.Page, load Loader, logOut io.Writer) error {
	loop := scheduler.NewLoop()
	defer loop.Close()

	prevOut := logrus.StandardLogger().Out
	if logOut == nil {
		logOut = io.Discard
	}
	logrus.SetOutput(logOut)
	defer logrus.SetOutput(prevOut)

	m := NewModel(cfg, p, load, loop, logrus.StandardLogger())
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := prog.Run()
	m.stop()
	return err
}
