package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// logHook forwards error records to the monitor so failures show in the
// status bar while the log stream is hidden behind the TUI.
type logHook struct {
	program *tea.Program
}

func (h *logHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *logHook) Fire(e *logrus.Entry) error {
	msg := StackErrorMsg{Message: e.Message}
	if err, ok := e.Data[logrus.ErrorKey].(error); ok {
		msg.Err = err
	}
	// Send blocks until the program runs; never block the logger.
	go h.program.Send(msg)
	return nil
}
