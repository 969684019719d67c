package terminal

// ConsoleFeedback routes downloader feedback through the themed terminal
// colors: info lines in the text color, per-item failures in the error color.
type ConsoleFeedback struct {
	theme *ThemeManager
}

// NewConsoleFeedback wraps a theme manager as a feedback channel.
func NewConsoleFeedback(theme *ThemeManager) *ConsoleFeedback {
	return &ConsoleFeedback{theme: theme}
}

func (f *ConsoleFeedback) Infof(format string, args ...interface{}) {
	f.theme.GetTextColor().Printf(format+"\n", args...)
}

func (f *ConsoleFeedback) Errorf(format string, args ...interface{}) {
	f.theme.GetErrorColor().Printf(format+"\n", args...)
}
