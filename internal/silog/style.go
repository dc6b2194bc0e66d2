package silog

import "github.com/charmbracelet/lipgloss"

// Style defines the colors and labels used by the default log handler.
//
// Values holds per-attribute-key overrides for how an attribute's value
// is rendered; attributes not present in the map use the handler's
// default rendering for their value.
type Style struct {
	// LevelLabels holds the short label rendered for each log level,
	// e.g. "INF" for [LevelInfo].
	LevelLabels ByLevel[lipgloss.Style]

	// Messages holds the style applied to the log message itself,
	// per level.
	Messages ByLevel[lipgloss.Style]

	// PrefixDelimiter separates a logger's WithPrefix prefix
	// from the rest of the message.
	PrefixDelimiter lipgloss.Style

	// Key is the style applied to attribute keys.
	Key lipgloss.Style

	// KeyValueDelimiter separates an attribute's key from its value.
	KeyValueDelimiter lipgloss.Style

	// MultilinePrefix is rendered before each line of a multi-line
	// attribute value.
	MultilinePrefix lipgloss.Style

	// Values holds per-key style overrides for attribute values.
	Values map[string]lipgloss.Style
}

// PlainStyle returns a [Style] that renders without color,
// suitable for non-terminal output.
func PlainStyle() *Style {
	return &Style{
		LevelLabels: ByLevel[lipgloss.Style]{
			Trace: lipgloss.NewStyle().SetString("TRC"),
			Debug: lipgloss.NewStyle().SetString("DBG"),
			Info:  lipgloss.NewStyle().SetString("INF"),
			Warn:  lipgloss.NewStyle().SetString("WRN"),
			Error: lipgloss.NewStyle().SetString("ERR"),
			Fatal: lipgloss.NewStyle().SetString("FTL"),
		},
		Messages: ByLevel[lipgloss.Style]{
			Trace: lipgloss.NewStyle(),
			Debug: lipgloss.NewStyle(),
			Info:  lipgloss.NewStyle(),
			Warn:  lipgloss.NewStyle(),
			Error: lipgloss.NewStyle(),
			Fatal: lipgloss.NewStyle(),
		},
		PrefixDelimiter:   lipgloss.NewStyle().SetString(": "),
		Key:               lipgloss.NewStyle(),
		KeyValueDelimiter: lipgloss.NewStyle().SetString("="),
		MultilinePrefix:   lipgloss.NewStyle().SetString(indent + "| "),
		Values:            make(map[string]lipgloss.Style),
	}
}

// Colors used by DefaultStyle, picked to stay legible on both
// light and dark terminal backgrounds.
var (
	_colorTrace = lipgloss.Color("243") // gray
	_colorDebug = lipgloss.Color("250") // light gray
	_colorInfo  = lipgloss.Color("35")  // green
	_colorWarn  = lipgloss.Color("214") // orange
	_colorError = lipgloss.Color("204") // red
	_colorFatal = lipgloss.Color("161") // magenta-red
	_colorKey   = lipgloss.Color("244") // dim gray
)

// DefaultStyle returns the [Style] used for terminal output:
// colored level labels, dim attribute keys, and a faint prefix for
// multi-line attribute values.
func DefaultStyle() *Style {
	bold := lipgloss.NewStyle().Bold(true)

	return &Style{
		LevelLabels: ByLevel[lipgloss.Style]{
			Trace: bold.Foreground(_colorTrace).SetString("TRC"),
			Debug: bold.Foreground(_colorDebug).SetString("DBG"),
			Info:  bold.Foreground(_colorInfo).SetString("INF"),
			Warn:  bold.Foreground(_colorWarn).SetString("WRN"),
			Error: bold.Foreground(_colorError).SetString("ERR"),
			Fatal: bold.Foreground(_colorFatal).SetString("FTL"),
		},
		Messages: ByLevel[lipgloss.Style]{
			Trace: lipgloss.NewStyle().Foreground(_colorTrace),
			Debug: lipgloss.NewStyle(),
			Info:  lipgloss.NewStyle(),
			Warn:  lipgloss.NewStyle(),
			Error: lipgloss.NewStyle(),
			Fatal: lipgloss.NewStyle().Foreground(_colorFatal),
		},
		PrefixDelimiter:   lipgloss.NewStyle().Foreground(_colorKey).SetString(": "),
		Key:               lipgloss.NewStyle().Foreground(_colorKey),
		KeyValueDelimiter: lipgloss.NewStyle().Foreground(_colorKey).SetString("="),
		MultilinePrefix:   lipgloss.NewStyle().Foreground(_colorKey).SetString(indent + "| "),
		Values:            make(map[string]lipgloss.Style),
	}
}
