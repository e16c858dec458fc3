package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// TeamColor returns the display colour for a team name.
// Unknown teams render in the default colour.
func TeamColor(team string) Color {
	switch team {
	case "blue":
		return ColorBrightBlue
	case "red":
		return ColorBrightRed
	case "green":
		return ColorBrightGreen
	case "yellow":
		return ColorBrightYellow
	case "purple":
		return ColorBrightMagenta
	case "orange":
		return ColorOrange
	default:
		return ColorDefault
	}
}
