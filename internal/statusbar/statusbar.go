// Package statusbar provides the status-item primitive the agent renders the
// connection indicator into. Items are created by a Factory with a fixed
// alignment and priority; everything else is mutable until Dispose.
package statusbar

// Alignment places an item at the left or right edge of the editor's
// status bar. It is fixed at creation — changing alignment requires a
// replacement item.
type Alignment int

const (
	Left Alignment = iota
	Right
)

func (a Alignment) String() string {
	if a == Right {
		return "Right"
	}
	return "Left"
}

// ParseAlignment maps the configuration literal to an Alignment.
// Anything other than "Right" resolves to Left.
func ParseAlignment(s string) Alignment {
	if s == "Right" {
		return Right
	}
	return Left
}

// DefaultPriority is used when a caller has no opinion about ordering
// relative to other status bar entries.
const DefaultPriority = 0

// Item is a single status bar entry. Alignment and priority are immutable;
// the remaining fields may be updated at any time before Dispose.
type Item interface {
	Alignment() Alignment
	Priority() int

	Text() string
	Tooltip() string
	Color() string
	Command() string
	Accessibility() string
	Visible() bool

	SetText(string)
	SetTooltip(string)
	SetColor(string)
	SetCommand(string)
	SetAccessibility(string)

	Show()
	Hide()

	// Dispose releases the item. Safe to call more than once; a disposed
	// item is detached from its host and never rendered again.
	Dispose()
}

// Factory creates status bar items. The production implementation is Host;
// tests substitute fakes.
type Factory interface {
	New(alignment Alignment, priority int) Item
}
