package viewer

// Command is a typed view-state transition produced by an input adapter.
// The string/"none" coercion of raw UI events lives in the adapter, never
// here.
type Command interface {
	isCommand()
}

// SwitchAttribute recolors the cloud by the named attribute's color variant.
type SwitchAttribute struct {
	Name string
}

// ClearAttribute selects "None": all points white, highlight disabled.
type ClearAttribute struct{}

// SetHighlight keeps one category's true colors and dims the rest.
type SetHighlight struct {
	Category int
}

// ClearHighlight restores every point from the original colors.
type ClearHighlight struct{}

// ResetDefaults returns to the dataset's post-load view.
type ResetDefaults struct{}

func (SwitchAttribute) isCommand() {}
func (ClearAttribute) isCommand()  {}
func (SetHighlight) isCommand()    {}
func (ClearHighlight) isCommand()  {}
func (ResetDefaults) isCommand()   {}
