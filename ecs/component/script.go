package component

// Script attaches a tengo behavior script to an agent.
type Script struct {
	Path string
	// Version is bumped to force a reload, e.g. after the file changed.
	Version int
	// Current is the script state name, empty until the first tick.
	Current string
}

var ScriptComponent = NewComponent[Script]()
