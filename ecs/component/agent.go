package component

// Agent names an entity that walks the grid.
type Agent struct {
	Name string
}

var AgentComponent = NewComponent[Agent]()

// Selected marks the agent that receives player commands.
type Selected struct{}

var SelectedComponent = NewComponent[Selected]()
