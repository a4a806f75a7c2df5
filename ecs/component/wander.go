package component

import "math/rand"

// Wander sends an idle agent to a random cell after IdleFrames ticks.
type Wander struct {
	IdleFrames int
	Counter    int
	Rand       *rand.Rand
}

var WanderComponent = NewComponent[Wander]()
