package component

// Name is the designer-facing name of an entity, unique per level.
type Name struct {
	Value string
}

// FlagTrigger marks a sensor volume that sets a level flag when a body enters.
type FlagTrigger struct {
	Level int
	Flag  int
}

// Door opens once its level flag is set.
type Door struct {
	Level int
	Flag  int
}

// Body marks entities that can enter sensor volumes.
type Body struct{}
