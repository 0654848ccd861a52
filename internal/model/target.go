package model

// TargetInfo is a single target query result. Never stored past the tick.
type TargetInfo struct {
	Ref      EntityID
	Position Vec
	Distance float64
	Faction  Faction
	Priority float64
	Score    float64
}

// Valid reports whether the info names a target.
func (t TargetInfo) Valid() bool {
	return t.Ref != NoEntity
}
