package testutil

// StaticRunID returns the same run ID on every call. Golden traces use it
// so every run of a scenario renders byte-identical output.
type StaticRunID struct {
	id string
}

// NewStaticRunID creates the generator. An empty id becomes "test-run".
func NewStaticRunID(id string) *StaticRunID {
	if id == "" {
		id = "test-run"
	}
	return &StaticRunID{id: id}
}

// Generate returns the fixed id.
func (g *StaticRunID) Generate() string {
	return g.id
}
