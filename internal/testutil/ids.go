package testutil

// FixedIDGenerator returns the same run ID every time, so reports and
// history rows can be compared against golden files.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator returns a generator for id.
// If id is empty, Generate returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
