package tables

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid table
	MinRows int

	// Minimum columns for a valid table
	MinCols int

	// Minimum confidence threshold (0-1)
	MinConfidence float64

	// Tolerance for considering rules aligned (points)
	AlignmentTolerance float64

	// Minimum rule length to consider (points)
	MinLineLength float64

	// Maximum thickness of a filled rectangle that still reads as a rule (points)
	MaxRuleThickness float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.5,
		AlignmentTolerance: 3.0,
		MinLineLength:      10.0,
		MaxRuleThickness:   3.0,
	}
}
