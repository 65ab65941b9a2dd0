package quality

// Penalties are the fixed score deductions per issue type.
type Penalties struct {
	TextLength         float64 `yaml:"text_length" validate:"gte=0"`
	OptionLength       float64 `yaml:"option_length" validate:"gte=0"`
	SimilarDistractors float64 `yaml:"similar_distractors" validate:"gte=0"`
	LowPlausibility    float64 `yaml:"low_plausibility" validate:"gte=0"`
	AmbiguityMarker    float64 `yaml:"ambiguity_marker" validate:"gte=0"`
	MissingExplanation float64 `yaml:"missing_explanation" validate:"gte=0"`
}

// Config holds the validator's thresholds.
type Config struct {
	// AcceptThreshold is the minimum score of a passing draft.
	AcceptThreshold float64 `yaml:"accept_threshold" validate:"gte=0,lte=10"`

	MinTextRunes   int `yaml:"min_text_runes" validate:"gte=1"`
	MaxTextRunes   int `yaml:"max_text_runes" validate:"gtefield=MinTextRunes"`
	MinOptionRunes int `yaml:"min_option_runes" validate:"gte=1"`
	MaxOptionRunes int `yaml:"max_option_runes" validate:"gtefield=MinOptionRunes"`

	// SimilarityThreshold flags option pairs whose normalized edit
	// similarity reaches it.
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gt=0,lte=1"`

	// MinPlausibility is the lowest acceptable average length ratio of
	// distractors to the correct option.
	MinPlausibility float64 `yaml:"min_plausibility" validate:"gte=0,lte=1"`

	// Texts within the optimal band earn LengthBonus.
	OptimalMinRunes int     `yaml:"optimal_min_runes" validate:"gte=0"`
	OptimalMaxRunes int     `yaml:"optimal_max_runes" validate:"gtefield=OptimalMinRunes"`
	LengthBonus     float64 `yaml:"length_bonus" validate:"gte=0"`

	Penalties Penalties `yaml:"penalties"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:     5,
		MinTextRunes:        10,
		MaxTextRunes:        500,
		MinOptionRunes:      3,
		MaxOptionRunes:      200,
		SimilarityThreshold: 0.8,
		MinPlausibility:     0.35,
		OptimalMinRunes:     40,
		OptimalMaxRunes:     200,
		LengthBonus:         1,
		Penalties: Penalties{
			TextLength:         3,
			OptionLength:       1.5,
			SimilarDistractors: 2,
			LowPlausibility:    1,
			AmbiguityMarker:    2.5,
			MissingExplanation: 0.5,
		},
	}
}
