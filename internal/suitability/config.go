package suitability

// Weights controls how sub-scores combine into the overall score.
type Weights struct {
	Content    float64 `yaml:"content" validate:"gte=0"`
	Indicators float64 `yaml:"indicators" validate:"gte=0"`
	Structure  float64 `yaml:"structure" validate:"gte=0"`
	Vocabulary float64 `yaml:"vocabulary" validate:"gte=0"`
}

// Config holds every threshold and weight the assessor uses.
type Config struct {
	// MinScore and MinWords together decide Suitable.
	MinScore float64 `yaml:"min_score" validate:"gte=0,lte=10"`
	MinWords int     `yaml:"min_words" validate:"gte=0"`

	// Each keyword hit is worth PointsPerHit, capped per category.
	PointsPerHit      float64 `yaml:"points_per_hit" validate:"gt=0"`
	MaxCategoryPoints float64 `yaml:"max_category_points" validate:"gt=0"`

	// WordsPerContentPoint converts length into the 0-10 content score.
	WordsPerContentPoint float64 `yaml:"words_per_content_point" validate:"gt=0"`

	// Average sentence length (in words) that earns full structure credit.
	IdealSentenceMin float64 `yaml:"ideal_sentence_min" validate:"gt=0"`
	IdealSentenceMax float64 `yaml:"ideal_sentence_max" validate:"gtefield=IdealSentenceMin"`

	// MaxParagraphCV is the paragraph length coefficient of variation
	// still considered consistent.
	MaxParagraphCV float64 `yaml:"max_paragraph_cv" validate:"gt=0"`
	MinParagraphs  int     `yaml:"min_paragraphs" validate:"gte=1"`

	// LongWordRunes is the length at which a word counts as long.
	LongWordRunes int `yaml:"long_word_runes" validate:"gte=1"`
	// TargetRootTTR and TargetLongWordRatio earn full vocabulary credit.
	TargetRootTTR       float64 `yaml:"target_root_ttr" validate:"gt=0"`
	TargetLongWordRatio float64 `yaml:"target_long_word_ratio" validate:"gt=0"`

	Weights Weights `yaml:"weights"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinScore:             5,
		MinWords:             100,
		PointsPerHit:         0.5,
		MaxCategoryPoints:    2.5,
		WordsPerContentPoint: 100,
		IdealSentenceMin:     10,
		IdealSentenceMax:     25,
		MaxParagraphCV:       0.5,
		MinParagraphs:        3,
		LongWordRunes:        8,
		TargetRootTTR:        7,
		TargetLongWordRatio:  0.2,
		Weights: Weights{
			Content:    0.25,
			Indicators: 0.30,
			Structure:  0.25,
			Vocabulary: 0.20,
		},
	}
}
