package language

// Config holds LLM settings for material generation and grading.
type Config struct {
	Exercises        int
	Questions        int
	GenMaxTokens     int
	GenTemperature   float64
	GradeMaxTokens   int
	GradeTemperature float64

	ParagraphMaxTokens    int
	ArticleMaxTokens      int
	QuestionsMaxTokens    int
	SummaryGradeMaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Exercises:        BatterySize,
		Questions:        BatterySize,
		GenMaxTokens:     4096,
		GenTemperature:   0.8,
		GradeMaxTokens:   4096,
		GradeTemperature: 0.0,

		ParagraphMaxTokens:    512,
		ArticleMaxTokens:      1024,
		QuestionsMaxTokens:    2048,
		SummaryGradeMaxTokens: 1536,
	}
}
