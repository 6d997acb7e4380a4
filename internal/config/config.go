package config

import "fmt"

type Config struct {
	Gemini       GeminiConfig       `yaml:"gemini"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Agents       AgentsConfig       `yaml:"agents"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Paths        PathsConfig        `yaml:"paths"`
	Output       OutputConfig       `yaml:"output"`
	History      HistoryConfig      `yaml:"history"`
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Performance  PerformanceConfig  `yaml:"performance"`
}

type GeminiConfig struct {
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
}

type SegmentationConfig struct {
	Mode              string  `yaml:"mode"` // auto, programmatic or intelligent
	AIThresholdWords  int     `yaml:"ai_threshold_words"`
	TargetWords       int     `yaml:"target_words"`
	MinWords          int     `yaml:"min_words"`
	MaxWords          int     `yaml:"max_words"`
	BoundaryWindow    int     `yaml:"boundary_window"`
	ConvMinWords      int     `yaml:"conversation_min_words"`
	ConvMaxWords      int     `yaml:"conversation_max_words"`
	MeetingConfidence float64 `yaml:"meeting_confidence"`
}

type AgentsConfig struct {
	// Delays and timeouts are in seconds.
	DelayBetweenRequests int `yaml:"delay_between_requests"`
	RequestsPerMinute    int `yaml:"requests_per_minute"`
	RequestTimeout       int `yaml:"request_timeout"`
	MaxRetries           int `yaml:"max_retries"`
	RetryBaseDelay       int `yaml:"retry_base_delay"`
	QuestionsPerSegment  int `yaml:"questions_per_segment"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // empty disables embeddings
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type OutputConfig struct {
	Format string `yaml:"format"` // markdown, docx or both
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

func (c *Config) Validate() error {
	switch c.Segmentation.Mode {
	case "", "auto", "programmatic", "intelligent":
	default:
		return fmt.Errorf("segmentation.mode must be auto, programmatic or intelligent, got %q", c.Segmentation.Mode)
	}
	switch c.Output.Format {
	case "", "markdown", "docx", "both":
	default:
		return fmt.Errorf("output.format must be markdown, docx or both, got %q", c.Output.Format)
	}
	if c.Agents.DelayBetweenRequests < 0 || c.Agents.DelayBetweenRequests > 300 {
		return fmt.Errorf("agents.delay_between_requests must be between 0 and 300 seconds, got %d", c.Agents.DelayBetweenRequests)
	}
	if c.Agents.RequestsPerMinute != 0 && (c.Agents.RequestsPerMinute < 1 || c.Agents.RequestsPerMinute > 60) {
		return fmt.Errorf("agents.requests_per_minute must be between 1 and 60, got %d", c.Agents.RequestsPerMinute)
	}
	if c.Agents.MaxRetries < 0 {
		return fmt.Errorf("agents.max_retries must not be negative, got %d", c.Agents.MaxRetries)
	}
	if c.Segmentation.MinWords != 0 && c.Segmentation.MaxWords != 0 && c.Segmentation.MinWords >= c.Segmentation.MaxWords {
		return fmt.Errorf("segmentation.min_words (%d) must be below segmentation.max_words (%d)", c.Segmentation.MinWords, c.Segmentation.MaxWords)
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Segmentation.Mode == "" {
		c.Segmentation.Mode = "auto"
	}
	if c.Segmentation.AIThresholdWords == 0 {
		c.Segmentation.AIThresholdWords = 3000
	}
	if c.Segmentation.TargetWords == 0 {
		c.Segmentation.TargetWords = 2500
	}
	if c.Segmentation.MinWords == 0 {
		c.Segmentation.MinWords = 1000
	}
	if c.Segmentation.MaxWords == 0 {
		c.Segmentation.MaxWords = 4000
	}
	if c.Segmentation.BoundaryWindow == 0 {
		c.Segmentation.BoundaryWindow = 100
	}
	if c.Segmentation.ConvMinWords == 0 {
		c.Segmentation.ConvMinWords = 300
	}
	if c.Segmentation.ConvMaxWords == 0 {
		c.Segmentation.ConvMaxWords = 1500
	}
	if c.Segmentation.MeetingConfidence == 0 {
		c.Segmentation.MeetingConfidence = 0.6
	}
	if c.Agents.DelayBetweenRequests == 0 && c.Agents.RequestsPerMinute != 0 {
		c.Agents.DelayBetweenRequests = 60 / c.Agents.RequestsPerMinute
	}
	if c.Agents.RequestTimeout == 0 {
		c.Agents.RequestTimeout = 120
	}
	if c.Agents.MaxRetries == 0 {
		c.Agents.MaxRetries = 3
	}
	if c.Agents.RetryBaseDelay == 0 {
		c.Agents.RetryBaseDelay = 60
	}
	if c.Agents.QuestionsPerSegment == 0 {
		c.Agents.QuestionsPerSegment = 4
	}
	if c.Embedding.Provider != "" && c.Embedding.Model == "" {
		c.Embedding.Model = "nomic-embed-text"
	}
	if c.Embedding.Provider == "ollama" && c.Embedding.URL == "" {
		c.Embedding.URL = "http://localhost:11434"
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Output.Format == "" {
		c.Output.Format = "markdown"
	}
	if c.History.Path == "" {
		c.History.Path = "data/history.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
