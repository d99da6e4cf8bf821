package swingsim

import "time"

// Config holds configuration for a load run against the service.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumSwings    int           // Number of swings to generate
	Frames       int           // Observations per swing
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between result polls
	WaitTimeout  time.Duration // Upper bound on waiting for results
	Seed         int64         // Noise seed; swings are reproducible per seed
	OutputFile   string        // Output file for generated swings
	Verbose      bool          // Enable verbose logging
}

// Swing is one generated submission and its expected outcome.
type Swing struct {
	Request AnalysisRequest `json:"request"`
	Profile string          `json:"profile"`
}

// Stats holds run statistics.
type Stats struct {
	SwingsGenerated  int
	SwingsSubmitted  int
	SwingsAccepted   int
	SwingsDuplicate  int
	SwingsRejected   int
	SwingsFailed     int
	ResultsCompleted int
	ResultsFailed    int
	ResultsPending   int
	LabelMatches     int
	LabelMismatches  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
