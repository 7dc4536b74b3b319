package entity

type Strategy string

const (
	StrategyNone     Strategy = "None"
	StrategyBrowser  Strategy = "Stealth Browser"
	StrategyHeadless Strategy = "Headless Fallback"
)

func (s Strategy) String() string {
	return string(s)
}

type ResearchOutcome string

const (
	OutcomeAnswered        ResearchOutcome = "answered"
	OutcomeBlocked         ResearchOutcome = "blocked"
	OutcomeNoContent       ResearchOutcome = "no_content"
	OutcomeSynthesisFailed ResearchOutcome = "synthesis_failed"
)

// ResearchReport is the per-query state of one research run.
type ResearchReport struct {
	Query            string
	SearchURL        string
	Strategy         Strategy
	BrowserAttempts  int
	HeadlessAttempts int
	TabID            TabID
	TabClosed        bool
	Content          string
	Answer           string
	Outcome          ResearchOutcome
}

// FetchedPage is the raw response of a headless fetch.
type FetchedPage struct {
	URL        string
	StatusCode int
	Body       string
}
