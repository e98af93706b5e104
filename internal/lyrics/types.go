package lyrics

// TimedWord is a single sung token reported by the alignment service.
type TimedWord struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// AlignedLine is one lyric line bounded in time.
//
// Words is reserved; Align leaves it empty and callers must not depend on it
// being populated.
type AlignedLine struct {
	Text  string      `json:"text"`
	Start float64     `json:"start"`
	End   float64     `json:"end"`
	Words []TimedWord `json:"words"`
}

// AnchorKind records how a line's start time was found.
type AnchorKind string

const (
	// AnchorConfirmed means the first token matched and the following word
	// matched the second token.
	AnchorConfirmed AnchorKind = "confirmed"
	// AnchorFirstToken means the first token matched without second-token
	// confirmation (single-token line, last word, or a mismatching follower).
	AnchorFirstToken AnchorKind = "first_token"
	// AnchorFallback means only the second token was found.
	AnchorFallback AnchorKind = "fallback"
)

// Report summarizes one alignment pass.
type Report struct {
	// SourceLines counts non-blank lines in the lyric text, markers included.
	SourceLines int `json:"source_lines"`
	Markers     int `json:"markers"`
	Confirmed   int `json:"confirmed"`
	FirstToken  int `json:"first_token"`
	Fallback    int `json:"fallback"`
	// Dropped lists lines that had tokens but could not be anchored.
	Dropped []string `json:"dropped,omitempty"`
	// Anchors holds the anchor kind for each emitted line, in output order.
	Anchors []AnchorKind `json:"anchors,omitempty"`
}

// Aligned returns the number of emitted lines.
func (r Report) Aligned() int {
	return r.Confirmed + r.FirstToken + r.Fallback
}
