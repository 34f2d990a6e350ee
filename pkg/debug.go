package clustering

// CandidateRecord is one scored U-V pairing.
type CandidateRecord struct {
	Z          float64
	UEnergy    float64
	VEnergy    float64
	Time       float64
	TimeDiff   float64
	NLPosition float64
	NLEnergy   float64
	NLTime     float64
}

// MatchedRecord describes one pair of the selected configuration. Missing
// sides carry Unset.
type MatchedRecord struct {
	Z         float64
	UEnergy   float64
	VEnergy   float64
	Time      float64
	TimeDiff  float64
	Cost      int
	NLEnergy  float64
	NLTime    float64
	UCombined bool
	VCombined bool
}

// DebugData collects what the U-V matching looked at for one event.
type DebugData struct {
	EventNumber int
	Candidates  []CandidateRecord
	Matched     []MatchedRecord
}
