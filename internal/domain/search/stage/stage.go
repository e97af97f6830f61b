package stage

// Stage is one step of the cascading search pipeline.
type Stage string

// Pipeline stages in execution order. Empty is terminal.
const (
	// Phrase matches the whole normalized input as a single term.
	Phrase Stage = "phrase"
	// WordSplit matches every whitespace/zero-width-space separated word.
	WordSplit Stage = "word_split"
	// Segmented matches every token produced by automatic segmentation.
	Segmented Stage = "segmented"
	// Empty means no stage matched.
	Empty Stage = "empty"
)

// First returns the entry stage of the pipeline.
func First() Stage { return Phrase }

// Next returns the stage to try when s yields zero matches.
func (s Stage) Next() Stage {
	switch s {
	case Phrase:
		return WordSplit
	case WordSplit:
		return Segmented
	default:
		return Empty
	}
}

// IsTerminal reports whether the pipeline stops at s.
func (s Stage) IsTerminal() bool { return s == Empty }

// IsValid checks if the stage is one of the supported values.
func (s Stage) IsValid() bool {
	return s == Phrase || s == WordSplit || s == Segmented || s == Empty
}

func (s Stage) String() string { return string(s) }
