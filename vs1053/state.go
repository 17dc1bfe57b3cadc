package vs1053

// State is the playback state of the decoder.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	Deactivated
	Loading
	Ready
	Playing
	PausedPlaying
	Seeking
	TestingTone
	TestingMemory
)

var stateNames = [...]string{
	Uninitialized: "uninitialized",
	Initialized:   "initialized",
	Deactivated:   "deactivated",
	Loading:       "loading",
	Ready:         "ready",
	Playing:       "playing",
	PausedPlaying: "paused",
	Seeking:       "seeking",
	TestingTone:   "testing tone",
	TestingMemory: "testing memory",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// hasStream reports whether a source is open in this state.
func (s State) hasStream() bool {
	return s == Playing || s == PausedPlaying || s == Seeking
}

// Status is the coarse answer of Player.IsPlaying.
type Status uint8

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusChipInReset
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusChipInReset:
		return "chip in reset"
	}
	return "unknown"
}

// FlushMode selects when the long end-fill run is pushed around a cancel.
// The names follow the shield firmware: FlushPost pads the stream out
// before cancel is requested, FlushPre only pads once cancel went through.
type FlushMode uint8

const (
	FlushPost FlushMode = iota
	FlushPre
	FlushBoth
	FlushNone
)

func (m FlushMode) fillFirst() bool { return m == FlushPost || m == FlushBoth }
func (m FlushMode) fillAfter() bool { return m == FlushPre || m == FlushBoth }

func (m FlushMode) String() string {
	switch m {
	case FlushPost:
		return "post"
	case FlushPre:
		return "pre"
	case FlushBoth:
		return "both"
	case FlushNone:
		return "none"
	}
	return "unknown"
}
