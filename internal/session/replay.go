package session

// Kind names a transition.
type Kind int

const (
	KindSetText Kind = iota
	KindSetDuration
	KindStart
	KindInput
	KindBackspace
	KindTick
	KindComplete
	KindReset
)

// Event is a recorded transition request.
type Event struct {
	Kind      Kind
	Words     []string
	Seconds   int
	Char      rune
	Timestamp int64
}

// Apply routes ev to the matching transition method.
func Apply(s *Session, ev Event) bool {
	switch ev.Kind {
	case KindSetText:
		return s.SetText(ev.Words)
	case KindSetDuration:
		return s.SetDuration(ev.Seconds)
	case KindStart:
		return s.Start()
	case KindInput:
		return s.InputCharacter(ev.Char, ev.Timestamp)
	case KindBackspace:
		return s.Backspace()
	case KindTick:
		return s.Tick()
	case KindComplete:
		return s.Complete()
	case KindReset:
		return s.Reset()
	default:
		return false
	}
}

// Replay applies events in order and returns how many were accepted.
func Replay(s *Session, events []Event) int {
	accepted := 0
	for _, ev := range events {
		if Apply(s, ev) {
			accepted++
		}
	}
	return accepted
}

// Typed converts a string into input events spaced stepMs apart starting at startMs.
func Typed(text string, startMs, stepMs int64) []Event {
	var events []Event
	ts := startMs
	for _, r := range text {
		events = append(events, Event{Kind: KindInput, Char: r, Timestamp: ts})
		ts += stepMs
	}
	return events
}
