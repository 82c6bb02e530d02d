package game

// History is the ordered log of resolved plays. It only ever grows by one
// entry per resolved play; the single exception is cancellation, where the
// cancelled joker's entry is rewritten in place as part of the same step
// (see ReplaceLastAndAppend).
//
// Both methods return a fresh slice and never touch the receiver's backing
// array, so states sharing a History stay independent.
type History []PlayLog

// Append returns a copy of h with entry added at the end.
func (h History) Append(entry PlayLog) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, entry)
}

// ReplaceLastAndAppend atomically rewrites the most recent entry with
// patched and appends entry. With an empty history it degrades to Append.
func (h History) ReplaceLastAndAppend(patched, entry PlayLog) History {
	if len(h) == 0 {
		return h.Append(entry)
	}
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	out[len(out)-1] = patched
	return append(out, entry)
}

// Last returns the most recent entry.
func (h History) Last() (PlayLog, bool) {
	if len(h) == 0 {
		return PlayLog{}, false
	}
	return h[len(h)-1], true
}

// Replay recomputes total and mode from the initial (0, UP) state by summing
// each entry's delta and following its recorded mode change.
func (h History) Replay() (total int, mode Mode) {
	mode = ModeUp
	for _, entry := range h {
		total += entry.Delta
		mode = entry.AfterMode
	}
	return total, mode
}
