package battlescape

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Garsondee/Battlescape/internal/battlefield"
)

// Entry is one recorded event with the tick it happened on.
type Entry struct {
	Seq   int // position in the stream, from 0
	Tick  int
	Event Event
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] #3   unit_moved       (4,5,0) -> (5,5,0)
func (e Entry) String() string {
	label := "--"
	if id := e.Event.Subject(); id != battlefield.NoUnit {
		label = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("[T=%03d] %-4s %-17s %s", e.Tick, label, e.Event.Name(), e.Event.Detail())
}

// EventLog is the ordered, unbounded event stream of a battle.
type EventLog struct {
	entries []Entry
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Add records an event.
func (el *EventLog) Add(tick int, ev Event) {
	el.entries = append(el.entries, Entry{Seq: len(el.entries), Tick: tick, Event: ev})
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int { return len(el.entries) }

// Entries returns all recorded entries.
func (el *EventLog) Entries() []Entry {
	return el.entries
}

// Since returns the entries recorded at or after seq. Consumers poll with
// the length they last saw.
func (el *EventLog) Since(seq int) []Entry {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(el.entries) {
		return nil
	}
	return el.entries[seq:]
}

// Filter returns entries with the given event name. Pass "" to match all.
func (el *EventLog) Filter(name string) []Entry {
	var out []Entry
	for _, e := range el.entries {
		if name != "" && e.Event.Name() != name {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries about one unit.
func (el *EventLog) FilterUnit(id battlefield.UnitID) []Entry {
	var out []Entry
	for _, e := range el.entries {
		if e.Event.Subject() == id {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (el *EventLog) FilterTickRange(fromTick, toTick int) []Entry {
	var out []Entry
	for _, e := range el.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries carry the given event name.
func (el *EventLog) Count(name string) int {
	n := 0
	for _, e := range el.entries {
		if e.Event.Name() == name {
			n++
		}
	}
	return n
}

// LastOf returns the most recent entry with the given name, or false.
func (el *EventLog) LastOf(name string) (Entry, bool) {
	for i := len(el.entries) - 1; i >= 0; i-- {
		if el.entries[i].Event.Name() == name {
			return el.entries[i], true
		}
	}
	return Entry{}, false
}

// HasEntry reports whether an entry matches name and a detail substring.
func (el *EventLog) HasEntry(name, detailSubstr string) bool {
	for _, e := range el.entries {
		if name != "" && e.Event.Name() != name {
			continue
		}
		if detailSubstr != "" && !strings.Contains(e.Event.Detail(), detailSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log, one line per entry.
func (el *EventLog) Format() string {
	return formatEntries(el.entries)
}

// FormatRange returns the log filtered to a tick range.
func (el *EventLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(el.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Digest is a short hash of the formatted stream. Two runs of the same
// battle produce the same digest.
func (el *EventLog) Digest() string {
	sum := sha256.Sum256([]byte(el.Format()))
	return hex.EncodeToString(sum[:8])
}
