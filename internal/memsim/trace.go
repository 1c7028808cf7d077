package memsim

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/sarchlab/iprefetch/prefetch"
)

// EventKind distinguishes a branch-retirement event from an instruction
// fetch in a trace.
type EventKind string

const (
	// EventBranch is a branch-retirement event, replayed via L1I.BranchOperate.
	EventBranch EventKind = "branch"
	// EventFetch is an instruction fetch, replayed via L1I.Fetch.
	EventFetch EventKind = "fetch"
)

// Event is one line of a JSON-lines branch/access trace.
type Event struct {
	Kind       EventKind           `json:"kind"`
	IP         uint64              `json:"ip,omitempty"`
	BranchType prefetch.BranchType `json:"branch_type,omitempty"`
	Target     uint64              `json:"target,omitempty"`
	Addr       uint64              `json:"addr,omitempty"`
}

// WriteTrace encodes events as JSON lines to w.
func WriteTrace(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for i, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return errors.Wrapf(err, "encoding trace event %d", i)
		}
	}
	return nil
}

// ReadTrace decodes a JSON-lines branch/access trace from r.
func ReadTrace(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, errors.Wrapf(err, "decoding trace line %d", line)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	return events, nil
}

// Replay drives l with events in order.
func Replay(l *L1I, events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventBranch:
			l.BranchOperate(ev.IP, ev.BranchType, ev.Target)
		case EventFetch:
			l.Fetch(ev.Addr)
		}
	}
}
