package voicechat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Status tracks an entry's lifecycle.
type Status string

const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusStreaming Status = "streaming"
	StatusFailed    Status = "failed"
)

// Delivery records how an entry arrived; informational only.
type Delivery string

const (
	DeliveryReliable Delivery = "reliable"
	DeliveryLossy    Delivery = "lossy"
)

// Entry is one line of the rendered conversation.
type Entry struct {
	ID        string
	Role      Role
	Text      string
	Timestamp int64 // milliseconds since epoch
	SenderID  string
	Topic     string
	Status    Status
	Delivery  Delivery
}

// EventMeta is transport metadata attached to an inbound channel event.
type EventMeta struct {
	SenderIdentity string
	Reliable       bool
}

// Transcript holds the ordered conversation. Speech transcription
// arrives as a stream of growing prefixes before its final form; the
// reconciler collapses those into a single visible line instead of
// flooding the list, while an explicit interim/final flag from the
// producer always overrides the heuristic.
//
// The entry list is append-only except that the last entry may be
// replaced when a continuation is detected. Every mutation swaps in a
// freshly built slice, so a snapshot handed to a renderer is never
// torn by a later update.
type Transcript struct {
	mu            sync.Mutex
	entries       []Entry
	awaitingReply bool
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Entries returns a point-in-time snapshot of the conversation.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries
}

// AwaitingReply reports whether a user message has been sent and no
// assistant entry has arrived yet; drives the "thinking" placeholder.
func (t *Transcript) AwaitingReply() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.awaitingReply
}

func (t *Transcript) setAwaitingReply(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.awaitingReply = v
}

// appendCOW replaces the entry slice with a copy plus entry.
func appendCOW(entries []Entry, entry Entry) []Entry {
	out := make([]Entry, len(entries)+1)
	copy(out, entries)
	out[len(entries)] = entry
	return out
}

// replaceLastCOW replaces the entry slice with a copy whose last
// element is entry.
func replaceLastCOW(entries []Entry, entry Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	out[len(out)-1] = entry
	return out
}

// roleFor maps a wire role to a transcript role.
func roleFor(wireRole string) Role {
	if wireRole == "user" {
		return RoleUser
	}
	return RoleAssistant
}

// isTextContinuation reports a non-empty prefix relation between a and
// b, in either direction, case-sensitive.
func isTextContinuation(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// Reconcile folds one inbound channel event into the transcript,
// deciding whether it continues the last entry or starts a new one.
// Events on unknown topics are discarded; "status" events become system
// notices and never touch the chat continuation logic.
func (t *Transcript) Reconcile(msg WireMessage, meta EventMeta) {
	switch msg.Topic {
	case "chat":
	case "status":
		t.appendStatus(msg)
		return
	default:
		return
	}

	sender := meta.SenderIdentity
	if sender == "" {
		sender = msg.Identity
	}
	if sender == "" {
		sender = msg.Role
	}

	timestamp := msg.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	delivery := DeliveryLossy
	if meta.Reliable {
		delivery = DeliveryReliable
	}

	explicitInterim := msg.ExplicitInterim()
	explicitFinal := msg.ExplicitFinal()
	hasFlag := msg.HasExplicitFlag()

	candidate := Entry{
		ID:        uuid.NewString(),
		Role:      roleFor(msg.Role),
		Text:      msg.Message,
		Timestamp: timestamp,
		SenderID:  sender,
		Topic:     msg.Topic,
		Status:    StatusSent,
		Delivery:  delivery,
	}
	if explicitInterim {
		candidate.Status = StatusStreaming
	}

	t.mu.Lock()

	if len(t.entries) == 0 {
		t.entries = appendCOW(t.entries, candidate)
	} else {
		last := t.entries[len(t.entries)-1]

		sameSender := last.Role == candidate.Role
		if last.SenderID != "" && candidate.SenderID != "" {
			sameSender = last.SenderID == candidate.SenderID
		}
		sameTopic := last.Topic == candidate.Topic

		shouldTreatAsInterim := explicitInterim ||
			(!hasFlag && candidate.Role == RoleUser && sameSender && sameTopic &&
				isTextContinuation(last.Text, candidate.Text))

		switch {
		case sameSender && sameTopic && shouldTreatAsInterim:
			candidate.Status = StatusStreaming
			t.entries = replaceLastCOW(t.entries, candidate)

		case sameSender && sameTopic && t.shouldFinalize(last, candidate, explicitFinal, hasFlag):
			candidate.Status = StatusSent
			t.entries = replaceLastCOW(t.entries, candidate)

		default:
			t.entries = appendCOW(t.entries, candidate)
		}
	}

	clearThinking := candidate.Role == RoleAssistant
	if clearThinking {
		t.awaitingReply = false
	}
	t.mu.Unlock()
}

// shouldFinalize decides whether candidate settles the streaming last
// entry in place. A repeated explicit finalization of an identical,
// already settled entry also merges, so duplicated final events never
// produce a second line.
func (t *Transcript) shouldFinalize(last, candidate Entry, explicitFinal, hasFlag bool) bool {
	wantsFinal := explicitFinal ||
		(!hasFlag && last.Status == StatusStreaming && candidate.Text == last.Text)
	if !wantsFinal {
		return false
	}
	if last.Status == StatusStreaming {
		return true
	}
	return last.Status == StatusSent && candidate.Text == last.Text
}

// appendStatus adds a system notice without touching chat entries.
func (t *Transcript) appendStatus(msg WireMessage) {
	timestamp := msg.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = appendCOW(t.entries, Entry{
		ID:        uuid.NewString(),
		Role:      RoleSystem,
		Text:      "Status: " + msg.Message,
		Timestamp: timestamp,
		Topic:     "status",
		Status:    StatusSent,
	})
}

// appendLocal adds a locally created entry (outbound send path).
func (t *Transcript) appendLocal(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = appendCOW(t.entries, entry)
}

// get returns the entry with the given id.
func (t *Transcript) get(id string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// setStatus updates one entry's status by id, copy-on-write.
func (t *Transcript) setStatus(id string, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.entries {
		if e.ID != id {
			continue
		}
		out := make([]Entry, len(t.entries))
		copy(out, t.entries)
		out[i].Status = status
		t.entries = out
		return
	}
}
