package models

import "time"

// DateMarkerLayout renders a timeline date marker, e.g. 2024.03.01.
const DateMarkerLayout = "2006.01.02"

// DefaultTimezone is the location date markers are computed in when none is configured.
const DefaultTimezone = "Asia/Seoul"

// TimelineEntry is either a date marker or a message of a rendered chat stream.
type TimelineEntry struct {
	Kind    string       `json:"kind"`
	Date    string       `json:"date,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}

const (
	TimelineDate    = "date"
	TimelineMessage = "message"
)

// BuildTimeline interleaves date markers into messages, which must already be
// in creation order. A marker precedes the first message and every message
// whose calendar date in loc differs from its predecessor's.
func BuildTimeline(messages []*ChatMessage, loc *time.Location) []TimelineEntry {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]TimelineEntry, 0, len(messages)+1)
	prev := ""
	for _, m := range messages {
		day := m.CreatedAt.In(loc).Format(DateMarkerLayout)
		if day != prev {
			out = append(out, TimelineEntry{Kind: TimelineDate, Date: day})
			prev = day
		}
		out = append(out, TimelineEntry{Kind: TimelineMessage, Message: m})
	}
	return out
}

// ReadReceipt describes whether the viewer's latest own message has been read.
type ReadReceipt struct {
	MessageID string `json:"messageId"`
	Read      bool   `json:"read"`
}

// ReadReceiptFor looks at the most recent message authored by viewer and
// reports read iff other is in its read set. It returns nil when the viewer
// has not sent anything.
func ReadReceiptFor(messages []*ChatMessage, viewer, other string) *ReadReceipt {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.SenderID != viewer {
			continue
		}
		return &ReadReceipt{MessageID: m.ID, Read: m.ReadByUser(other)}
	}
	return nil
}

// PreviewRunes is how many runes of the last message a chat list shows.
const PreviewRunes = 25

// Preview shortens text to PreviewRunes runes, marking the cut with an ellipsis.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewRunes {
		return text
	}
	return string(r[:PreviewRunes]) + "…"
}
