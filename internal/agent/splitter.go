package agent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SentenceSplitter cuts a stream of text chunks into sentences so each
// can be spoken as soon as it is complete. A sentence ends at '.', '!'
// or '?' followed by whitespace or the end of the buffered text.
type SentenceSplitter struct {
	buf   string
	start int // beginning of the unemitted segment
	next  int // first unscanned position
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

// Push appends a chunk and emits every newly completed sentence, in order.
func (s *SentenceSplitter) Push(chunk string, emit func(string)) {
	s.buf += chunk

	for i := s.next; i < len(s.buf); i++ {
		if !isTerminator(s.buf[i]) {
			continue
		}
		if i+1 < len(s.buf) {
			r, _ := utf8.DecodeRuneInString(s.buf[i+1:])
			if !unicode.IsSpace(r) {
				continue
			}
		}
		if sentence := strings.TrimSpace(s.buf[s.start : i+1]); sentence != "" {
			emit(sentence)
		}
		s.start = i + 1
	}
	s.next = len(s.buf)
}

// Flush emits any trailing unterminated text and resets the splitter.
func (s *SentenceSplitter) Flush(emit func(string)) {
	if rest := strings.TrimSpace(s.buf[s.start:]); rest != "" {
		emit(rest)
	}
	s.Reset()
}

// Reset discards all buffered text.
func (s *SentenceSplitter) Reset() {
	s.buf = ""
	s.start = 0
	s.next = 0
}
