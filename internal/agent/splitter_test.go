package agent

import (
	"reflect"
	"testing"
)

func collect(chunks []string) []string {
	var out []string
	var s SentenceSplitter
	emit := func(sentence string) { out = append(out, sentence) }
	for _, chunk := range chunks {
		s.Push(chunk, emit)
	}
	s.Flush(emit)
	return out
}

func TestSplitAcrossChunks(t *testing.T) {
	got := collect([]string{"Hi ", "there. How ", "are you?"})
	want := []string{"Hi there.", "How are you?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTrailingRemainderEmittedOnFlush(t *testing.T) {
	got := collect([]string{"First one. And then some more"})
	want := []string{"First one.", "And then some more"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTerminatorInsideWordDoesNotSplit(t *testing.T) {
	got := collect([]string{"Pi is 3.14 exactly? No!"})
	want := []string{"Pi is 3.14 exactly?", "No!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExclamationAndQuestionMarks(t *testing.T) {
	got := collect([]string{"Wow! Really? Yes."})
	want := []string{"Wow!", "Really?", "Yes."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEmptyInput(t *testing.T) {
	if got := collect([]string{"", "   "}); len(got) != 0 {
		t.Fatalf("expected no sentences, got %q", got)
	}
}

func TestResetDiscardsBuffer(t *testing.T) {
	var s SentenceSplitter
	var out []string
	s.Push("half a sent", func(sentence string) { out = append(out, sentence) })
	s.Reset()
	s.Flush(func(sentence string) { out = append(out, sentence) })
	if len(out) != 0 {
		t.Fatalf("expected nothing after reset, got %q", out)
	}
}
