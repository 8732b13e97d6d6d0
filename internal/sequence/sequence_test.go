package sequence

import (
	"testing"
	"time"
)

var epoch = time.Date(2022, time.January, 1, 9, 0, 0, 0, time.UTC)

func TestIssueDates(t *testing.T) {
	s := NewIssueDates(time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC))
	prev := s.Next()
	if !prev.Equal(time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first date got %v", prev)
	}
	for i := 0; i < 400; i++ {
		d := s.Next()
		if !d.Equal(prev.AddDate(0, 0, 1)) {
			t.Fatalf("step %d: got %v after %v", i, d, prev)
		}
		prev = d
	}
}

func TestTimestamps_Pattern(t *testing.T) {
	s := NewTimestamps(epoch)
	cases := []struct {
		want string
	}{
		{"2022-01-01 09:00:00"},
		{"2022-01-02 12:07:11"},
		{"2022-01-03 15:14:22"},
		{"2022-01-04 18:21:33"},
	}
	for i, c := range cases {
		got := s.Next().Format("2006-01-02 15:04:05")
		if got != c.want {
			t.Fatalf("call %d got %s want %s", i, got, c.want)
		}
	}
}

func TestTimestamps_CyclicFields(t *testing.T) {
	s := NewTimestamps(epoch)
	for i := 0; i < 1000; i++ {
		ts := s.Next()
		wantHour := (9 + (i*3)%10) % 24
		if ts.Hour() != wantHour {
			t.Fatalf("call %d hour got %d want %d", i, ts.Hour(), wantHour)
		}
		if ts.Minute() != (i*7)%60 {
			t.Fatalf("call %d minute got %d want %d", i, ts.Minute(), (i*7)%60)
		}
		if ts.Second() != (i*11)%60 {
			t.Fatalf("call %d second got %d want %d", i, ts.Second(), (i*11)%60)
		}
	}
}

func TestTimestamps_NextAfter(t *testing.T) {
	s := NewTimestamps(epoch)
	date := time.Date(2022, time.January, 10, 0, 0, 0, 0, time.UTC)
	ts := s.NextAfter(date)
	if !ts.After(date) {
		t.Fatalf("NextAfter returned %v, not after %v", ts, date)
	}
	if got := ts.Format("2006-01-02"); got != "2022-01-11" {
		t.Fatalf("NextAfter date got %s want 2022-01-11", got)
	}

	// The cursor is shared and never rewound: a later call for an earlier
	// date still moves forward.
	ts2 := s.NextAfter(time.Date(2022, time.January, 2, 0, 0, 0, 0, time.UTC))
	if !ts2.After(ts) {
		t.Fatalf("cursor went backwards: %v then %v", ts, ts2)
	}
}

func TestTimestamps_Deterministic(t *testing.T) {
	a := NewTimestamps(epoch)
	b := NewTimestamps(epoch)
	for i := 0; i < 200; i++ {
		if ta, tb := a.Next(), b.Next(); !ta.Equal(tb) {
			t.Fatalf("call %d diverged: %v vs %v", i, ta, tb)
		}
	}
}
