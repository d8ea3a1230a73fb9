package history

import (
	"reflect"
	"testing"

	"github.com/xtding233/gacha-mercy/internal/gacha"
)

func TestObserveCycle(t *testing.T) {
	s := New()
	var got []Cycle
	for _, p := range []int{0, 1, 2, 3, 0} {
		if c, ok := s.Observe(gacha.Ancient, p); ok {
			got = append(got, c)
		}
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], Cycle{0, 1, 2, 3}) {
		t.Fatalf("got %v want one cycle [0 1 2 3]", got)
	}
	if _, ok := s.Observe(gacha.Ancient, 0); ok {
		t.Fatalf("0 -> 0 must not complete a cycle")
	}
}

func TestObservePerCategory(t *testing.T) {
	s := New()
	s.Observe(gacha.Ancient, 5)
	if _, ok := s.Observe(gacha.Void, 0); ok {
		t.Fatalf("void never left zero")
	}
	if c, ok := s.Observe(gacha.Ancient, 0); !ok || len(c) != 6 {
		t.Fatalf("ancient should complete a 6-entry cycle; got %v %v", c, ok)
	}
}

func TestSeedCompletesCycleAfterRestart(t *testing.T) {
	s := New()
	s.Seed(gacha.Sacred, 2)
	c, ok := s.Observe(gacha.Sacred, 0)
	if !ok || !reflect.DeepEqual(c, Cycle{0, 1, 2}) {
		t.Fatalf("got %v %v", c, ok)
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	s := New()
	for n := 1; n <= 6; n++ {
		s.Observe(gacha.Ancient, n)
		s.Observe(gacha.Ancient, 0)
	}
	cycles := s.Cycles()
	if len(cycles) != Window {
		t.Fatalf("len=%d want %d", len(cycles), Window)
	}
	if len(cycles[0]) != 4 || len(cycles[3]) != 7 {
		t.Fatalf("expected cycles for n=3..6, got lengths %d..%d", len(cycles[0]), len(cycles[3]))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s := New()
	for _, n := range []int{2, 5, 1} {
		s.Observe(gacha.Primal, n)
		s.Observe(gacha.Primal, 0)
	}
	data, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if data != "[[0,1,2],[0,1,2,3,4,5],[0,1]]" {
		t.Fatalf("data=%s", data)
	}
	back := New()
	if !back.Unmarshal(data) {
		t.Fatalf("unmarshal failed")
	}
	if !reflect.DeepEqual(back.Cycles(), s.Cycles()) {
		t.Fatalf("round trip mismatch: %v vs %v", back.Cycles(), s.Cycles())
	}
}

func TestUnmarshalDegrades(t *testing.T) {
	for _, in := range []string{"", "not json", `{"a":1}`, `[[1,2]]`, `[[0,2,2]]`, `[[0,3,1]]`, `[[]]`} {
		s := New()
		s.Observe(gacha.Void, 3)
		s.Observe(gacha.Void, 0)
		if s.Unmarshal(in) {
			t.Fatalf("%q should be rejected", in)
		}
		if s.Len() != 0 {
			t.Fatalf("%q should leave an empty window", in)
		}
	}
	s := New()
	if !s.Unmarshal(`[[0],[0,1],[0,1,2],[0,1,2,3],[0,1,2,3,4]]`) || s.Len() != Window {
		t.Fatalf("oversized history should keep the newest %d", Window)
	}
	if got := s.Cycles()[0]; len(got) != 2 {
		t.Fatalf("oldest kept cycle=%v", got)
	}
}

func TestUnmarshalAcceptsSparseCycles(t *testing.T) {
	s := New()
	if !s.Unmarshal(`[[0,2,5],[0,1]]`) || s.Len() != 2 {
		t.Fatalf("strictly increasing cycles from 0 should load")
	}
	if got := s.Cycles()[0]; len(got) != 3 || got[2] != 5 {
		t.Fatalf("first cycle=%v", got)
	}
}
