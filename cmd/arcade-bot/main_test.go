package main

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextScoreRises(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	prev := int64(0)
	for i := 0; i < 20; i++ {
		next := nextScore(rnd, prev)
		if next < prev+10 || next >= prev+100 {
			t.Fatalf("nextScore(%d) = %d, want in [%d, %d)", prev, next, prev+10, prev+100)
		}
		prev = next
	}
}

func TestPace(t *testing.T) {
	cases := []struct {
		duration, updates int
		want              time.Duration
	}{
		{120, 5, 12 * time.Second},
		{0, 5, time.Second},
		{60, 0, time.Second},
	}
	for _, tc := range cases {
		if got := pace(tc.duration, tc.updates); got != tc.want {
			t.Fatalf("pace(%d, %d) = %v, want %v", tc.duration, tc.updates, got, tc.want)
		}
	}
}
