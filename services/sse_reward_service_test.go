package services

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"il2-stats/awards"
	"il2-stats/models"
)

func TestStreamRewardsReportsGrantsAndTransfers(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, models.CoalitionAxis, nil)

	pr, pw := io.Pipe()
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		f.rewards.streamRewards(done, bufio.NewWriter(pw), p.ID, 5*time.Millisecond)
		pw.Close()
		close(finished)
	}()
	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(pr)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	next := func() string {
		t.Helper()
		select {
		case l, ok := <-lines:
			if !ok {
				t.Fatalf("stream ended early")
			}
			return l
		case <-time.After(2 * time.Second):
			t.Fatalf("no stream output")
		}
		return ""
	}
	waitEvent := func(want awards.Key) {
		t.Helper()
		for {
			l := next()
			if !strings.HasPrefix(l, "data: ") {
				continue
			}
			var ev rewardEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(l, "data: ")), &ev); err != nil {
				t.Fatalf("decode %q: %v", l, err)
			}
			if ev.Award != string(want) {
				t.Fatalf("event award=%s want=%s", ev.Award, want)
			}
			return
		}
	}

	if l := next(); l != ":" {
		t.Fatalf("first line=%q want=\":\"", l)
	}
	f.grant(t, awards.KnightsCross, p)
	waitEvent(awards.KnightsCross)

	if _, err := f.rewards.Transfer(f.db, awards.KnightsCross, awards.KnightsCrossLeaves, p.ID); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	waitEvent(awards.KnightsCrossLeaves)

	close(done)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop when the request ended")
	}
}
