package dram

import "testing"

func TestRefreshManagerBecomesDueAfterTREFI(t *testing.T) {
	p := testParams()
	p.TREFI = 100
	cs := NewChannelState(p, BuildTimingTable(p), nil)
	rm := NewRefreshManager(p, cs)

	for c := uint64(0); c < 99; c++ {
		if _, ok := rm.Tick(c); ok {
			t.Fatalf("refresh should not be due before tREFI at cycle %d", c)
		}
	}
	if _, ok := rm.Tick(100); !ok {
		t.Fatalf("refresh should become due once tREFI cycles have elapsed")
	}
	if !rm.Pending(0) {
		t.Fatalf("rank 0 should have a pending refresh after becoming due")
	}
	if !cs.Bank(0, 0, 0).RefreshWaiting() {
		t.Fatalf("RefreshWaiting should be set on every bank once a refresh is due")
	}
}

func TestRefreshManagerDiscardPendingClearsWaitingFlag(t *testing.T) {
	p := testParams()
	p.TREFI = 10
	cs := NewChannelState(p, BuildTimingTable(p), nil)
	rm := NewRefreshManager(p, cs)

	rm.Tick(10)
	if !rm.Pending(0) {
		t.Fatalf("expected a pending refresh")
	}
	rm.DiscardPending(0)
	if rm.Pending(0) {
		t.Fatalf("DiscardPending should clear the pending flag")
	}
	if cs.Bank(0, 0, 0).RefreshWaiting() {
		t.Fatalf("DiscardPending should clear RefreshWaiting on every bank")
	}
}

func TestRefreshManagerSkipsSelfRefreshingRank(t *testing.T) {
	p := testParams()
	p.TREFI = 10
	cs := NewChannelState(p, BuildTimingTable(p), nil)
	rm := NewRefreshManager(p, cs)

	cs.IssueCommand(Command{Kind: SELF_REFRESH_ENTER}, 0)
	if _, ok := rm.Tick(10); ok {
		t.Fatalf("a self-refreshing rank should not surface a REFRESH command")
	}
}
