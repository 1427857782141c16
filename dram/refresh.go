package dram

// RefreshManager generates periodic rank-wide REFRESH requests, one per
// rank every tREFI cycles, following original_source/src/refresh.cc's
// per-rank due-cycle bookkeeping (spec §4.4). It never generates
// REFRESH_BANK (per-bank) requests. A pending refresh is held back while
// its rank self-refreshes, and DiscardPending drops it when the
// controller puts the rank into self-refresh.
type RefreshManager struct {
	params Params
	cs     *ChannelState

	nextDue   []uint64 // per rank, next cycle a refresh becomes due
	pending   []bool   // per rank, a refresh command is outstanding
	pendingCmd []Command

	// rotating cursor for fairness when more than one rank is due the
	// same cycle.
	cursor int
}

// NewRefreshManager schedules the first refresh for every rank one
// tREFI after construction.
func NewRefreshManager(p Params, cs *ChannelState) *RefreshManager {
	rm := &RefreshManager{
		params:     p,
		cs:         cs,
		nextDue:    make([]uint64, p.Ranks),
		pending:    make([]bool, p.Ranks),
		pendingCmd: make([]Command, p.Ranks),
	}
	for r := 0; r < p.Ranks; r++ {
		rm.nextDue[r] = uint64(p.TREFI)
	}
	return rm
}

// Tick runs one cycle of refresh bookkeeping: any rank whose due cycle
// has arrived gets a new pending REFRESH and its refresh-waiting flag
// raised; the rotating cursor picks one pending rank that is not
// self-refreshing and returns its refresh command. Readiness is not
// checked here: the controller resolves the command through
// RequiredCommand (possibly to a preparatory PRECHARGE) and issues it
// only if that is ready. Returns the rank-targeted refresh command and
// true if such a rank exists this cycle, else false.
func (rm *RefreshManager) Tick(now uint64) (Command, bool) {
	for r := 0; r < rm.params.Ranks; r++ {
		if !rm.pending[r] && now >= rm.nextDue[r] {
			cmd := Command{Kind: REFRESH, Addr: Address{Rank: r}}
			rm.pending[r] = true
			rm.pendingCmd[r] = cmd
			rm.nextDue[r] = now + uint64(rm.params.TREFI)
			rm.cs.UpdateRefreshWaitingStatus(cmd, true)
		}
	}

	n := rm.params.Ranks
	for i := 0; i < n; i++ {
		r := rm.cursor
		rm.cursor = (rm.cursor + 1) % n
		if !rm.pending[r] {
			continue
		}
		if rm.cs.RankSelfRefresh(r) {
			continue
		}
		return rm.pendingCmd[r], true
	}
	return Command{}, false
}

// Complete clears the pending/refresh-waiting flag for cmd's rank once
// the controller has actually issued the REFRESH itself (not merely a
// preparatory command).
func (rm *RefreshManager) Complete(cmd Command) {
	r := cmd.Addr.Rank
	rm.pending[r] = false
	rm.cs.UpdateRefreshWaitingStatus(Command{Kind: REFRESH, Addr: Address{Rank: r}}, false)
}

// DiscardPending drops any pending refresh for rank without issuing it:
// SELF_REFRESH_ENTER discards a rank's outstanding refresh obligation
// rather than deferring it (SPEC_FULL.md Open Question (b)).
func (rm *RefreshManager) DiscardPending(rank int) {
	if rm.pending[rank] {
		rm.pending[rank] = false
		rm.cs.UpdateRefreshWaitingStatus(Command{Kind: REFRESH, Addr: Address{Rank: rank}}, false)
	}
}

// Pending reports whether rank currently has an outstanding refresh
// obligation.
func (rm *RefreshManager) Pending(rank int) bool {
	return rm.pending[rank]
}
