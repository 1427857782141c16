package dram

// EnergyRecorder receives per-command and per-cycle energy accounting
// events. *stats.Collector (package stats) implements this; tests may
// supply a no-op or a counting stub.
type EnergyRecorder interface {
	RecordCommandIssued(kind CommandKind)
	RecordBackgroundCycle(rank int, selfRefresh, allIdle bool)
	RecordHBMDualIssue()
}

type nopRecorder struct{}

func (nopRecorder) RecordCommandIssued(CommandKind)             {}
func (nopRecorder) RecordBackgroundCycle(int, bool, bool)        {}
func (nopRecorder) RecordHBMDualIssue()                          {}

// CommandTracer receives every command as it issues, in issue order —
// the seam the stable validation-trace format (spec §6) is written
// through. *trace.Writer (package trace) implements this.
type CommandTracer interface {
	TraceCommand(clk uint64, cmd Command)
}

// ChannelState is the per-channel bank-state collection plus the
// rank-wide activation-window and self-refresh bookkeeping that a
// single issued command may affect (spec §4.2).
type ChannelState struct {
	params Params
	timing *TimingTable
	stats  EnergyRecorder
	tracer CommandTracer

	// banks[rank][bankgroup][bank]
	banks [][][]*BankState

	fourAW      [][]uint64 // per rank, time-ordered, len <= 4
	thirtyTwoAW [][]uint64 // per rank, GDDR only, len <= 32
	selfRefresh []bool     // per rank
}

// NewChannelState allocates a bank-state grid and per-rank tracking
// structures for one channel.
func NewChannelState(p Params, timing *TimingTable, stats EnergyRecorder) *ChannelState {
	if stats == nil {
		stats = nopRecorder{}
	}
	cs := &ChannelState{
		params:      p,
		timing:      timing,
		stats:       stats,
		banks:       make([][][]*BankState, p.Ranks),
		fourAW:      make([][]uint64, p.Ranks),
		thirtyTwoAW: make([][]uint64, p.Ranks),
		selfRefresh: make([]bool, p.Ranks),
	}
	for r := 0; r < p.Ranks; r++ {
		cs.banks[r] = make([][]*BankState, p.BankGroups)
		for g := 0; g < p.BankGroups; g++ {
			cs.banks[r][g] = make([]*BankState, p.BanksPerGroup)
			for b := 0; b < p.BanksPerGroup; b++ {
				cs.banks[r][g][b] = newBankState(r, g, b, p.RowHitCap)
			}
		}
	}
	return cs
}

// Bank returns the BankState at the given coordinates.
func (cs *ChannelState) Bank(rank, bg, bank int) *BankState {
	return cs.banks[rank][bg][bank]
}

// SetTracer installs t to receive every command this channel issues
// from now on. Passing nil disables tracing.
func (cs *ChannelState) SetTracer(t CommandTracer) {
	cs.tracer = t
}

// RankSelfRefresh reports whether the given rank is currently
// self-refreshing.
func (cs *ChannelState) RankSelfRefresh(rank int) bool {
	return cs.selfRefresh[rank]
}

// RankAllIdle reports whether every bank in rank is CLOSED and not
// waiting on a refresh — the condition for precharge-standby energy
// (spec §4.5 step 3).
func (cs *ChannelState) RankAllIdle(rank int) bool {
	for g := 0; g < cs.params.BankGroups; g++ {
		for b := 0; b < cs.params.BanksPerGroup; b++ {
			bs := cs.banks[rank][g][b]
			if bs.State() != Closed || bs.RefreshWaiting() {
				return false
			}
		}
	}
	return true
}

// RequiredCommand resolves cmd to the command that must actually be
// issued next (spec §4.2). Bank-local kinds delegate to the addressed
// bank. Rank-wide kinds (REFRESH, SELF_REFRESH_*) scan banks in the
// rank in fixed (bank-group, bank) order and return the first
// preparatory command any bank still requires; if every bank already
// agrees, cmd is returned unchanged.
func (cs *ChannelState) RequiredCommand(cmd Command) Command {
	switch cmd.Kind {
	case READ, READ_PRECHARGE, WRITE, WRITE_PRECHARGE, ACTIVATE, PRECHARGE, REFRESH_BANK:
		bs := cs.banks[cmd.Addr.Rank][cmd.Addr.BankGroup][cmd.Addr.Bank]
		return Command{Kind: bs.RequiredCommand(cmd.Kind, cmd.Addr.Row), Addr: cmd.Addr}
	case REFRESH, SELF_REFRESH_ENTER, SELF_REFRESH_EXIT:
		for g := 0; g < cs.params.BankGroups; g++ {
			for b := 0; b < cs.params.BanksPerGroup; b++ {
				bs := cs.banks[cmd.Addr.Rank][g][b]
				required := bs.RequiredCommand(cmd.Kind, cmd.Addr.Row)
				if required != cmd.Kind {
					addr := cmd.Addr
					addr.BankGroup, addr.Bank = g, b
					return Command{Kind: required, Addr: addr}
				}
			}
		}
		return cmd
	default:
		Abort("channelstate: unknown command kind %s", cmd.Kind)
		return Command{}
	}
}

// IsReady reports whether cmd may legally be issued at cycle now. For
// ACTIVATE it additionally requires the tFAW (and, for GDDR, t32AW)
// activation-window check. For rank-wide kinds it requires every bank
// in the rank to be ready.
func (cs *ChannelState) IsReady(cmd Command, now uint64) bool {
	switch cmd.Kind {
	case ACTIVATE:
		if !cs.activationWindowOK(cmd.Addr.Rank, now) {
			return false
		}
		return cs.banks[cmd.Addr.Rank][cmd.Addr.BankGroup][cmd.Addr.Bank].IsReady(cmd.Kind, now)
	case READ, READ_PRECHARGE, WRITE, WRITE_PRECHARGE, PRECHARGE, REFRESH_BANK:
		return cs.banks[cmd.Addr.Rank][cmd.Addr.BankGroup][cmd.Addr.Bank].IsReady(cmd.Kind, now)
	case REFRESH, SELF_REFRESH_ENTER, SELF_REFRESH_EXIT:
		for g := 0; g < cs.params.BankGroups; g++ {
			for b := 0; b < cs.params.BanksPerGroup; b++ {
				if !cs.banks[cmd.Addr.Rank][g][b].IsReady(cmd.Kind, now) {
					return false
				}
			}
		}
		return true
	default:
		Abort("channelstate: unknown command kind %s", cmd.Kind)
		return false
	}
}

// IssueCommand applies cmd's effects at cycle now: bank state
// transition(s), activation-window bookkeeping, cross-bank timing
// propagation, self-refresh flag toggling, and energy accounting.
func (cs *ChannelState) IssueCommand(cmd Command, now uint64) {
	switch cmd.Kind {
	case READ, READ_PRECHARGE, WRITE, WRITE_PRECHARGE, ACTIVATE, PRECHARGE, REFRESH_BANK:
		cs.banks[cmd.Addr.Rank][cmd.Addr.BankGroup][cmd.Addr.Bank].UpdateState(cmd)
	case REFRESH, SELF_REFRESH_ENTER, SELF_REFRESH_EXIT:
		cs.selfRefresh[cmd.Addr.Rank] = cmd.Kind == SELF_REFRESH_ENTER
		for g := 0; g < cs.params.BankGroups; g++ {
			for b := 0; b < cs.params.BanksPerGroup; b++ {
				cs.banks[cmd.Addr.Rank][g][b].UpdateState(cmd)
			}
		}
	default:
		Abort("channelstate: unknown command kind %s", cmd.Kind)
	}

	if cmd.Kind == ACTIVATE {
		cs.updateActivationWindow(cmd.Addr.Rank, now)
	}
	cs.propagateTiming(cmd, now)
	cs.stats.RecordCommandIssued(cmd.Kind)
	if cs.tracer != nil {
		cs.tracer.TraceCommand(now, cmd)
	}
}

// activationWindowOK implements the tFAW (and GDDR t32AW) check: at
// most 4 (resp. 32) ACTIVATEs to one rank in any sliding window of
// that size (spec §4.2, §8 scenario 6).
func (cs *ChannelState) activationWindowOK(rank int, now uint64) bool {
	if !cs.isFAWReady(rank, now) {
		return false
	}
	if cs.params.Protocol.IsGDDR() {
		return cs.is32AWReady(rank, now)
	}
	return true
}

func (cs *ChannelState) isFAWReady(rank int, now uint64) bool {
	w := cs.fourAW[rank]
	return !(len(w) >= 4 && now < w[0])
}

func (cs *ChannelState) is32AWReady(rank int, now uint64) bool {
	w := cs.thirtyTwoAW[rank]
	return !(len(w) >= 32 && now < w[0])
}

func (cs *ChannelState) updateActivationWindow(rank int, now uint64) {
	w := cs.fourAW[rank]
	if len(w) > 0 && now >= w[0] {
		w = w[1:]
	}
	cs.fourAW[rank] = append(w, now+uint64(cs.params.TFAW))

	if cs.params.Protocol.IsGDDR() {
		w32 := cs.thirtyTwoAW[rank]
		if len(w32) > 0 && now >= w32[0] {
			w32 = w32[1:]
		}
		cs.thirtyTwoAW[rank] = append(w32, now+uint64(cs.params.T32AW))
	}
}

// propagateTiming applies every (future-kind, delay) pair the timing
// table associates with cmd.Kind, to the bank sets each Relationship
// names. update_timing is commutative under max, so propagation order
// across relationships is immaterial (spec §5).
func (cs *ChannelState) propagateTiming(cmd Command, now uint64) {
	a := cmd.Addr
	if cmd.Kind.TargetsRank() {
		for _, e := range cs.timing.Entries(SameRank, cmd.Kind) {
			for g := 0; g < cs.params.BankGroups; g++ {
				for b := 0; b < cs.params.BanksPerGroup; b++ {
					cs.banks[a.Rank][g][b].UpdateTiming(e.Kind, now+e.Delay)
				}
			}
		}
		return
	}

	for _, e := range cs.timing.Entries(SameBank, cmd.Kind) {
		cs.banks[a.Rank][a.BankGroup][a.Bank].UpdateTiming(e.Kind, now+e.Delay)
	}
	for _, e := range cs.timing.Entries(OtherBanksSameGroup, cmd.Kind) {
		for b := 0; b < cs.params.BanksPerGroup; b++ {
			if b == a.Bank {
				continue
			}
			cs.banks[a.Rank][a.BankGroup][b].UpdateTiming(e.Kind, now+e.Delay)
		}
	}
	for _, e := range cs.timing.Entries(OtherGroupsSameRank, cmd.Kind) {
		for g := 0; g < cs.params.BankGroups; g++ {
			if g == a.BankGroup {
				continue
			}
			for b := 0; b < cs.params.BanksPerGroup; b++ {
				cs.banks[a.Rank][g][b].UpdateTiming(e.Kind, now+e.Delay)
			}
		}
	}
	for _, e := range cs.timing.Entries(OtherRanks, cmd.Kind) {
		for r := 0; r < cs.params.Ranks; r++ {
			if r == a.Rank {
				continue
			}
			for g := 0; g < cs.params.BankGroups; g++ {
				for b := 0; b < cs.params.BanksPerGroup; b++ {
					cs.banks[r][g][b].UpdateTiming(e.Kind, now+e.Delay)
				}
			}
		}
	}
}

// UpdateRefreshWaitingStatus sets or clears the refresh-pending flag on
// every bank a refresh command targets: the whole rank for REFRESH, or
// the addressed bank-group's banks for REFRESH_BANK.
func (cs *ChannelState) UpdateRefreshWaitingStatus(cmd Command, status bool) {
	switch cmd.Kind {
	case REFRESH:
		for g := 0; g < cs.params.BankGroups; g++ {
			for b := 0; b < cs.params.BanksPerGroup; b++ {
				cs.banks[cmd.Addr.Rank][g][b].setRefreshWaiting(status)
			}
		}
	case REFRESH_BANK:
		for b := 0; b < cs.params.BanksPerGroup; b++ {
			cs.banks[cmd.Addr.Rank][cmd.Addr.BankGroup][b].setRefreshWaiting(status)
		}
	default:
		Abort("channelstate: UpdateRefreshWaitingStatus called with non-refresh command %s", cmd.Kind)
	}
}

// AccumulateBackgroundEnergy records one cycle of background energy for
// every rank: self-refresh energy while self-refreshing, else
// precharge-standby while fully idle, else active-standby (spec §4.5
// step 3).
func (cs *ChannelState) AccumulateBackgroundEnergy() {
	for r := 0; r < cs.params.Ranks; r++ {
		cs.stats.RecordBackgroundCycle(r, cs.selfRefresh[r], cs.RankAllIdle(r))
	}
}
