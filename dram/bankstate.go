package dram

// BankStateKind is a bank's position in the CLOSED / OPEN / SELF_REFRESH
// state machine (spec §3).
type BankStateKind uint8

const (
	Closed BankStateKind = iota
	Open
	SelfRefreshing
)

// BankState is the per-bank state machine and timing ledger (spec
// §4.1). It owns no references to sibling banks; rank/bank-group-wide
// propagation lives in ChannelState, which owns a BankState per
// (rank, bank-group, bank) triple.
type BankState struct {
	Rank, BankGroup, Bank int

	state   BankStateKind
	openRow int // valid iff state == Open

	// earliest[k] is the earliest cycle at which command kind k may
	// legally be issued to this bank. Monotonically non-decreasing.
	earliest [numCommandKinds]uint64

	rowHits        int // consecutive row-buffer hits since the row opened
	rowHitCap      int // 0 disables the aggressive-precharge cap
	refreshWaiting bool
}

func newBankState(rank, bg, bank, rowHitCap int) *BankState {
	return &BankState{Rank: rank, BankGroup: bg, Bank: bank, state: Closed, openRow: -1, rowHitCap: rowHitCap}
}

// State reports the bank's current state-machine position.
func (b *BankState) State() BankStateKind { return b.state }

// OpenRow returns the currently open row, or -1 if the bank is not OPEN.
func (b *BankState) OpenRow() int { return b.openRow }

// RowHitCount returns the number of consecutive row-buffer hits served
// since the currently open row was activated.
func (b *BankState) RowHitCount() int { return b.rowHits }

// RefreshWaiting reports whether a refresh is pending for this bank
// (set through ChannelState.UpdateRefreshWaitingStatus). It blocks no
// command: the scheduler counts column commands issued to a waiting bank
// (CommandQueue.RowHitsPendingRefresh), and ChannelState.RankAllIdle
// treats a waiting bank as not idle.
func (b *BankState) RefreshWaiting() bool { return b.refreshWaiting }

func (b *BankState) setRefreshWaiting(v bool) { b.refreshWaiting = v }

// RequiredCommand returns the command that must be issued next in order
// to eventually service a request of kind reqKind targeting row,
// given the bank's current state (spec §4.1). Column requests from an
// OPEN bank resolve immediately on a row-buffer hit (strict equality
// against openRow); otherwise a PRECHARGE is required first. Refresh
// and SELF_REFRESH_ENTER requests against an OPEN bank likewise
// require a PRECHARGE first. Any request against a SELF_REFRESH bank
// requires SELF_REFRESH_EXIT first.
func (b *BankState) RequiredCommand(reqKind CommandKind, row int) CommandKind {
	switch b.state {
	case Closed:
		switch reqKind {
		case READ, READ_PRECHARGE, WRITE, WRITE_PRECHARGE:
			return ACTIVATE
		case REFRESH:
			return REFRESH
		case REFRESH_BANK:
			return REFRESH_BANK
		case SELF_REFRESH_ENTER:
			return SELF_REFRESH_ENTER
		default:
			Abort("bankstate: request kind %s illegal from CLOSED", reqKind)
		}
	case Open:
		switch reqKind {
		case READ, READ_PRECHARGE, WRITE, WRITE_PRECHARGE:
			if row == b.openRow {
				return reqKind
			}
			return PRECHARGE
		case REFRESH, REFRESH_BANK, SELF_REFRESH_ENTER:
			return PRECHARGE
		default:
			Abort("bankstate: request kind %s illegal from OPEN", reqKind)
		}
	case SelfRefreshing:
		return SELF_REFRESH_EXIT
	}
	Abort("bankstate: unreachable state %d", b.state)
	return 0
}

// UpdateState applies cmd's state transition. It is a fatal programming
// error (spec §7) to call this with a command not legal in the current
// state.
func (b *BankState) UpdateState(cmd Command) {
	switch b.state {
	case Open:
		switch cmd.Kind {
		case READ, WRITE:
			b.rowHits++
		case READ_PRECHARGE, WRITE_PRECHARGE, PRECHARGE:
			b.state = Closed
			b.openRow = -1
			b.rowHits = 0
		default:
			Abort("bankstate: illegal command %s from OPEN", cmd.Kind)
		}
	case Closed:
		switch cmd.Kind {
		case REFRESH, REFRESH_BANK:
			// no state change
		case ACTIVATE:
			b.state = Open
			b.openRow = cmd.Addr.Row
			b.rowHits = 0
		case SELF_REFRESH_ENTER:
			b.state = SelfRefreshing
		default:
			Abort("bankstate: illegal command %s from CLOSED", cmd.Kind)
		}
	case SelfRefreshing:
		switch cmd.Kind {
		case SELF_REFRESH_EXIT:
			b.state = Closed
		default:
			Abort("bankstate: illegal command %s from SELF_REFRESH", cmd.Kind)
		}
	default:
		Abort("bankstate: unreachable state %d", b.state)
	}
}

// UpdateTiming sets earliest[kind] to the max of its current value and
// at. Monotone: never decreases a previously recorded earliest-issue
// cycle (spec §4.1, §4.2 invariant).
func (b *BankState) UpdateTiming(kind CommandKind, at uint64) {
	if at > b.earliest[kind] {
		b.earliest[kind] = at
	}
}

// IsReady reports whether kind may legally be issued to this bank at
// cycle now.
func (b *BankState) IsReady(kind CommandKind, now uint64) bool {
	return now >= b.earliest[kind]
}

// EarliestCycle returns the earliest cycle at which kind may be issued.
func (b *BankState) EarliestCycle(kind CommandKind) uint64 {
	return b.earliest[kind]
}

// AtRowHitCap reports whether the bank's consecutive row-hit count has
// reached its configured cap (0 = disabled, never caps).
func (b *BankState) AtRowHitCap() bool {
	return b.rowHitCap > 0 && b.rowHits >= b.rowHitCap
}
