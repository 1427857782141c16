package dram

// Relationship names how the bank receiving a future command relates
// to the bank that issued the command being timed (spec §2).
type Relationship uint8

const (
	SameBank Relationship = iota
	OtherBanksSameGroup
	OtherGroupsSameRank
	OtherRanks
	SameRank // used only for rank-wide commands (refresh, self-refresh)

	numRelationships
)

type timingEntry struct {
	Kind  CommandKind
	Delay uint64
}

// TimingTable is the static, precomputed (relationship, issued-kind) ->
// []( future-kind, delay ) mapping every JEDEC timing parameter
// compiles down to (spec §3, §9). It is immutable after construction
// and safe for concurrent read access from every channel.
type TimingTable struct {
	entries [numRelationships][numCommandKinds][]timingEntry
}

// BuildTimingTable derives the full timing table from p, following the
// parameter-to-derived-delay formulas of original_source/src/timing.cc.
// When p.BankGroups == 1, "long" (bank-group-aware) delays fall back to
// their "short" equivalents (spec §8 boundary behavior).
func BuildTimingTable(p Params) *TimingTable {
	burst := p.burstCycle()
	readDelay := p.readDelay()
	writeDelay := p.writeDelay()

	readToReadL := maxU(uint64(burst), uint64(p.TCCDL))
	readToReadS := maxU(uint64(burst), uint64(p.TCCDS))
	readToReadO := uint64(burst + p.TRTRS)
	readToWrite := readDelay + uint64(burst) - writeDelay + uint64(p.TRPRE) + uint64(p.TRTRS)
	readToWriteO := readDelay + uint64(burst) + uint64(p.TRTRS) - writeDelay
	readToPrecharge := uint64(p.AL + p.TRTP)
	readPToActivate := uint64(p.AL+burst+p.TRTP+p.TRP)

	writeToReadL := writeDelay + uint64(p.TWTRL)
	writeToReadS := writeDelay + uint64(p.TWTRS)
	writeToReadO := writeDelay + uint64(burst) + uint64(p.TRTRS) - readDelay
	writeToWriteL := maxU(uint64(burst), uint64(p.TCCDL))
	writeToWriteS := maxU(uint64(burst), uint64(p.TCCDS))
	writeToWriteO := uint64(burst + p.TWPRE)
	writeToPrecharge := writeDelay + uint64(burst) + uint64(p.TWR)

	prechargeToActivate := uint64(p.TRP)
	prechargeToPrecharge := uint64(p.TPPD)
	readToActivate := readToPrecharge + prechargeToActivate
	writeToActivate := writeToPrecharge + prechargeToActivate

	activateToActivate := uint64(p.TRAS + p.TRP) // tRC
	activateToActivateL := uint64(p.TRRDL)
	activateToActivateS := uint64(p.TRRDS)
	activateToPrecharge := uint64(p.TRAS)

	var activateToRead, activateToWrite uint64
	if p.Protocol.IsGDDR() || p.Protocol.IsHBM() {
		activateToRead = uint64(p.TRCDRD)
		activateToWrite = uint64(p.TRCDWR)
	} else {
		activateToRead = uint64(p.TRCD - p.AL)
		activateToWrite = uint64(p.TRCD - p.AL)
	}
	activateToRefresh := activateToActivate // must precharge before refresh: tRC

	refreshToRefresh := uint64(p.TRRDS) // tRREFD stand-in: shortest inter-bank spacing
	refreshToActivate := refreshToRefresh

	refreshCycle := uint64(p.TRFC)
	refreshCycleBank := uint64(p.TRFCb)

	selfRefreshEntryToExit := uint64(p.TCKESR)
	selfRefreshExit := uint64(p.TXS)

	if !p.bankGroupsEffective() {
		readToReadL = maxU(uint64(burst), uint64(p.TCCDS))
		writeToReadL = writeDelay + uint64(p.TWTRS)
		writeToWriteL = maxU(uint64(burst), uint64(p.TCCDS))
		activateToActivateL = activateToActivateS
	}

	t := &TimingTable{}

	set := func(rel Relationship, issued CommandKind, entries ...timingEntry) {
		t.entries[rel][issued] = entries
	}

	// READ
	set(SameBank, READ,
		timingEntry{READ, readToReadL}, timingEntry{WRITE, readToWrite},
		timingEntry{READ_PRECHARGE, readToReadL}, timingEntry{WRITE_PRECHARGE, readToWrite},
		timingEntry{PRECHARGE, readToPrecharge})
	set(OtherBanksSameGroup, READ,
		timingEntry{READ, readToReadL}, timingEntry{WRITE, readToWrite},
		timingEntry{READ_PRECHARGE, readToReadL}, timingEntry{WRITE_PRECHARGE, readToWrite})
	set(OtherGroupsSameRank, READ,
		timingEntry{READ, readToReadS}, timingEntry{WRITE, readToWrite},
		timingEntry{READ_PRECHARGE, readToReadS}, timingEntry{WRITE_PRECHARGE, readToWrite})
	set(OtherRanks, READ,
		timingEntry{READ, readToReadO}, timingEntry{WRITE, readToWriteO},
		timingEntry{READ_PRECHARGE, readToReadO}, timingEntry{WRITE_PRECHARGE, readToWriteO})

	// WRITE
	set(SameBank, WRITE,
		timingEntry{READ, writeToReadL}, timingEntry{WRITE, writeToWriteL},
		timingEntry{READ_PRECHARGE, writeToReadL}, timingEntry{WRITE_PRECHARGE, writeToWriteL},
		timingEntry{PRECHARGE, writeToPrecharge})
	set(OtherBanksSameGroup, WRITE,
		timingEntry{READ, writeToReadL}, timingEntry{WRITE, writeToWriteL},
		timingEntry{READ_PRECHARGE, writeToReadL}, timingEntry{WRITE_PRECHARGE, writeToWriteL})
	set(OtherGroupsSameRank, WRITE,
		timingEntry{READ, writeToReadS}, timingEntry{WRITE, writeToWriteS},
		timingEntry{READ_PRECHARGE, writeToReadS}, timingEntry{WRITE_PRECHARGE, writeToWriteS})
	set(OtherRanks, WRITE,
		timingEntry{READ, writeToReadO}, timingEntry{WRITE, writeToWriteO},
		timingEntry{READ_PRECHARGE, writeToReadO}, timingEntry{WRITE_PRECHARGE, writeToWriteO})

	// READ_PRECHARGE
	set(SameBank, READ_PRECHARGE,
		timingEntry{ACTIVATE, readPToActivate}, timingEntry{REFRESH, readToActivate},
		timingEntry{REFRESH_BANK, readToActivate}, timingEntry{SELF_REFRESH_ENTER, readToActivate})
	set(OtherBanksSameGroup, READ_PRECHARGE,
		timingEntry{READ, readToReadL}, timingEntry{WRITE, readToWrite},
		timingEntry{READ_PRECHARGE, readToReadL}, timingEntry{WRITE_PRECHARGE, readToWrite})
	set(OtherGroupsSameRank, READ_PRECHARGE,
		timingEntry{READ, readToReadS}, timingEntry{WRITE, readToWrite},
		timingEntry{READ_PRECHARGE, readToReadS}, timingEntry{WRITE_PRECHARGE, readToWrite})
	set(OtherRanks, READ_PRECHARGE,
		timingEntry{READ, readToReadO}, timingEntry{WRITE, readToWriteO},
		timingEntry{READ_PRECHARGE, readToReadO}, timingEntry{WRITE_PRECHARGE, readToWriteO})

	// WRITE_PRECHARGE
	set(SameBank, WRITE_PRECHARGE,
		timingEntry{ACTIVATE, writeToActivate}, timingEntry{REFRESH, writeToActivate},
		timingEntry{REFRESH_BANK, writeToActivate}, timingEntry{SELF_REFRESH_ENTER, writeToActivate})
	set(OtherBanksSameGroup, WRITE_PRECHARGE,
		timingEntry{READ, writeToReadL}, timingEntry{WRITE, writeToWriteL},
		timingEntry{READ_PRECHARGE, writeToReadL}, timingEntry{WRITE_PRECHARGE, writeToWriteL})
	set(OtherGroupsSameRank, WRITE_PRECHARGE,
		timingEntry{READ, writeToReadS}, timingEntry{WRITE, writeToWriteS},
		timingEntry{READ_PRECHARGE, writeToReadS}, timingEntry{WRITE_PRECHARGE, writeToWriteS})
	set(OtherRanks, WRITE_PRECHARGE,
		timingEntry{READ, writeToReadO}, timingEntry{WRITE, writeToWriteO},
		timingEntry{READ_PRECHARGE, writeToReadO}, timingEntry{WRITE_PRECHARGE, writeToWriteO})

	// ACTIVATE
	set(SameBank, ACTIVATE,
		timingEntry{ACTIVATE, activateToActivate}, timingEntry{READ, activateToRead},
		timingEntry{WRITE, activateToWrite}, timingEntry{READ_PRECHARGE, activateToRead},
		timingEntry{WRITE_PRECHARGE, activateToWrite}, timingEntry{PRECHARGE, activateToPrecharge})
	set(OtherBanksSameGroup, ACTIVATE,
		timingEntry{ACTIVATE, activateToActivateL}, timingEntry{REFRESH_BANK, activateToRefresh})
	set(OtherGroupsSameRank, ACTIVATE,
		timingEntry{ACTIVATE, activateToActivateS}, timingEntry{REFRESH_BANK, activateToRefresh})

	// PRECHARGE
	set(SameBank, PRECHARGE,
		timingEntry{ACTIVATE, prechargeToActivate}, timingEntry{REFRESH, prechargeToActivate},
		timingEntry{REFRESH_BANK, prechargeToActivate}, timingEntry{SELF_REFRESH_ENTER, prechargeToActivate})
	if p.Protocol.IsGDDR() || p.Protocol == LPDDR4 {
		set(OtherBanksSameGroup, PRECHARGE, timingEntry{PRECHARGE, prechargeToPrecharge})
		set(OtherGroupsSameRank, PRECHARGE, timingEntry{PRECHARGE, prechargeToPrecharge})
	}

	// REFRESH_BANK (the refreshed bank waits tRFCb; other banks in the
	// same group/rank see the cross-bank refresh delay)
	set(SameBank, REFRESH_BANK,
		timingEntry{ACTIVATE, refreshCycleBank}, timingEntry{REFRESH, refreshCycleBank},
		timingEntry{REFRESH_BANK, refreshCycleBank}, timingEntry{SELF_REFRESH_ENTER, refreshCycleBank})
	set(OtherBanksSameGroup, REFRESH_BANK,
		timingEntry{ACTIVATE, refreshToActivate}, timingEntry{REFRESH_BANK, refreshToRefresh})
	set(OtherGroupsSameRank, REFRESH_BANK,
		timingEntry{ACTIVATE, refreshToActivate}, timingEntry{REFRESH_BANK, refreshToRefresh})

	// REFRESH / SELF_REFRESH_ENTER / SELF_REFRESH_EXIT: rank-wide.
	set(SameRank, REFRESH,
		timingEntry{ACTIVATE, refreshCycle}, timingEntry{REFRESH, refreshCycle},
		timingEntry{SELF_REFRESH_ENTER, refreshCycle})
	set(SameRank, SELF_REFRESH_ENTER,
		timingEntry{SELF_REFRESH_EXIT, selfRefreshEntryToExit})
	set(SameRank, SELF_REFRESH_EXIT,
		timingEntry{ACTIVATE, selfRefreshExit}, timingEntry{REFRESH, selfRefreshExit},
		timingEntry{SELF_REFRESH_ENTER, selfRefreshExit})

	return t
}

// Entries returns the (future-kind, delay) list for the given
// relationship and issued-command kind.
func (t *TimingTable) Entries(rel Relationship, issued CommandKind) []timingEntry {
	return t.entries[rel][issued]
}

func maxU(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
