package dram

import "testing"

func testParams() Params {
	return Params{
		Protocol:      DDR4,
		Ranks:         1,
		BankGroups:    2,
		BanksPerGroup: 4,
		Rows:          1 << 16,
		Columns:       1 << 10,
		BL:            8,
		BusWidth:      64,
		AL:            0,
		CL:            16,
		CWL:           12,
		TCCDL:         6,
		TCCDS:         4,
		TRTRS:         2,
		TRTP:          9,
		TWTRL:         9,
		TWTRS:         3,
		TWR:           16,
		TRP:           16,
		TRRDL:         6,
		TRRDS:         4,
		TRAS:          36,
		TRCD:          16,
		TRFC:          350,
		TRFCb:         120,
		TCKESR:        9,
		TXS:           360,
		TREFI:         7800,
		TFAW:          26,
		RowHitCap:     0,
	}
}

func TestChannelStateActivationWindowThrottles(t *testing.T) {
	p := testParams()
	cs := NewChannelState(p, BuildTimingTable(p), nil)

	// Four ACTIVATEs to distinct banks in the same rank, each at its
	// earliest legal cycle (0, 6, 12, 18 with tRRD_L=6), fit in one tFAW
	// window; a fifth before the first one's cycle + tFAW must block.
	var now uint64
	for b := 0; b < 4; b++ {
		cmd := Command{Kind: ACTIVATE, Addr: Address{Bank: b}}
		now = cs.Bank(0, 0, b).EarliestCycle(ACTIVATE)
		if !cs.IsReady(cmd, now) {
			t.Fatalf("ACTIVATE #%d should be ready at cycle %d", b, now)
		}
		cs.IssueCommand(cmd, now)
	}

	fifth := Command{Kind: ACTIVATE, Addr: Address{BankGroup: 1, Bank: 0}}
	now = cs.Bank(0, 1, 0).EarliestCycle(ACTIVATE)
	if cs.IsReady(fifth, now) {
		t.Fatalf("fifth ACTIVATE within tFAW should not be ready at cycle %d", now)
	}

	later := uint64(p.TFAW) // the first ACTIVATE issued at cycle 0
	if !cs.IsReady(fifth, later) {
		t.Fatalf("fifth ACTIVATE should be ready once the oldest falls outside tFAW")
	}
}

func TestChannelStateRequiredCommandRankWide(t *testing.T) {
	p := testParams()
	cs := NewChannelState(p, BuildTimingTable(p), nil)

	// Open one bank so REFRESH must first resolve to a PRECHARGE on it.
	act := Command{Kind: ACTIVATE, Addr: Address{BankGroup: 0, Bank: 0, Row: 3}}
	cs.IssueCommand(act, 0)

	refresh := Command{Kind: REFRESH}
	required := cs.RequiredCommand(refresh)
	if required.Kind != PRECHARGE {
		t.Fatalf("RequiredCommand(REFRESH) with an open bank = %s, want PRECHARGE", required.Kind)
	}
	if required.Addr.BankGroup != 0 || required.Addr.Bank != 0 {
		t.Fatalf("expected PRECHARGE targeting the open bank, got %+v", required.Addr)
	}

	cs.IssueCommand(required, 100)
	if got := cs.RequiredCommand(refresh); got.Kind != REFRESH {
		t.Fatalf("RequiredCommand(REFRESH) once all banks closed = %s, want REFRESH", got.Kind)
	}
}

type recordingTracer struct {
	clks  []uint64
	kinds []CommandKind
}

func (rt *recordingTracer) TraceCommand(clk uint64, cmd Command) {
	rt.clks = append(rt.clks, clk)
	rt.kinds = append(rt.kinds, cmd.Kind)
}

func TestChannelStateTracerReceivesEveryIssuedCommand(t *testing.T) {
	p := testParams()
	cs := NewChannelState(p, BuildTimingTable(p), nil)
	rt := &recordingTracer{}
	cs.SetTracer(rt)

	cs.IssueCommand(Command{Kind: ACTIVATE, Addr: Address{Row: 1}}, 5)
	cs.IssueCommand(Command{Kind: READ, Addr: Address{Row: 1}}, 20)

	if len(rt.kinds) != 2 || rt.kinds[0] != ACTIVATE || rt.kinds[1] != READ {
		t.Fatalf("tracer recorded kinds %v, want [ACTIVATE READ]", rt.kinds)
	}
	if rt.clks[0] != 5 || rt.clks[1] != 20 {
		t.Fatalf("tracer recorded clks %v, want [5 20]", rt.clks)
	}
}

func TestChannelStateRankAllIdle(t *testing.T) {
	p := testParams()
	cs := NewChannelState(p, BuildTimingTable(p), nil)

	if !cs.RankAllIdle(0) {
		t.Fatalf("a freshly constructed rank should be all-idle")
	}
	cs.IssueCommand(Command{Kind: ACTIVATE, Addr: Address{Row: 1}}, 0)
	if cs.RankAllIdle(0) {
		t.Fatalf("rank with an open bank should not be all-idle")
	}
}
