package dram

import "testing"

func TestBuildTimingTableActivateToRead(t *testing.T) {
	p := testParams()
	tt := BuildTimingTable(p)

	entries := tt.Entries(SameBank, ACTIVATE)
	var gotRead uint64
	found := false
	for _, e := range entries {
		if e.Kind == READ {
			gotRead = e.Delay
			found = true
		}
	}
	if !found {
		t.Fatalf("ACTIVATE SameBank entries missing a READ delay: %v", entries)
	}
	if want := uint64(p.TRCD - p.AL); gotRead != want {
		t.Errorf("activate-to-read delay = %d, want %d (tRCD-AL)", gotRead, want)
	}
}

func TestBuildTimingTableSingleBankGroupSubstitutesShortTiming(t *testing.T) {
	single := testParams()
	single.BankGroups = 1
	tt := BuildTimingTable(single)

	var readToRead uint64
	for _, e := range tt.Entries(SameBank, READ) {
		if e.Kind == READ {
			readToRead = e.Delay
		}
	}
	// With bankgroups==1, the "long" (bank-group-aware) read-to-read
	// delay falls back to the "short" one, using tCCD_S rather than
	// tCCD_L (spec §8 boundary behavior).
	want := maxU(uint64(single.burstCycle()), uint64(single.TCCDS))
	if readToRead != want {
		t.Errorf("read-to-read delay with bankgroups=1 = %d, want %d (tCCD_S substituted for tCCD_L)", readToRead, want)
	}
}

func TestBuildTimingTableGDDRActivateToReadWriteUsesTRCDRDAndTRCDWR(t *testing.T) {
	p := testParams()
	p.Protocol = GDDR5
	p.TRCDRD = 20
	p.TRCDWR = 22
	tt := BuildTimingTable(p)

	var gotRead, gotWrite uint64
	for _, e := range tt.Entries(SameBank, ACTIVATE) {
		switch e.Kind {
		case READ:
			gotRead = e.Delay
		case WRITE:
			gotWrite = e.Delay
		}
	}
	if gotRead != uint64(p.TRCDRD) {
		t.Errorf("GDDR activate-to-read = %d, want tRCDRD=%d", gotRead, p.TRCDRD)
	}
	if gotWrite != uint64(p.TRCDWR) {
		t.Errorf("GDDR activate-to-write = %d, want tRCDWR=%d", gotWrite, p.TRCDWR)
	}
}
