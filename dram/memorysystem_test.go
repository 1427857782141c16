package dram

import "testing"

func testMemorySystemParams() Params {
	p := testParams()
	p.Channels = 2
	p.AddressMapping = "rocobgbarach"
	p.QueueSize = 8
	p.RetirementRate = 1
	return p
}

func TestMemorySystemRoutesByChannel(t *testing.T) {
	p := testMemorySystemParams()
	ms := NewMemorySystem(p, nil, Callbacks{})

	if got := ms.ChannelCount(); got != 2 {
		t.Fatalf("ChannelCount() = %d, want 2", got)
	}

	if !ms.WillAcceptTransaction(0) {
		t.Fatalf("an empty channel should accept a transaction")
	}
	if _, ok := ms.AddTransaction(0, false, 0); !ok {
		t.Fatalf("AddTransaction should succeed into an empty queue")
	}
}

func TestMemorySystemEndToEndCompletion(t *testing.T) {
	p := testMemorySystemParams()
	completed := 0
	cb := Callbacks{
		ReadDone:  func(uint64) { completed++ },
		WriteDone: func(uint64) { completed++ },
	}
	ms := NewMemorySystem(p, nil, cb)

	if _, ok := ms.AddTransaction(0, false, 0); !ok {
		t.Fatalf("AddTransaction should succeed")
	}
	for i := 0; i < 500 && completed == 0; i++ {
		ms.ClockTick()
	}
	if completed != 1 {
		t.Fatalf("expected one completed transaction, got %d", completed)
	}
}
