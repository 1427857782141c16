package dram

import "sync/atomic"

// MemorySystem is the host-facing front end (spec §6): it owns one
// independent Controller per channel, decodes physical addresses into
// per-channel coordinates, and assigns each accepted request a unique
// ID before handing it to that channel's command queue.
type MemorySystem struct {
	params  Params
	mapping *AddressMapping
	timing  *TimingTable
	chans   []*Controller

	nextID uint64
}

// NewMemorySystem builds the address mapping (aborting if p's mapping
// string is malformed) and one Controller per channel, and wires cb to every channel so host code
// receives read/write completions regardless of which channel served
// them.
func NewMemorySystem(p Params, stats EnergyRecorder, cb Callbacks) *MemorySystem {
	widths := FieldWidths{}
	widths[FieldChannel] = p.channelWidth()
	widths[FieldRank] = p.rankWidth()
	widths[FieldBankGroup] = p.groupWidth()
	widths[FieldBank] = p.bankWidth()
	widths[FieldRow] = p.rowWidth()
	widths[FieldColumn] = p.colWidth()

	mapping, err := NewAddressMapping(p.AddressMapping, widths, p.offsetBits())
	if err != nil {
		Abort("memorysystem: %v", err)
	}

	ms := &MemorySystem{
		params:  p,
		mapping: mapping,
		timing:  BuildTimingTable(p),
	}
	for ch := 0; ch < p.Channels; ch++ {
		ms.chans = append(ms.chans, NewController(p, stats, cb))
	}
	return ms
}

// SetTracer installs t to receive every command issued by every
// channel, in issue order, for the stable validation-trace format
// (spec §6).
func (ms *MemorySystem) SetTracer(t CommandTracer) {
	for _, c := range ms.chans {
		c.SetTracer(t)
	}
}

// BurstLength returns the configured burst length.
func (ms *MemorySystem) BurstLength() int { return ms.params.BL }

// BusBits returns the configured per-channel data bus width in bits.
func (ms *MemorySystem) BusBits() int { return ms.params.BusWidth }

// ChannelCount returns the number of independent channels.
func (ms *MemorySystem) ChannelCount() int { return len(ms.chans) }

// QueueSize returns the configured per-queue capacity.
func (ms *MemorySystem) QueueSize() int { return ms.params.QueueSize }

func (ms *MemorySystem) decode(phys uint64) (int, Address) {
	addr := ms.mapping.Decode(phys)
	return addr.Channel, addr
}

// WillAcceptTransaction reports whether AddTransaction would succeed
// for phys right now, without mutating any state.
func (ms *MemorySystem) WillAcceptTransaction(phys uint64) bool {
	ch, addr := ms.decode(phys)
	return ms.chans[ch].WillAcceptTransaction(addr)
}

// AddTransaction enqueues a request for phys, returning the assigned
// request ID and whether it was accepted. isWrite selects WRITE vs
// READ command semantics (spec §6 add_transaction).
func (ms *MemorySystem) AddTransaction(phys uint64, isWrite bool, now uint64) (uint64, bool) {
	ch, addr := ms.decode(phys)
	kind := ReqRead
	if isWrite {
		kind = ReqWrite
	}
	id := atomic.AddUint64(&ms.nextID, 1)
	req := newRequest(id, kind, addr, now)
	if !ms.chans[ch].AddTransaction(req) {
		return 0, false
	}
	return id, true
}

// ClockTick advances every channel by one cycle. Channels are
// independent: a command queue stall on one never affects another.
func (ms *MemorySystem) ClockTick() {
	for _, c := range ms.chans {
		c.ClockTick()
	}
}

// Channel returns the Controller for the given channel index, for
// diagnostics and tests.
func (ms *MemorySystem) Channel(i int) *Controller {
	return ms.chans[i]
}
