package dram

// RequestKind is the host-visible transaction kind: a DRAM request is
// always either a READ or a WRITE (refresh requests are represented
// directly as Commands inside RefreshManager, not as Requests).
type RequestKind uint8

const (
	ReqRead RequestKind = iota
	ReqWrite
)

func (k RequestKind) commandKind(withPrecharge bool) CommandKind {
	switch {
	case k == ReqRead && !withPrecharge:
		return READ
	case k == ReqRead && withPrecharge:
		return READ_PRECHARGE
	case k == ReqWrite && !withPrecharge:
		return WRITE
	default:
		return WRITE_PRECHARGE
	}
}

// Request is a pending host transaction, from submission until its
// resolving column command issues. Addr.Physical carries the original
// 64-bit address back to the host callback on retirement.
type Request struct {
	ID           uint64
	Kind         RequestKind
	Addr         Address
	ArrivalCycle uint64
	ExitCycle    uint64 // set when the resolving column command issues

	// cmd is the column command (READ or WRITE, never the *_PRECHARGE
	// variant) this request resolves to. The row stays open after it
	// issues; aggressive precharge, when enabled, closes rows with a
	// separate standalone PRECHARGE.
	cmd CommandKind
}

func newRequest(id uint64, kind RequestKind, addr Address, arrival uint64) *Request {
	var ck CommandKind
	if kind == ReqRead {
		ck = READ
	} else {
		ck = WRITE
	}
	return &Request{ID: id, Kind: kind, Addr: addr, ArrivalCycle: arrival, cmd: ck}
}
