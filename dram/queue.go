package dram

// queueKey identifies one command queue: either a (rank, bank-group,
// bank) triple (QueuePerBank) or a rank alone (QueuePerRank, where
// bank-group/bank are always 0 and every request for the rank shares
// one FIFO).
type queueKey struct {
	rank, bankGroup, bank int
}

// CommandQueue holds pending requests, partitioned per spec.md §4.3's
// queue_structure, and implements the FR-FCFS arbiter that picks which
// command to issue each cycle.
type CommandQueue struct {
	params Params
	cs     *ChannelState

	size int
	keys []queueKey // fixed iteration order for round-robin
	q    map[queueKey][]*Request

	cursor int // index into keys, rotates even on non-selection

	issued []*Request // requests whose column command has issued, awaiting retirement

	rankEmpty     []bool   // per rank: are all of that rank's queues empty?
	rankEmptyFrom []uint64 // cycle at which rankEmpty[r] last became true

	numRWRowHitsPendingRefresh uint64 // starvation bound, spec §4.4
}

// NewCommandQueue builds the per-(rank,bankgroup,bank) or per-rank
// queue set for one channel.
func NewCommandQueue(p Params, cs *ChannelState) *CommandQueue {
	cq := &CommandQueue{
		params:        p,
		cs:            cs,
		size:          p.QueueSize,
		q:             make(map[queueKey][]*Request),
		rankEmpty:     make([]bool, p.Ranks),
		rankEmptyFrom: make([]uint64, p.Ranks),
	}

	switch p.QueueStructure {
	case QueuePerRank:
		for r := 0; r < p.Ranks; r++ {
			k := queueKey{rank: r}
			cq.keys = append(cq.keys, k)
			cq.q[k] = nil
		}
	default: // QueuePerBank
		for r := 0; r < p.Ranks; r++ {
			for b := 0; b < p.BanksPerGroup; b++ {
				for g := 0; g < p.BankGroups; g++ {
					k := queueKey{rank: r, bankGroup: g, bank: b}
					cq.keys = append(cq.keys, k)
					cq.q[k] = nil
				}
			}
		}
	}
	for r := range cq.rankEmpty {
		cq.rankEmpty[r] = true
	}
	return cq
}

func (cq *CommandQueue) keyFor(a Address) queueKey {
	if cq.params.QueueStructure == QueuePerRank {
		return queueKey{rank: a.Rank}
	}
	return queueKey{rank: a.Rank, bankGroup: a.BankGroup, bank: a.Bank}
}

// WillAccept reports whether InsertRequest would succeed for an
// address with this target queue right now.
func (cq *CommandQueue) WillAccept(a Address) bool {
	k := cq.keyFor(a)
	return len(cq.q[k]) < cq.size
}

// InsertRequest enqueues req onto its target queue, rejecting if that
// queue is already at capacity (spec §4.3 insertion contract). No
// reordering across queues ever occurs.
func (cq *CommandQueue) InsertRequest(req *Request) bool {
	k := cq.keyFor(req.Addr)
	if len(cq.q[k]) >= cq.size {
		return false
	}
	cq.q[k] = append(cq.q[k], req)
	cq.rankEmpty[req.Addr.Rank] = false
	return true
}

// GetCommandToIssue runs one round of the FR-FCFS arbiter (spec §4.3):
// queues are visited in rotating (rank, bank, bank-group) order, bank
// group varying fastest, advancing the cursor even when a queue yields nothing, so no queue
// is persistently favored. The first ready request's required command
// is returned; if that command is the request's own final column op,
// the request is moved to the issued list and erased from its queue.
func (cq *CommandQueue) GetCommandToIssue(now uint64) (Command, bool) {
	n := len(cq.keys)
	for i := 0; i < n; i++ {
		k := cq.keys[cq.cursor]
		cq.cursor = (cq.cursor + 1) % n

		queue := cq.q[k]
		for idx, req := range queue {
			cmd := Command{Kind: req.cmd, Addr: req.Addr}
			required := cq.cs.RequiredCommand(cmd)
			if !cq.cs.IsReady(required, now) {
				continue
			}
			if required.Kind == req.cmd {
				if cq.cs.Bank(req.Addr.Rank, req.Addr.BankGroup, req.Addr.Bank).RefreshWaiting() {
					cq.RecordRowHitPendingRefresh()
				}
				cq.dequeue(k, idx, now)
				cq.finishRequest(req, required, now)
				return required, true
			}
			return required, true
		}
	}
	return Command{}, false
}

func (cq *CommandQueue) dequeue(k queueKey, idx int, now uint64) {
	q := cq.q[k]
	cq.q[k] = append(q[:idx:idx], q[idx+1:]...)
	if len(cq.q[k]) == 0 {
		cq.markRankEmptyIfAll(k.rank, now)
	}
}

func (cq *CommandQueue) markRankEmptyIfAll(rank int, now uint64) {
	for _, k := range cq.keys {
		if k.rank != rank {
			continue
		}
		if len(cq.q[k]) != 0 {
			return
		}
	}
	if !cq.rankEmpty[rank] {
		cq.rankEmpty[rank] = true
		cq.rankEmptyFrom[rank] = now
	}
}

func (cq *CommandQueue) finishRequest(req *Request, issued Command, now uint64) {
	var delay uint64
	if issued.Kind.IsWrite() {
		delay = cq.params.writeDelay()
	} else {
		delay = cq.params.readDelay()
	}
	req.ExitCycle = now + delay
	cq.issued = append(cq.issued, req)
}

// AggressivePrecharge scans every bank for one whose row-hit count has
// reached its cap and whose queue holds no pending request for the
// open row; if found and ready, it returns a standalone PRECHARGE for
// the controller to issue (spec §4.3). Called only when the normal FR-FCFS pass yields nothing this
// cycle — see SPEC_FULL.md Open Question (a).
func (cq *CommandQueue) AggressivePrecharge(now uint64) (Command, bool) {
	if !cq.params.AggressivePrechargingEnabled {
		return Command{}, false
	}
	for r := 0; r < cq.params.Ranks; r++ {
		for g := 0; g < cq.params.BankGroups; g++ {
			for b := 0; b < cq.params.BanksPerGroup; b++ {
				bs := cq.cs.Bank(r, g, b)
				if bs.State() != Open || !bs.AtRowHitCap() {
					continue
				}
				if cq.hasPendingHit(r, g, b, bs.OpenRow()) {
					continue
				}
				cmd := Command{Kind: PRECHARGE, Addr: Address{Rank: r, BankGroup: g, Bank: b}}
				if cq.cs.IsReady(cmd, now) {
					return cmd, true
				}
			}
		}
	}
	return Command{}, false
}

func (cq *CommandQueue) hasPendingHit(rank, bg, bank, row int) bool {
	for _, k := range cq.keys {
		if cq.params.QueueStructure == QueuePerBank && (k.rank != rank || k.bankGroup != bg || k.bank != bank) {
			continue
		}
		if cq.params.QueueStructure == QueuePerRank && k.rank != rank {
			continue
		}
		for _, req := range cq.q[k] {
			if req.Addr.BankGroup == bg && req.Addr.Bank == bank && req.Addr.Row == row {
				return true
			}
		}
	}
	return false
}

// RankEmpty reports whether rank's queue(s) are currently empty, and
// the cycle since which they have been (spec §4.3 per-rank idleness
// tracking, used to steer self-refresh entry).
func (cq *CommandQueue) RankEmpty(rank int) (empty bool, since uint64) {
	return cq.rankEmpty[rank], cq.rankEmptyFrom[rank]
}

// IssuedRequests returns the list of requests awaiting retirement.
func (cq *CommandQueue) IssuedRequests() []*Request {
	return cq.issued
}

// RemoveIssued drops the request at index i from the issued list
// (called by the controller after its callback fires).
func (cq *CommandQueue) RemoveIssued(i int) {
	cq.issued = append(cq.issued[:i:i], cq.issued[i+1:]...)
}

// RecordRowHitPendingRefresh increments the starvation counter used to
// bound how long a row-buffer hit stream may delay a pending refresh
// (spec §4.4).
func (cq *CommandQueue) RecordRowHitPendingRefresh() {
	cq.numRWRowHitsPendingRefresh++
}

// RowHitsPendingRefresh returns the accumulated starvation counter.
func (cq *CommandQueue) RowHitsPendingRefresh() uint64 {
	return cq.numRWRowHitsPendingRefresh
}
