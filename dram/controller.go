package dram

// Callbacks delivers completion notifications to the host once a read
// or write's data has crossed the bus (spec §6 register_callbacks).
type Callbacks struct {
	ReadDone  func(addr uint64)
	WriteDone func(addr uint64)
}

// Controller drives one channel's bank state, command queue and
// refresh manager through the per-cycle sequence of spec §4.5: retire
// completed requests, accumulate background energy, steer self-refresh,
// service refresh, otherwise arbitrate the command queue, with an HBM
// second-command attempt and an aggressive-precharge fallback.
type Controller struct {
	params Params
	cs     *ChannelState
	queue  *CommandQueue
	refr   *RefreshManager
	cb     Callbacks

	clock uint64
}

// NewController wires a fresh ChannelState/CommandQueue/RefreshManager
// triple together for one channel.
func NewController(p Params, stats EnergyRecorder, cb Callbacks) *Controller {
	cs := NewChannelState(p, BuildTimingTable(p), stats)
	return &Controller{
		params: p,
		cs:     cs,
		queue:  NewCommandQueue(p, cs),
		refr:   NewRefreshManager(p, cs),
		cb:     cb,
	}
}

// Clock returns the current cycle count.
func (c *Controller) Clock() uint64 { return c.clock }

// SetTracer installs t to receive every command this channel issues.
func (c *Controller) SetTracer(t CommandTracer) {
	c.cs.SetTracer(t)
}

// WillAcceptTransaction reports whether a new request for addr could be
// enqueued right now.
func (c *Controller) WillAcceptTransaction(addr Address) bool {
	return c.queue.WillAccept(addr)
}

// AddTransaction enqueues req, returning false if its target queue is
// full (spec §6 add_transaction contract).
func (c *Controller) AddTransaction(req *Request) bool {
	return c.queue.InsertRequest(req)
}

// ClockTick advances the channel by one cycle, in the fixed order
// spec §4.5 prescribes.
func (c *Controller) ClockTick() {
	c.clock++

	c.retireCompleted()
	c.cs.AccumulateBackgroundEnergy()
	c.steerSelfRefresh()

	if cmd, ok := c.refr.Tick(c.clock); ok {
		if issued, ok := c.tryIssue(cmd); ok {
			if issued.Kind == REFRESH {
				c.refr.Complete(cmd)
			}
			return
		}
	}

	cmd, ok := c.queue.GetCommandToIssue(c.clock)
	if !ok {
		if apCmd, apOk := c.queue.AggressivePrecharge(c.clock); apOk {
			c.issue(apCmd)
		}
		return
	}
	c.issue(cmd)

	if c.params.Protocol.IsHBM() {
		c.attemptDualIssue(cmd)
	}
}

// retireCompleted delivers up to RetirementRate completed requests'
// callbacks this cycle (spec DESIGN NOTES (c)).
func (c *Controller) retireCompleted() {
	retired := 0
	issued := c.queue.IssuedRequests()
	for i := 0; i < len(issued) && retired < c.params.RetirementRate; {
		req := issued[i]
		if req.ExitCycle > c.clock {
			i++
			continue
		}
		c.queue.RemoveIssued(i)
		issued = c.queue.IssuedRequests()
		retired++
		switch req.Kind {
		case ReqRead:
			if c.cb.ReadDone != nil {
				c.cb.ReadDone(req.Addr.Physical)
			}
		case ReqWrite:
			if c.cb.WriteDone != nil {
				c.cb.WriteDone(req.Addr.Physical)
			}
		}
	}
}

// steerSelfRefresh enters self-refresh for any rank that has been idle
// at least IdleCyclesForSelfRefresh cycles, discarding (not deferring)
// any refresh obligation outstanding for it, per Open Question (b).
func (c *Controller) steerSelfRefresh() {
	if !c.params.EnableSelfRefresh {
		return
	}
	for r := 0; r < c.params.Ranks; r++ {
		if c.cs.RankSelfRefresh(r) {
			continue
		}
		empty, since := c.queue.RankEmpty(r)
		if !empty || c.clock-since < c.params.IdleCyclesForSelfRefresh {
			continue
		}
		cmd := Command{Kind: SELF_REFRESH_ENTER, Addr: Address{Rank: r}}
		if issued, ok := c.tryIssue(cmd); ok && issued.Kind == SELF_REFRESH_ENTER {
			c.refr.DiscardPending(r)
		}
	}
}

// tryIssue resolves cmd through RequiredCommand and issues it if ready,
// returning the command actually issued (which may be a preparatory
// command, not cmd itself) and whether anything was issued.
func (c *Controller) tryIssue(cmd Command) (Command, bool) {
	required := c.cs.RequiredCommand(cmd)
	if !c.cs.IsReady(required, c.clock) {
		return Command{}, false
	}
	c.cs.IssueCommand(required, c.clock)
	return required, true
}

func (c *Controller) issue(cmd Command) {
	c.cs.IssueCommand(cmd, c.clock)
}

// attemptDualIssue gives HBM's dual command bus a second, independent
// command this cycle: one column (READ/WRITE-family) command and one
// non-column command may issue together, never two of the same class
// (spec §9 "Heterogeneous command table" HBM note).
func (c *Controller) attemptDualIssue(first Command) {
	wantColumn := !first.Kind.IsReadOrWrite()
	cmd, ok := c.queue.GetCommandToIssue(c.clock)
	if !ok {
		return
	}
	isColumn := cmd.Kind.IsReadOrWrite()
	if wantColumn != isColumn {
		return
	}
	c.issue(cmd)
	c.cs.stats.RecordHBMDualIssue()
}
