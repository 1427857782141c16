package dram

import "fmt"

// Protocol identifies the JEDEC-style DRAM standard being modeled. Each
// protocol selects which burst-cycle divisor applies and whether the
// GDDR 32-activation-window and HBM dual-issue rules are in effect.
type Protocol uint8

const (
	DDR3 Protocol = iota
	DDR4
	LPDDR
	LPDDR3
	LPDDR4
	GDDR5
	GDDR5X
	HBM
	HBM2
	HMC
)

var protocolNames = map[string]Protocol{
	"DDR3":   DDR3,
	"DDR4":   DDR4,
	"LPDDR":  LPDDR,
	"LPDDR3": LPDDR3,
	"LPDDR4": LPDDR4,
	"GDDR5":  GDDR5,
	"GDDR5X": GDDR5X,
	"HBM":    HBM,
	"HBM2":   HBM2,
	"HMC":    HMC,
}

// ParseProtocol resolves the INI-configured protocol name. An unknown
// name is a fatal configuration error (spec §6, §7).
func ParseProtocol(name string) (Protocol, error) {
	p, ok := protocolNames[name]
	if !ok {
		return 0, fmt.Errorf("dram: unknown protocol %q", name)
	}
	return p, nil
}

func (p Protocol) String() string {
	for name, v := range protocolNames {
		if v == p {
			return name
		}
	}
	return "unknown"
}

// IsGDDR reports whether p is GDDR5 or GDDR5X, which use the
// 32-activation-window check and precharge-to-precharge (tPPD) timing
// in addition to DDR's four-activation window.
func (p Protocol) IsGDDR() bool {
	return p == GDDR5 || p == GDDR5X
}

// IsHBM reports whether p is HBM or HBM2, which may dual-issue one
// column command alongside one non-column command in the same cycle.
func (p Protocol) IsHBM() bool {
	return p == HBM || p == HBM2
}

// BurstCycleDivisor returns the number of beats per bus cycle used to
// convert burst length (BL) into burst_cycle (the number of bus cycles
// one column access occupies): BL/2 for most protocols, BL/4 for
// GDDR5, BL/8 for GDDR5X.
func (p Protocol) BurstCycleDivisor() int {
	switch p {
	case GDDR5:
		return 4
	case GDDR5X:
		return 8
	default:
		return 2
	}
}
