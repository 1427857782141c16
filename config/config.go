// Package config loads a dram.Params from an INI file, using the same
// gopkg.in/ini.v1 library and section/key layout style the rest of the
// corpus reaches for when a project needs a plain text config format.
package config

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/user-none/go-dramsim/dram"
)

// Load reads path and returns a validated dram.Params. Keys absent from
// the file take built-in defaults. An unreadable file, an unknown
// protocol, or values that fail validation are returned as errors: the
// caller is expected to abort startup, not attempt partial operation.
func Load(path string) (dram.Params, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return dram.Params{}, fmt.Errorf("config: loading %s: %w", path, err)
	}

	p := dram.Params{}

	structure := cfg.Section("dram_structure")
	protoName := structure.Key("protocol").MustString("DDR4")
	proto, err := dram.ParseProtocol(protoName)
	if err != nil {
		return dram.Params{}, fmt.Errorf("config: %w", err)
	}
	p.Protocol = proto
	p.Channels = cfg.Section("system").Key("channels").MustInt(1)
	p.ChannelSizeMB = cfg.Section("system").Key("channel_size").MustInt(1024)
	p.Ranks = structure.Key("ranks").MustInt(1)
	p.BankGroups = structure.Key("bankgroups").MustInt(2)
	p.BanksPerGroup = structure.Key("banks_per_group").MustInt(4)
	p.Rows = structure.Key("rows").MustInt(1 << 16)
	p.Columns = structure.Key("columns").MustInt(1 << 10)
	p.DeviceWidth = structure.Key("device_width").MustInt(8)
	p.BusWidth = cfg.Section("system").Key("bus_width").MustInt(64)
	p.BL = structure.Key("BL").MustInt(8)
	p.AddressMapping = cfg.Section("system").Key("address_mapping").MustString("rorabgbachco")

	system := cfg.Section("system")
	switch system.Key("queue_structure").MustString("PER_BANK") {
	case "PER_RANK":
		p.QueueStructure = dram.QueuePerRank
	default:
		p.QueueStructure = dram.QueuePerBank
	}
	p.QueueSize = system.Key("queue_size").MustInt(16)
	p.RetirementRate = system.Key("retirement_rate").MustInt(1)
	p.EnableSelfRefresh = system.Key("enable_self_refresh").MustBool(false)
	p.IdleCyclesForSelfRefresh = uint64(system.Key("idle_cycles_for_self_refresh").MustInt64(1000))
	p.AggressivePrechargingEnabled = system.Key("aggressive_precharging_enabled").MustBool(false)
	p.RowHitCap = system.Key("row_hit_cap").MustInt(0)
	p.ValidationOutputPath = system.Key("validation_output").MustString("")

	timing := cfg.Section("timing")
	p.AL = timing.Key("AL").MustInt(0)
	p.CL = timing.Key("CL").MustInt(16)
	p.CWL = timing.Key("CWL").MustInt(12)
	p.TCCDL = timing.Key("tCCD_L").MustInt(6)
	p.TCCDS = timing.Key("tCCD_S").MustInt(4)
	p.TRTRS = timing.Key("tRTRS").MustInt(2)
	p.TRTP = timing.Key("tRTP").MustInt(9)
	p.TWTRL = timing.Key("tWTR_L").MustInt(9)
	p.TWTRS = timing.Key("tWTR_S").MustInt(3)
	p.TWR = timing.Key("tWR").MustInt(16)
	p.TRP = timing.Key("tRP").MustInt(16)
	p.TRRDL = timing.Key("tRRD_L").MustInt(6)
	p.TRRDS = timing.Key("tRRD_S").MustInt(4)
	p.TRAS = timing.Key("tRAS").MustInt(36)
	p.TRCD = timing.Key("tRCD").MustInt(16)
	p.TRFC = timing.Key("tRFC").MustInt(350)
	p.TRFCb = timing.Key("tRFCb").MustInt(120)
	p.TCKESR = timing.Key("tCKESR").MustInt(9)
	p.TXS = timing.Key("tXS").MustInt(360)
	p.TREFI = timing.Key("tREFI").MustInt(7800)
	p.TREFIb = timing.Key("tREFIb").MustInt(1950)
	p.TFAW = timing.Key("tFAW").MustInt(26)
	p.TRPRE = timing.Key("tRPRE").MustInt(1)
	p.TWPRE = timing.Key("tWPRE").MustInt(1)
	p.TPPD = timing.Key("tPPD").MustInt(4)
	p.T32AW = timing.Key("t32AW").MustInt(208)
	p.TRCDRD = timing.Key("tRCDRD").MustInt(p.TRCD)
	p.TRCDWR = timing.Key("tRCDWR").MustInt(p.TRCD)

	if err := validate(p); err != nil {
		return dram.Params{}, err
	}
	return p, nil
}

func validate(p dram.Params) error {
	if p.Channels <= 0 || p.Ranks <= 0 || p.BankGroups <= 0 || p.BanksPerGroup <= 0 {
		return fmt.Errorf("config: channels, ranks, bankgroups and banks_per_group must all be positive")
	}
	if p.BL <= 0 || p.BusWidth <= 0 {
		return fmt.Errorf("config: BL and bus_width must be positive")
	}
	if len(p.AddressMapping) != 12 {
		return fmt.Errorf("config: address_mapping must be exactly 12 characters, got %q", p.AddressMapping)
	}
	if p.QueueSize <= 0 {
		return fmt.Errorf("config: queue_size must be positive")
	}
	if p.RetirementRate <= 0 {
		return fmt.Errorf("config: retirement_rate must be positive")
	}
	return nil
}
