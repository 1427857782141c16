package dram

import "testing"

func testWidths() FieldWidths {
	var w FieldWidths
	w[FieldChannel] = 1
	w[FieldRank] = 1
	w[FieldBankGroup] = 2
	w[FieldBank] = 2
	w[FieldRow] = 16
	w[FieldColumn] = 10
	return w
}

func TestNewAddressMappingRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		mapping string
	}{
		{"too short", "rorabgbachc"},
		{"too long", "rorabgbachcoxx"},
		{"unknown token", "rorabgbaxxco"},
		{"duplicate field", "rorabgbaroco"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewAddressMapping(tc.mapping, testWidths(), 6); err == nil {
				t.Fatalf("expected error for mapping %q", tc.mapping)
			}
		})
	}
}

func TestAddressDecodeEncodeRoundTrip(t *testing.T) {
	m, err := NewAddressMapping("rocobgbarach", testWidths(), 6)
	if err != nil {
		t.Fatalf("NewAddressMapping: %v", err)
	}

	widths := testWidths()
	var total uint
	for _, w := range widths {
		total += w
	}

	for _, phys := range []uint64{0, 1 << 6, 0x1234 << 6, (uint64(1)<<total - 1) << 6} {
		addr := m.Decode(phys)
		got := m.Encode(addr)
		if got != phys {
			t.Errorf("Encode(Decode(%#x)) = %#x, want %#x", phys, got, phys)
		}
	}
}

func TestAddressDecodeFieldOrder(t *testing.T) {
	// Mapping "rocobgbarach": most-significant first is ro, then co, bg,
	// ba, ra, ch (least-significant). With the widths from testWidths,
	// ch occupies the single least-significant bit.
	m, err := NewAddressMapping("rocobgbarach", testWidths(), 0)
	if err != nil {
		t.Fatalf("NewAddressMapping: %v", err)
	}
	addr := m.Decode(1) // only the least-significant bit set: channel=1
	if addr.Channel != 1 {
		t.Errorf("Channel = %d, want 1", addr.Channel)
	}
	if addr.Rank != 0 || addr.Bank != 0 || addr.BankGroup != 0 || addr.Row != 0 || addr.Column != 0 {
		t.Errorf("unexpected non-zero field in %+v", addr)
	}
}
