package normalization

import "testing"

func TestParseInputString_LowersAndTrims(t *testing.T) {
	if got := ParseInputString("  Dana@Example.COM "); got != "dana@example.com" {
		t.Errorf("got %q", got)
	}
}

func TestParseTrackingNumber_UppersAndTrims(t *testing.T) {
	if got := ParseTrackingNumber(" nfd-001 "); got != "NFD-001" {
		t.Errorf("got %q", got)
	}
}

func TestTrimInputString_KeepsCasing(t *testing.T) {
	if got := TrimInputString("  Beirut Port "); got != "Beirut Port" {
		t.Errorf("got %q", got)
	}
}
