package validate

import "testing"

func TestContainerID(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"c123456789ab", true},                                                   // 12 hex
		{"C123456789AB", true},                                                   // mixed case, 12
		{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", true}, // 64 hex
		{"c123456789a", false},  // 11
		{"c123456789abc", false}, // 13
		{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcde", false},  // 63
		{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0", false}, // 65
		{"zzz456789ab1", false}, // non-hex
	}
	for _, c := range cases {
		if got := ContainerID(c.s); got != c.want {
			t.Errorf("ContainerID(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}

func TestServerID(t *testing.T) {
	if !ServerID("web-1.east_01") {
		t.Error("expected valid server id to pass")
	}
	if ServerID("") {
		t.Error("expected empty server id to fail")
	}
	if ServerID(" has space") {
		t.Error("expected server id with space to fail")
	}
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	if ServerID(string(long)) {
		t.Error("expected 64-char server id to fail")
	}
}

func TestPublicKey(t *testing.T) {
	valid := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
	if len(valid) != 44 {
		t.Fatalf("fixture isn't 44 chars: %d", len(valid))
	}
	if !PublicKey(valid) {
		t.Error("expected valid base64 pubkey to pass")
	}
	if PublicKey(valid[:43]) {
		t.Error("expected truncated pubkey to fail")
	}
	if PublicKey("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA") {
		t.Error("expected pubkey without padding to fail")
	}
}

func TestIPv4(t *testing.T) {
	if !IPv4("1.2.3.4") {
		t.Error("expected 1.2.3.4 to be valid")
	}
	if IPv4("01.02.03.04") {
		t.Error("expected leading-zero octets to be rejected")
	}
	if IPv4("256.1.1.1") {
		t.Error("expected out-of-range octet to be rejected")
	}
	if IPv4("1.2.3") {
		t.Error("expected too-few octets to be rejected")
	}
}

func TestIPv6(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"::1", true},
		{"fd00::2", true},
		{"2001:db8::ff00:42:8329", true},
		{"::ffff:192.0.2.1", true},
		{"1.2.3.4", false},
		{"not-an-ip", false},
	}
	for _, c := range cases {
		if got := IPv6(c.s); got != c.want {
			t.Errorf("IPv6(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}

func TestCIDR(t *testing.T) {
	if !CIDR("10.210.1.0/24") {
		t.Error("expected valid IPv4 CIDR to pass")
	}
	if !CIDR("fd00::2/128") {
		t.Error("expected valid IPv6 CIDR to pass")
	}
	if CIDR("10.210.1.0") {
		t.Error("expected address without prefix to fail")
	}
	if CIDR("10.210.1.0/99") {
		t.Error("expected out-of-range prefix to fail")
	}
}

func TestEndpoint(t *testing.T) {
	if !Endpoint("1.2.3.4:31820") {
		t.Error("expected IPv4 endpoint to pass")
	}
	if !Endpoint("[::1]:31820") {
		t.Error("expected bracketed IPv6 endpoint to pass")
	}
	if Endpoint("1.2.3.4:0") {
		t.Error("expected port 0 to be rejected")
	}
	if Endpoint("1.2.3.4:70000") {
		t.Error("expected out-of-range port to be rejected")
	}
	if Endpoint("1.2.3.4") {
		t.Error("expected missing port to be rejected")
	}
}

func TestQuoteSQL(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"plain":         "plain",
		"O'Brien":       "O''Brien",
		"''already''":   "''''already''''",
	}
	for in, want := range cases {
		if got := QuoteSQL(in); got != want {
			t.Errorf("QuoteSQL(%q) = %q, want %q", in, got, want)
		}
	}
}
