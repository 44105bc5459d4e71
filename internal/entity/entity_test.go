package entity

import "testing"

func TestCanonicalDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "  Acme   Goods ", "Acme Goods"},
		{"strips trailing integer", "Acme 2", "Acme"},
		{"keeps interior numbers", "Studio 54 Candles", "Studio 54 Candles"},
		{"keeps punctuation", "Oat-ly!", "Oat-ly!"},
		{"pure number survives", "47", "47"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalDisplayName(tt.input); got != tt.expected {
				t.Errorf("CanonicalDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalDisplayName_Idempotent(t *testing.T) {
	inputs := []string{"Acme 2", "  Brand   X  3 ", "Trailhead Gear"}
	for _, in := range inputs {
		once := CanonicalDisplayName(in)
		twice := CanonicalDisplayName(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestKeyFromName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"drops legal suffix", "Acme Goods Inc", "acme goods"},
		{"drops trademark glyphs", "Acme™ Goods®", "acme goods"},
		{"drops boilerplate", "The Official Acme Store", "acme"},
		{"collapses punctuation", "acme-goods.co", "acme goods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromName(tt.input); got != tt.expected {
				t.Errorf("KeyFromName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKeyFromName_WhitespaceInsensitive(t *testing.T) {
	if KeyFromName("Trailhead Gear") != KeyFromName("Trailhead Gear  ") {
		t.Error("trailing whitespace changed the entity key")
	}
	if KeyFromName(" Trailhead   Gear") != KeyFromName("Trailhead Gear") {
		t.Error("interior whitespace changed the entity key")
	}
}

func TestIsGenericName(t *testing.T) {
	tests := []struct {
		input   string
		generic bool
	}{
		{"", true},
		{"acme", true},                       // single token
		{"best outdoor apparel brands", true}, // listicle language
		{"top 10 skincare trends", true},
		{"trailhead gear", false},
		{"acme goods", false},
	}

	for _, tt := range tests {
		if got := IsGenericName(NormalizeCompanyName(tt.input)); got != tt.generic {
			t.Errorf("IsGenericName(%q) = %v, want %v", tt.input, got, tt.generic)
		}
	}
}

func TestDomainLabel(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"trailheadgear.com", "trailheadgear"},
		{"www.trailheadgear.com", "trailheadgear"},
		{"shop.acme.co.uk:443", "acme"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DomainLabel(tt.host); got != tt.expected {
			t.Errorf("DomainLabel(%q) = %q, want %q", tt.host, got, tt.expected)
		}
	}
}

func TestKey(t *testing.T) {
	// Non-generic names key by name, capped at three tokens.
	if got := Key("Trailhead Gear", "https://trailheadgear.com/"); got != "name:trailhead gear" {
		t.Errorf("Key = %q, want name:trailhead gear", got)
	}

	// Generic names fall back to the domain so publisher listicles do not merge.
	if got := Key("Best Outdoor Apparel Brands 2024", "https://blog.example.com/post"); got != "domain:example" {
		t.Errorf("Key = %q, want domain:example", got)
	}
}
