package id

import "testing"

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		value, err := NewID()
		if err != nil {
			t.Fatalf("generate id: %v", err)
		}
		if len(value) != 26 {
			t.Fatalf("id length = %d, want 26 (%q)", len(value), value)
		}
		for _, r := range value {
			if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
				t.Fatalf("id %q contains invalid character %q", value, r)
			}
		}
		if seen[value] {
			t.Fatalf("duplicate id generated: %q", value)
		}
		seen[value] = true
	}
}
