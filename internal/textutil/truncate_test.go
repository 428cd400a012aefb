package textutil

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"2 eggs and toast", 20, "2 eggs and toast"},
		{"grilled salmon with rice and miso soup", 20, "grilled salmon with "},
		{"鮭の塩焼き定食とお味噌汁と小鉢とデザートのプリン", 20, "鮭の塩焼き定食とお味噌汁と小鉢とデザート"},
		{"abc", 0, ""},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.n); got != tt.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  two\teggs \n and   toast "); got != "two eggs and toast" {
		t.Fatalf("CollapseSpace = %q", got)
	}
}
