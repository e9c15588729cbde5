package clock

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "02.26 (목)"},
		{179_999, "02.26 (목)"},
		{180_000, "02.27 (금)"},
		{3 * 180_000, "03.01 (일)"},
		{-5_000, "02.26 (목)"},
	}

	for _, tt := range tests {
		got := Label(tt.ms)
		if got != tt.want {
			t.Errorf("Label(%d): expected %q, got %q", tt.ms, tt.want, got)
		}
		if again := Label(tt.ms); again != got {
			t.Errorf("Label(%d) not deterministic: %q vs %q", tt.ms, got, again)
		}
	}
}

func TestDateMonotonic(t *testing.T) {
	prev := DateAt(0)
	for ms := int64(0); ms <= 40*RealMsPerVirtualDay; ms += 7_000 {
		d := DateAt(ms)
		if d.Before(prev) {
			t.Fatalf("date went backwards at %d: %v before %v", ms, d, prev)
		}
		prev = d
	}
}

func TestElapsedDays(t *testing.T) {
	if got := ElapsedDays(180_000); got != 1 {
		t.Errorf("expected 1 day, got %d", got)
	}
	if got := ElapsedDays(359_999); got != 1 {
		t.Errorf("expected 1 day, got %d", got)
	}
	if got := ElapsedDays(-1); got != 0 {
		t.Errorf("expected 0 days for negative input, got %d", got)
	}
}

func TestDisplayDate(t *testing.T) {
	if got := DisplayDate("02.27 (금)"); got != "02.27" {
		t.Errorf("expected 02.27, got %q", got)
	}
	if got := StartDisplayDate(); got != "02.26" {
		t.Errorf("expected 02.26, got %q", got)
	}
	if got := DisplayDate("x"); got != "x" {
		t.Errorf("expected short label unchanged, got %q", got)
	}
}
