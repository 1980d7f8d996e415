package sampling

import "testing"

func TestParseLogUnsafe(t *testing.T) {
	stdout := `starting integrator
 VERLET    80   0.5  -123.4   300.0
 VERLET   120   0.5  -122.9   301.2
detected unsafe configuration, aborting
`
	tag, steps := ParseLog(stdout)
	if tag != "unsafe" {
		t.Errorf("expected unsafe tag, got %q", tag)
	}
	if steps != 120 {
		t.Errorf("expected last counter 120, got %d", steps)
	}
}

func TestParseLogSafe(t *testing.T) {
	stdout := " VERLET    40   0.5  -123.4\nrun complete\n"
	tag, steps := ParseLog(stdout)
	if tag != "safe" || steps != 40 {
		t.Errorf("got (%q, %d), want (safe, 40)", tag, steps)
	}
}

func TestParseLogNoMarker(t *testing.T) {
	tag, steps := ParseLog("nothing to see here\n")
	if tag != "safe" || steps != 0 {
		t.Errorf("got (%q, %d), want (safe, 0)", tag, steps)
	}
}

func TestParseLogSkipsMalformedLines(t *testing.T) {
	// the header repeats the marker with non-numeric tokens; the scan must
	// skip it and settle on the last numeric line
	stdout := ` VERLET    77   0.5  -123.4
 VERLET  counter  time  energy
`
	tag, steps := ParseLog(stdout)
	if tag != "safe" || steps != 77 {
		t.Errorf("got (%q, %d), want (safe, 77)", tag, steps)
	}
}

func TestParseLogEmpty(t *testing.T) {
	tag, steps := ParseLog("")
	if tag != "safe" || steps != 0 {
		t.Errorf("got (%q, %d), want (safe, 0)", tag, steps)
	}
}
