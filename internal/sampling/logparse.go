package sampling

import (
	"strconv"
	"strings"
)

// Console markers emitted by the integrator driver.
const (
	stepKeyword   = "VERLET"
	unsafeKeyword = "unsafe"
)

// ParseLog summarizes integrator console output. Lines are scanned in
// reverse for the last step-marker line whose trailing tokens all parse as
// numbers; its second token is the step count. Malformed candidate lines
// are skipped, not fatal; no such line yields zero. Independently, the
// unsafe keyword anywhere in the text tags the run "unsafe".
func ParseLog(stdout string) (tag string, steps int) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !strings.Contains(line, stepKeyword) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		numeric := true
		for _, f := range fields[1:] {
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				numeric = false
				break
			}
		}
		if !numeric {
			continue
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		steps = count
		break
	}
	tag = "safe"
	if strings.Contains(stdout, unsafeKeyword) {
		tag = "unsafe"
	}
	return tag, steps
}
