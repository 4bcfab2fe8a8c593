package format

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blackbridge/blackbridge/settings"
)

// versionPattern matches the release number in the tool's --version banner,
// e.g. "black, 24.3.0 (compiled: yes)" or "black, 22.1b0".
var versionPattern = regexp.MustCompile(`\d+(\.\d+)+[a-z0-9]*|\d+\.\d+[a-z]\d+`)

// ProbeVersion asks the configured strategy for the formatter's version.
func (f *Formatter) ProbeVersion(ctx context.Context, ws settings.WorkspaceSettings) (string, error) {
	res, err := f.dispatcher.Dispatch(ctx, ws, []string{"--version"}, false, "")
	if err != nil {
		return "", err
	}
	v := versionPattern.FindString(res.Stdout)
	if v == "" {
		return "", fmt.Errorf("format: no version in output %q", strings.TrimSpace(res.Stdout))
	}
	return v, nil
}

// CheckVersions probes every registered workspace, logs the detected
// version, and raises an error-level entry for releases older than
// MinVersion. Probe failures are logged and skipped; a missing or broken
// formatter surfaces again, with better context, on first use.
func (f *Formatter) CheckVersions(ctx context.Context) {
	for _, ws := range f.registry.All() {
		v, err := f.ProbeVersion(ctx, ws)
		if err != nil {
			f.logger.Warn("version probe failed", "workspace", ws.WorkspaceID, "error", err)
			continue
		}
		f.logger.Info("formatter version", "workspace", ws.WorkspaceID, "version", v)
		if !f.versionCheck(v) {
			f.logger.Error(fmt.Sprintf(
				"%s version %s for %s is not supported, upgrade to %s or newer",
				DisplayName(), v, ws.WorkspaceID, MinVersion,
			))
		}
	}
}

// OlderThan reports whether version a precedes version b. Versions are
// dotted integers with an optional pre-release suffix on the last segment
// ("22.1b0"); a pre-release sorts before the corresponding release.
func OlderThan(a, b string) bool {
	an, apre := splitVersion(a)
	bn, bpre := splitVersion(b)
	for i := 0; i < len(an) || i < len(bn); i++ {
		av, bv := 0, 0
		if i < len(an) {
			av = an[i]
		}
		if i < len(bn) {
			bv = bn[i]
		}
		if av != bv {
			return av < bv
		}
	}
	if apre != bpre {
		if apre == "" {
			return false
		}
		if bpre == "" {
			return true
		}
		return apre < bpre
	}
	return false
}

func splitVersion(v string) ([]int, string) {
	var nums []int
	pre := ""
	for _, seg := range strings.Split(v, ".") {
		i := 0
		for i < len(seg) && seg[i] >= '0' && seg[i] <= '9' {
			i++
		}
		if i > 0 {
			n, _ := strconv.Atoi(seg[:i])
			nums = append(nums, n)
		}
		if i < len(seg) {
			pre = seg[i:]
			break
		}
	}
	return nums, pre
}
