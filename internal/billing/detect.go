package billing

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// OS is the billing category a job's runner falls into.
type OS string

const (
	OSLinux   OS = "linux"
	OSWindows OS = "windows"
	OSMacOS   OS = "macos"
	// OSUnknown covers self-hosted labels nothing matched. Billed at the
	// linux rate as the conservative default.
	OSUnknown OS = "unknown"
)

// Categories lists the fixed OS buckets in display order.
var Categories = []OS{OSLinux, OSWindows, OSMacOS, OSUnknown}

// ParseOS validates a user-supplied OS token from a label mapping.
func ParseOS(s string) (OS, error) {
	switch OS(strings.ToLower(s)) {
	case OSLinux:
		return OSLinux, nil
	case OSWindows:
		return OSWindows, nil
	case OSMacOS:
		return OSMacOS, nil
	}
	return "", fmt.Errorf("unsupported os %q (want linux, windows, or macos)", s)
}

// LabelMapping maps runner labels matching Pattern (glob, `*` wildcard) to
// an OS. User mappings are checked before the built-in table, in order.
type LabelMapping struct {
	Pattern string `yaml:"pattern"`
	OS      OS     `yaml:"os"`
}

// Built-in detection table. Checked in declared order, first hit wins.
// "win" is a substring of "darwin", so darwin gets its own row ahead of
// the windows entries.
var builtinDetectors = []struct {
	os         OS
	substrings []string
}{
	{OSLinux, []string{"ubuntu", "linux"}},
	{OSMacOS, []string{"darwin"}},
	{OSWindows, []string{"windows", "win"}},
	{OSMacOS, []string{"macos", "mac"}},
}

var (
	globMu    sync.Mutex
	globCache = map[string]*regexp.Regexp{}
)

// compileGlob turns a label pattern into an anchored, case-insensitive
// regexp. Compiled patterns are memoized; QuoteMeta guarantees the result
// always compiles.
func compileGlob(pattern string) *regexp.Regexp {
	globMu.Lock()
	defer globMu.Unlock()
	if re, ok := globCache[pattern]; ok {
		return re
	}
	expr := "(?i)^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re := regexp.MustCompile(expr)
	globCache[pattern] = re
	return re
}

// DetectOS classifies a job's label set. Override mappings win over the
// built-in table; within each tier the first match decides.
func DetectOS(labels []string, overrides []LabelMapping) OS {
	for _, m := range overrides {
		re := compileGlob(m.Pattern)
		for _, label := range labels {
			if re.MatchString(label) {
				return m.OS
			}
		}
	}
	for _, d := range builtinDetectors {
		for _, label := range labels {
			lower := strings.ToLower(label)
			for _, sub := range d.substrings {
				if strings.Contains(lower, sub) {
					return d.os
				}
			}
		}
	}
	return OSUnknown
}
