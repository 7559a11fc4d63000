package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Phase selects which component of a version a bump advances.
type Phase string

const (
	Patch      Phase = "patch"
	Minor      Phase = "minor"
	Major      Phase = "major"
	Prepatch   Phase = "prepatch"
	Preminor   Phase = "preminor"
	Premajor   Phase = "premajor"
	Prerelease Phase = "prerelease"
)

// Phases lists every bump phase in flag order.
func Phases() []Phase {
	return []Phase{Patch, Minor, Major, Prepatch, Preminor, Premajor, Prerelease}
}

// ParsePhase converts a phase name into a Phase.
func ParsePhase(raw string) (Phase, error) {
	candidate := Phase(strings.ToLower(strings.TrimSpace(raw)))
	for _, phase := range Phases() {
		if candidate == phase {
			return phase, nil
		}
	}
	return "", fmt.Errorf("unknown release phase %q", raw)
}

func (p Phase) String() string {
	return string(p)
}

// IsPre reports whether the phase lands on a pre-release version. Pre-release
// phases never produce a tag.
func (p Phase) IsPre() bool {
	switch p {
	case Prepatch, Preminor, Premajor, Prerelease:
		return true
	default:
		return false
	}
}

// Version is a plugin version in compact pre-release notation: 3.1.6 is a
// final release, 3.1.6a0 the first alpha of it. Recognized pre-release
// markers are a (alpha), b (beta), and rc (release candidate).
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Pre    string
	PreNum int
}

var versionPattern = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:(a|b|rc)(\d+))?$`)

// Parse reads a version string, tolerating a leading "v" and missing minor or
// patch components.
func Parse(raw string) (Version, error) {
	match := versionPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return Version{}, fmt.Errorf("invalid version %q", raw)
	}
	v := Version{}
	v.Major, _ = strconv.Atoi(match[1])
	if match[2] != "" {
		v.Minor, _ = strconv.Atoi(match[2])
	}
	if match[3] != "" {
		v.Patch, _ = strconv.Atoi(match[3])
	}
	if match[4] != "" {
		v.Pre = match[4]
		v.PreNum, _ = strconv.Atoi(match[5])
	}
	return v, nil
}

// String renders the compact form without a leading "v".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += fmt.Sprintf("%s%d", v.Pre, v.PreNum)
	}
	return s
}

// IsPre reports whether the version carries a pre-release marker.
func (v Version) IsPre() bool {
	return v.Pre != ""
}

// canonical renders the semver spelling of v (3.1.6a0 becomes 3.1.6-a.0) so
// ordering can be delegated to the semver package: alpha sorts below beta
// below rc below the final release, and counters compare numerically.
func (v Version) canonical() *semver.Version {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s = fmt.Sprintf("%s-%s.%d", s, v.Pre, v.PreNum)
	}
	parsed, err := semver.NewVersion(s)
	if err != nil {
		// v was built by Parse or Bump, so the spelling is always valid.
		panic(fmt.Sprintf("version: canonical form %q: %v", s, err))
	}
	return parsed
}

// Compare orders two versions: -1 when a is older, 0 when equal, 1 when newer.
func Compare(a, b Version) int {
	return a.canonical().Compare(b.canonical())
}

// Bump advances the version for the given phase.
//
// patch finalizes a pre-release or increments the patch component. minor and
// major discard any pre-release marker and increment their component. The
// pre phases increment the corresponding component and start a fresh a0
// cycle. prerelease increments the counter in place, or acts as prepatch when
// the current version is final.
func (v Version) Bump(phase Phase) (Version, error) {
	next := v
	switch phase {
	case Patch:
		if v.Pre != "" {
			next.Pre, next.PreNum = "", 0
			return next, nil
		}
		next.Patch++
		return next, nil
	case Minor:
		next.Minor++
		next.Patch = 0
		next.Pre, next.PreNum = "", 0
		return next, nil
	case Major:
		next.Major++
		next.Minor, next.Patch = 0, 0
		next.Pre, next.PreNum = "", 0
		return next, nil
	case Prepatch:
		next.Patch++
		next.Pre, next.PreNum = "a", 0
		return next, nil
	case Preminor:
		next.Minor++
		next.Patch = 0
		next.Pre, next.PreNum = "a", 0
		return next, nil
	case Premajor:
		next.Major++
		next.Minor, next.Patch = 0, 0
		next.Pre, next.PreNum = "a", 0
		return next, nil
	case Prerelease:
		if v.Pre != "" {
			next.PreNum++
			return next, nil
		}
		next.Patch++
		next.Pre, next.PreNum = "a", 0
		return next, nil
	default:
		return Version{}, fmt.Errorf("unknown release phase %q", phase)
	}
}
