// Package pack derives versioned artifact names for packaged language packs
// and assembles the pack directory layout.
package pack

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Version is a three-component pack version, rendered as
// "{major}.{minor}.{patch}" without zero padding. Versions increase
// monotonically across packaging runs for the same pack identity.
type Version struct {
	Major, Minor, Patch int
}

// Initial is the version assigned to the first packaging run of a pack.
var Initial = Version{Major: 1, Minor: 0, Patch: 0}

// Parse parses a "major.minor.patch" string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: want three dot-separated components", s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: component %q is not a non-negative integer", s, part)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders the version as three dot-separated integers.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// NextPatch returns the version with the patch component incremented.
// This is the automatic per-run bump.
func (v Version) NextPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// NextMinor returns the version with the minor component incremented and the
// patch reset. Requested explicitly by the caller, never automatic.
func (v Version) NextMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// NextMajor returns the version with the major component incremented and the
// lower components reset. Requested explicitly by the caller, never automatic.
func (v Version) NextMajor() Version {
	return Version{Major: v.Major + 1}
}

// Compare returns -1, 0 or 1 comparing v against o.
func (v Version) Compare(o Version) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// ArtifactName renders the artifact name for a pack at a version,
// e.g. "MyLangPack-1.0.1".
func ArtifactName(base string, v Version) string {
	return base + "-" + v.String()
}

// LatestVersion scans dir for artifacts of the given pack identity and
// returns the highest version found. ok is false when no versioned artifact
// exists yet.
func LatestVersion(dir, base string) (latest Version, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Version{}, false, nil
		}
		return Version{}, false, fmt.Errorf("reading %s: %w", dir, err)
	}

	re := regexp.MustCompile("^" + regexp.QuoteMeta(base) + `-(\d+)\.(\d+)\.(\d+)(?:\.zip)?$`)
	for _, e := range entries {
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, perr := Parse(m[1] + "." + m[2] + "." + m[3])
		if perr != nil {
			continue
		}
		if !ok || v.Compare(latest) > 0 {
			latest = v
			ok = true
		}
	}

	return latest, ok, nil
}
