package resource

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractLang collects language entries for one language code from every
// archive (mod jar or datapack zip) under dir, merged into a single mapping.
// Archives are visited in sorted name order and later entries win, so the
// result is deterministic. Unreadable archives and unparsable lang files are
// skipped and reported through the returned warnings, never fatal.
func ExtractLang(dir, lang string) (*File, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var archives []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".jar") || strings.HasSuffix(name, ".zip") {
			archives = append(archives, name)
		}
	}
	sort.Strings(archives)

	merged := New()
	var warnings []string

	for _, name := range archives {
		path := filepath.Join(dir, name)
		if err := extractFromArchive(path, lang, merged); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", name, err))
		}
	}

	return merged, warnings, nil
}

// extractFromArchive merges lang entries from one archive into dst.
func extractFromArchive(path, lang string, dst *File) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("not a valid archive: %w", err)
	}
	defer zr.Close()

	want := "/lang/" + lang + ".json"
	for _, zf := range zr.File {
		name := filepath.ToSlash(zf.Name)
		if !strings.HasSuffix(name, want) || !strings.Contains(name, "assets/") {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		f, err := Decode(rc)
		rc.Close()
		if err != nil {
			// One bad lang file must not sink the whole archive.
			continue
		}

		for _, key := range f.Keys() {
			v, _ := f.Get(key)
			dst.Set(key, v)
		}
	}

	return nil
}
