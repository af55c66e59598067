package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kotonoha-dev/kotoba/resource"
)

// Meta is the pack.mcmeta descriptor.
type Meta struct {
	Pack MetaPack `json:"pack"`
}

// MetaPack is the inner pack descriptor.
type MetaPack struct {
	Format      int    `json:"pack_format"`
	Description string `json:"description"`
}

// Builder assembles a language resource pack directory. Archiving the
// directory into a zip is left to the surrounding tool; the builder only
// produces the versioned directory and its contents.
type Builder struct {
	Root        string // Output directory holding the versioned artifacts (relative)
	Base        string // Pack identity, e.g. "CobbleverseJapaneseLangPack"
	Lang        string // Target language file name, e.g. "ja_jp"
	Format      int    // pack.mcmeta pack_format
	Description string // pack.mcmeta description
}

// Result describes one completed build.
type Result struct {
	Dir     string  // Created artifact directory
	Version Version // Version assigned to this build
	Merged  int     // Entries carried over from the previous artifact
	Fresh   int     // Entries contributed by this run
}

// Build writes a new versioned artifact containing the union of the previous
// artifact's language file and file, with this run's entries winning on
// collision. The patch component is bumped automatically; the first build of
// a pack starts at the initial version.
func (b *Builder) Build(file *resource.File) (*Result, error) {
	latest, found, err := LatestVersion(b.Root, b.Base)
	if err != nil {
		return nil, err
	}

	next := Initial
	if found {
		next = latest.NextPatch()
	}

	merged := resource.New()
	carried := 0
	if found {
		prev := filepath.Join(b.Root, ArtifactName(b.Base, latest), "assets", "minecraft", "lang", b.Lang+".json")
		if prevFile, lerr := resource.LoadFile(prev); lerr == nil {
			for _, key := range prevFile.Keys() {
				v, _ := prevFile.Get(key)
				merged.Set(key, v)
			}
			carried = prevFile.Len()
		}
	}
	for _, key := range file.Keys() {
		v, _ := file.Get(key)
		merged.Set(key, v)
	}

	// Deterministic output: sort the merged mapping by key.
	sorted := resource.New()
	keys := merged.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		v, _ := merged.Get(key)
		sorted.Set(key, v)
	}

	dir := filepath.Join(b.Root, ArtifactName(b.Base, next))
	langDir := filepath.Join(dir, "assets", "minecraft", "lang")
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", langDir, err)
	}

	if err := writeMeta(filepath.Join(dir, "pack.mcmeta"), b.Format, b.Description); err != nil {
		return nil, err
	}
	if err := sorted.SaveFile(filepath.Join(langDir, b.Lang+".json")); err != nil {
		return nil, err
	}

	return &Result{
		Dir:     dir,
		Version: next,
		Merged:  carried,
		Fresh:   file.Len(),
	}, nil
}

// writeMeta writes the pack.mcmeta descriptor.
func writeMeta(path string, format int, description string) error {
	meta := Meta{Pack: MetaPack{Format: format, Description: description}}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding pack.mcmeta: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
