package papi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is the bundle manifest schema version this SDK writes
// and accepts.
const ManifestVersion = 1

// Static errors for err113 compliance.
var (
	ErrManifestVersion       = errors.New("unsupported manifest version")
	ErrManifestModeMissing   = errors.New("manifest mode is required")
	ErrManifestModeUnknown   = errors.New("unknown manifest mode")
	ErrManifestNoFiles       = errors.New("manifest lists no files")
	ErrManifestFormatUnknown = errors.New("unrecognized manifest file name")
	ErrManifestEntrypoint    = errors.New("manifest entrypoint is required for this mode")
)

// Modes a bundle can be published as.
const (
	ModeStatic = "static"
	ModeSite   = "site"
	ModeAPI    = "api"
	ModeApp    = "app"
	ModeReport = "report"
)

// entrypointModes are the modes that need an entrypoint to run.
var entrypointModes = map[string]bool{
	ModeAPI:    true,
	ModeApp:    true,
	ModeReport: true,
}

var knownModes = map[string]bool{
	ModeStatic: true,
	ModeSite:   true,
	ModeAPI:    true,
	ModeApp:    true,
	ModeReport: true,
}

// Manifest describes the contents of a content bundle: what kind of thing
// it is and the checksummed file inventory the server verifies on upload.
type Manifest struct {
	Version     int                     `json:"version"               yaml:"version"`
	Mode        string                  `json:"mode"                  yaml:"mode"`
	Entrypoint  string                  `json:"entrypoint,omitempty"  yaml:"entrypoint,omitempty"`
	Locale      string                  `json:"locale,omitempty"      yaml:"locale,omitempty"`
	Environment map[string]string       `json:"environment,omitempty" yaml:"environment,omitempty"`
	Files       map[string]ManifestFile `json:"files"                 yaml:"files"`
	Metadata    map[string]interface{}  `json:"metadata,omitempty"    yaml:"metadata,omitempty"`
}

// ManifestFile carries the checksum of one bundled file.
type ManifestFile struct {
	Checksum string `json:"checksum" yaml:"checksum"`
}

// ManifestDiff represents the difference between two manifests.
type ManifestDiff struct {
	Diff []ManifestDiffEntry `json:"diff" yaml:"diff"`
}

// ManifestDiffEntry represents a single diff entry.
type ManifestDiffEntry struct {
	Op    string      `json:"op"              yaml:"op"`
	Path  string      `json:"path"            yaml:"path"`
	Was   interface{} `json:"was,omitempty"   yaml:"was,omitempty"`
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// Empty reports whether the diff has no entries.
func (d *ManifestDiff) Empty() bool {
	return len(d.Diff) == 0
}

// ParseManifest decodes a JSON manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest

	err := json.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &manifest, nil
}

// ParseManifestYAML decodes a YAML manifest.
func ParseManifestYAML(data []byte) (*Manifest, error) {
	var manifest Manifest

	err := yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &manifest, nil
}

// ReadManifest loads a manifest file, picking the decoder from the file
// name (manifest.json, manifest.yml, manifest.yaml).
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Caller controls the manifest path
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".json":
		return ParseManifest(data)
	case ".yml", ".yaml":
		return ParseManifestYAML(data)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrManifestFormatUnknown)
	}
}

// Validate checks the manifest for the problems the server would reject
// it for.
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("version %d: %w", m.Version, ErrManifestVersion)
	}

	if m.Mode == "" {
		return ErrManifestModeMissing
	}

	if !knownModes[m.Mode] {
		return fmt.Errorf("mode %q: %w", m.Mode, ErrManifestModeUnknown)
	}

	if len(m.Files) == 0 {
		return ErrManifestNoFiles
	}

	if entrypointModes[m.Mode] && m.Entrypoint == "" {
		return fmt.Errorf("mode %q: %w", m.Mode, ErrManifestEntrypoint)
	}

	return nil
}

// ToJSON renders the manifest as indented JSON, the form written into
// bundles as manifest.json.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	return data, nil
}

// ToYAML renders the manifest as YAML.
func (m *Manifest) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	return data, nil
}

// FilePaths returns the inventoried paths in sorted order.
func (m *Manifest) FilePaths() []string {
	paths := make([]string, 0, len(m.Files))
	for path := range m.Files {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// GenerateManifest walks dir and builds a manifest inventorying every
// regular file with its checksum. Hidden files and directories are
// skipped, as are manifest files from earlier runs.
func GenerateManifest(dir, mode, entrypoint string) (*Manifest, error) {
	manifest := &Manifest{
		Version:    ManifestVersion,
		Mode:       mode,
		Entrypoint: entrypoint,
		Files:      make(map[string]ManifestFile),
	}

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := entry.Name()

		if entry.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(name, ".") || isManifestFile(name) {
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}

		checksum, err := fileChecksum(path)
		if err != nil {
			return err
		}

		manifest.Files[filepath.ToSlash(rel)] = ManifestFile{Checksum: checksum}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	if len(manifest.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrManifestNoFiles)
	}

	return manifest, nil
}

func isManifestFile(name string) bool {
	return name == "manifest.json" || name == "manifest.yml" || name == "manifest.yaml"
}

// fileChecksum computes the hex SHA-256 digest of a file.
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path) //nolint:gosec // Paths come from the directory walk
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}

	defer func() { _ = file.Close() }()

	hash := sha256.New()

	_, err = io.Copy(hash, file)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// DiffManifests compares two manifests file-by-file. "add" entries are in
// proposed but not current, "remove" the reverse, and "replace" entries
// changed checksum. Mode, entrypoint, and environment changes show up
// under their own paths.
func DiffManifests(current, proposed *Manifest) *ManifestDiff {
	diff := &ManifestDiff{}

	if current.Mode != proposed.Mode {
		diff.Diff = append(diff.Diff, ManifestDiffEntry{
			Op: "replace", Path: "/mode", Was: current.Mode, Value: proposed.Mode,
		})
	}

	if current.Entrypoint != proposed.Entrypoint {
		diff.Diff = append(diff.Diff, ManifestDiffEntry{
			Op: "replace", Path: "/entrypoint", Was: current.Entrypoint, Value: proposed.Entrypoint,
		})
	}

	for _, path := range proposed.FilePaths() {
		proposedFile := proposed.Files[path]

		currentFile, exists := current.Files[path]
		if !exists {
			diff.Diff = append(diff.Diff, ManifestDiffEntry{
				Op: "add", Path: "/files/" + path, Value: proposedFile.Checksum,
			})

			continue
		}

		if currentFile.Checksum != proposedFile.Checksum {
			diff.Diff = append(diff.Diff, ManifestDiffEntry{
				Op: "replace", Path: "/files/" + path, Was: currentFile.Checksum, Value: proposedFile.Checksum,
			})
		}
	}

	for _, path := range current.FilePaths() {
		if _, exists := proposed.Files[path]; !exists {
			diff.Diff = append(diff.Diff, ManifestDiffEntry{
				Op: "remove", Path: "/files/" + path, Was: current.Files[path].Checksum,
			})
		}
	}

	return diff
}
