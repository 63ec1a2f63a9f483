package discover

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/voidworks/modsync/internal/domain"
)

// iconNames are probed in order; the first hit wins
var iconNames = []string{"icon.png", "pack.png"}

// Modpacks scans the instances root for directories that look like
// modpacks: anything holding a manifest.json or a mods/ directory.
// A missing instances root yields an empty list, not an error.
// Results are sorted by name and never persisted.
func Modpacks(instancesPath string) ([]domain.ModpackInfo, error) {
	entries, err := os.ReadDir(instancesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var packs []domain.ModpackInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		packPath := filepath.Join(instancesPath, entry.Name())
		manifest := filepath.Join(packPath, "manifest.json")
		modsDir := filepath.Join(packPath, "mods")

		hasManifest := fileExists(manifest)
		if !hasManifest && !dirExists(modsDir) {
			continue
		}

		info := domain.ModpackInfo{
			Name: entry.Name(),
			Path: packPath,
		}
		if hasManifest {
			info.ManifestPath = manifest
		}
		for _, name := range iconNames {
			candidate := filepath.Join(packPath, name)
			if fileExists(candidate) {
				info.IconPath = candidate
				break
			}
		}

		packs = append(packs, info)
	}

	sort.Slice(packs, func(i, j int) bool { return packs[i].Name < packs[j].Name })
	return packs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
