// Package relocate files tracks into genre folders under the collection
// root.
package relocate

import (
	"fmt"
	"os"
	"path/filepath"

	"mp3catalog/internal/genre"
	"mp3catalog/internal/logger"
	"mp3catalog/pkg/utils"
)

// Relocator moves files into their genre folder, resolving name
// collisions and honoring simulate mode.
type Relocator struct {
	basePath string
	simulate bool
	log      *logger.Logger
}

// New creates a Relocator rooted at the collection directory.
func New(basePath string, simulate bool, log *logger.Logger) *Relocator {
	return &Relocator{basePath: basePath, simulate: simulate, log: log}
}

// DestFolder maps a canonical genre and the raw genre string it came from
// to the folder the file belongs in, relative to the collection root. A
// raw string that names a recognized sub-genre is folded into a nested
// folder under its parent ("salsa" -> "Latin/Salsa"); everything else
// files directly under the canonical genre.
func DestFolder(canonical, raw string) string {
	if parent, ok := genre.SubGenreParent(raw); ok {
		return filepath.Join(utils.SanitizeFolderName(parent), utils.SanitizeFolderName(genre.Capitalize(raw)))
	}
	return utils.SanitizeFolderName(canonical)
}

// Move files src into folder (relative to the collection root) and returns
// the destination path it chose. In simulate mode nothing is touched and
// the would-be destination is returned.
func (r *Relocator) Move(src, folder string) (string, error) {
	destDir := filepath.Join(r.basePath, folder)
	dest := r.resolveCollision(filepath.Join(destDir, filepath.Base(src)))

	if r.simulate {
		r.log.Info("[SIMULATE] would move %s -> %s", filepath.Base(src), dest)
		return dest, nil
	}

	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("source vanished before move: %s", src)
	}

	if err := utils.MoveFile(src, dest); err != nil {
		return "", err
	}
	r.log.Debug("moved %s -> %s", filepath.Base(src), dest)
	return dest, nil
}

// resolveCollision appends _1, _2, ... to the stem until the name is free.
func (r *Relocator) resolveCollision(dest string) string {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}

	dir := filepath.Dir(dest)
	ext := filepath.Ext(dest)
	stem := filepath.Base(dest)
	stem = stem[:len(stem)-len(ext)]

	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// CleanupEmptyFolders removes genre folders (including nested sub-genre
// folders) that contain no files. Returns the folders removed.
func (r *Relocator) CleanupEmptyFolders() ([]string, error) {
	var removed []string

	// Two passes: children first so a parent emptied by the first pass is
	// caught by the second.
	for pass := 0; pass < 2; pass++ {
		var dirs []string
		err := filepath.Walk(r.basePath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() && path != r.basePath {
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return removed, fmt.Errorf("failed to walk %s: %w", r.basePath, err)
		}

		// Deepest first within the pass.
		for i := len(dirs) - 1; i >= 0; i-- {
			entries, err := os.ReadDir(dirs[i])
			if err != nil || len(entries) > 0 {
				continue
			}
			if r.simulate {
				r.log.Info("[SIMULATE] would remove empty folder %s", dirs[i])
				removed = append(removed, dirs[i])
				continue
			}
			if err := os.Remove(dirs[i]); err == nil {
				removed = append(removed, dirs[i])
				r.log.Debug("removed empty folder %s", dirs[i])
			}
		}

		if r.simulate {
			break
		}
	}
	return removed, nil
}
