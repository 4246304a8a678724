package app

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	goerrors "gitlab.com/tozd/go/errors"

	"offload/internal/domain"
	apperrors "offload/internal/errors"
)

// DefaultExclude lists housekeeping files cameras and operating systems leave
// on memory cards. Matching is by exact base name.
var DefaultExclude = []string{
	"MEDIAPRO.XML",
	"Icon",
	"Icon\r",
	"STATUS.BIN",
	"SONYCARD.IND",
	"AVIN0001.INP",
	"AVIN0001.BNP",
	"AVIN0001.INT",
	"MOVIEOBJ.BDM",
	"PRV00001.BIN",
	"INDEX.BDM",
	"mdb.bk",
	"mdb.db",
	"psid.db",
	"Get_started_with_GoPro.url",
	"VolumeConfiguration.plist",
	"fseventsd-uuid",
	".dropbox.device",
	".DS_Store",
	".Spotlight-V100",
	".fseventsd",
	".Trashes",
	".TemporaryItems",
	"System Volume Information",
}

// Item is one scanned source file.
type Item struct {
	Entry        *domain.FileEntry
	Path         string
	RelativePath string
	Snapshot     domain.Snapshot
	Kind         domain.MediaKind
}

// RelativeDir is the item's directory relative to the scan root, slash
// separated, "." at the root.
func (i Item) RelativeDir() string {
	return filepath.ToSlash(filepath.Dir(i.RelativePath))
}

type Collection struct {
	Root  string
	Items []Item
}

// ScanCollection walks root and keeps every regular file whose base name is not
// excluded and whose relative path matches none of the ignore globs. Excluded
// directories are not descended into.
func ScanCollection(fsys FileSystem, root string, exclude, ignore []string) (*Collection, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.NotFound, "scan", root, apperrors.ErrFileNotFound)
		}
		return nil, apperrors.Wrap(apperrors.IOFailure, "scan", root, err)
	}
	if !info.IsDir() {
		return nil, apperrors.Wrap(apperrors.InvalidConfig, "scan", root, goerrors.New("source is not a directory"))
	}

	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, apperrors.Wrap(apperrors.InvalidConfig, "scan", root, goerrors.Errorf("invalid ignore pattern %q", pattern))
		}
	}

	c := &Collection{Root: root}
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	err = fsys.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		if excluded[info.Name()] {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = info.Name()
		}
		if ignored(ignore, rel) {
			return nil
		}

		entry, err := domain.NewFileEntry(fsys, path)
		if err != nil {
			return err
		}
		c.Items = append(c.Items, Item{
			Entry:        entry,
			Path:         path,
			RelativePath: rel,
			Snapshot: domain.Snapshot{
				Exists:  true,
				Regular: true,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			},
			Kind: domain.KindOf(path),
		})
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.IOFailure, "scan", root, err)
	}
	return c, nil
}

func ignored(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return false
	}
	target := strings.ToLower(filepath.ToSlash(rel))
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), target); ok {
			return true
		}
	}
	return false
}

func (c *Collection) Count() int {
	return len(c.Items)
}

func (c *Collection) TotalSize() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Snapshot.Size
	}
	return total
}

func (c *Collection) AverageSize() (int64, error) {
	if len(c.Items) == 0 {
		return 0, apperrors.Wrap(apperrors.EmptyCollection, "average size", c.Root, apperrors.ErrEmptyCollection)
	}
	return c.TotalSize() / int64(len(c.Items)), nil
}

// SortByModTime orders items oldest first. Ties keep scan order.
func (c *Collection) SortByModTime() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		return c.Items[i].Snapshot.ModTime.Before(c.Items[j].Snapshot.ModTime)
	})
}

// KindCounts tallies items per media kind.
func (c *Collection) KindCounts() map[domain.MediaKind]int {
	counts := make(map[domain.MediaKind]int)
	for _, item := range c.Items {
		counts[item.Kind]++
	}
	return counts
}
