// Package naming maps file dates and presets onto destination folders and
// filename parts. Everything here is pure: same inputs, same output.
package naming

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Dates carries the two clocks a preset can draw from. File is zero when the
// file has no usable date; presets then fall back to Run.
type Dates struct {
	File time.Time
	Run  time.Time
}

// Effective returns the file date, or the run date when the file has none.
func (d Dates) Effective() time.Time {
	if d.File.IsZero() {
		return d.Run
	}
	return d.File
}

// MissingFileDate reports whether Effective had to fall back to the run date.
func (d Dates) MissingFileDate() bool {
	return d.File.IsZero()
}

type Structure int

const (
	StructureOriginal Structure = iota
	StructureTakenDate
	StructureOffloadDate
	StructureYear
	StructureYearMonth
	StructureFlat
)

// Structures lists every preset in CLI order.
var Structures = []Structure{
	StructureOriginal,
	StructureTakenDate,
	StructureOffloadDate,
	StructureYear,
	StructureYearMonth,
	StructureFlat,
}

func (s Structure) String() string {
	switch s {
	case StructureOriginal:
		return "original"
	case StructureTakenDate:
		return "taken_date"
	case StructureOffloadDate:
		return "offload_date"
	case StructureYear:
		return "year"
	case StructureYearMonth:
		return "year_month"
	case StructureFlat:
		return "flat"
	default:
		return fmt.Sprintf("structure(%d)", int(s))
	}
}

func ParseStructure(name string) (Structure, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Structures {
		if s.String() == key {
			return s, nil
		}
	}
	return StructureTakenDate, fmt.Errorf("unknown folder structure %q (valid: %s)", name, structureNames())
}

func structureNames() string {
	names := make([]string, len(Structures))
	for i, s := range Structures {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}

// Folder returns the destination subfolder, slash separated. relDir is the
// source file's directory relative to the source root and only matters for
// StructureOriginal.
func (s Structure) Folder(d Dates, relDir string) string {
	date := d.Effective()
	switch s {
	case StructureOriginal:
		rel := path.Clean(filepath.ToSlash(relDir))
		if rel == "." || rel == "/" {
			return ""
		}
		return strings.TrimPrefix(rel, "/")
	case StructureTakenDate:
		return fmt.Sprintf("%d/%s", date.Year(), date.Format("2006-01-02"))
	case StructureOffloadDate:
		return fmt.Sprintf("%d/%s", d.Run.Year(), d.Run.Format("2006-01-02"))
	case StructureYear:
		return fmt.Sprintf("%d", date.Year())
	case StructureYearMonth:
		return fmt.Sprintf("%d/%s", date.Year(), date.Format("01"))
	default:
		return ""
	}
}

// UsesFileDate reports whether the preset reads the file's own date.
func (s Structure) UsesFileDate() bool {
	switch s {
	case StructureTakenDate, StructureYear, StructureYearMonth:
		return true
	default:
		return false
	}
}
