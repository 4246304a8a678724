package naming

import "strings"

// Unknown replaces a metadata-derived name that is missing or empty.
const Unknown = "unknown"

type FilenameKind int

const (
	FilenameOriginal FilenameKind = iota
	FilenameCameraMake
	FilenameCameraModel
	FilenameLiteral
)

type Filename struct {
	Kind    FilenameKind
	Literal string
}

// ParseFilename never fails: unknown names become literal overrides.
func ParseFilename(value string) Filename {
	switch strings.TrimSpace(value) {
	case "", "original", "None":
		return Filename{Kind: FilenameOriginal}
	case "camera_make":
		return Filename{Kind: FilenameCameraMake}
	case "camera_model":
		return Filename{Kind: FilenameCameraModel}
	default:
		return Filename{Kind: FilenameLiteral, Literal: value}
	}
}

func (f Filename) String() string {
	switch f.Kind {
	case FilenameCameraMake:
		return "camera_make"
	case FilenameCameraModel:
		return "camera_model"
	case FilenameLiteral:
		return f.Literal
	default:
		return "original"
	}
}

// MetadataField names the metadata key this preset reads, if any.
func (f Filename) MetadataField() (string, bool) {
	switch f.Kind {
	case FilenameCameraMake:
		return "Make", true
	case FilenameCameraModel:
		return "Model", true
	default:
		return "", false
	}
}

// Resolve returns the base name a destination file should carry.
func (f Filename) Resolve(original string, metadata map[string]string) string {
	switch f.Kind {
	case FilenameOriginal:
		return original
	case FilenameLiteral:
		return orUnknown(Validate(f.Literal))
	}

	field, _ := f.MetadataField()
	value := strings.ToLower(strings.TrimSpace(metadata[field]))
	return orUnknown(Validate(value))
}

func orUnknown(name string) string {
	if name == "" {
		return Unknown
	}
	return name
}
