package domain

import (
	"path/filepath"
	"strings"
)

type MediaKind string

const (
	KindRAW   MediaKind = "RAW"
	KindJPEG  MediaKind = "JPEG"
	KindImage MediaKind = "Image"
	KindVideo MediaKind = "Video"
	KindOther MediaKind = "Other"
)

var MediaKinds = []MediaKind{KindRAW, KindJPEG, KindImage, KindVideo, KindOther}

func KindOf(path string) MediaKind {
	ext := filepath.Ext(path)
	switch {
	case IsRawExtension(ext):
		return KindRAW
	case IsJpegExtension(ext):
		return KindJPEG
	case isImageExtension(ext):
		return KindImage
	case isVideoExtension(ext):
		return KindVideo
	default:
		return KindOther
	}
}

// HasExif reports whether files of this kind usually carry an EXIF block.
func (k MediaKind) HasExif() bool {
	return k == KindRAW || k == KindJPEG || k == KindImage
}

func IsRawExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".arw", ".cr2", ".cr3", ".nef", ".raf", ".rw2", ".orf", ".dng":
		return true
	default:
		return false
	}
}

func IsJpegExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

func isImageExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".heic", ".heif", ".tif", ".tiff", ".png":
		return true
	default:
		return false
	}
}

func isVideoExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp4", ".mov", ".mts", ".m2ts", ".avi", ".mxf", ".insv", ".360":
		return true
	default:
		return false
	}
}
