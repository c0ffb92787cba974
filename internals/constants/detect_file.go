package constants

import (
	"path/filepath"
	"strings"
)

// Tipe file untuk kolom file_type.
const (
	FileTypeAudio   = 2
	FileTypeDoc     = 3
	FileTypePDF     = 4
	FileTypeSlide   = 5
	FileTypeImage   = 6
	FileTypeUnknown = 99
)

func DetectFileTypeFromExt(filename string) int {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".mp3", ".wav":
		return FileTypeAudio
	case ".doc", ".docx", ".txt", ".md":
		return FileTypeDoc
	case ".pdf":
		return FileTypePDF
	case ".ppt", ".pptx":
		return FileTypeSlide
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileTypeImage
	default:
		return FileTypeUnknown
	}
}

// Ekstensi yang boleh di-upload sebagai lampiran tugas / pengumuman.
var AllowedUploadExts = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".txt": {}, ".md": {},
	".ppt": {}, ".pptx": {}, ".xls": {}, ".xlsx": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {},
	".mp3": {}, ".wav": {}, ".zip": {},
}

func IsAllowedUploadExt(filename string) bool {
	_, ok := AllowedUploadExts[strings.ToLower(filepath.Ext(filename))]
	return ok
}
