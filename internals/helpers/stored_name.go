package helper

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\p{Han}.\-_]+`)

// SanitizeFilename membuang karakter berbahaya dari nama file upload.
// Huruf, angka, karakter Han, titik, dash, dan underscore dipertahankan.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return base
}

// StoredName menghasilkan nama simpan yang aman. exists dipakai untuk cek
// tabrakan; saat tabrakan, suffix timestamp ditambahkan sebelum ekstensi.
func StoredName(originalName string, exists func(name string) bool) string {
	safe := SanitizeFilename(originalName)
	if exists == nil || !exists(safe) {
		return safe
	}
	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	return fmt.Sprintf("%s_%d%s", stem, time.Now().UnixNano(), ext)
}

// TimestampedName: <prefix>_<timestamp><ext> — dipakai lampiran pengumuman.
func TimestampedName(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format("20060102150405"), ext)
}
