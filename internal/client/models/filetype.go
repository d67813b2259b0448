package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileType is the coarse, extension-derived category of a file.
type FileType string

const (
	TypeDocument FileType = "document"
	TypeImage    FileType = "image"
	TypeVideo    FileType = "video"
	TypeAudio    FileType = "audio"
	TypeOther    FileType = "other"

	// TypeMedia is only a listing category; it groups video and audio.
	TypeMedia FileType = "media"
)

var extensionTypes = map[string]FileType{}

func init() {
	register := func(t FileType, exts ...string) {
		for _, e := range exts {
			extensionTypes[e] = t
		}
	}
	register(TypeDocument, "pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt", "odp",
		"md", "html", "htm", "epub", "pages", "fig", "psd", "ai", "indd", "xd", "sketch", "afdesign", "afphoto")
	register(TypeImage, "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp")
	register(TypeVideo, "mp4", "avi", "mov", "mkv", "webm")
	register(TypeAudio, "mp3", "wav", "ogg", "flac")
}

// TypeOf infers the file type and lower-cased extension from a file name.
// Names without an extension are TypeOther with an empty extension.
func TypeOf(name string) (FileType, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return TypeOther, ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t, ext
	}
	return TypeOther, ext
}

// CategoryFromRoute maps a listing route segment ("documents", "images",
// "media", ...) onto the category the listing endpoint expects.
func CategoryFromRoute(segment string) FileType {
	switch strings.ToLower(segment) {
	case "documents":
		return TypeDocument
	case "images":
		return TypeImage
	case "media":
		return TypeMedia
	default:
		return TypeOther
	}
}

// FormatSize renders a byte count the way listings display totals.
func FormatSize(size int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case size < kb:
		return fmt.Sprintf("%d Bytes", size)
	case size < mb:
		return fmt.Sprintf("%.1f KB", float64(size)/kb)
	case size < gb:
		return fmt.Sprintf("%.1f MB", float64(size)/mb)
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	}
}
