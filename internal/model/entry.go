package model

import (
	"fmt"
	"regexp"
	"runtime"

	"golang.org/x/text/unicode/norm"
)

// ContentType is the kind of list an export describes.
type ContentType string

const (
	ContentAnime ContentType = "anime"
	ContentManga ContentType = "manga"
)

// String returns the lowercase name used in XML element names and console output.
func (c ContentType) String() string {
	return string(c)
}

// IDTag returns the XML tag holding the database id for this content type.
func (c ContentType) IDTag() string {
	if c == ContentAnime {
		return "series_animedb_id"
	}
	return "manga_mangadb_id"
}

// DefaultTitleLength is the number of title characters kept in output file names.
const DefaultTitleLength = 50

// ImageExtension is appended to every downloaded cover, whatever its real format.
const ImageExtension = ".jpg"

// Entry represents a single title from a MyAnimeList export.
//
// All string fields are empty rather than missing when the export omits
// the corresponding tag, so callers can always format them.
type Entry struct {
	// ID is the MyAnimeList database id.
	ID string

	// Title is the display name, also used to build the output file name.
	Title string

	// ImageURL is the cover image source. Empty means the entry is skipped.
	ImageURL string

	// Type is the media type (TV, Movie, Manga, ...). Informational only.
	Type string

	// Tags holds the user's tag string. Informational only.
	Tags string

	// ContentType is shared by every entry of one export.
	ContentType ContentType
}

// HasImage returns true if the entry has a cover image to download.
func (e *Entry) HasImage() bool {
	return e.ImageURL != ""
}

// FileName returns the output file name for the entry's cover:
// the title cut to maxTitle characters, an underscore, the id and ".jpg".
//
// A maxTitle of zero or less keeps the whole title.
func (e *Entry) FileName(maxTitle int) string {
	title := sanitizeFileName(TruncateTitle(e.Title, maxTitle))
	return fmt.Sprintf("%s_%s%s", title, sanitizeFileName(e.ID), ImageExtension)
}

// TruncateTitle cuts title to at most max characters.
//
// The title is NFC-normalized first, so a character written with combining
// marks counts once and is never split.
func TruncateTitle(title string, max int) string {
	title = norm.NFC.String(title)
	if max <= 0 {
		return title
	}

	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max])
}

var (
	windowsInvalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	unixInvalidChars    = regexp.MustCompile(`[/\x00]`)
)

// invalidCharsFor returns the characters a file name may not contain on goos.
func invalidCharsFor(goos string) *regexp.Regexp {
	if goos == "windows" {
		return windowsInvalidChars
	}
	return unixInvalidChars
}

// sanitizeFileName replaces characters that are invalid in file names on
// the running system with an underscore. Each invalid character becomes
// exactly one underscore, so the name keeps its length.
//
// Example:
//
//	sanitizeFileName("Fate/Zero") // Returns "Fate_Zero"
func sanitizeFileName(name string) string {
	return invalidCharsFor(runtime.GOOS).ReplaceAllString(name, "_")
}
