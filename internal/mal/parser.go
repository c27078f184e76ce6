package mal

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/handiism/mal-image-downloader/internal/model"
)

// Export is the parsed content of one MyAnimeList export file.
type Export struct {
	// Entries are in document order.
	Entries []*model.Entry

	// ContentType applies to every entry.
	ContentType model.ContentType
}

// xmlEntry holds the child tags read from an <anime> or <manga> element.
// Both id tags are declared; only the one matching the content type is used.
// A repeated tag keeps its first value.
type xmlEntry struct {
	AnimeID    []string `xml:"series_animedb_id"`
	MangaID    []string `xml:"manga_mangadb_id"`
	Title      []string `xml:"series_title"`
	MangaTitle []string `xml:"manga_title"`
	Image      []string `xml:"series_image"`
	Type       []string `xml:"series_type"`
	Tags       []string `xml:"my_tags"`
}

// DetectContentType classifies an export by its path: anything containing
// "anime" (case-insensitive) is an anime list, everything else is manga.
func DetectContentType(path string) model.ContentType {
	if strings.Contains(strings.ToLower(path), "anime") {
		return model.ContentAnime
	}
	return model.ContentManga
}

// Parse reads the export at path.
//
// Returns an error wrapping ErrNotFound if the file does not exist, or a
// *ParseError if the document is not well-formed XML.
func Parse(path string) (*Export, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer file.Close()

	contentType := DetectContentType(path)
	entries, err := ParseReader(file, contentType)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}

	return &Export{Entries: entries, ContentType: contentType}, nil
}

// ParseReader extracts every element named after contentType below the
// root element of r, at any depth, keeping document order.
//
// The document must have exactly one root element. Encodings other than
// UTF-8 are decoded when declared in the XML header.
func ParseReader(r io.Reader, contentType model.ContentType) ([]*model.Entry, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	element := contentType.String()

	entries := make([]*model.Entry, 0)
	sawRoot := false
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if sawRoot {
					return nil, &ParseError{Err: ErrJunkAfterRoot}
				}
				sawRoot = true
				depth++
				continue
			}
			if t.Name.Local != element {
				depth++
				continue
			}
			var raw xmlEntry
			if err := dec.DecodeElement(&raw, &t); err != nil {
				return nil, &ParseError{Err: err}
			}
			entries = append(entries, raw.toEntry(contentType))
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && sawRoot && len(bytes.TrimSpace(t)) > 0 {
				return nil, &ParseError{Err: ErrJunkAfterRoot}
			}
		}
	}

	if !sawRoot {
		return nil, &ParseError{Err: errors.New("no root element")}
	}
	return entries, nil
}

// charsetReader decodes a non-UTF-8 document using the IANA name from its
// XML declaration.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (x *xmlEntry) toEntry(contentType model.ContentType) *model.Entry {
	id := first(x.MangaID)
	if contentType == model.ContentAnime {
		id = first(x.AnimeID)
	}

	// Manga exports name the title tag manga_title.
	title := first(x.Title)
	if title == "" && contentType == model.ContentManga {
		title = first(x.MangaTitle)
	}

	return &model.Entry{
		ID:          id,
		Title:       title,
		ImageURL:    first(x.Image),
		Type:        first(x.Type),
		Tags:        first(x.Tags),
		ContentType: contentType,
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
