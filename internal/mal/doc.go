// Package mal reads MyAnimeList XML exports.
//
// An export is classified as anime or manga from its file name, then every
// <anime> or <manga> element in the document is turned into a model.Entry:
//
//	export, err := mal.Parse("animelist_1700000000_-_1234.xml")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Found %d %s entries\n", len(export.Entries), export.ContentType)
//
// Missing or empty child tags become empty strings. A malformed document is
// reported as a *ParseError.
package mal
