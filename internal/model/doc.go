// Package model defines the core data structures used throughout
// the mal-image-downloader application.
//
// # Entry
//
// Entry represents one anime or manga record from a MyAnimeList export:
//
//	entry := &model.Entry{ID: "1", Title: "Cowboy Bebop", ImageURL: url, ContentType: model.ContentAnime}
//	fmt.Println(entry.FileName(model.DefaultTitleLength)) // "Cowboy Bebop_1.jpg"
//
// # Content Type
//
// ContentType classifies a whole export as anime or manga. It is decided once
// per run and shared by every entry parsed from that export.
package model
