// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Directory creation
//   - Atomic file writes
//   - Image resizing and format conversion
//
// # File Operations
//
//	// Ensure the output directory exists
//	err := ioutils.EnsureDir("MAL_Images")
//
//	// Replace a file without ever exposing a half-written version
//	err = ioutils.WriteFileAtomic(ctx, "MAL_Images/Trigun_6.jpg", data)
//
// # Image Processing
//
// The ImageService handles optional cover post-processing:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Make a PNG or WebP cover match its .jpg name
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
