package llm

import "strings"

// MediaFromURL builds an attachment from an image URL. Data URLs carry their
// own MIME type; other URLs are recorded as a generic image.
func MediaFromURL(url string) Media {
	if rest, ok := strings.CutPrefix(url, "data:"); ok {
		if mime, _, found := strings.Cut(rest, ";"); found && mime != "" {
			return Media{MimeType: mime, Data: url}
		}
	}
	return Media{MimeType: "image/*", Data: url}
}
