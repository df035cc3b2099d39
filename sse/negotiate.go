package sse

import (
	"net/http"
	"strings"

	"github.com/elnormous/contenttype"
)

// streamableRanges are the Accept entries a stream can be served for.
var streamableRanges = []string{"text/event-stream", "application/json", "*/*"}

// acceptsStream reports whether an Accept entry contains one of
// streamableRanges, so application/json-seq passes and text/* alone does
// not. Entries are parsed first, which drops parameters; an entry that does
// not parse is matched as written. Letter case does not matter.
func acceptsStream(h http.Header) bool {
	for _, value := range h.Values("Accept") {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if mt, err := contenttype.ParseMediaType(part); err == nil {
				part = mt.Type + "/" + mt.Subtype
			}
			if isStreamable(part) {
				return true
			}
		}
	}
	return false
}

func isStreamable(mime string) bool {
	mime = strings.ToLower(mime)
	for _, name := range streamableRanges {
		if strings.Contains(mime, name) {
			return true
		}
	}
	return false
}
