package sse

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

func applyCORS(h http.Header, r *http.Request, cors CORSConfig) {
	h.Set("Access-Control-Allow-Methods", strings.Join(cors.Methods, ","))
	h.Set("Access-Control-Max-Age", strconv.Itoa(cors.MaxAge))
	h.Set("Access-Control-Expose-Headers", strings.Join(cors.ExposeHeaders, ","))
	h.Set("Access-Control-Allow-Credentials", strconv.FormatBool(cors.Credentials))

	if cors.Origin != "" {
		h.Set("Access-Control-Allow-Origin", cors.Origin)
		return
	}
	if origin := r.Header.Get("Origin"); origin != "" && slices.Contains(cors.Origins, origin) {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
}
