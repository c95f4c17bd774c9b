package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"signaldesk/internal/collection"
)

const maxBodyBytes = 1 << 20

// searchKeys are the query parameters read as the free-text search term.
// Every other parameter of a list request names a category.
var searchKeys = []string{"q", "search"}

// ParseListQuery turns list query parameters into a collection query.
func ParseListQuery(values url.Values) collection.Query {
	q := collection.Query{Categories: map[string]string{}}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := sanitizeInput(vals[0])
		if isSearchKey(key) {
			if q.Search == "" {
				q.Search = v
			}
			continue
		}
		q.Categories[strings.ToLower(key)] = v
	}
	return q
}

func isSearchKey(key string) bool {
	for _, k := range searchKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: empty body", errBadRequest)
	}
	return body, nil
}

// decodeBody reads a JSON object into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) ([]byte, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return body, nil
}

// parseLimit reads a positive integer parameter, falling back to def.
func parseLimit(values url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, key)
	}
	return n, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
