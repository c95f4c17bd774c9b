package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		wantSearch string
		wantCats   map[string]string
	}{
		{
			name:     "empty",
			values:   url.Values{},
			wantCats: map[string]string{},
		},
		{
			name:       "q is the search term",
			values:     url.Values{"q": {"  eurusd "}},
			wantSearch: "eurusd",
			wantCats:   map[string]string{},
		},
		{
			name:       "search alias and lowercased categories",
			values:     url.Values{"search": {"jane"}, "Role": {"ADMIN"}},
			wantSearch: "jane",
			wantCats:   map[string]string{"role": "ADMIN"},
		},
		{
			name:     "control characters are dropped",
			values:   url.Values{"direction": {"BU\x00Y"}},
			wantCats: map[string]string{"direction": "BUY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseListQuery(tt.values)
			if q.Search != tt.wantSearch {
				t.Errorf("Search = %q, want %q", q.Search, tt.wantSearch)
			}
			if !reflect.DeepEqual(q.Categories, tt.wantCats) {
				t.Errorf("Categories = %v, want %v", q.Categories, tt.wantCats)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: 50},
		{raw: "5", want: 5},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "ten", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLimit(url.Values{"limit": {tt.raw}}, "limit", 50)
		if tt.wantErr {
			if !errors.Is(err, errBadRequest) {
				t.Errorf("parseLimit(%q) error = %v, want bad request", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseLimit(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
}

func TestDecodeBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alerts"}`))
	raw, err := decodeBody(httptest.NewRecorder(), req, &dst)
	if err != nil {
		t.Fatalf("decodeBody() error = %v", err)
	}
	if dst.Name != "Alerts" || string(raw) != `{"name":"Alerts"}` {
		t.Errorf("decodeBody() = %q, %+v", raw, dst)
	}

	for _, body := range []string{"", "   ", "{", strings.Repeat("x", maxBodyBytes+1)} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if _, err := decodeBody(httptest.NewRecorder(), req, &dst); !errors.Is(err, errBadRequest) {
			t.Errorf("decodeBody(%.10q) error = %v, want bad request", body, err)
		}
	}
}
