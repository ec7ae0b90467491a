package client

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/client/models"
	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/tidwall/gjson"
)

// Candidate is one accepted layout of a collection response. An empty Path
// is a bare top-level array.
type Candidate struct {
	Name string
	Path string
}

// CollectionCandidates are tried in order; the first one whose value is a
// JSON array wins.
var CollectionCandidates = []Candidate{
	{Name: "array", Path: ""},
	{Name: "data", Path: "data"},
	{Name: "results", Path: "results"},
	{Name: "items", Path: "items"},
}

// MatchCollection returns the entries of a collection response and the name
// of the candidate that matched.
func MatchCollection(body []byte) ([]gjson.Result, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", common.ErrInvalidResponseShape
	}
	root := gjson.ParseBytes(body)

	for _, c := range CollectionCandidates {
		v := root
		if c.Path != "" {
			if !root.IsObject() {
				continue
			}
			v = root.Get(c.Path)
		}
		if v.IsArray() {
			return v.Array(), c.Name, nil
		}
	}
	return nil, "", common.ErrInvalidResponseShape
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp accepts the remote's millisecond format and RFC 3339.
// Anything else is the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// firstScalar returns the first non-blank string or number among paths,
// verbatim. Keys must round-trip byte for byte.
func firstScalar(e gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := e.Get(p)
		if v.Type != gjson.String && v.Type != gjson.Number {
			continue
		}
		if s := v.String(); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func decodeScan(e gjson.Result) (models.ScanRecord, bool) {
	if !e.IsObject() {
		return models.ScanRecord{}, false
	}
	code := firstScalar(e, "code", "eventName")
	if code == "" {
		return models.ScanRecord{}, false
	}
	return models.ScanRecord{
		ID:            firstScalar(e, "id", "_id"),
		Code:          code,
		EventCategory: firstScalar(e, "eventCategory", "category"),
		EventLabel:    firstScalar(e, "eventName", "eventLabel", "label"),
		Timestamp:     parseTimestamp(firstScalar(e, "updatedAt", "createdAt", "timestamp")),
	}, true
}

func decodeCode(e gjson.Result) (models.CreatedCodeRecord, bool) {
	if !e.IsObject() {
		return models.CreatedCodeRecord{}, false
	}
	content := firstScalar(e, "content", "text")
	if content == "" {
		return models.CreatedCodeRecord{}, false
	}
	return models.CreatedCodeRecord{
		ID:        firstScalar(e, "id", "_id"),
		Content:   content,
		ImageRef:  firstScalar(e, "imageUrl", "imageRef", "image"),
		Timestamp: parseTimestamp(firstScalar(e, "createdAt", "updatedAt", "timestamp")),
	}, true
}

// decodeAll keeps the entries decode accepts, in order, and reports how
// many were dropped.
func decodeAll[R any](entries []gjson.Result, decode func(gjson.Result) (R, bool)) ([]R, int) {
	out := make([]R, 0, len(entries))
	for _, e := range entries {
		if r, ok := decode(e); ok {
			out = append(out, r)
		}
	}
	return out, len(entries) - len(out)
}
