package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/rigel/index"
)

// Search runs FT.SEARCH over the store's index. Filters are intersected with
// the query. Grouping is done client-side over at most groupScan documents.
func (s *Store) Search(ctx context.Context, req *index.Request) (*index.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	limit := req.Limit
	if req.Grouped() {
		limit = s.groupScan
	}
	if limit <= 0 {
		limit = 10
	}

	args := []string{
		s.index, buildQuery(req.Query, req.Filters),
		"LIMIT", "0", strconv.Itoa(limit),
		"RETURN", "1", "$",
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, &index.Error{Op: index.OpSearch, Err: fmt.Errorf("%s: %w", s.index, index.ErrIndexNotFound)}
		}
		return nil, &index.Error{Op: index.OpSearch, Err: err}
	}

	total, docs, err := parseJSONResult(raw)
	if err != nil {
		return nil, &index.Error{Op: index.OpSearch, Err: err}
	}

	if req.Grouped() {
		groups := groupDocuments(docs, req.GroupField, req.EffectiveGroupLimit(), req.Limit)
		for i := range groups {
			groups[i].Documents = project(groups[i].Documents, req.Fields)
		}
		return &index.Response{Total: total, Groups: groups}, nil
	}
	return &index.Response{Total: total, Documents: project(docs, req.Fields)}, nil
}

// buildQuery intersects the free-text query with the filter fragments.
func buildQuery(query string, filters []string) string {
	parts := make([]string, 0, len(filters)+1)
	if q := strings.TrimSpace(query); q != "" && q != index.RediSearch.MatchAll() {
		parts = append(parts, q)
	}
	for _, f := range filters {
		if strings.TrimSpace(f) != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return index.RediSearch.MatchAll()
	}
	return strings.Join(parts, " ")
}

// --- Result parsing ---

// parseJSONResult reads [total, key1, ["$", json1], key2, ["$", json2], ...].
func parseJSONResult(raw []rueidis.RedisMessage) (int, []index.Document, error) {
	if len(raw) == 0 {
		return 0, nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return 0, nil, nil
	}

	docs := make([]index.Document, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		body, ok := parseFieldPairs(fields)["$"]
		if !ok {
			continue
		}
		doc, err := decodeDocument(body)
		if err != nil {
			key, _ := raw[i].ToString()
			return 0, nil, fmt.Errorf("decode %s: %w", key, err)
		}
		docs = append(docs, doc)
	}

	return int(total), docs, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// decodeDocument keeps numbers as json.Number so integer fields stay exact.
func decodeDocument(body string) (index.Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var doc index.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return doc, nil
}

// groupDocuments buckets docs by the first value of field, in first-seen
// order. Documents without the field are not grouped. maxGroups <= 0 means
// no cap on the number of groups.
func groupDocuments(docs []index.Document, field string, perGroup, maxGroups int) []index.Group {
	var groups []index.Group
	pos := make(map[string]int)
	for _, doc := range docs {
		v, ok := doc.First(field)
		if !ok {
			continue
		}
		key := index.FormatValue(v)
		i, seen := pos[key]
		if !seen {
			if maxGroups > 0 && len(groups) >= maxGroups {
				continue
			}
			i = len(groups)
			pos[key] = i
			groups = append(groups, index.Group{Value: key})
		}
		if len(groups[i].Documents) < perGroup {
			groups[i].Documents = append(groups[i].Documents, doc)
		}
	}
	return groups
}

func project(docs []index.Document, fields []string) []index.Document {
	if len(fields) == 0 {
		return docs
	}
	out := make([]index.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Project(fields)
	}
	return out
}
