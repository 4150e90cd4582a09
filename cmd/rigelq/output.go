package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kailas-cloud/rigel"
	"github.com/kailas-cloud/rigel/index"
	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

type itemJSON struct {
	Schema   string         `json:"schema"`
	Document index.Document `json:"document"`
}

type groupJSON struct {
	Key   string     `json:"key"`
	Items []itemJSON `json:"items"`
}

func toJSON(it rigel.Item) itemJSON {
	return itemJSON{Schema: it.SchemaName(), Document: it.Document()}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// writeItem prints one item as "<schema> <id>" followed by its attributes in name order.
func writeItem(w io.Writer, it rigel.Item, indent string) {
	doc := it.Document()
	fmt.Fprintf(w, "%s%s %s\n", indent, it.SchemaName(), index.FormatValue(doc["id"]))

	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s  %s: %s\n", indent, k, formatAny(doc[k]))
	}
}

func formatAny(v any) string {
	if vs, ok := v.([]any); ok {
		parts := make([]string, len(vs))
		for i, e := range vs {
			parts[i] = index.FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return index.FormatValue(v)
}

func printItems(w io.Writer, items []rigel.Item) error {
	if jsonOutput {
		out := make([]itemJSON, len(items))
		for i, it := range items {
			out[i] = toJSON(it)
		}
		return writeJSON(w, out)
	}
	for _, it := range items {
		writeItem(w, it, "")
	}
	fmt.Fprintf(w, "(%d items)\n", len(items))
	return nil
}

func printGroups(w io.Writer, groups []queryuc.Group) error {
	if jsonOutput {
		out := make([]groupJSON, len(groups))
		for i, g := range groups {
			items := make([]itemJSON, len(g.Items))
			for j, it := range g.Items {
				items[j] = toJSON(it)
			}
			out[i] = groupJSON{Key: g.Key, Items: items}
		}
		return writeJSON(w, out)
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s (%d)\n", g.Key, len(g.Items))
		for _, it := range g.Items {
			writeItem(w, it, "  ")
		}
	}
	return nil
}
