package solr

import "github.com/kailas-cloud/rigel/index"

type selectResponse struct {
	Response docList                 `json:"response"`
	Grouped  map[string]groupedField `json:"grouped"`
}

type docList struct {
	NumFound int              `json:"numFound"`
	Start    int              `json:"start"`
	Docs     []index.Document `json:"docs"`
}

type groupedField struct {
	Matches int          `json:"matches"`
	Groups  []groupEntry `json:"groups"`
}

type groupEntry struct {
	GroupValue any     `json:"groupValue"`
	DocList    docList `json:"doclist"`
}

type errorResponse struct {
	Error struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error"`
}
