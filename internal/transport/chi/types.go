package chi

import (
	"github.com/kailas-cloud/rigel"
	"github.com/kailas-cloud/rigel/index"
	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeSchemaNotFound   ErrorCode = "schema_not_found"
	CodeItemNotFound     ErrorCode = "item_not_found"
	CodeUnknownField     ErrorCode = "unknown_field"
	CodeInvalidFilter    ErrorCode = "invalid_filter"
	CodeTypeMismatch     ErrorCode = "type_mismatch"
	CodeResultTooLarge   ErrorCode = "result_too_large"
	CodeIndexNotFound    ErrorCode = "index_not_found"
	CodeIndexUnavailable ErrorCode = "index_unavailable"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// FieldResponse describes a schema field.
type FieldResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SchemaResponse describes a configured schema.
type SchemaResponse struct {
	Name          string          `json:"name"`
	ID            string          `json:"id"`
	Discriminator string          `json:"discriminator,omitempty"`
	Variants      []string        `json:"variants,omitempty"`
	Fields        []FieldResponse `json:"fields"`
}

// SchemaListResponse is the body of GET /v1/schemas.
type SchemaListResponse struct {
	Items []SchemaResponse `json:"items"`
}

// ItemResponse is one materialized content item.
type ItemResponse struct {
	Schema   string         `json:"schema"`
	Document index.Document `json:"document"`
}

// ItemListResponse is a list of items in index order.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

// ItemLookupResponse maps each requested identifier to its item, or null.
type ItemLookupResponse struct {
	Items map[string]*ItemResponse `json:"items"`
}

// GroupResponse is one group of a grouped listing.
type GroupResponse struct {
	Key   string         `json:"key"`
	Items []ItemResponse `json:"items"`
}

// GroupListResponse is the body of a grouped listing, groups in index order.
type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
}

func itemToResponse(it rigel.Item) ItemResponse {
	return ItemResponse{Schema: it.SchemaName(), Document: it.Document()}
}

func itemsToList(items []rigel.Item) ItemListResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = itemToResponse(it)
	}
	return ItemListResponse{Items: out, Count: len(out)}
}

func schemaToResponse(info queryuc.SchemaInfo) SchemaResponse {
	fields := make([]FieldResponse, len(info.Fields))
	for i, f := range info.Fields {
		fields[i] = FieldResponse{Name: f.Name, Type: f.Type}
	}
	return SchemaResponse{
		Name:          info.Name,
		ID:            info.ID,
		Discriminator: info.Discriminator,
		Variants:      info.Variants,
		Fields:        fields,
	}
}
