package solr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/rigel/index"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/solr/", Core: "content"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Core: "c"}); err == nil {
		t.Error("expected error without base url")
	}
	if _, err := New(Config{BaseURL: "http://localhost:8983/solr"}); err == nil {
		t.Error("expected error without core")
	}
}

func TestSearch_Documents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/solr/content/select" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("q"); got != "*:*" {
			t.Errorf("expected q=*:*, got %q", got)
		}
		if got := r.PostForm["fq"]; len(got) != 2 || got[0] != "type:play" || got[1] != "sceneCount:5" {
			t.Errorf("unexpected fq: %v", got)
		}
		if got := r.PostForm.Get("rows"); got != "10" {
			t.Errorf("expected rows=10, got %q", got)
		}
		if r.PostForm.Get("group") != "" {
			t.Error("group should not be set")
		}
		_, _ = w.Write([]byte(`{"response":{"numFound":2,"start":0,"docs":[
			{"id":"play1","sceneCount":5,"childIds":["a","b"]},
			{"id":"play2","sceneCount":5}]}}`))
	})

	resp, err := c.Search(context.Background(), &index.Request{
		Filters: []string{"type:play", "", "sceneCount:5"},
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 || len(resp.Documents) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := resp.Documents[0]["sceneCount"]; got != json.Number("5") {
		t.Errorf("expected json.Number, got %#v", got)
	}
	if got := resp.Documents[0].All("childIds"); len(got) != 2 {
		t.Errorf("expected 2 child ids, got %v", got)
	}
}

func TestSearch_Fields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostForm.Get("fl"); got != "childIds" {
			t.Errorf("expected fl=childIds, got %q", got)
		}
		_, _ = w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	})
	if _, err := c.Search(context.Background(), &index.Request{Fields: []string{"childIds"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_Grouped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("group") != "true" || r.PostForm.Get("group.field") != "sceneCount" {
			t.Errorf("unexpected group params: %v", r.PostForm)
		}
		if got := r.PostForm.Get("group.limit"); got != "1" {
			t.Errorf("expected default group.limit=1, got %q", got)
		}
		_, _ = w.Write([]byte(`{"grouped":{"sceneCount":{"matches":5,"groups":[
			{"groupValue":5,"doclist":{"numFound":2,"docs":[{"id":"play1"}]}},
			{"groupValue":2,"doclist":{"numFound":1,"docs":[{"id":"play3"}]}},
			{"groupValue":null,"doclist":{"numFound":1,"docs":[{"id":"book1"}]}}]}}}`))
	})

	resp, err := c.Search(context.Background(), &index.Request{GroupField: "sceneCount"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Groups) != 2 {
		t.Fatalf("expected null group to be skipped, got %d groups", len(resp.Groups))
	}
	if resp.Groups[0].Value != "5" || resp.Groups[1].Value != "2" {
		t.Errorf("unexpected group keys: %s, %s", resp.Groups[0].Value, resp.Groups[1].Value)
	}
	if resp.Total != 5 {
		t.Errorf("expected total 5, got %d", resp.Total)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"core missing", http.StatusNotFound, "", index.ErrIndexNotFound},
		{"server error", http.StatusServiceUnavailable, "", index.ErrUnavailable},
		{"bad query", http.StatusBadRequest, `{"error":{"msg":"undefined field foo","code":400}}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Search(context.Background(), &index.Request{})
			if err == nil {
				t.Fatal("expected error")
			}
			var ie *index.Error
			if !errors.As(err, &ie) {
				t.Errorf("expected index.Error, got %T", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	status := "OK"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/solr/content/admin/ping" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status = "FAIL"
	if err := c.Ping(context.Background()); !errors.Is(err, index.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
