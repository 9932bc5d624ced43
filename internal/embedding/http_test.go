package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-model", 0)
}

func TestEmbedDocumentsBatchShape(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		io.WriteString(w, `{"data":[{"embedding":[0.1,0.2]},{"embedding":[0.3,0.4]}]}`)
	})

	vecs, err := c.EmbedDocuments(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	if !reflect.DeepEqual(vecs, want) {
		t.Errorf("got %v, want %v", vecs, want)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	if _, ok := gotBody["input"].([]any); !ok {
		t.Errorf("batch request input should be a list, got %T", gotBody["input"])
	}
}

func TestEmbedQueryBothShapesAgree(t *testing.T) {
	responses := []string{
		`{"data":[{"embedding":[0.1,0.2]}]}`,
		`{"embedding":[0.1,0.2]}`,
	}
	want := []float32{0.1, 0.2}
	for _, resp := range responses {
		resp := resp
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, resp)
		})
		vec, err := c.EmbedQuery(context.Background(), "question")
		if err != nil {
			t.Fatalf("EmbedQuery with %s: %v", resp, err)
		}
		if !reflect.DeepEqual(vec, want) {
			t.Errorf("response %s: got %v, want %v", resp, vec, want)
		}
	}
}

func TestEmbedErrorStatusSurfacesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "model not loaded")
	})
	_, err := c.EmbedQuery(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error should carry status and body, got: %v", err)
	}
}

func TestEmbedUnrecognizedResponse(t *testing.T) {
	for _, resp := range []string{`{"result":"ok"}`, `{}`, `not json`, `{"data":[{"vector":[1]}]}`} {
		resp := resp
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, resp)
		})
		_, err := c.EmbedQuery(context.Background(), "q")
		var unrec *UnrecognizedResponseError
		if !errors.As(err, &unrec) {
			t.Errorf("response %s: got %v, want UnrecognizedResponseError", resp, err)
			continue
		}
		if !strings.Contains(err.Error(), resp) {
			t.Errorf("error should name the offending payload, got: %v", err)
		}
	}
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"embedding":[0.5]}`)
	})
	_, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("expected count mismatch error, got: %v", err)
	}
}

func TestEmbedDimensionCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"embedding":[0.1,0.2]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", 3)
	if _, err := c.EmbedQuery(context.Background(), "q"); err == nil {
		t.Error("expected dimension error for a 2-value vector with dimensions=3")
	}

	c = NewClient(srv.URL, "test-model", 2)
	if _, err := c.EmbedQuery(context.Background(), "q"); err != nil {
		t.Errorf("matching dimensions should pass, got: %v", err)
	}
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	c := NewClient("http://unreachable.invalid", "test-model", 0)
	vecs, err := c.EmbedDocuments(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("empty input should be a no-op, got %v, %v", vecs, err)
	}
}
