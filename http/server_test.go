package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/sitechat"
	sitechathttp "github.com/fwojciec/sitechat/http"
	"github.com/fwojciec/sitechat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, s *sitechathttp.Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestServer_Chat(t *testing.T) {
	t.Parallel()

	t.Run("returns answer with source documents", func(t *testing.T) {
		t.Parallel()

		var gotQuestion string
		var gotHistory []sitechat.ChatMessage
		s := sitechathttp.NewServer()
		s.Asker = &mock.Asker{
			AskFn: func(_ context.Context, question string, history []sitechat.ChatMessage) (*sitechat.Answer, error) {
				gotQuestion, gotHistory = question, history
				return &sitechat.Answer{
					Text: "Use make.",
					SourceDocuments: []*sitechat.Document{
						{PageContent: "Run make.", Metadata: sitechat.DocumentMetadata{URL: "https://a.com/install", Title: "Install"}},
					},
				}, nil
			},
		}

		rec, out := serve(t, s, http.MethodPost, "/api/chat",
			`{"question":"How?","history":[{"question":"Hi","answer":"Hello"}]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "How?", gotQuestion)
		assert.Equal(t, []sitechat.ChatMessage{{Question: "Hi", Answer: "Hello"}}, gotHistory)
		assert.Equal(t, "Use make.", out["text"])
		docs := out["sourceDocuments"].([]any)
		require.Len(t, docs, 1)
		doc := docs[0].(map[string]any)
		assert.Equal(t, "Run make.", doc["pageContent"])
		assert.Equal(t, "https://a.com/install", doc["metadata"].(map[string]any)["url"])
	})

	t.Run("rejects other methods", func(t *testing.T) {
		t.Parallel()

		rec, out := serve(t, sitechathttp.NewServer(), http.MethodGet, "/api/chat", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Method not allowed", out["error"])
	})

	t.Run("rejects missing question", func(t *testing.T) {
		t.Parallel()

		rec, out := serve(t, sitechathttp.NewServer(), http.MethodPost, "/api/chat", `{"history":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No question in the request", out["error"])
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		rec, _ := serve(t, sitechathttp.NewServer(), http.MethodPost, "/api/chat", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 500 with message on failure", func(t *testing.T) {
		t.Parallel()

		s := sitechathttp.NewServer()
		s.Asker = &mock.Asker{
			AskFn: func(context.Context, string, []sitechat.ChatMessage) (*sitechat.Answer, error) {
				return nil, errors.New("model unavailable")
			},
		}

		rec, out := serve(t, s, http.MethodPost, "/api/chat", `{"question":"How?"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "model unavailable", out["error"])
	})

	t.Run("maps application error codes", func(t *testing.T) {
		t.Parallel()

		s := sitechathttp.NewServer()
		s.Asker = &mock.Asker{
			AskFn: func(context.Context, string, []sitechat.ChatMessage) (*sitechat.Answer, error) {
				return nil, sitechat.Errorf(sitechat.ENOTFOUND, "no relevant content indexed")
			},
		}

		rec, out := serve(t, s, http.MethodPost, "/api/chat", `{"question":"How?"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no relevant content indexed", out["error"])
	})
}

func TestServer_Ingest(t *testing.T) {
	t.Parallel()

	t.Run("returns index result", func(t *testing.T) {
		t.Parallel()

		s := sitechathttp.NewServer()
		s.Ingester = &mock.Ingester{
			IngestFn: func(_ context.Context, url string) (*sitechat.IndexResult, error) {
				assert.Equal(t, "https://a.com/", url)
				return &sitechat.IndexResult{Documents: 3, Chunks: 10, Skipped: 2}, nil
			},
		}

		rec, out := serve(t, s, http.MethodPost, "/api/ingest", `{"url":"https://a.com/"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.InDelta(t, 3, out["documents"], 0)
		assert.InDelta(t, 10, out["chunks"], 0)
		assert.InDelta(t, 2, out["skipped"], 0)
	})

	t.Run("rejects missing url", func(t *testing.T) {
		t.Parallel()

		s := sitechathttp.NewServer()
		s.Ingester = &mock.Ingester{}

		rec, _ := serve(t, s, http.MethodPost, "/api/ingest", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 501 when ingestion is disabled", func(t *testing.T) {
		t.Parallel()

		rec, _ := serve(t, sitechathttp.NewServer(), http.MethodPost, "/api/ingest", `{"url":"https://a.com/"}`)

		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("maps invalid seed to 400", func(t *testing.T) {
		t.Parallel()

		s := sitechathttp.NewServer()
		s.Ingester = &mock.Ingester{
			IngestFn: func(context.Context, string) (*sitechat.IndexResult, error) {
				return nil, sitechat.Errorf(sitechat.EINVALID, "invalid seed URL")
			},
		}

		rec, out := serve(t, s, http.MethodPost, "/api/ingest", `{"url":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid seed URL", out["error"])
	})
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	rec, out := serve(t, sitechathttp.NewServer(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	s := sitechathttp.NewServer()
	s.Metrics = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics\n", rec.Body.String())
}

func TestServer_Middleware(t *testing.T) {
	t.Parallel()

	var seen []string
	s := sitechathttp.NewServer()
	s.Middleware = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	serve(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, []string{"/healthz"}, seen)
}

func TestServer_OpenClose(t *testing.T) {
	t.Parallel()

	s := sitechathttp.NewServer()
	s.Addr = "127.0.0.1:0"
	require.NoError(t, s.Open())
	defer s.Close()

	resp, err := http.Get(s.URL() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, sitechathttp.ErrorStatusCode(sitechat.EINVALID))
	assert.Equal(t, http.StatusServiceUnavailable, sitechathttp.ErrorStatusCode(sitechat.EUNAVAILABLE))
	assert.Equal(t, http.StatusInternalServerError, sitechathttp.ErrorStatusCode("unknown"))
}
