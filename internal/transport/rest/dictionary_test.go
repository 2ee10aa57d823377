package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/service/dictionary"
)

func newTestDictionaryHandler(svc *mockDictionaryService) (*DictionaryHandler, *dictionary.Selection) {
	sel := &dictionary.Selection{}
	return NewDictionaryHandler(svc, sel, testLogger()), sel
}

// serve routes the request through a mux so path values are populated.
func serve(method, pattern string, fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(method+" "+pattern, fn)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDictionaryHandler_Lookup_Success(t *testing.T) {
	t.Parallel()

	entry := testStoredEntry("run")
	var got dictionary.LookupInput
	svc := &mockDictionaryService{
		LookupFunc: func(_ context.Context, in dictionary.LookupInput) (*dictionary.LookupResult, error) {
			got = in
			return &dictionary.LookupResult{Entry: entry, Headword: "run"}, nil
		},
	}
	h, sel := newTestDictionaryHandler(svc)

	body := `{"word":"running","context":"She was running late.","languages":{"target_language":"Spanish"},"force":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/lookup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Lookup(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", got.Word)
	require.NotNil(t, got.Context)
	assert.Equal(t, "She was running late.", *got.Context)
	assert.Equal(t, "Spanish", got.Languages.TargetLanguage)
	assert.Empty(t, got.Languages.SourceLanguage)
	assert.True(t, got.Force)

	var resp struct {
		Headword string `json:"headword"`
		Cached   bool   `json:"cached"`
		Entry    struct {
			ID    string `json:"id"`
			Entry struct {
				Headword     string `json:"headword"`
				PartOfSpeech string `json:"part_of_speech"`
			} `json:"entry"`
		} `json:"entry"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "run", resp.Headword)
	assert.Equal(t, entry.ID.String(), resp.Entry.ID)
	assert.Equal(t, "verb", resp.Entry.Entry.PartOfSpeech)

	current, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, entry.ID, current.ID)
}

func TestDictionaryHandler_Lookup_InvalidBody(t *testing.T) {
	t.Parallel()

	h, _ := newTestDictionaryHandler(&mockDictionaryService{})

	for _, body := range []string{`{"word":`, `{"word":"x","unknown":1}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/lookup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Lookup(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestDictionaryHandler_Lookup_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		wantRaw string
	}{
		{"validation", domain.NewValidationError("word", "required"), http.StatusBadRequest, ""},
		{"invalid lemma", domain.NewResponseError(domain.ErrInvalidLemma, "The lemma is run.\nBecause...", "multi-line response"), http.StatusUnprocessableEntity, "The lemma is run.\nBecause..."},
		{"schema", fmt.Errorf("generate: %w", domain.NewResponseError(domain.ErrSchemaViolation, `{"headword":""}`, "headword is empty")), http.StatusUnprocessableEntity, `{"headword":""}`},
		{"remote", &domain.RemoteError{Provider: "deepseek", Err: context.DeadlineExceeded}, http.StatusBadGateway, ""},
		{"internal", fmt.Errorf("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockDictionaryService{
				LookupFunc: func(context.Context, dictionary.LookupInput) (*dictionary.LookupResult, error) {
					return nil, tt.err
				},
			}
			h, sel := newTestDictionaryHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/lookup", strings.NewReader(`{"word":"run"}`))
			rec := httptest.NewRecorder()
			h.Lookup(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantRaw, resp.Raw)

			_, ok := sel.Current()
			assert.False(t, ok, "failed lookup must not change the selection")
		})
	}
}

func TestDictionaryHandler_Lookup_ValidationFields(t *testing.T) {
	t.Parallel()

	svc := &mockDictionaryService{
		LookupFunc: func(context.Context, dictionary.LookupInput) (*dictionary.LookupResult, error) {
			return nil, domain.NewValidationErrors([]domain.FieldError{
				{Field: "word", Message: "required"},
				{Field: "context", Message: "too long (max 5000)"},
			})
		},
	}
	h, _ := newTestDictionaryHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/lookup", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Lookup(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "context", resp.Fields[1].Field)
}

func TestDictionaryHandler_Search_ParsesFilter(t *testing.T) {
	t.Parallel()

	var got domain.EntryFilter
	svc := &mockDictionaryService{
		SearchFunc: func(_ context.Context, f domain.EntryFilter) (*dictionary.SearchResult, error) {
			got = f
			return &dictionary.SearchResult{Entries: []domain.StoredEntry{testStoredEntry("run")}, TotalCount: 7}, nil
		},
	}
	h, _ := newTestDictionaryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/entries?q=ru&source=English&target=Spanish&definition=German&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.EntryFilter{
		Query:              "ru",
		SourceLanguage:     "English",
		TargetLanguage:     "Spanish",
		DefinitionLanguage: "German",
		Limit:              5,
		Offset:             10,
	}, got)

	var resp dictionary.SearchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp.TotalCount)
	assert.Len(t, resp.Entries, 1)
}

func TestDictionaryHandler_Search_InvalidPaging(t *testing.T) {
	t.Parallel()

	h, _ := newTestDictionaryHandler(&mockDictionaryService{})

	for _, q := range []string{"limit=abc", "offset=-1", "offset=x"} {
		req := httptest.NewRequest(http.MethodGet, "/api/entries?"+q, nil)
		rec := httptest.NewRecorder()
		h.Search(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestDictionaryHandler_Get(t *testing.T) {
	t.Parallel()

	entry := testStoredEntry("run")
	svc := &mockDictionaryService{
		GetFunc: func(_ context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
			if id == entry.ID {
				return &entry, nil
			}
			return nil, fmt.Errorf("get entry: %w", domain.ErrNotFound)
		},
	}
	h, _ := newTestDictionaryHandler(svc)

	rec := serve(http.MethodGet, "/api/entries/{id}", h.Get,
		httptest.NewRequest(http.MethodGet, "/api/entries/"+entry.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodGet, "/api/entries/{id}", h.Get,
		httptest.NewRequest(http.MethodGet, "/api/entries/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(http.MethodGet, "/api/entries/{id}", h.Get,
		httptest.NewRequest(http.MethodGet, "/api/entries/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDictionaryHandler_Delete_ClearsSelection(t *testing.T) {
	t.Parallel()

	entry := testStoredEntry("run")
	var deleted uuid.UUID
	svc := &mockDictionaryService{
		DeleteFunc: func(_ context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	h, sel := newTestDictionaryHandler(svc)
	sel.Select(&entry)

	rec := serve(http.MethodDelete, "/api/entries/{id}", h.Delete,
		httptest.NewRequest(http.MethodDelete, "/api/entries/"+entry.ID.String(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, entry.ID, deleted)
	_, ok := sel.Current()
	assert.False(t, ok)
}

func TestDictionaryHandler_Delete_OtherEntryKeepsSelection(t *testing.T) {
	t.Parallel()

	selected := testStoredEntry("run")
	svc := &mockDictionaryService{
		DeleteFunc: func(context.Context, uuid.UUID) error { return nil },
	}
	h, sel := newTestDictionaryHandler(svc)
	sel.Select(&selected)

	rec := serve(http.MethodDelete, "/api/entries/{id}", h.Delete,
		httptest.NewRequest(http.MethodDelete, "/api/entries/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	current, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, selected.ID, current.ID)
}

func TestDictionaryHandler_Regenerate_UpdatesSelection(t *testing.T) {
	t.Parallel()

	old := testStoredEntry("run")
	fresh := old
	fresh.Entry.Meanings = []domain.Meaning{{Definition: "to go quickly by moving the legs"}}
	svc := &mockDictionaryService{
		RegenerateFunc: func(_ context.Context, id uuid.UUID) (*domain.StoredEntry, error) {
			require.Equal(t, old.ID, id)
			return &fresh, nil
		},
	}
	h, sel := newTestDictionaryHandler(svc)
	sel.Select(&old)

	rec := serve(http.MethodPost, "/api/entries/{id}/regenerate", h.Regenerate,
		httptest.NewRequest(http.MethodPost, "/api/entries/"+old.ID.String()+"/regenerate", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	current, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, "to go quickly by moving the legs", current.Entry.Meanings[0].Definition)
}

func TestDictionaryHandler_Regenerate_FailureKeepsSelection(t *testing.T) {
	t.Parallel()

	old := testStoredEntry("run")
	svc := &mockDictionaryService{
		RegenerateFunc: func(context.Context, uuid.UUID) (*domain.StoredEntry, error) {
			return nil, &domain.RemoteError{Provider: "openai", Err: io.ErrUnexpectedEOF}
		},
	}
	h, sel := newTestDictionaryHandler(svc)
	sel.Select(&old)

	rec := serve(http.MethodPost, "/api/entries/{id}/regenerate", h.Regenerate,
		httptest.NewRequest(http.MethodPost, "/api/entries/"+old.ID.String()+"/regenerate", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	current, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, old.Entry.Meanings, current.Entry.Meanings)
}

func TestDictionaryHandler_Languages(t *testing.T) {
	t.Parallel()

	svc := &mockDictionaryService{
		LanguagesFunc: func(context.Context) (domain.Languages, error) {
			return domain.Languages{Source: []string{"English"}, Target: []string{"English", "Spanish"}, Definition: []string{"English"}}, nil
		},
	}
	h, _ := newTestDictionaryHandler(svc)

	rec := httptest.NewRecorder()
	h.Languages(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"source":["English"],"target":["English","Spanish"],"definition":["English"]}`, rec.Body.String())
}

func TestDictionaryHandler_ExportImport(t *testing.T) {
	t.Parallel()

	var gotFilter domain.EntryFilter
	var imported string
	svc := &mockDictionaryService{
		ExportFunc: func(_ context.Context, w io.Writer, f domain.EntryFilter) (int, error) {
			gotFilter = f
			_, err := io.WriteString(w, "{\"id\":\"1\"}\n")
			return 1, err
		},
		ImportFunc: func(_ context.Context, r io.Reader) (*dictionary.ImportResult, error) {
			b, err := io.ReadAll(r)
			if err != nil {
				return nil, err
			}
			imported = string(b)
			return &dictionary.ImportResult{Imported: 1, Skipped: 2}, nil
		},
	}
	h, _ := newTestDictionaryHandler(svc)

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/api/export?target=Spanish", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Spanish", gotFilter.TargetLanguage)
	assert.Equal(t, "{\"id\":\"1\"}\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.Import(rec, httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("line-1\nline-2\n")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "line-1\nline-2\n", imported)

	var resp dictionary.ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 2, resp.Skipped)
}

func TestDictionaryHandler_Selection(t *testing.T) {
	t.Parallel()

	h, sel := newTestDictionaryHandler(&mockDictionaryService{})

	rec := httptest.NewRecorder()
	h.CurrentSelection(rec, httptest.NewRequest(http.MethodGet, "/api/selection", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entry":null}`, rec.Body.String())

	entry := testStoredEntry("run")
	sel.Select(&entry)

	rec = httptest.NewRecorder()
	h.CurrentSelection(rec, httptest.NewRequest(http.MethodGet, "/api/selection", nil))
	assert.Contains(t, rec.Body.String(), entry.ID.String())

	rec = httptest.NewRecorder()
	h.ClearSelection(rec, httptest.NewRequest(http.MethodDelete, "/api/selection", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := sel.Current()
	assert.False(t, ok)
}
