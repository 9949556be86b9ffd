package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryBookStorage is a thread-safe in-memory BookStorage used to run
// full request scenarios through the router without a database.
type memoryBookStorage struct {
	mu    sync.Mutex
	books map[string]Book
}

func newMemoryBookStorage() *memoryBookStorage {
	return &memoryBookStorage{books: make(map[string]Book)}
}

func (ms *memoryBookStorage) Add(_ context.Context, book Book) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[book.ID]; ok {
		return Book{}, ErrDuplicateBook
	}
	ms.books[book.ID] = book
	return book, nil
}

func (ms *memoryBookStorage) GetOne(_ context.Context, id string) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	book, ok := ms.books[id]
	if !ok {
		return Book{}, ErrBookNotFound
	}
	return book, nil
}

func (ms *memoryBookStorage) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(ms.books, id)
	return nil
}

func (ms *memoryBookStorage) Update(_ context.Context, id string, book Book) (Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.books[id]; !ok {
		return Book{}, ErrBookNotFound
	}
	book.ID = id
	ms.books[id] = book
	return book, nil
}

func (ms *memoryBookStorage) GetAll(_ context.Context) ([]Book, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	books := []Book{}
	for _, book := range ms.books {
		books = append(books, book)
	}
	return books, nil
}

func newTestRouter(storage BookStorage, config *Config) *httprouter.Router {
	bs := NewBookService(zap.NewNop(), config, storage)
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{started: time.Now()}, NewClock(false), NewIDsHandler(), bs)
	public, ops := api.MiddlewaresStacks()
	return api.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: public.Chain,
			ops:    ops.Chain,
		},
	)
}

// TestSetupRoutes ensures all expected endpoints are implemented.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"index endpoint",
			httptest.NewRequest(http.MethodGet, "/", nil),
			true,
		},
		{
			"status endpoint",
			httptest.NewRequest(http.MethodGet, "/status", nil),
			true,
		},
		{
			"create book endpoint",
			httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString(`{"id":"`+testBookID+`"}`)),
			true,
		},
		{
			"fetch all books endpoint",
			httptest.NewRequest(http.MethodGet, "/books", nil),
			true,
		},
		{
			"fetch single book endpoint",
			httptest.NewRequest(http.MethodGet, "/books/"+testBookID, nil),
			true,
		},
		{
			"update book endpoint",
			httptest.NewRequest(http.MethodPut, "/books/"+testBookID, bytes.NewBufferString(`{}`)),
			true,
		},
		{
			"delete book endpoint",
			httptest.NewRequest(http.MethodDelete, "/books/"+testBookID, nil),
			true,
		},
		{
			"ops stats endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/stats", nil),
			true,
		},
		{
			"invalid api endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/books", nil),
			false,
		},
	}

	router := newTestRouter(newMemoryBookStorage(), &Config{OpsEndpointsEnable: true})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			res := w.Result()
			defer res.Body.Close()
			if tc.implemented {
				assert.NotEqual(t, `{"requestid":"","status":404,"message":"route does not exist","data":{}}`+"\n", w.Body.String())
			} else {
				assert.Equal(t, http.StatusNotFound, res.StatusCode)
				assert.JSONEq(t, `{"requestid":"", "status":404, "message":"route does not exist", "data":{}}`, w.Body.String())
			}
		})
	}
}

// TestBookLifecycleScenario runs the full create/fetch/delete/fetch cycle
// through the real router and middlewares stacks.
func TestBookLifecycleScenario(t *testing.T) {
	router := newTestRouter(newMemoryBookStorage(), &Config{})
	payload := `{"id":"` + testBookID + `","name":"Dune","author":"Herbert","year":1965}`

	t.Run("create returns the record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		defer res.Body.Close()
		require.Equal(t, http.StatusCreated, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(data))
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("fetch returns the same record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/"+testBookID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(data))
	})

	t.Run("update keeps the identity", func(t *testing.T) {
		body := `{"id":"` + missingBookID + `","name":"Dune Messiah","author":"Herbert","year":1969}`
		req := httptest.NewRequest(http.MethodPut, "/books/"+testBookID, bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		expected := `{"id":"` + testBookID + `","name":"Dune Messiah","author":"Herbert","year":1969}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("delete succeeds with no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/books/"+testBookID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		defer res.Body.Close()
		require.Equal(t, http.StatusNoContent, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("fetch after delete misses", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/"+testBookID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("not-found symmetry", func(t *testing.T) {
		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/books/"+missingBookID, nil),
			httptest.NewRequest(http.MethodPut, "/books/"+missingBookID, bytes.NewBufferString(`{}`)),
			httptest.NewRequest(http.MethodDelete, "/books/"+missingBookID, nil),
		} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			res := w.Result()
			res.Body.Close()
			assert.Equal(t, http.StatusNotFound, res.StatusCode, req.Method)
		}
	})
}
