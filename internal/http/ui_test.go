package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/library"
)

func TestUIController_BooksPage(t *testing.T) {
	t.Run("lists every book", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		for _, path := range []string{"/", "/books"} {
			w := app.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "The Hobbit")
			assert.Contains(t, w.Body.String(), "Dune")
			assert.Contains(t, w.Body.String(), "2 of 2 books")
		}
	})

	t.Run("reads the library once per page", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/?format=Ebook", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "1 of 2 books")
		assert.Equal(t, 1, app.store.Loads())
	})

	t.Run("filters by query regardless of case", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/?q=TOLKIEN", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "The Hobbit")
		assert.NotContains(t, w.Body.String(), "Frank Herbert")
	})

	t.Run("filters by format", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/?format=Ebook", nil)
		assert.Contains(t, w.Body.String(), "Frank Herbert")
		assert.NotContains(t, w.Body.String(), "Tolkien")
	})

	t.Run("sorts by title ignoring leading article", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		body := app.do(t, http.MethodGet, "/?sort=title", nil).Body.String()
		assert.Less(t, strings.Index(body, "Frank Herbert"), strings.Index(body, "J.R.R. Tolkien"))
	})

	t.Run("positional links use insertion order", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		body := app.do(t, http.MethodGet, "/?format=Ebook", nil).Body.String()
		assert.Contains(t, body, `href="/remove/1"`)
		assert.NotContains(t, body, `href="/remove/0"`)
	})

	t.Run("cover goes through the cache", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		body := app.do(t, http.MethodGet, "/", nil).Body.String()
		assert.Contains(t, body, `src="/book/hobbit/cover"`)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		router, err := NewRouter(RouterConfig{
			Library: library.New(failingStore{}),
			Proxy:   &fakeProxy{},
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk on fire")
	})
}

func TestUIController_AddBook(t *testing.T) {
	t.Run("creates book with defaults and flashes", func(t *testing.T) {
		app := newTestApp(t)

		w := app.do(t, http.MethodPost, "/add", url.Values{
			"title":         {" Dune "},
			"author":        {"Frank Herbert"},
			"format":        {"Paper"},
			"read_time_hrs": {"12"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		books := app.books(t)
		require.Len(t, books, 1)
		assert.NotEmpty(t, books[0].ID)
		assert.Equal(t, "Dune", books[0].Title)
		assert.Equal(t, "2024-05-17", books[0].ReadDate)
		assert.Equal(t, entities.StatusToRead, books[0].Status)
		assert.Empty(t, books[0].ReadTimeHrs)

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		next := app.do(t, http.MethodGet, "/", nil, cookies...)
		assert.Contains(t, next.Body.String(), "Added")

		again := app.do(t, http.MethodGet, "/", nil, cookies...)
		assert.NotContains(t, again.Body.String(), `class="flash"`)
	})

	t.Run("keeps read time for audiobooks", func(t *testing.T) {
		app := newTestApp(t)

		app.do(t, http.MethodPost, "/add", url.Values{
			"title":         {"Dune"},
			"format":        {"Audiobook"},
			"read_time_hrs": {"21"},
			"read_date":     {"2023-02-03"},
		})

		books := app.books(t)
		require.Len(t, books, 1)
		assert.Equal(t, "21", books[0].ReadTimeHrs)
		assert.Equal(t, "2023-02-03", books[0].ReadDate)
	})

	t.Run("missing title re-renders form", func(t *testing.T) {
		app := newTestApp(t)

		w := app.do(t, http.MethodPost, "/add", url.Values{"author": {"Nobody"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Title is required.")
		assert.Contains(t, w.Body.String(), `value="Nobody"`)
		assert.Empty(t, app.books(t))
	})

	t.Run("blank title re-renders form", func(t *testing.T) {
		app := newTestApp(t)

		w := app.do(t, http.MethodPost, "/add", url.Values{"title": {"   "}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title is required")
		assert.Empty(t, app.books(t))
	})

	t.Run("bad read date re-renders form", func(t *testing.T) {
		app := newTestApp(t)

		w := app.do(t, http.MethodPost, "/add", url.Values{"title": {"Dune"}, "read_date": {"17/05/2024"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Read date must be a YYYY-MM-DD date.")
	})
}

func TestUIController_AddPage(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/add?title=Dune&author=Frank+Herbert&isbn=9780441013593", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Dune"`)
	assert.Contains(t, w.Body.String(), `value="Frank Herbert"`)
	assert.Contains(t, w.Body.String(), `value="9780441013593"`)
	assert.Contains(t, w.Body.String(), "Catalog lookup")
}

func TestUIController_BookPage(t *testing.T) {
	t.Run("renders details", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/book/dune", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Frank Herbert")
		assert.Contains(t, w.Body.String(), `action="/delete/dune"`)
	})

	t.Run("missing id redirects to list", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/book/nope", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestUIController_Edit(t *testing.T) {
	t.Run("edit form is prefilled", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/edit/dune", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="Frank Herbert"`)
		assert.Contains(t, w.Body.String(), `action="/edit/dune"`)
		assert.NotContains(t, w.Body.String(), "Catalog lookup")
	})

	t.Run("missing id redirects", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		assert.Equal(t, http.StatusSeeOther, app.do(t, http.MethodGet, "/edit/nope", nil).Code)
		w := app.do(t, http.MethodPost, "/edit/nope", url.Values{"title": {"X"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("updates fields and keeps id", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodPost, "/edit/hobbit", url.Values{
			"title":     {"The Hobbit"},
			"author":    {"Tolkien"},
			"cover_url": {"https://covers.example/new.jpg"},
			"read_date": {"2020-01-01"},
			"status":    {"Read"},
			"rating":    {"5"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/book/hobbit", w.Header().Get("Location"))

		books := app.books(t)
		assert.Equal(t, "hobbit", books[0].ID)
		assert.Equal(t, "Tolkien", books[0].Author)
		assert.Equal(t, "5", books[0].Rating)
		assert.Equal(t, []string{"hobbit"}, app.covers.invalidated)
	})

	t.Run("unchanged cover keeps cache", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		app.do(t, http.MethodPost, "/edit/dune", url.Values{"title": {"Dune Messiah"}})
		assert.Empty(t, app.covers.invalidated)
		assert.Equal(t, "Dune Messiah", app.books(t)[1].Title)
	})

	t.Run("invalid form is a 400", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodPost, "/edit/dune", url.Values{"title": {""}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Dune", app.books(t)[1].Title)
	})
}

func TestUIController_DeleteBook(t *testing.T) {
	t.Run("removes archives and invalidates", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodPost, "/delete/hobbit", url.Values{})
		assert.Equal(t, http.StatusSeeOther, w.Code)

		books := app.books(t)
		require.Len(t, books, 1)
		assert.Equal(t, "dune", books[0].ID)

		require.Len(t, app.archiver.archived, 1)
		assert.Equal(t, "The Hobbit", app.archiver.archived[0].Title)
		assert.Equal(t, "/delete/:id", app.archiver.routes[0])
		assert.Equal(t, []string{"hobbit"}, app.covers.invalidated)
	})

	t.Run("missing id redirects without saving", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodPost, "/delete/nope", url.Values{})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, 0, app.store.Saves())
		assert.Empty(t, app.archiver.archived)
	})
}

func TestUIController_RemoveAt(t *testing.T) {
	t.Run("non-integer index is a 404", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/remove/abc", nil).Code)
		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/remove/-1", nil).Code)
	})

	t.Run("out of range index is a 500", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/remove/5", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Len(t, app.books(t), 2)
	})

	t.Run("removes by position", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/remove/1", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		books := app.books(t)
		require.Len(t, books, 1)
		assert.Equal(t, "The Hobbit", books[0].Title)
		require.Len(t, app.archiver.archived, 1)
		assert.Equal(t, "Dune", app.archiver.archived[0].Title)
	})

	t.Run("legacy records without id", func(t *testing.T) {
		app := newTestApp(t, entities.Book{Title: "Old", Author: "Someone", Status: "To Read"})

		w := app.do(t, http.MethodGet, "/remove/0", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, app.books(t))
		assert.Empty(t, app.covers.invalidated)
	})
}

func TestUIController_SetStatus(t *testing.T) {
	t.Run("updates status by position", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		w := app.do(t, http.MethodGet, "/status/1/Reading", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "Reading", app.books(t)[1].Status)
	})

	t.Run("out of range index is a 500", func(t *testing.T) {
		app := newTestApp(t, seedBooks()...)

		assert.Equal(t, http.StatusInternalServerError, app.do(t, http.MethodGet, "/status/2/Read", nil).Code)
		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/status/x/Read", nil).Code)
	})
}

func TestUIController_Export(t *testing.T) {
	app := newTestApp(t, seedBooks()...)

	w := app.do(t, http.MethodGet, "/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="library.json"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "[\n  {"))

	var exported []entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	assert.Equal(t, app.books(t), exported)
}

func TestParseIndexParam(t *testing.T) {
	for _, tc := range []struct {
		value string
		want  int
		ok    bool
	}{
		{"0", 0, true},
		{"12", 12, true},
		{"abc", 0, false},
		{"-1", 0, false},
		{"", 0, false},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "index", Value: tc.value}}

		got, ok := parseIndexParam(c, "index")
		assert.Equal(t, tc.ok, ok, tc.value)
		assert.Equal(t, tc.want, got, tc.value)
		if !tc.ok {
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	}
}

func TestSessionManager_NilIsSafe(t *testing.T) {
	var sm *SessionManager
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	sm.Flash(c, "ignored")
	assert.Empty(t, sm.PopFlash(c))
}
