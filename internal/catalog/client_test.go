package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const resultPage = `<!DOCTYPE html>
<html><body>
<div id="main">
<h3>Найденные книги</h3>
<ul>
  <li>
    <a href="/b/452142">Война и мир. Книга 1</a> -
    <a href="/a/8368">Лев Николаевич Толстой</a>
    (<a href="/b/452142/fb2">fb2</a>, <a href="/b/452142/epub">epub</a>)
  </li>
  <li>
    <a href="/b/98765">Анна Каренина</a> -
    <a href="/a/8368">Лев Николаевич Толстой</a>
    (<a href="/b/98765/fb2">fb2</a>)
  </li>
  <li>
    <a href="/polka/show/1">не книга, служебная ссылка</a>
  </li>
</ul>
<ul>
  <li>
    <a href="/b/452142">Война и мир. Книга 1</a>
    (<a href="/b/452142/mobi">mobi</a>)
  </li>
</ul>
</div>
</body></html>`

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL), server
}

func TestSearchParsesResultPage(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ask"); got != "война и мир" {
			t.Errorf("query param ask = %q", got)
		}
		w.Write([]byte(resultPage))
	})
	defer server.Close()

	records, err := client.Search(context.Background(), "война и мир")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.ExternalID != "452142" {
		t.Errorf("external id = %q", first.ExternalID)
	}
	if first.Title != "Война и мир. Книга 1" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Author != "Лев Николаевич Толстой" {
		t.Errorf("author = %q", first.Author)
	}
	// formats from the duplicate listing are merged in
	if len(first.Formats) != 3 {
		t.Errorf("formats = %v, expected fb2, epub and mobi", first.Formats)
	}

	if records[1].ExternalID != "98765" {
		t.Errorf("second external id = %q", records[1].ExternalID)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Ничего не найдено</p></body></html>`))
	})
	defer server.Close()

	records, err := client.Search(context.Background(), "нет такой книги")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if records == nil {
		t.Error("expected an empty slice, got nil")
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestSearchBadStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	defer server.Close()

	_, err := client.Search(context.Background(), "толстой")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for status 503, got %v", err)
	}
}

func TestSearchUnreachableCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(server.URL)

	_, err := client.Search(context.Background(), "толстой")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for refused connection, got %v", err)
	}
}

func TestSearchCancelledContext(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "толстой")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for cancelled context, got %v", err)
	}
}

func TestSearchRecordWithoutAuthor(t *testing.T) {
	page := `<html><body><ul><li><a href="/b/111">Аноним</a></li></ul></body></html>`
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	})
	defer server.Close()

	records, err := client.Search(context.Background(), "аноним")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Author != "" {
		t.Errorf("author = %q, expected empty", records[0].Author)
	}
	if records[0].Title != "Аноним" {
		t.Errorf("title = %q", records[0].Title)
	}
}
