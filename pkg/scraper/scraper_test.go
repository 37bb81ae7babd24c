package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/pkg/scraper"
)

const indexPage = `<html><body>
	<nav>Menu główne</nav>
	<section>
		<h2>O uczelni</h2>
		<p>Uczelnia kształci inżynierów od 1990 roku.</p>
	</section>
	<section>
		<p>Sekcja bez nagłówka, pomijana.</p>
	</section>
	<ul>
		<li><a href="/studia/informatyka">Informatyka</a></li>
		<li><a href="/studia/informatyka">Informatyka (duplikat)</a></li>
		<li><a href="https://other.example.com/studia/zaoczne">Zewnętrzny</a></li>
		<li><a href="/kontakt">Kontakt</a></li>
	</ul>
	<footer>Stopka</footer>
</body></html>`

const programPage = `<html><body>
	<header>Nagłówek serwisu</header>
	<main>
		<h1>Informatyka</h1>
		<p>Studia inżynierskie trwają 7 semestrów.</p>
	</main>
	<script>analytics();</script>
	<footer>Stopka</footer>
</body></html>`

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/studia/informatyka", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(programPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestScraper(t *testing.T, baseURL string) *scraper.Scraper {
	t.Helper()
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:   baseURL,
		RateLimit: 1000, // no throttling in tests
	})
	require.NoError(t, err)
	return s
}

func TestStudyPrograms(t *testing.T) {
	srv := newSiteServer(t)
	s := newTestScraper(t, srv.URL)

	pages, err := s.StudyPrograms(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, "Informatyka", pages[0].Title)
	assert.Equal(t, srv.URL+"/studia/informatyka", pages[0].URL)
	assert.Contains(t, pages[0].Content, "7 semestrów")
	assert.NotContains(t, pages[0].Content, "Stopka")
	assert.NotContains(t, pages[0].Content, "analytics")
}

func TestGeneralInfo(t *testing.T) {
	srv := newSiteServer(t)
	s := newTestScraper(t, srv.URL)

	pages, err := s.GeneralInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, "O uczelni", pages[0].Title)
	assert.Contains(t, pages[0].Content, "od 1990 roku")
}

func TestAllContent(t *testing.T) {
	srv := newSiteServer(t)
	s := newTestScraper(t, srv.URL)

	pages := s.AllContent(context.Background())
	assert.Len(t, pages, 2)
}

func TestStudyPrograms_BasePageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL)

	_, err := s.StudyPrograms(context.Background())
	assert.Error(t, err)
}

func TestAllContent_BestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL)

	pages := s.AllContent(context.Background())
	assert.Empty(t, pages)
}
