package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"studychat/internal/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type ScraperConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
	UserAgent string
}

// Scraper pulls study-programme pages and general information sections from
// a university website. It is used once, to bootstrap an empty collection;
// failures are logged and produce a partial result rather than an error.
type Scraper struct {
	config   ScraperConfig
	client   *http.Client
	limiter  *rate.Limiter
	visited  map[string]bool
	baseHost string
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		visited:  make(map[string]bool),
		baseHost: parsedURL.Host,
	}, nil
}

func (s *Scraper) fetch(ctx context.Context, urlStr string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// mainContent strips navigation chrome and collapses the remaining text.
func mainContent(sel *goquery.Selection) string {
	sel.Find("nav, footer, header, script, style").Remove()
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func (s *Scraper) resolveURL(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		base, err := url.Parse(s.config.BaseURL)
		if err != nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	if u.Host != s.baseHost {
		return "", false
	}
	return u.String(), true
}

// StudyPrograms follows every link under /studia/ on the base page and
// returns one Page per programme. Pages that fail to load are skipped.
func (s *Scraper) StudyPrograms(ctx context.Context) ([]models.Page, error) {
	doc, err := s.fetch(ctx, s.config.BaseURL)
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	doc.Find(`a[href*="/studia/"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		programURL, ok := s.resolveURL(href)
		if !ok || s.visited[programURL] {
			return
		}
		s.visited[programURL] = true

		programDoc, err := s.fetch(ctx, programURL)
		if err != nil {
			log.Printf("error fetching %s: %v", programURL, err)
			return
		}

		content := mainContent(programDoc.Selection)
		if content == "" {
			return
		}
		pages = append(pages, models.Page{
			Title:   strings.TrimSpace(link.Text()),
			URL:     programURL,
			Content: content,
		})
	})

	return pages, nil
}

// GeneralInfo extracts the base page's section and article elements that
// carry a heading.
func (s *Scraper) GeneralInfo(ctx context.Context) ([]models.Page, error) {
	doc, err := s.fetch(ctx, s.config.BaseURL)
	if err != nil {
		return nil, err
	}

	var pages []models.Page
	doc.Find("section, article").Each(func(_ int, section *goquery.Selection) {
		title := section.Find("h1, h2, h3").First()
		if title.Length() == 0 {
			return
		}
		titleText := strings.TrimSpace(title.Text())

		content := mainContent(section)
		if content == "" {
			return
		}
		pages = append(pages, models.Page{
			Title:   titleText,
			URL:     s.config.BaseURL,
			Content: content,
		})
	})

	return pages, nil
}

// AllContent gathers study programmes and general information. Either half
// failing degrades to whatever the other produced.
func (s *Scraper) AllContent(ctx context.Context) []models.Page {
	var all []models.Page

	programs, err := s.StudyPrograms(ctx)
	if err != nil {
		log.Printf("error getting study programs: %v", err)
	}
	all = append(all, programs...)

	info, err := s.GeneralInfo(ctx)
	if err != nil {
		log.Printf("error getting general info: %v", err)
	}
	all = append(all, info...)

	return all
}
