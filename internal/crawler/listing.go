package crawler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/openstatlab/mospi-rag/pkg/models"
)

// ErrNoListingTable reports a page without the expected listing structure.
// Callers treat it as a structural-parse warning, not a fatal error: the
// crawl moves on to the next page.
var ErrNoListingTable = errors.New("no listing table found on page")

// listingDateFormat is the day-month-year format used by the listing site.
const listingDateFormat = "02-01-2006"

// ParseListing extracts document records from one listing page. baseURL is
// the page's canonical URL, used to resolve relative links. Rows with fewer
// than 3 cells are skipped as malformed; a row whose date cell does not parse
// still yields a document with a nil DatePublished.
func ParseListing(htmlContent, baseURL string) ([]models.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	container := doc.Find("div.view-content")
	if container.Length() == 0 {
		return nil, ErrNoListingTable
	}
	table := container.Find("table")
	if table.Length() == 0 {
		return nil, ErrNoListingTable
	}

	var documents []models.Document
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return // malformed row
		}

		subjectCell := cells.Eq(1)
		dateCell := cells.Eq(2)

		titleTag := subjectCell.Find("a").First()
		href, ok := titleTag.Attr("href")
		if !ok {
			return
		}
		title := strings.TrimSpace(titleTag.Text())
		documentURL := resolveURL(base, href)

		var datePublished *models.Date
		dateStr := strings.TrimSpace(dateCell.Text())
		if t, err := time.Parse(listingDateFormat, dateStr); err == nil {
			d := models.Date{Time: t}
			datePublished = &d
		} else {
			slog.Warn("could not parse date, emitting document without it",
				"date", dateStr, "title", title)
		}

		var fileLinks []models.FileLink
		row.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || !strings.HasSuffix(strings.ToLower(href), ".pdf") {
				return
			}
			fileLinks = append(fileLinks, models.FileLink{
				URL:      resolveURL(base, href),
				FileType: "pdf",
			})
		})

		documents = append(documents, models.Document{
			ID:            models.DocumentID(documentURL),
			Title:         title,
			URL:           documentURL,
			DatePublished: datePublished,
			FileLinks:     fileLinks,
			ContentHash:   rowHash(row),
			CreatedAt:     time.Now().UTC(),
		})
	})

	slog.Debug("parsed listing page", "url", baseURL, "documents", len(documents))
	return documents, nil
}

// FindPaginationLinks returns the absolute URLs of pagination links on a
// listing page. Pages without a pager yield an empty slice.
func FindPaginationLinks(htmlContent, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("ul.pager li a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			links = append(links, resolveURL(base, href))
		}
	})
	return links
}

// rowHash fingerprints a listing row so re-crawls can detect changed entries.
func rowHash(row *goquery.Selection) string {
	outer, err := goquery.OuterHtml(row)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256([]byte(outer))
	return hex.EncodeToString(sum[:])
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
