// Package books looks up publisher metadata for a title and author on the
// Google Books volumes API.
package books

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	booksapi "google.golang.org/api/books/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mtthwcarey/catalogger/internal/config"
	"github.com/mtthwcarey/catalogger/internal/isbn"
)

// Sentinel values for fields missing from a lookup result.
const (
	Unknown              = "Unknown"
	NoDescription        = "No description available"
	NoCover              = "No cover available"
	identifierTypeISBN13 = "ISBN_13"
	identifierTypeISBN10 = "ISBN_10"
)

// Metadata is the enrichment taken from the first matching volume.
type Metadata struct {
	Title         string
	Author        string
	Publisher     string
	PublishedDate string
	ISBN          string
	PageCount     string
	Categories    string
	Description   string
	CoverURL      string
}

// Fields returns the metadata keyed by catalog column name.
func (m Metadata) Fields() map[string]string {
	return map[string]string{
		"Title":         m.Title,
		"Author":        m.Author,
		"Publisher":     m.Publisher,
		"PublishedDate": m.PublishedDate,
		"ISBN":          m.ISBN,
		"PageCount":     m.PageCount,
		"Categories":    m.Categories,
		"Description":   m.Description,
		"CoverURL":      m.CoverURL,
	}
}

// Lookup finds metadata for a book. The bool is false when nothing was found
// or the service could not be reached.
type Lookup interface {
	Lookup(ctx context.Context, title, author string) (Metadata, bool)
}

// Client implements Lookup against Google Books.
type Client struct {
	service        *booksapi.Service
	apiKey         string
	maxAttempts    int
	initialBackoff time.Duration
	limiter        *rate.Limiter
	sleep          func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Google Books client from cfg.
func NewClient(ctx context.Context, cfg config.Books) (*Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := booksapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create books service: %w", err)
	}

	c := &Client{
		service:        service,
		apiKey:         cfg.APIKey,
		maxAttempts:    max(cfg.MaxAttempts, 1),
		initialBackoff: time.Duration(cfg.InitialBackoffSeconds) * time.Second,
		sleep:          sleepContext,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// Query returns the volumes search string for title and author.
func Query(title, author string) string {
	return fmt.Sprintf("intitle:%s+inauthor:%s", title, author)
}

// Lookup searches for one volume matching title and author. Transport
// failures are retried with a doubling delay; after the last attempt the
// failure is logged and false returned.
func (c *Client) Lookup(ctx context.Context, title, author string) (Metadata, bool) {
	slog.Info("Fetching metadata", "title", title, "author", author)

	var callOpts []googleapi.CallOption
	if c.apiKey != "" {
		callOpts = append(callOpts, googleapi.QueryParameter("key", c.apiKey))
	}

	backoff := c.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				slog.Error("Metadata lookup cancelled", "title", title, "author", author, "err", err)
				return Metadata{}, false
			}
		}

		volumes, err := c.service.Volumes.List(Query(title, author)).
			MaxResults(1).
			Context(ctx).
			Do(callOpts...)
		if err == nil {
			if len(volumes.Items) == 0 || volumes.Items[0].VolumeInfo == nil {
				slog.Info("Metadata not found", "title", title, "author", author)
				return Metadata{}, false
			}
			md := fromVolume(volumes.Items[0].VolumeInfo)
			slog.Info("Metadata successfully fetched", "title", md.Title, "isbn", md.ISBN, "attempt", attempt)
			return md, true
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Warn("Metadata request failed", "attempt", attempt, "max_attempts", c.maxAttempts, "err", err)

		if attempt < c.maxAttempts {
			if err := c.sleep(ctx, backoff); err != nil {
				lastErr = err
				break
			}
			backoff *= 2
		}
	}

	attrs := []any{"title", title, "author", author, "err", lastErr}
	var apiErr *googleapi.Error
	if errors.As(lastErr, &apiErr) && apiErr.Message != "" {
		attrs = append(attrs, "api_message", apiErr.Message, "status", apiErr.Code)
	}
	slog.Error("Error fetching metadata", attrs...)
	return Metadata{}, false
}

func fromVolume(v *booksapi.VolumeVolumeInfo) Metadata {
	md := Metadata{
		Title:         orDefault(v.Title, Unknown),
		Author:        joinOrDefault(v.Authors),
		Publisher:     orDefault(v.Publisher, Unknown),
		PublishedDate: orDefault(v.PublishedDate, Unknown),
		ISBN:          isbn13(v.IndustryIdentifiers),
		PageCount:     Unknown,
		Categories:    joinOrDefault(v.Categories),
		Description:   orDefault(v.Description, NoDescription),
		CoverURL:      NoCover,
	}
	if v.PageCount > 0 {
		md.PageCount = strconv.FormatInt(v.PageCount, 10)
	}
	if v.ImageLinks != nil && v.ImageLinks.Thumbnail != "" {
		md.CoverURL = v.ImageLinks.Thumbnail
	}
	return md
}

// isbn13 returns the first ISBN_13 identifier, falling back to a converted
// ISBN_10.
func isbn13(ids []*booksapi.VolumeVolumeInfoIndustryIdentifiers) string {
	for _, id := range ids {
		if id != nil && id.Type == identifierTypeISBN13 && id.Identifier != "" {
			return id.Identifier
		}
	}
	for _, id := range ids {
		if id != nil && id.Type == identifierTypeISBN10 {
			if converted := isbn.To13(id.Identifier); converted != "" {
				return converted
			}
		}
	}
	return Unknown
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func joinOrDefault(values []string) string {
	if len(values) == 0 {
		return Unknown
	}
	return strings.Join(values, ", ")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
