package feedcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"pelotarr/internal/config"
	"pelotarr/internal/logging"
	"pelotarr/internal/services"
)

// Item is one cached feed entry. Only the fields matching and metadata
// extraction need survive the round trip to disk.
type Item struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Published   time.Time `json:"published"`
	ContentHTML string    `json:"content_html,omitempty"`
}

// Cache fetches upstream category feeds and persists them as JSON
// documents under the cache directory, one file per partition. Items are
// deduplicated by link and kept newest first.
type Cache struct {
	dir      string
	baseURL  string
	maxPages int
	parser   *gofeed.Parser
	logger   *slog.Logger
}

// New creates a feed cache backed by the configured cache directory.
func New(cfg *config.Config, logger *slog.Logger) *Cache {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.Transfer.UserAgent
	parser.Client = &http.Client{
		Timeout: time.Duration(cfg.Feeds.RequestTimeout) * time.Second,
	}
	return &Cache{
		dir:      cfg.Paths.CacheDir,
		baseURL:  cfg.Feeds.BaseURL,
		maxPages: cfg.Feeds.MaxPages,
		parser:   parser,
		logger:   logging.WithComponent(logger, "feedcache"),
	}
}

// Load reads the cached items for a partition. A missing or unreadable
// cache file yields an empty slice so a scan can proceed with whatever
// other partitions hold.
func (c *Cache) Load(partition string) []Item {
	data, err := os.ReadFile(c.path(partition))
	if err != nil {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("discarding unreadable cache file", "partition", partition, logging.Error(err))
		return nil
	}
	return items
}

// Refresh fetches every slug of the category page by page and merges new
// items into the partition cache. It returns how many items were added and
// the resulting partition size. The cache file is rewritten only when at
// least one new item arrived.
func (c *Cache) Refresh(ctx context.Context, cat Category) (added, total int, err error) {
	items := c.Load(cat.Partition)
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Link != "" {
			seen[it.Link] = true
		}
	}

	for page := 1; page <= c.maxPages; page++ {
		fetched, err := c.fetchPage(ctx, cat.Slugs, page)
		if err != nil {
			if page == 1 {
				return 0, len(items), services.Wrap(services.ErrUpstream, "feedcache", "refresh",
					fmt.Sprintf("fetching %s feed", cat.Key), err)
			}
			c.logger.Debug("stopping pagination", "category", cat.Key, "page", page, logging.Error(err))
			break
		}
		if len(fetched) == 0 {
			break
		}
		for _, it := range fetched {
			if it.Link == "" || seen[it.Link] {
				continue
			}
			seen[it.Link] = true
			items = append(items, it)
			added++
		}
	}

	if added > 0 {
		if err := c.save(cat.Partition, items); err != nil {
			return added, len(items), err
		}
	}
	return added, len(items), nil
}

// RefreshAll refreshes every category. Failures are logged per category
// and do not interrupt the remaining refreshes.
func (c *Cache) RefreshAll(ctx context.Context) {
	for _, cat := range Categories() {
		added, total, err := c.Refresh(ctx, cat)
		if err != nil {
			c.logger.Warn("feed refresh failed", "category", cat.Key, logging.Error(err))
			continue
		}
		c.logger.Info("feed refreshed", "category", cat.Key, "added", added, "total", total)
	}
}

// fetchPage fetches one page of every slug in order and returns the
// combined items. Any slug failing fails the page.
func (c *Cache) fetchPage(ctx context.Context, slugs []string, page int) ([]Item, error) {
	var combined []Item
	for _, slug := range slugs {
		feed, err := c.parser.ParseURLWithContext(c.pageURL(slug, page), ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching %s page %d: %w", slug, page, err)
		}
		for _, entry := range feed.Items {
			item := Item{Title: entry.Title, Link: entry.Link, ContentHTML: entry.Content}
			if item.ContentHTML == "" {
				item.ContentHTML = entry.Description
			}
			if entry.PublishedParsed != nil {
				item.Published = entry.PublishedParsed.UTC()
			}
			combined = append(combined, item)
		}
	}
	return combined, nil
}

func (c *Cache) pageURL(slug string, page int) string {
	url := fmt.Sprintf("%s/categories/%s/feed/", c.baseURL, slug)
	if page > 1 {
		url = fmt.Sprintf("%s?paged=%d", url, page)
	}
	return url
}

func (c *Cache) path(partition string) string {
	return filepath.Join(c.dir, "feed_"+partition+".json")
}

// save writes the partition file atomically, newest item first.
func (c *Cache) save(partition string, items []Item) error {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrIntegrity, "feedcache", "save", "encoding cache", err)
	}
	target := c.path(partition)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return services.Wrap(services.ErrIntegrity, "feedcache", "save", "writing cache file", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return services.Wrap(services.ErrIntegrity, "feedcache", "save", "replacing cache file", err)
	}
	return nil
}
