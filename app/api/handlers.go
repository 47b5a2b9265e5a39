package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulseai/pulse/app/feed"
	"github.com/pulseai/pulse/app/store"
)

func NewHandler(collector CollectorInterface, articles ArticleStoreInterface,
	registry RegistryInterface, opts HandlerOptions) *Handler {
	return &Handler{
		collector: collector,
		articles:  articles,
		registry:  registry,
		generator: feed.NewGenerator(),
		opts:      opts,
	}
}

// clampCount bounds a requested count from above. Non-positive values pass
// through so the collector can answer them with an empty result.
func (h *Handler) clampCount(n int) int {
	if h.opts.MaxCount > 0 && n > h.opts.MaxCount {
		return h.opts.MaxCount
	}
	return n
}

func invalidRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":    message,
		"message":  message,
		"total":    0,
		"articles": []feed.Article{},
	})
}

func (h *Handler) GetNews(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil {
		invalidRequest(c, "Article count must be an integer")
		return
	}

	result := h.collector.Collect(c.Request.Context(), h.clampCount(count))
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Scrape(c *gin.Context) {
	count := h.opts.DefaultCount
	if raw := c.Query("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalidRequest(c, "Parameter n must be an integer")
			return
		}
		count = n
	}

	result := h.collector.Collect(c.Request.Context(), h.clampCount(count))

	message := result.Message
	if message == "" {
		message = fmt.Sprintf("Scraped %d articles", result.Total)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  message,
		"articles": result.Articles,
		"total":    result.Total,
	})
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *Handler) GetArticles(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		invalidRequest(c, "Parameter limit must be a non-negative integer")
		return
	}

	if !h.articles.Available() {
		storeUnavailable(c)
		return
	}

	list, err := h.articles.ListArticles(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			storeUnavailable(c)
			return
		}
		slog.Error("Database error", "operation", "list_articles", "limit", limit, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Failed to read articles",
			"total":    0,
			"articles": []feed.Article{},
		})
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetArticlesFeed serves the read path as an RSS document.
func (h *Handler) GetArticlesFeed(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	if limit == 0 {
		limit = h.opts.MaxCount
	}

	list, err := h.articles.ListArticles(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		slog.Error("Database error", "operation", "list_articles", "limit", limit, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	link := h.opts.BaseURL
	channel := feed.Channel{
		Title:       "Pulse",
		Link:        link,
		Description: "Latest news collected from Indian national news feeds",
		Generator:   fmt.Sprintf("Pulse/%s", h.opts.Version),
	}
	if link != "" {
		channel.SelfURL = strings.TrimSuffix(link, "/") + "/articles.rss"
	}

	rss, err := h.generator.Run(channel, list.Articles)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(list.Count))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func storeUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":    store.ErrUnavailable.Error(),
		"total":    0,
		"articles": []feed.Article{},
	})
}

func (h *Handler) ListSources(c *gin.Context) {
	all := h.registry.All()

	sources := make([]map[string]interface{}, 0, len(all))
	enabled := 0
	for _, source := range all {
		if source.IsEnabled() {
			enabled++
		}
		sources = append(sources, map[string]interface{}{
			"name":    source.Name,
			"url":     source.URL,
			"enabled": source.IsEnabled(),
			"filters": len(source.Filters),
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
		"enabled": enabled,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	status := "ok"
	storeAvailable := h.articles.Available()
	if !storeAvailable {
		status = "degraded"
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.opts.Version,
		"store": map[string]interface{}{
			"available": storeAvailable,
		},
		"collector": h.collector.Stats(),
	})
}

func (h *Handler) GetAbout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Pulse",
		"version":     h.opts.Version,
		"description": "Aggregates news from RSS sources into a deduplicated, fairly distributed article set and stores each article once",
		"sources":     len(h.registry.All()),
	})
}
