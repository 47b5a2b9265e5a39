package feed

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry is the ordered, read-only set of sources a collection run draws from.
type Registry struct {
	sources []Source
	byName  map[string]int
}

type registryFile struct {
	Sources []Source `yaml:"sources"`
}

func NewRegistry(sources []Source) (*Registry, error) {
	r := &Registry{
		sources: make([]Source, 0, len(sources)),
		byName:  make(map[string]int, len(sources)),
	}

	for i, source := range sources {
		if err := validateSource(source); err != nil {
			return nil, fmt.Errorf("invalid source at index %d: %w", i, err)
		}
		if _, exists := r.byName[source.Name]; exists {
			return nil, fmt.Errorf("duplicate source name: %s", source.Name)
		}
		r.byName[source.Name] = len(r.sources)
		r.sources = append(r.sources, source)
	}

	return r, nil
}

// LoadRegistry reads sources from a YAML file; an empty path selects the
// built-in registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("no sources defined in %s", path)
	}

	registry, err := NewRegistry(file.Sources)
	if err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", path, err)
	}

	slog.Debug("Source registry loaded", "path", path, "sources", registry.Len())
	return registry, nil
}

// Sources returns a copy of the enabled sources in registry order.
func (r *Registry) Sources() []Source {
	enabled := make([]Source, 0, len(r.sources))
	for _, source := range r.sources {
		if source.IsEnabled() {
			enabled = append(enabled, source)
		}
	}
	return enabled
}

func (r *Registry) All() []Source {
	all := make([]Source, len(r.sources))
	copy(all, r.sources)
	return all
}

func (r *Registry) Get(name string) (Source, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Source{}, false
	}
	return r.sources[i], true
}

func (r *Registry) Len() int {
	return len(r.sources)
}

func validateSource(source Source) error {
	requiredFields := map[string]string{
		"source name": source.Name,
		"source URL":  source.URL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	for i, filter := range source.Filters {
		if !filterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

var defaultSources = []Source{
	{Name: "ANI", URL: "https://www.aninews.in/rss/national-news.xml"},
	{Name: "NDTV", URL: "http://feeds.feedburner.com/ndtvnews-top-stories"},
	{Name: "Indian Express", URL: "https://indianexpress.com/section/india/feed/"},
	{Name: "Hindustan Times", URL: "https://www.hindustantimes.com/rss/topnews/rssfeed.xml"},
	{Name: "The Hindu", URL: "https://www.thehindu.com/news/national/feeder/default.rss"},
	{Name: "India Today", URL: "https://www.indiatoday.in/rss/home"},
	{Name: "News18", URL: "https://www.news18.com/rss/world.xml"},
	{Name: "DNA India", URL: "https://www.dnaindia.com/feeds/india.xml"},
	{Name: "Firstpost", URL: "https://www.firstpost.com/rss/india.xml"},
	{Name: "Business Standard", URL: "https://www.business-standard.com/rss/home_page_top_stories.rss"},
	{Name: "Outlook India", URL: "https://www.outlookindia.com/rss/main/magazine"},
	{Name: "Free Press Journal", URL: "https://www.freepressjournal.in/stories.rss"},
	{Name: "Deccan Chronicle", URL: "https://www.deccanchronicle.com/rss_feed/"},
	{Name: "Moneycontrol", URL: "http://www.moneycontrol.com/rss/latestnews.xml"},
}

func DefaultRegistry() *Registry {
	registry, err := NewRegistry(defaultSources)
	if err != nil {
		panic(fmt.Sprintf("built-in source registry is invalid: %v", err))
	}
	return registry
}
