package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/deepshard/hyphae/pkg/config"
)

const googleTrendsEngineID = "google_trends"

// maxTrendTopics — лимит Google Trends на количество сравниваемых тем.
const maxTrendTopics = 5

// Keyword — подсказка автодополнения Google Trends.
type Keyword struct {
	Title string
	Type  string
}

// TrendPoint — одна точка графика интереса к темам.
type TrendPoint struct {
	Time   string
	Values []int // По значению на тему, в порядке запроса
}

// GoogleTrends — клиент неофициального JSON API Google Trends.
//
// Все ответы API начинаются с anti-JSON-hijacking префикса ")]}'",
// поэтому тело запрашивается сырым и префикс срезается до парсинга.
// График интереса строится в два шага: explore выдает токен виджета,
// widgetdata/multiline возвращает сами точки.
type GoogleTrends struct {
	client *Client
	cfg    config.SearchEngineConfig
}

// NewGoogleTrends создает клиент Google Trends из конфигурации.
//
// API ключа не требует.
func NewGoogleTrends(cfg config.SearchEngineConfig) (*GoogleTrends, error) {
	cfg = cfg.GetDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://trends.google.com/trends/api"
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GoogleTrends{client: client, cfg: cfg}, nil
}

// stripJSONPrefix срезает ")]}'" префикс до первого символа JSON.
func stripJSONPrefix(body []byte) []byte {
	if i := bytes.IndexAny(body, "{["); i > 0 {
		return body[i:]
	}
	return body
}

// trendsSuggestResponse — ответ /autocomplete endpoint.
type trendsSuggestResponse struct {
	Default struct {
		Topics []struct {
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"topics"`
	} `json:"default"`
}

// Suggestions возвращает связанные темы и их классификацию.
func (g *GoogleTrends) Suggestions(ctx context.Context, keyword string) ([]Keyword, error) {
	params := url.Values{}
	params.Set("hl", "en-US")
	params.Set("tz", "300")

	rawURL := g.cfg.BaseURL + "/autocomplete/" + url.PathEscape(keyword) + "?" + params.Encode()
	body, err := g.client.GetRaw(ctx, googleTrendsEngineID, rawURL, g.cfg.RateLimit, g.cfg.BurstLimit)
	if err != nil {
		return nil, fmt.Errorf("google trends suggestions: %w", err)
	}

	var resp trendsSuggestResponse
	if err := json.Unmarshal(stripJSONPrefix(body), &resp); err != nil {
		return nil, fmt.Errorf("google trends suggestions: unmarshal: %w", err)
	}

	keywords := make([]Keyword, 0, len(resp.Default.Topics))
	for _, t := range resp.Default.Topics {
		keywords = append(keywords, Keyword{Title: t.Title, Type: t.Type})
	}
	return keywords, nil
}

// trendsExploreResponse — ответ /explore endpoint.
type trendsExploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

// trendsTimelineResponse — ответ /widgetdata/multiline endpoint.
type trendsTimelineResponse struct {
	Default struct {
		TimelineData []struct {
			FormattedTime string `json:"formattedTime"`
			Value         []int  `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime возвращает недельный график интереса к темам.
//
// Темы сверх лимита API отбрасываются.
func (g *GoogleTrends) InterestOverTime(ctx context.Context, keywords []string) ([]TrendPoint, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("google trends: at least one keyword is required")
	}
	if len(keywords) > maxTrendTopics {
		keywords = keywords[:maxTrendTopics]
	}

	// Шаг 1: explore выдает токен и request для виджета TIMESERIES
	type comparisonItem struct {
		Keyword string `json:"keyword"`
		Geo     string `json:"geo"`
		Time    string `json:"time"`
	}
	items := make([]comparisonItem, 0, len(keywords))
	for _, k := range keywords {
		items = append(items, comparisonItem{Keyword: k, Geo: "", Time: "now 7-d"})
	}
	exploreReq, err := json.Marshal(map[string]any{
		"comparisonItem": items,
		"category":       0,
		"property":       "",
	})
	if err != nil {
		return nil, fmt.Errorf("google trends explore: marshal: %w", err)
	}

	params := url.Values{}
	params.Set("hl", "en-US")
	params.Set("tz", "300")
	params.Set("req", string(exploreReq))

	body, err := g.client.GetRaw(ctx, googleTrendsEngineID,
		g.cfg.BaseURL+"/explore?"+params.Encode(), g.cfg.RateLimit, g.cfg.BurstLimit)
	if err != nil {
		return nil, fmt.Errorf("google trends explore: %w", err)
	}

	var explore trendsExploreResponse
	if err := json.Unmarshal(stripJSONPrefix(body), &explore); err != nil {
		return nil, fmt.Errorf("google trends explore: unmarshal: %w", err)
	}

	var token string
	var widgetReq json.RawMessage
	for _, w := range explore.Widgets {
		if w.ID == "TIMESERIES" {
			token = w.Token
			widgetReq = w.Request
			break
		}
	}
	if token == "" {
		return nil, fmt.Errorf("google trends explore: TIMESERIES widget not found")
	}

	// Шаг 2: multiline возвращает точки графика по токену
	params = url.Values{}
	params.Set("hl", "en-US")
	params.Set("tz", "300")
	params.Set("req", string(widgetReq))
	params.Set("token", token)

	body, err = g.client.GetRaw(ctx, googleTrendsEngineID,
		g.cfg.BaseURL+"/widgetdata/multiline?"+params.Encode(), g.cfg.RateLimit, g.cfg.BurstLimit)
	if err != nil {
		return nil, fmt.Errorf("google trends timeline: %w", err)
	}

	var timeline trendsTimelineResponse
	if err := json.Unmarshal(stripJSONPrefix(body), &timeline); err != nil {
		return nil, fmt.Errorf("google trends timeline: unmarshal: %w", err)
	}

	points := make([]TrendPoint, 0, len(timeline.Default.TimelineData))
	for _, p := range timeline.Default.TimelineData {
		points = append(points, TrendPoint{Time: p.FormattedTime, Values: p.Value})
	}
	return points, nil
}
