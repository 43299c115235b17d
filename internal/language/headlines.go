package language

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Headline is a news item a reading passage is written about.
type Headline struct {
	Title       string
	Description string
	Source      string
}

// HeadlineSource lists current headlines in a language.
type HeadlineSource interface {
	Headlines(ctx context.Context, lang Language) ([]Headline, error)
}

var builtinHeadlines = map[Language][]Headline{
	"en": {
		{"Scientists Discover New Species in Deep Ocean Trench", "Marine biologists have identified several previously unknown organisms living at extreme depths.", "Science Daily"},
		{"Global Renewable Energy Investment Reaches Record High", "Clean energy spending surpassed $500 billion for the first time, driven by solar and wind expansion.", "Reuters"},
		{"New Study Links Exercise to Improved Memory in Older Adults", "Research shows that regular physical activity can help maintain cognitive function as we age.", "Health News"},
		{"Urban Farming Movement Grows as Cities Embrace Rooftop Gardens", "City governments are incentivizing green spaces on buildings to improve food security.", "The Guardian"},
		{"International Space Station Marks 25 Years of Continuous Habitation", "Astronauts celebrate a quarter century of living and working in orbit.", "NASA"},
	},
	"fr": {
		{"Des scientifiques font une percée dans le stockage d'énergie solaire", "Une nouvelle technologie de batterie pourrait révolutionner l'utilisation de l'énergie renouvelable.", "Le Monde"},
		{"Le tourisme durable en pleine croissance en Europe", "Les voyageurs choisissent de plus en plus des options respectueuses de l'environnement.", "Le Figaro"},
		{"Nouvelle découverte archéologique dans le sud de la France", "Des artefacts datant de l'ère romaine ont été mis au jour lors de travaux de construction.", "France Info"},
		{"L'intelligence artificielle transforme le secteur de la santé", "Les hôpitaux français adoptent de nouveaux outils de diagnostic assisté par IA.", "Les Échos"},
		{"Record de participation au marathon de Paris", "Plus de 60 000 coureurs ont participé à l'édition de cette année.", "L'Équipe"},
	},
	"zh": {
		{"中国科学家在量子计算领域取得重大突破", "新型量子处理器的性能超越了传统超级计算机。", "新华社"},
		{"全球气候变化峰会达成新减排协议", "各国承诺在未来十年内大幅减少碳排放。", "人民日报"},
		{"人工智能技术在医疗诊断中的应用前景广阔", "研究表明AI辅助诊断的准确率已超过人类医生。", "科技日报"},
		{"新型电动汽车电池续航里程突破一千公里", "这项技术有望彻底改变电动汽车市场。", "经济观察报"},
		{"城市绿化工程改善居民生活质量", "研究显示城市绿地面积增加与居民健康水平提升密切相关。", "中国环境报"},
	},
	"he": {
		{"חוקרים ישראלים פיתחו טכנולוגיה חדשה להתפלת מים", "השיטה החדשה יעילה יותר ב-30% מהטכנולוגיות הקיימות.", "הארץ"},
		{"עלייה חדה בהשקעות בתחום האנרגיה המתחדשת", "ישראל מובילה במחקר ופיתוח של פתרונות אנרגיה ירוקה.", "גלובס"},
		{"מחקר חדש: פעילות גופנית מסייעת בשיפור הזיכרון", "אימון קבוע מראה שיפור משמעותי בתפקוד הקוגניטיבי.", "ידיעות אחרונות"},
		{"חינוך דיגיטלי: בתי ספר אומצים כלים טכנולוגיים חדשים", "מערכת החינוך עוברת שינוי משמעותי עם שילוב בינה מלאכותית.", "מעריב"},
		{"ממצא ארכיאולוגי חשוב נחשף בחפירות בנגב", "שרידים בני אלפי שנים שופכים אור חדש על ההיסטוריה של האזור.", "כאן"},
	},
}

// BuiltinHeadlines serves a fixed set of headlines. Languages without a
// set of their own get the English one.
type BuiltinHeadlines struct{}

func (BuiltinHeadlines) Headlines(_ context.Context, lang Language) ([]Headline, error) {
	if hs, ok := builtinHeadlines[lang]; ok {
		return hs, nil
	}
	return builtinHeadlines["en"], nil
}

const (
	newsAPIEndpoint = "https://newsapi.org/v2/top-headlines"
	newsAPIPageSize = 5
)

// NewsAPI fetches top headlines from newsapi.org.
type NewsAPI struct {
	key      string
	endpoint string
	client   *http.Client
}

// NewNewsAPI creates a NewsAPI client authenticated with key.
func NewNewsAPI(key string) *NewsAPI {
	return &NewsAPI{
		key:      key,
		endpoint: newsAPIEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Headlines returns up to five top headlines in lang. Languages the
// service does not carry are asked for in English.
func (n *NewsAPI) Headlines(ctx context.Context, lang Language) ([]Headline, error) {
	apiLang := "en"
	if _, ok := builtinHeadlines[lang]; ok {
		apiLang = string(lang)
	}
	q := url.Values{}
	q.Set("language", apiLang)
	q.Set("pageSize", fmt.Sprint(newsAPIPageSize))
	q.Set("apiKey", n.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode news response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		msg := payload.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("news api error: %s", msg)
	}

	out := make([]Headline, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		out = append(out, Headline{Title: a.Title, Description: a.Description, Source: a.Source.Name})
	}
	return out, nil
}

// FallbackHeadlines asks Primary first and serves the built-in headlines
// when it fails or has nothing.
type FallbackHeadlines struct {
	Primary HeadlineSource
	Logger  *slog.Logger
}

func (f FallbackHeadlines) Headlines(ctx context.Context, lang Language) ([]Headline, error) {
	if f.Primary != nil {
		hs, err := f.Primary.Headlines(ctx, lang)
		if err == nil && len(hs) > 0 {
			return hs, nil
		}
		if err != nil && f.Logger != nil {
			f.Logger.Warn("headlines unavailable, using built-in set", "language", string(lang), "err", err)
		}
	}
	return BuiltinHeadlines{}.Headlines(ctx, lang)
}

var errNoHeadlines = errors.New("no headlines available")

func pickHeadline(ctx context.Context, src HeadlineSource, lang Language, pick func(int) int) (Headline, error) {
	if src == nil {
		src = BuiltinHeadlines{}
	}
	hs, err := src.Headlines(ctx, lang)
	if err != nil {
		return Headline{}, fmt.Errorf("headlines: %w", err)
	}
	if len(hs) == 0 {
		return Headline{}, errNoHeadlines
	}
	return hs[pick(len(hs))], nil
}
