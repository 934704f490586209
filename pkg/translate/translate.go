// Package translate turns Portuguese report text into English or Spanish
// through a LibreTranslate endpoint, falling back to MyMemory and finally to
// the untouched text.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/pkg/utils"
)

// Lang is a supported target language
type Lang string

const (
	LangEN Lang = "en"
	LangES Lang = "es"
)

const (
	defaultSourceLang = "pt"
	defaultTimeout    = 15 * time.Second
)

// ErrUnsupportedLang is returned for targets other than en and es
var ErrUnsupportedLang = errors.New("unsupported target language")

// ParseLang validates a target language code
func ParseLang(s string) (Lang, error) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case LangEN:
		return LangEN, nil
	case LangES:
		return LangES, nil
	}
	return "", fmt.Errorf("%w: %q (want en or es)", ErrUnsupportedLang, s)
}

// Translator calls the remote engines. A failed call never surfaces as an
// error; the text comes back unchanged instead.
type Translator struct {
	endpoint string
	fallback string
	apiKey   string
	source   string
	client   *http.Client
	limiter  *rate.Limiter
	log      logrus.FieldLogger
}

// New creates a Translator from config
func New(cfg config.TranslateConfig, log logrus.FieldLogger) *Translator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	source := cfg.SourceLang
	if source == "" {
		source = defaultSourceLang
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Translator{
		endpoint: cfg.Endpoint,
		fallback: cfg.FallbackEndpoint,
		apiKey:   cfg.APIKey,
		source:   source,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		log:      logger.OrNop(log),
	}
}

// Text translates one string. URLs, numbers, placeholders and glossary
// terms never reach the network.
func (t *Translator) Text(ctx context.Context, text string, lang Lang) string {
	trimmed := strings.TrimSpace(text)
	if skip(trimmed) {
		return text
	}
	if pinned, ok := lookup(trimmed, lang); ok {
		return pinned
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return text
	}

	log := t.log.WithField("lang", string(lang))
	if t.endpoint != "" {
		out, err := t.libreTranslate(ctx, trimmed, lang)
		if err == nil {
			return out
		}
		log.WithError(err).Debug("Primary translation failed, trying fallback")
	}
	if t.fallback != "" {
		out, err := t.myMemory(ctx, trimmed, lang)
		if err == nil {
			return out
		}
		log.WithError(err).Debug("Fallback translation failed, keeping original")
	}
	return text
}

func skip(s string) bool {
	return utils.IsLikelyURL(s) || utils.IsNumericOrPlaceholder(s)
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText *string `json:"translatedText"`
}

func (t *Translator) libreTranslate(ctx context.Context, text string, lang Lang) (string, error) {
	body, err := json.Marshal(libreRequest{Q: text, Source: t.source, Target: string(lang), APIKey: t.apiKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out libreResponse
	if err := t.do(req, &out); err != nil {
		return "", err
	}
	if out.TranslatedText == nil {
		return "", errors.New("libretranslate: reply has no translatedText")
	}
	return *out.TranslatedText, nil
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText *string `json:"translatedText"`
	} `json:"responseData"`
}

func (t *Translator) myMemory(ctx context.Context, text string, lang Lang) (string, error) {
	u, err := url.Parse(t.fallback)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", text)
	q.Set("langpair", t.source+"|"+string(lang))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	var out myMemoryResponse
	if err := t.do(req, &out); err != nil {
		return "", err
	}
	if out.ResponseData.TranslatedText == nil {
		return "", errors.New("mymemory: reply has no translatedText")
	}
	return *out.ResponseData.TranslatedText, nil
}

func (t *Translator) do(req *http.Request, v any) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: status %d", req.URL.Host, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode reply: %w", req.URL.Host, err)
	}
	return nil
}
