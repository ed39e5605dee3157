package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// TefasURL is the fund analysis page of the Turkish fund platform.
const TefasURL = "https://www.tefas.gov.tr/FonAnaliz.aspx"

var (
	tefasPricePattern = regexp.MustCompile(`<span id="MainContent_LabelSonFiyat">([\d.,]+)</span>`)

	errNotTefasFund = errors.New("not a TEFAS fund code")
)

// TefasProvider scrapes the last published NAV of a Turkish mutual fund.
type TefasProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewTefasProvider creates a provider reading from baseURL.
func NewTefasProvider(baseURL string) *TefasProvider {
	if baseURL == "" {
		baseURL = TefasURL
	}
	return &TefasProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *TefasProvider) Name() string { return "tefas" }

func (p *TefasProvider) Supports(category model.Category) bool {
	return category == model.CategoryFund
}

// Quote only answers for three letter fund codes or instruments listed on
// TEFAS; other funds fall through to the next provider.
func (p *TefasProvider) Quote(ctx context.Context, inst model.Instrument) (Quote, error) {
	if !isTefasFund(inst) {
		return Quote{}, fmt.Errorf("tefas %s: %w", inst.Symbol, errNotTefasFund)
	}

	code := strings.ToUpper(strings.TrimSpace(inst.Symbol))
	body, _, err := getBody(ctx, p.httpClient, p.baseURL+"?FonKod="+url.QueryEscape(code))
	if err != nil {
		return Quote{}, fmt.Errorf("tefas %s: %w", code, err)
	}

	match := tefasPricePattern.FindSubmatch(body)
	if match == nil {
		return Quote{}, fmt.Errorf("tefas %s: price not found in page", code)
	}

	price, err := parseTurkishDecimal(string(match[1]))
	if err != nil {
		return Quote{}, fmt.Errorf("tefas %s: %w", code, err)
	}

	return Quote{
		Symbol:   code,
		Price:    price,
		Currency: "TRY",
	}, nil
}

// parseTurkishDecimal reads "1.234,567890" as 1234.56789.
func parseTurkishDecimal(s string) (float64, error) {
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", s, err)
	}
	return f, nil
}
