package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"land_alert/config"
	"land_alert/extract"
	"land_alert/models"
)

// ErrRenderTimeout marks a navigation that did not finish within the
// configured timeout. Callers may treat it as retryable, unlike a
// generic render failure.
var ErrRenderTimeout = errors.New("render timeout")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/122.0.0.0 Safari/537.36"

const defaultLocale = "en-US"

// Renderer produces the markup and visible text of a listing page.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*models.RenderedPage, error)
}

// PlaywrightRenderer drives a shared headless Chromium, opening one
// isolated browsing context per Render call so no cookies or session
// state leak between unrelated listings.
type PlaywrightRenderer struct {
	browserCfg config.BrowserConfig
	proxyCfg   config.ProxyConfig

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	initialized bool
}

func NewPlaywright(browserCfg config.BrowserConfig, proxyCfg config.ProxyConfig) *PlaywrightRenderer {
	return &PlaywrightRenderer{browserCfg: browserCfg, proxyCfg: proxyCfg}
}

func (r *PlaywrightRenderer) ensureBrowser() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}

	var err error
	r.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(r.browserCfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	}
	if r.proxyCfg.Server != "" {
		proxy := &playwright.Proxy{Server: r.proxyCfg.Server}
		if r.proxyCfg.Username != "" {
			proxy.Username = playwright.String(r.proxyCfg.Username)
		}
		if r.proxyCfg.Password != "" {
			proxy.Password = playwright.String(r.proxyCfg.Password)
		}
		launchOpts.Proxy = proxy
	}

	r.browser, err = r.pw.Chromium.Launch(launchOpts)
	if err != nil {
		r.pw.Stop()
		r.pw = nil
		return fmt.Errorf("launch browser: %w", err)
	}

	r.initialized = true
	return nil
}

// Render navigates to the page, waits for domcontentloaded plus a fixed
// settle delay for client-rendered content, and reads markup and visible
// text. The settle delay is a heuristic, not a completion guarantee.
func (r *PlaywrightRenderer) Render(ctx context.Context, pageURL string) (*models.RenderedPage, error) {
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	bctx, err := r.browser.NewContext(playwright.BrowserNewContextOptions{
		Locale:    playwright.String(defaultLocale),
		UserAgent: playwright.String(defaultUserAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	defer bctx.Close()

	// Skip heavy subresources; saves bandwidth and proxy cost, and the
	// extractor only needs text anyway.
	err = bctx.Route("**/*", func(route playwright.Route) {
		switch route.Request().ResourceType() {
		case "image", "font", "media":
			route.Abort()
		default:
			route.Continue()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("install route filter: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, err = page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(r.browserCfg.NavTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrRenderTimeout, pageURL)
		}
		return nil, fmt.Errorf("navigate: %w", err)
	}

	page.WaitForTimeout(float64(r.browserCfg.SettleDelay.Milliseconds()))

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("read page content: %w", err)
	}

	text, err := page.InnerText("body")
	if err != nil || strings.TrimSpace(text) == "" {
		text = extract.VisibleText(html)
	}
	if len(text) > r.browserCfg.MaxTextChars {
		text = text[:r.browserCfg.MaxTextChars]
	}

	return &models.RenderedPage{HTML: html, Text: text}, nil
}

// Close tears down the shared browser and driver.
func (r *PlaywrightRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.pw != nil {
		r.pw.Stop()
		r.pw = nil
	}
	r.initialized = false
}
