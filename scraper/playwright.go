package scraper

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightFetcher renders pages in a headless browser before returning
// their HTML, for timetables that are filled in client side.
type PlaywrightFetcher struct {
	Browser playwright.Browser
	// Timeout is the navigation timeout in milliseconds; zero keeps
	// Playwright's default.
	Timeout float64
}

// StartPlaywright launches headless Chromium. The returned stop function
// closes the browser and the driver.
func StartPlaywright() (*PlaywrightFetcher, func() error, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("could not start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		return nil, nil, fmt.Errorf("could not launch browser: %w", err)
	}
	stop := func() error {
		if err := browser.Close(); err != nil {
			pw.Stop()
			return fmt.Errorf("could not close browser: %w", err)
		}
		return pw.Stop()
	}
	return &PlaywrightFetcher{Browser: browser}, stop, nil
}

func (f *PlaywrightFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, err := f.Browser.NewPage()
	if err != nil {
		return "", fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	opts := playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}
	if f.Timeout > 0 {
		opts.Timeout = playwright.Float(f.Timeout)
	}
	if _, err := page.Goto(url, opts); err != nil {
		return "", fmt.Errorf("could not navigate to %s: %w", url, err)
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("could not get page content: %w", err)
	}
	return html, nil
}
