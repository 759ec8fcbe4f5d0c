package browser_test

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"

	"gymhub/internal/adapters/cache"
	web "gymhub/internal/adapters/http"
	"gymhub/internal/adapters/storage"
	"gymhub/internal/application/orchestrators"
)

// Demo accounts created by ExecuteSeedDemo.
const (
	adminEmail   = "admin@gymhub.test"
	trainerEmail = "riley@gymhub.test"
	memberEmail  = "jo@gymhub.test"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp starts the full app on a temp SQLite file seeded with demo data.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}
	stores := web.NewStores(db, db)

	if _, err := orchestrators.ExecuteSeedDemo(context.Background(), orchestrators.SeedDemoDeps{
		AccountStore:   stores.AccountStore,
		MemberStore:    stores.MemberStore,
		TrainerStore:   stores.TrainerStore,
		ClassStore:     stores.ClassStore,
		EquipmentStore: stores.EquipmentStore,
		PaymentStore:   stores.PaymentStore,
	}); err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}

	web.RateLimitPerSecond = 1000
	srv := httptest.NewServer(web.NewMux(stores, nil, web.Options{Cache: cache.NewMemory()}))

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return &testApp{BaseURL: srv.URL, DB: db, Browser: browser, Stores: stores}
}

// newPage creates a new browser page (tab) with its own cookie jar.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

// login signs in with a demo account and waits for the role's portal.
func (a *testApp) login(t *testing.T, page playwright.Page, email, wantPath string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=Email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=Password]").Fill(orchestrators.DemoPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+wantPath, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to %s: %v", wantPath, err)
	}
}

// submit clicks the button with the given text inside the form posting to action.
func submit(t *testing.T, page playwright.Page, action, button string) {
	t.Helper()
	btn := page.Locator(`form[action="` + action + `"] button`, playwright.PageLocatorOptions{HasText: button}).First()
	if err := btn.Click(); err != nil {
		t.Fatalf("failed to click %q: %v", button, err)
	}
	if err := page.WaitForLoadState(); err != nil {
		t.Fatalf("page did not load after %q: %v", button, err)
	}
}

func bodyText(t *testing.T, page playwright.Page) string {
	t.Helper()
	text, err := page.Locator("body").InnerText()
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return text
}
