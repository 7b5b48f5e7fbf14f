//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL *string `json:"image_url"`
}

func TestSystem_E2E_WithDB(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	name := fmt.Sprintf("e2e-widget-%d-%d", time.Now().Unix(), rand.Intn(100000))

	postForm(t, "/add-product", url.Values{
		"name":  {name},
		"price": {"9.99"},
		"stock": {"5"},
	})

	p := findByName(t, name)
	if p.Price != 9.99 || p.Stock != 5 || p.ImageURL != nil {
		t.Fatalf("unexpected product after add: %+v", p)
	}

	page := getBody(t, "/?search="+url.QueryEscape(strings.ToUpper(name)))
	if !strings.Contains(page, name) {
		t.Fatalf("case-insensitive search did not find %q", name)
	}

	postForm(t, fmt.Sprintf("/edit/%d", p.ID), url.Values{
		"name":      {name + "-xl"},
		"price":     {"12.50"},
		"stock":     {"3"},
		"image_url": {"https://img.example/xl.png"},
	})

	p = findByName(t, name+"-xl")
	if p.Price != 12.5 || p.Stock != 3 || p.ImageURL == nil {
		t.Fatalf("unexpected product after edit: %+v", p)
	}

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartCatalogContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
		p = findByName(t, name+"-xl")
	}

	before := listItems(t)
	missing := p.ID + 1_000_000
	for _, it := range before {
		if it.ID >= missing {
			missing = it.ID + 1
		}
	}

	postForm(t, fmt.Sprintf("/edit/%d", missing), url.Values{
		"name":  {"ghost"},
		"price": {"1"},
		"stock": {"1"},
	})
	postForm(t, fmt.Sprintf("/delete/%d", missing), nil)

	after := listItems(t)
	if len(after) != len(before) {
		t.Fatalf("items after missing-id edit/delete: %d want=%d", len(after), len(before))
	}
	if got := findByName(t, name+"-xl"); !sameProduct(got, p) {
		t.Fatalf("product changed by missing-id edit: %+v want=%+v", got, p)
	}

	postForm(t, fmt.Sprintf("/delete/%d", p.ID), nil)

	for _, it := range listItems(t) {
		if it.ID == p.ID {
			t.Fatalf("product %d still listed after delete", p.ID)
		}
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func postForm(t *testing.T, path string, form url.Values) {
	t.Helper()

	client := &http.Client{
		Timeout:       5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	resp, err := client.PostForm(baseURL+path, form)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST %s: status=%d want=303", path, resp.StatusCode)
	}
}

func getBody(t *testing.T, path string) string {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status=%d", path, resp.StatusCode)
	}
	return string(raw)
}

func listItems(t *testing.T) []product {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/items")
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /items: status=%d", resp.StatusCode)
	}

	var out []product
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	return out
}

func findByName(t *testing.T, name string) product {
	t.Helper()

	for _, p := range listItems(t) {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not listed", name)
	return product{}
}

func sameProduct(a, b product) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Price != b.Price || a.Stock != b.Stock {
		return false
	}
	if a.ImageURL == nil || b.ImageURL == nil {
		return a.ImageURL == b.ImageURL
	}
	return *a.ImageURL == *b.ImageURL
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
