package keywords

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"copydesk/internal/core"
)

func TestDeriveVolumeRecentNonzeroAverage(t *testing.T) {
	months := []monthlyVolume{
		{Month: "2026-01", Volume: 0},
		{Month: "2026-02", Volume: 400},
		{Month: "2026-03", Volume: 600},
	}
	if got := deriveVolume(months); got != 500 {
		t.Errorf("deriveVolume = %d, want 500 (zero months excluded)", got)
	}
}

func TestDeriveVolumeWindowLimit(t *testing.T) {
	// 14 nonzero months; only the 12 most recent should count.
	var months []monthlyVolume
	for i := 1; i <= 14; i++ {
		months = append(months, monthlyVolume{
			Month:  time.Date(2025, time.Month(i%12+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Volume: 100 * i,
		})
	}
	got := deriveVolume(months)
	if got == 0 {
		t.Fatal("expected derived volume")
	}
	// Oldest two months (lowest volumes here) must be excluded, so the
	// average sits above the all-months average.
	all := 0
	for _, m := range months {
		all += m.Volume
	}
	if got <= all/len(months) {
		t.Errorf("derived %d should exceed all-month average %d", got, all/len(months))
	}
}

func TestDeriveVolumeAllZero(t *testing.T) {
	if got := deriveVolume([]monthlyVolume{{Month: "2026-01", Volume: 0}}); got != 0 {
		t.Errorf("deriveVolume = %d, want 0", got)
	}
}

func TestSignalPayloadFallsBackToMonthly(t *testing.T) {
	p := signalPayload{
		Keyword: "trustee sale listings",
		MonthlyVolumes: []monthlyVolume{
			{Month: "2026-05", Volume: 300},
			{Month: "2026-06", Volume: 500},
		},
	}
	sig := p.toSignal()
	if sig.SearchVolume != 400 {
		t.Errorf("fallback volume = %d, want 400", sig.SearchVolume)
	}
}

func TestHTTPClientSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/keywords/suggest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(suggestResponse{Results: []signalPayload{
			{Keyword: "lien priority rules", SearchVolume: 700, KeywordDifficulty: 25,
				SearchIntent: "informational"},
		}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key", 5*time.Second)
	signals, err := client.Suggest(context.Background(), []string{"lien"})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(signals) != 1 || signals[0].Keyword != "lien priority rules" {
		t.Fatalf("unexpected signals: %+v", signals)
	}
	if signals[0].SearchIntent != core.IntentInformational {
		t.Errorf("intent = %q", signals[0].SearchIntent)
	}
}

func TestHTTPClientRetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(suggestResponse{Results: []signalPayload{
			{Keyword: "wage garnishment limits", SearchVolume: 900},
		}})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "k", 5*time.Second)
	signals, err := client.Lookup(context.Background(), []string{"wage garnishment limits"})
	if err != nil {
		t.Fatalf("Lookup failed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3", calls)
	}
	if len(signals) != 1 {
		t.Errorf("got %d signals, want 1", len(signals))
	}
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "bad-key", 5*time.Second)
	if _, err := client.Suggest(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error for 401")
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", calls)
	}
}

func TestEmptyRequestSkipsNetwork(t *testing.T) {
	client := NewHTTPClient("http://unreachable.invalid", "k", time.Second)
	signals, err := client.Suggest(context.Background(), nil)
	if err != nil || signals != nil {
		t.Errorf("empty seed list should short-circuit, got %v / %v", signals, err)
	}
}
