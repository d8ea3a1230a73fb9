package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/rpc"
	"github.com/xtding233/gacha-mercy/internal/storage"
	"github.com/xtding233/gacha-mercy/internal/tracker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tr, err := tracker.New(context.Background(), gacha.DefaultRuleSet(), tracker.Options{
		Store:  storage.NewMemory(),
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(newMux(rpc.NewService(tr)))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTenDrawFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/inventory?category=ancient&inventory=10", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inventory status %d", resp.StatusCode)
	}

	resp = post(t, srv.URL+"/ten", `{"category":"ancient","hits":[{"position":7,"rarity":"epic"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ten status %d", resp.StatusCode)
	}
	var res rpc.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.View.Pity != 10 || res.View.Tiers[0].Pity != 3 || res.View.Inventory != 0 {
		t.Fatalf("view=%+v", res.View)
	}

	// no shards left and no correction given
	resp = post(t, srv.URL+"/single?category=ancient", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("single status %d", resp.StatusCode)
	}
	resp = post(t, srv.URL+"/single?category=ancient&inventory=0", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("single status %d", resp.StatusCode)
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name, path, body string
		want             int
	}{
		{"bad draws", "/batch?category=void&draws=x", "", http.StatusBadRequest},
		{"unknown field", "/batch", `{"category":"void","pulls":3}`, http.StatusBadRequest},
		{"unknown category", "/reset?category=gems&confirm=1", "", http.StatusNotFound},
		{"zero draws", "/batch", `{"category":"void","draws":-1}`, http.StatusBadRequest},
		{"hit past the batch", "/ten", `{"category":"void","inventory":10,"hits":[{"position":15,"rarity":"epic"}]}`, http.StatusBadRequest},
		{"hit at zero", "/batch?draws=5", `{"category":"void","inventory":10,"hits":[{"position":0,"rarity":"epic"}]}`, http.StatusBadRequest},
		{"duplicate hit", "/ten", `{"category":"void","inventory":10,"hits":[{"position":3,"rarity":"epic"},{"position":3,"rarity":"legendary"}]}`, http.StatusBadRequest},
		{"rarity on ten", "/ten?category=void&rarity=epic&inventory=10", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, srv.URL+tc.path, tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("status %d want %d", resp.StatusCode, tc.want)
			}
		})
	}

	resp, err := http.Get(srv.URL + "/view?category=void")
	if err != nil {
		t.Fatal(err)
	}
	var v tracker.View
	err = json.NewDecoder(resp.Body).Decode(&v)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if v.Pity != 0 || v.Inventory != 0 {
		t.Fatalf("rejected requests changed state: %+v", v)
	}

	resp, err = http.Get(srv.URL + "/single?category=void")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET on mutation: %d", resp.StatusCode)
	}
}

func TestReadEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/view", "/view?category=primal", "/dashboard", "/curve?category=sacred&theme=light", "/healthz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}
	resp, err := http.Get(srv.URL + "/view")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var views []tracker.View
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 4 || views[0].Category != gacha.Ancient {
		t.Fatalf("views=%+v", views)
	}
}
