package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/xtding233/gacha-mercy/internal/rpc"
)

type errResp struct {
	Err  string `json:"err"`
	Code string `json:"code"`
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

// parseRequest reads query parameters, then a JSON body if there is one.
// Body fields win.
func parseRequest(r *http.Request) (rpc.Request, string) {
	q := r.URL.Query()
	req := rpc.Request{
		Category: q.Get("category"),
		Rarity:   q.Get("rarity"),
		HardPity: q.Get("hard_pity"),
		Theme:    q.Get("theme"),
		Confirm:  q.Get("confirm") == "true" || q.Get("confirm") == "1",
	}
	draws, _, msg := parseInt(r, "draws")
	if msg != "" {
		return req, msg
	}
	req.Draws = draws
	delta, _, msg := parseInt(r, "delta")
	if msg != "" {
		return req, msg
	}
	req.Delta = delta
	inv, ok, msg := parseInt(r, "inventory")
	if msg != "" {
		return req, msg
	}
	if ok {
		req.Inventory = &inv
	}

	if r.Body == nil {
		return req, ""
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, "invalid body: " + err.Error()
	}
	return req, ""
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rpc.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(errResp{Err: err.Error(), Code: rpc.Code(err).String()})
}

func badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errResp{Err: msg, Code: "InvalidArgument"})
}

// handler adapts one service call; mutating calls require POST.
func handler(post bool, call func(*http.Request, rpc.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if post && r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req, msg := parseRequest(r)
		if msg != "" {
			badRequest(w, msg)
			return
		}
		resp, err := call(r, req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

func newMux(svc *rpc.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// single draw; rarity is the result, empty for no hit
	mux.HandleFunc("/single", handler(true, func(r *http.Request, req rpc.Request) (any, error) {
		return svc.RecordSingle(r.Context(), req)
	}))
	// ten draws
	mux.HandleFunc("/ten", handler(true, func(r *http.Request, req rpc.Request) (any, error) {
		req.Draws = 10
		return svc.RecordBatch(r.Context(), req)
	}))
	// custom number of draws
	mux.HandleFunc("/batch", handler(true, func(r *http.Request, req rpc.Request) (any, error) {
		return svc.RecordBatch(r.Context(), req)
	}))
	mux.HandleFunc("/reset", handler(true, func(r *http.Request, req rpc.Request) (any, error) {
		return svc.Reset(r.Context(), req)
	}))
	mux.HandleFunc("/inventory", handler(true, func(r *http.Request, req rpc.Request) (any, error) {
		return svc.AdjustInventory(r.Context(), req)
	}))

	mux.HandleFunc("/view", handler(false, func(r *http.Request, req rpc.Request) (any, error) {
		if req.Category == "" {
			return svc.Views(r.Context())
		}
		return svc.View(r.Context(), req)
	}))
	mux.HandleFunc("/dashboard", handler(false, func(r *http.Request, req rpc.Request) (any, error) {
		return svc.Dashboard(r.Context()), nil
	}))
	mux.HandleFunc("/curve", handler(false, func(r *http.Request, req rpc.Request) (any, error) {
		return svc.Curve(r.Context(), req)
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	return mux
}
