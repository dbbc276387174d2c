// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler tests.
// Handlers run against the in-memory store; the browse cache is disabled.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"postershop/internal/auth"
	"postershop/internal/catalog"
	"postershop/internal/gate"
	"postershop/internal/models"
	"postershop/internal/storage"
	"postershop/internal/store/memory"
)

var (
	t0          = time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	sellerAlice = &auth.Caller{UID: "alice", Email: "alice@example.com", Role: auth.RoleSeller}
	sellerBob   = &auth.Caller{UID: "bob", Email: "bob@example.com", Role: auth.RoleSeller}
	adminCarol  = &auth.Caller{UID: "carol", Email: "carol@example.com", Role: auth.RoleAdmin}
)

// memBucket is an in-memory storage.Bucket.
type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memBucket) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBucket) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBucket) FileURL(key string) string { return "https://cdn.example.com/" + key }

func (b *memBucket) KeyFromURL(rawURL string) (string, bool) {
	return strings.CutPrefix(rawURL, "https://cdn.example.com/")
}

func (b *memBucket) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	store   *memory.Store
	posters *catalog.Manager
	orders  *catalog.OrderBook
	bucket  *memBucket
	public  *Public
	seller  *Seller
	admin   *Admin
	rpc     *RPC
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.New()
	var mu sync.Mutex
	now := t0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	posters := catalog.NewManager(s, catalog.WithClock(clock))
	orders := catalog.NewOrderBook(s, s)
	bucket := &memBucket{objects: map[string][]byte{}}
	images := storage.NewImagesWithBucket(bucket)

	return &testEnv{
		store:   s,
		posters: posters,
		orders:  orders,
		bucket:  bucket,
		public:  NewPublic(posters, nil),
		seller:  NewSeller(posters, orders, images, nil),
		admin:   NewAdmin(posters, orders, images, nil),
		rpc:     NewRPC(gate.New(posters), nil),
	}
}

// posterInput returns a valid input for a poster.
func posterInput(title, category string, status models.Status, sellerID string, collections ...string) catalog.PosterInput {
	return catalog.PosterInput{
		Title:       title,
		Description: "Museum quality print",
		Price:       decimal.RequireFromString("25.00"),
		Sizes: []models.SizeOption{
			{Size: "A2", Price: decimal.RequireFromString("25.00"), FinalPrice: decimal.RequireFromString("20.00")},
			{Size: "A1", Price: decimal.RequireFromString("40.00"), FinalPrice: decimal.Zero},
		},
		Category:    category,
		Collections: collections,
		Tags:        []string{"print"},
		ImageURL:    "https://cdn.example.com/posters/1_" + strings.ReplaceAll(strings.ToLower(title), " ", "-") + ".png",
		SellerID:    sellerID,
		Stock:       3,
		Status:      status,
	}
}

// seed creates a poster with an explicit id.
func (e *testEnv) seed(t *testing.T, id string, in catalog.PosterInput) {
	t.Helper()
	_, err := e.posters.Create(context.Background(), in, id)
	require.NoError(t, err)
}

// request describes one handler invocation.
type request struct {
	method string
	target string
	body   string
	caller *auth.Caller
	params map[string]string
}

// serve runs h for req with chi URL params and the caller installed.
func serve(t *testing.T, h http.HandlerFunc, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.target, body)
	if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for k, v := range req.params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if req.caller != nil {
		ctx = auth.WithCaller(ctx, req.caller)
	}

	rr := httptest.NewRecorder()
	h(rr, r.WithContext(ctx))
	return rr
}

// decode unmarshals a JSON response body.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return buf.String()
}

// result mirrors mutationResult for decoding.
type result struct {
	Success  bool   `json:"success"`
	PosterID string `json:"posterId"`
	Error    string `json:"error"`
}

// posterJSON is the subset of a poster response the tests read.
type posterJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Collections []string `json:"collections"`
	SellerID    string   `json:"sellerId"`
	Status      string   `json:"status"`
	IsPublished bool     `json:"isPublished"`
	Keywords    []string `json:"keywords"`
}

func ids(posters []posterJSON) []string {
	out := make([]string, 0, len(posters))
	for _, p := range posters {
		out = append(out, p.ID)
	}
	return out
}
