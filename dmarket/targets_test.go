// Copyright (c) 2025 BVK Chaitanya

package dmarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGetUserTargetsPagination(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if v := q.Get("GameId"); v != GameCS {
			t.Errorf("wanted GameId %q, got %q", GameCS, v)
		}
		if v := q.Get("BasicFilters.Status"); v != TargetStatusActive {
			t.Errorf("wanted status %q, got %q", TargetStatusActive, v)
		}

		calls++
		switch calls {
		case 1:
			if v := q.Get("Cursor"); v != "" {
				t.Errorf("wanted no cursor on the first call, got %q", v)
			}
			fmt.Fprint(w, `{"Items": [{"TargetID": "t1", "Title": "one"}, {"TargetID": "t2", "Title": "two"}], "Cursor": "page-2"}`)
		case 2:
			if v := q.Get("Cursor"); v != "page-2" {
				t.Errorf("wanted cursor page-2, got %q", v)
			}
			fmt.Fprint(w, `{"Items": [{"TargetID": "t3", "Title": "three"}], "Cursor": ""}`)
		default:
			t.Errorf("unexpected call %d", calls)
		}
	}))

	targets, err := c.GetUserTargets(context.Background(), GameCS, TargetStatusActive)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("wanted 2 calls, got %d", calls)
	}
	if len(targets) != 3 {
		t.Fatalf("wanted 3 targets, got %d", len(targets))
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		if targets[i].TargetID != want {
			t.Fatalf("target %d: wanted id %q, got %q", i, want, targets[i].TargetID)
		}
	}
}

func TestCreateTargets(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/marketplace-api/v1/user-targets/create" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Targets []*CreateTarget `json:"Targets"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("could not decode request body: %v", err)
		}
		if len(req.Targets) != 1 {
			t.Fatalf("wanted 1 target in the request, got %d", len(req.Targets))
		}
		target := req.Targets[0]
		if target.Amount != "1" {
			t.Errorf("wanted amount 1, got %q", target.Amount)
		}
		if target.Price == nil || target.Price.Currency != "USD" {
			t.Errorf("wanted a USD price, got %+v", target.Price)
		}
		if len(target.Attributes) != 2 {
			t.Errorf("wanted 2 attributes, got %d", len(target.Attributes))
		}

		fmt.Fprint(w, `{"Result": [{"TargetID": "t-new", "Successful": true}]}`)
	}))

	targets := []*CreateTarget{
		{
			Amount: "1",
			Price:  USD(decimal.RequireFromString("12.5")),
			Attributes: []*TargetAttribute{
				{Name: "name", Value: "AK-47 | Redline"},
				{Name: "exterior", Value: "field-tested"},
			},
		},
	}
	result, err := c.CreateTargets(context.Background(), targets)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 || result[0].TargetID != "t-new" || !result[0].Successful {
		t.Fatalf("unexpected create result %+v", result)
	}
}

func TestDeleteTargetsChunking(t *testing.T) {
	var batches []int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Targets []*DeleteTarget `json:"Targets"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("could not decode request body: %v", err)
		}
		if len(req.Targets) > deleteTargetsBatchSize {
			t.Errorf("wanted at most %d targets per call, got %d", deleteTargetsBatchSize, len(req.Targets))
		}
		batches = append(batches, len(req.Targets))

		var resp struct {
			Result []*DeleteTargetResult `json:"Result"`
		}
		for _, target := range req.Targets {
			resp.Result = append(resp.Result, &DeleteTargetResult{DeleteTarget: *target})
		}
		json.NewEncoder(w).Encode(&resp)
	}))

	var ids []string
	for i := 0; i < 310; i++ {
		ids = append(ids, fmt.Sprintf("target-%03d", i))
	}

	result, err := c.DeleteTargets(context.Background(), ids)
	if err != nil {
		t.Fatal(err)
	}

	if len(batches) != 3 {
		t.Fatalf("wanted 3 calls for 310 targets, got %d", len(batches))
	}
	if batches[0] != 150 || batches[1] != 150 || batches[2] != 10 {
		t.Fatalf("wanted batches of 150/150/10, got %d/%d/%d", batches[0], batches[1], batches[2])
	}
	if len(result) != len(ids) {
		t.Fatalf("wanted %d results, got %d", len(ids), len(result))
	}
	for i, v := range result {
		if v.DeleteTarget.TargetID != ids[i] {
			t.Fatalf("result %d: wanted id %q, got %q", i, ids[i], v.DeleteTarget.TargetID)
		}
	}
}

func TestDeleteTargetsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("wanted no calls for an empty target list")
	}))

	result, err := c.DeleteTargets(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 0 {
		t.Fatalf("wanted an empty result, got %d entries", len(result))
	}
}
