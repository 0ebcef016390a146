package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestPushEntry(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad push body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	err := PushEntry(context.Background(), srv.URL, ts, `{"action":"auth.login"}`, map[string]string{
		"action":  "auth.login",
		"outcome": "success",
		"bad":     "   ",
	})
	if err != nil {
		t.Fatalf("PushEntry: %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(got.Streams))
	}
	stream := got.Streams[0]
	if stream.Stream["job"] != "hrms" {
		t.Errorf("expected job=hrms label, got %q", stream.Stream["job"])
	}
	if stream.Stream["action"] != "auth.login" {
		t.Errorf("expected action label, got %q", stream.Stream["action"])
	}
	if _, ok := stream.Stream["bad"]; ok {
		t.Error("blank label value should be dropped")
	}
	if len(stream.Values) != 1 || len(stream.Values[0]) != 2 {
		t.Fatalf("unexpected values shape: %v", stream.Values)
	}
}

func TestPushEntryNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := PushEntry(context.Background(), srv.URL, time.Now(), "line", nil); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestPushEntryJSONLabels(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad push body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw := []byte(`{"actorType":"employee","action":"auth.logout","outcome":"success","createdAt":"2026-02-03T04:05:06Z"}`)
	if err := PushEntryJSON(context.Background(), srv.URL, raw); err != nil {
		t.Fatalf("PushEntryJSON: %v", err)
	}
	stream := got.Streams[0]
	if stream.Stream["actor_type"] != "employee" || stream.Stream["action"] != "auth.logout" {
		t.Errorf("unexpected labels: %v", stream.Stream)
	}
	wantNS := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC).UnixNano()
	if stream.Values[0][0] != strconv.FormatInt(wantNS, 10) {
		t.Errorf("expected timestamp %d, got %s", wantNS, stream.Values[0][0])
	}
}
