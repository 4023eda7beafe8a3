package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tripdesk/backend/internal/config"
)

func TestPlacesClientSearch(t *testing.T) {
	t.Run("decodes results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "ryoan-ji kyoto" {
				t.Errorf("query = %q", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("auth header = %q", got)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"results": []PlaceResult{
					{PlaceRef: "abc", CityName: "Kyoto", StateName: "Kyoto", CountryName: "Japan", CountryCode: "JP"},
				},
			})
		}))
		defer srv.Close()

		client := NewPlacesClient(config.PlacesConfig{BaseURL: srv.URL, APIKey: "test-key"})
		results, err := client.Search(context.Background(), "ryoan-ji kyoto")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0].CityName != "Kyoto" {
			t.Errorf("got %+v", results)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewPlacesClient(config.PlacesConfig{BaseURL: srv.URL})
		if _, err := client.Search(context.Background(), "anything"); err == nil {
			t.Fatal("expected error for upstream failure")
		}
	})
}
