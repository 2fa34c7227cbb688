package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm.type.list" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"types":[
			{"entityTypeId":128,"title":"Deals Pipeline"},
			{"entityTypeId":130,"title":"Vendors"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	types, err := c.ListTypes(context.Background())
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(types))
	}
	if types[0].EntityTypeID != 128 || types[0].Title != "Deals Pipeline" {
		t.Errorf("unexpected first type: %+v", types[0])
	}
}

func TestListFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("entityTypeId"); got != "128" {
			t.Errorf("entityTypeId = %q, want 128", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"fields":{
			"title":{"title":"Name","type":"string","isRequired":true},
			"ufCrmStatus":{"title":"Status","type":"enumeration","isRequired":false,
				"items":[{"ID":41,"VALUE":"Open"},{"ID":"42","VALUE":"Closed"}]},
			"ufCrmBudget":{"title":"Budget","type":"double","isRequired":false}
		}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	fields, err := c.ListFields(context.Background(), 128)
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}

	// Sorted by field ID: title, ufCrmBudget, ufCrmStatus.
	if fields[0].ID != "title" || !fields[0].Required {
		t.Errorf("unexpected first field: %+v", fields[0])
	}
	status := fields[2]
	if status.Type != FieldEnumeration {
		t.Fatalf("expected enumeration type, got %q", status.Type)
	}
	if len(status.EnumOptions) != 2 {
		t.Fatalf("expected 2 enum options, got %d", len(status.EnumOptions))
	}
	// Numeric and string wire IDs both normalize to strings.
	if status.EnumOptions[0].ID != "41" || status.EnumOptions[1].ID != "42" {
		t.Errorf("unexpected enum IDs: %+v", status.EnumOptions)
	}
}

func TestAddItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		var req struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Fields["title"] != "Acme" {
			t.Errorf("fields[title] = %v, want Acme", req.Fields["title"])
		}
		w.Write([]byte(`{"result":{"item":{"id":501}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	id, err := c.AddItem(context.Background(), 128, map[string]any{"title": "Acme"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if id != 501 {
		t.Errorf("id = %d, want 501", id)
	}
}

func TestAddItemErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"INVALID_ARG","error_description":"Field title is required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.AddItem(context.Background(), 128, map[string]any{})
	if err == nil {
		t.Fatal("expected error for error envelope")
	}
	if got := err.Error(); got != "crm error: Field title is required" {
		t.Errorf("error = %q, want description surfaced", got)
	}
}

func TestAddItemNonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("gateway exploded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.AddItem(context.Background(), 128, map[string]any{"title": "x"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
