package ibr

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{BaseURL: "https://vendor.example.com"}); !errors.Is(err, domain.ErrVendorNotConfigured) {
		t.Fatalf("err = %v, want ErrVendorNotConfigured", err)
	}
	if _, err := NewClient(Config{Username: "acct", Password: "secret"}); err == nil {
		t.Fatal("expected missing base url error")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:  server.URL,
		Username: "acct",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSubmitReturnsCaseID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cases" {
			t.Errorf("path = %q, want /cases", r.URL.Path)
		}
		var req submitRequest
		if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Username != "acct" || req.Password != "secret" {
			t.Errorf("credentials = %q/%q", req.Username, req.Password)
		}
		if req.Name != "Morgan Ellis" {
			t.Errorf("name = %q, want Morgan Ellis", req.Name)
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<BackgroundCheckResponse><CaseId>case-42</CaseId></BackgroundCheckResponse>`))
	})

	caseID, err := client.Submit(context.Background(), domain.Candidate{
		Name:  "Morgan Ellis",
		Email: "morgan@example.com",
		Phone: "704-555-0111",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if caseID != "case-42" {
		t.Fatalf("caseID = %q, want case-42", caseID)
	}
}

func TestSubmitVendorErrorIsPermanent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<BackgroundCheckResponse><Error>duplicate subject</Error></BackgroundCheckResponse>`))
	})

	_, err := client.Submit(context.Background(), domain.Candidate{Name: "Morgan Ellis"})
	if err == nil {
		t.Fatal("expected vendor rejection")
	}
	if !domain.IsPermanent(err) {
		t.Fatalf("err = %v, want a permanent error", err)
	}
}

func TestPollStatusReturnsCode(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cases/status" {
			t.Errorf("path = %q, want /cases/status", r.URL.Path)
		}
		var req statusRequest
		if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.CaseID != "case-42" {
			t.Errorf("caseID = %q, want case-42", req.CaseID)
		}
		_, _ = w.Write([]byte(`<StatusResponse><CaseId>case-42</CaseId><Status>CLEAR</Status></StatusResponse>`))
	})

	status, err := client.PollStatus(context.Background(), "case-42")
	if err != nil {
		t.Fatalf("poll status: %v", err)
	}
	if status != "CLEAR" {
		t.Fatalf("status = %q, want CLEAR", status)
	}
}

func TestPollStatusAuthFailureIsTransient(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.PollStatus(context.Background(), "case-42")
	if err == nil {
		t.Fatal("expected auth failure")
	}
	if domain.IsPermanent(err) {
		t.Fatalf("err = %v, auth failures must stay transient", err)
	}
}

func TestPollStatusBadRequestIsPermanent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.PollStatus(context.Background(), "case-42")
	if err == nil {
		t.Fatal("expected not-found failure")
	}
	if !domain.IsPermanent(err) {
		t.Fatalf("err = %v, want a permanent error for an unknown case", err)
	}
}

func TestPollStatusRequiresCaseID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	if _, err := client.PollStatus(context.Background(), "  "); err == nil {
		t.Fatal("expected case id error")
	}
}
