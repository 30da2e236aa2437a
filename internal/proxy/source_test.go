package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nao1215/kgscrape/internal/model"
)

func TestParseList(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"1.1.1.1:8080",
		"2.2.2.2:3128 US elite",
		"ip,port",
		"3.3.3.3:80,4.4.4.4:8000",
		"not-a-proxy",
		"5.5.5.5:1",
		"",
	}, "\n")

	got, err := ParseList(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"1.1.1.1:8080", "2.2.2.2:3128", "3.3.3.3:80", "4.4.4.4:8000"}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Address != w {
			t.Errorf("candidate %d = %q, want %q", i, got[i].Address, w)
		}
		if got[i].EffectiveScheme() != model.ProxySchemeHTTP {
			t.Errorf("candidate %d scheme = %q, want http", i, got[i].Scheme)
		}
	}
}

func TestListSource(t *testing.T) {
	t.Parallel()

	t.Run("loads list", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintln(w, "10.0.0.1:8080")
			fmt.Fprintln(w, "10.0.0.2:8080")
		}))
		defer srv.Close()

		src := NewListSource(srv.URL, srv.Client())
		if src.Name() != srv.URL {
			t.Errorf("Name() = %q, want %q", src.Name(), srv.URL)
		}
		got, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d candidates, want 2", len(got))
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewListSource(srv.URL, nil).Load(context.Background())
		if !errors.Is(err, ErrSourceStatus) {
			t.Errorf("expected ErrSourceStatus, got %v", err)
		}
	})

	t.Run("unreachable source is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		u := srv.URL
		srv.Close()

		if _, err := NewListSource(u, nil).Load(context.Background()); err == nil {
			t.Error("expected error for closed server")
		}
	})
}

func TestParseCandidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in         string
		wantAddr   string
		wantScheme model.ProxyScheme
		wantUser   string
		wantErr    error
	}{
		{in: "1.2.3.4:8080", wantAddr: "1.2.3.4:8080", wantScheme: model.ProxySchemeHTTP},
		{in: " http://proxy.local:3128 ", wantAddr: "proxy.local:3128", wantScheme: model.ProxySchemeHTTP},
		{in: "socks5://127.0.0.1:9050", wantAddr: "127.0.0.1:9050", wantScheme: model.ProxySchemeSOCKS5},
		{in: "socks5h://u:p@127.0.0.1:1080", wantAddr: "127.0.0.1:1080", wantScheme: model.ProxySchemeSOCKS5, wantUser: "u"},
		{in: "ftp://1.2.3.4:21", wantErr: ErrUnsupportedScheme},
		{in: "1.2.3.4", wantErr: ErrInvalidCandidate},
		{in: "", wantErr: ErrInvalidCandidate},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCandidate(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseCandidate(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Address != tt.wantAddr || got.Scheme != tt.wantScheme {
				t.Errorf("ParseCandidate(%q) = %+v", tt.in, got)
			}
			if tt.wantUser != "" && (got.User == nil || got.User.Username() != tt.wantUser) {
				t.Errorf("expected user %q, got %v", tt.wantUser, got.User)
			}
		})
	}
}

func TestStaticSource(t *testing.T) {
	t.Parallel()

	src, err := NewStaticSource([]string{"1.1.1.1:80", "bogus", "socks5://2.2.2.2:1080"})
	if !errors.Is(err, ErrInvalidCandidate) {
		t.Errorf("expected ErrInvalidCandidate for bogus entry, got %v", err)
	}
	if src.Name() != "static" {
		t.Errorf("Name() = %q, want static", src.Name())
	}

	got, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}

	got[0].Address = "mutated"
	again, _ := src.Load(context.Background())
	if again[0].Address == "mutated" {
		t.Error("Load returned internal slice")
	}
}
