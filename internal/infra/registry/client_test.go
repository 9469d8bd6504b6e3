package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_InformationModelExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/information_models/model-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"model-1"}`))
		case "/information_models/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(srv.URL+"/", time.Second)

	ok, err := client.InformationModelExists(context.Background(), "model-1")
	if err != nil || !ok {
		t.Fatalf("model-1: ok=%v err=%v", ok, err)
	}

	ok, err = client.InformationModelExists(context.Background(), "model-2")
	if err != nil || ok {
		t.Fatalf("model-2: ok=%v err=%v", ok, err)
	}

	_, err = client.InformationModelExists(context.Background(), "broken")
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status 500 error, got %v", err)
	}
}

func TestClient_Unconfigured(t *testing.T) {
	if _, err := New("", time.Second).InformationModelExists(context.Background(), "model-1"); err == nil {
		t.Fatalf("expected error without base url")
	}
}
