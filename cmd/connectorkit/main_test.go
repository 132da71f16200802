package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/toolbridge/connectorkit/config"
)

func TestNewHTTPServer_AppliesConfiguredTimeouts(t *testing.T) {
	cfg := config.ServerConfig{
		Port:         9090,
		ReadTimeout:  12 * time.Second,
		WriteTimeout: 34 * time.Second,
	}

	srv := newHTTPServer(cfg, http.NewServeMux())

	if srv.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", srv.Addr, ":9090")
	}
	if srv.ReadTimeout != 12*time.Second {
		t.Errorf("ReadTimeout = %v, want 12s", srv.ReadTimeout)
	}
	if srv.WriteTimeout != 34*time.Second {
		t.Errorf("WriteTimeout = %v, want 34s", srv.WriteTimeout)
	}
}
