package transport_test

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/codeartlibs/apikit-go/client/transport"
)

func TestResty_Send(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("exp PUT, got %s", r.Method)
		}
		if got := r.Header.Values("X-Multi"); len(got) != 2 {
			t.Errorf("exp two X-Multi values, got %v", got)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != "payload" {
			t.Errorf("unexpected body %q", b)
		}

		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	tr := transport.NewResty(5 * time.Second)

	resp, err := tr.Send(t.Context(), &transport.Request{
		Method: http.MethodPut,
		URL:    ts.URL,
		Header: http.Header{"X-Multi": {"a", "b"}},
		Body:   []byte("payload"),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("exp 202, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Reply") != "yes" {
		t.Errorf("exp reply header, got %v", resp.Header)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestResty_SendNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	tr := transport.NewRestyFromClient(resty.New())

	resp, err := tr.Send(t.Context(), &transport.Request{Method: http.MethodGet, URL: ts.URL})
	if err != nil {
		t.Fatalf("exp no error, got: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("exp 404, got %d", resp.StatusCode)
	}
}

func TestResty_SendConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	tr := transport.NewResty(time.Second)

	if _, err := tr.Send(t.Context(), &transport.Request{Method: http.MethodGet, URL: "http://" + addr}); err == nil {
		t.Fatal("expected connection error")
	}
}
