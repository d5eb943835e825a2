package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(endpoint string) *ZaloClient {
	c := NewZaloClient("test-key", Options{
		Endpoint: endpoint,
		Speaker:  "1",
		Speed:    1.0,
	})
	c.pollDelay = time.Millisecond
	return c
}

func TestSynthesize(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/audio.wav", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("RIFF fake wav"))
	})
	mux.HandleFunc("/synthesize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("input"); got != "Xin chào" {
			t.Errorf("input = %q, want Xin chào", got)
		}
		if got := r.PostForm.Get("speaker_id"); got != "1" {
			t.Errorf("speaker_id = %q, want 1", got)
		}
		_, _ = w.Write([]byte(`{"error_code":0,"error_message":"Successful.","data":{"url":"` + server.URL + `/audio.wav"}}`))
	})

	client := newTestClient(server.URL + "/synthesize")

	data, err := client.Synthesize(context.Background(), "Xin chào")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(data) != "RIFF fake wav" {
		t.Errorf("audio = %q", data)
	}
}

func TestSynthesizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_code":-5,"error_message":"Invalid API key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.Synthesize(context.Background(), "text"); err == nil {
		t.Fatal("Synthesize() expected error for non-zero error_code")
	}
}

func TestSynthesizeMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_code":0,"error_message":"Successful.","data":{}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.Synthesize(context.Background(), "text"); err == nil {
		t.Fatal("Synthesize() expected error for missing audio url")
	}
}

func TestDownloadAudioPollsUntilReady(t *testing.T) {
	var attempts int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/audio.wav", func(w http.ResponseWriter, r *http.Request) {
		// The CDN 404s until the audio is rendered.
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("wav"))
	})

	client := newTestClient(server.URL)

	data, err := client.downloadAudio(context.Background(), server.URL+"/audio.wav")
	if err != nil {
		t.Fatalf("downloadAudio() error = %v", err)
	}
	if string(data) != "wav" {
		t.Errorf("audio = %q, want wav", data)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDownloadAudioContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.downloadAudio(ctx, server.URL+"/audio.wav"); err == nil {
		t.Fatal("downloadAudio() expected error after cancellation")
	}
}
