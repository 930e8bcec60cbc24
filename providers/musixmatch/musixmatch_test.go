package musixmatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestFetch_NoUsertokenShortCircuits(t *testing.T) {
	if os.Getenv("MUSIXMATCH_USER_TOKEN") != "" {
		t.Skip("usertoken configured in environment")
	}

	// Point the endpoints at a server that fails the test if touched.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Fetch without usertoken must not reach the network")
	}))
	defer server.Close()

	oldRichsync, oldSubtitle, oldLyrics := richsyncURL, subtitleURL, lyricsURL
	richsyncURL, subtitleURL, lyricsURL = server.URL, server.URL, server.URL
	defer func() { richsyncURL, subtitleURL, lyricsURL = oldRichsync, oldSubtitle, oldLyrics }()

	_, err := NewProvider().Fetch(context.Background(), "Artist", "Title")
	if err == nil {
		t.Fatal("Expected error when usertoken is not configured")
	}
	if !strings.Contains(err.Error(), "usertoken") {
		t.Errorf("Expected usertoken error, got: %v", err)
	}
}

func TestGetRichsync(t *testing.T) {
	richsyncBody := `[{\"ts\":1.0,\"te\":3.0,\"x\":\"Hello world\",\"l\":[{\"c\":\"Hello \",\"o\":0},{\"c\":\"world\",\"o\":0.8}]}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("usertoken"); got != "tok123" {
			t.Errorf("Expected usertoken 'tok123', got %q", got)
		}
		w.Write([]byte(`{"message":{"header":{"status_code":200},"body":{"richsync":{"richsync_body":"` + richsyncBody + `","restricted":0}}}}`))
	}))
	defer server.Close()

	oldURL := richsyncURL
	richsyncURL = server.URL
	defer func() { richsyncURL = oldURL }()

	body, err := GetRichsync(context.Background(), "Test Artist", "Test Song", "tok123")
	if err != nil {
		t.Fatalf("GetRichsync failed: %v", err)
	}
	if !strings.Contains(body, `"ts":1.0`) {
		t.Errorf("Unexpected richsync body: %q", body)
	}
}

func TestGetRichsync_Restricted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"header":{"status_code":200},"body":{"richsync":{"richsync_body":"[]","restricted":1}}}}`))
	}))
	defer server.Close()

	oldURL := richsyncURL
	richsyncURL = server.URL
	defer func() { richsyncURL = oldURL }()

	if _, err := GetRichsync(context.Background(), "Artist", "Title", "tok"); err == nil {
		t.Fatal("Expected error for restricted richsync")
	}
}

func TestGetSubtitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("usertoken"); got != "tok123" {
			t.Errorf("Expected usertoken 'tok123', got %q", got)
		}
		if got := r.URL.Query().Get("q_track"); got != "Test Song" {
			t.Errorf("Expected q_track 'Test Song', got %q", got)
		}
		w.Write([]byte(`{"message":{"header":{"status_code":200},"body":{"subtitle":{"subtitle_body":"[00:01.00] Hello","restricted":0}}}}`))
	}))
	defer server.Close()

	oldURL := subtitleURL
	subtitleURL = server.URL
	defer func() { subtitleURL = oldURL }()

	body, err := GetSubtitle(context.Background(), "Test Artist", "Test Song", "tok123")
	if err != nil {
		t.Fatalf("GetSubtitle failed: %v", err)
	}
	if body != "[00:01.00] Hello" {
		t.Errorf("Unexpected subtitle body: %q", body)
	}
}

func TestGetSubtitle_Restricted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"header":{"status_code":200},"body":{"subtitle":{"subtitle_body":"x","restricted":1}}}}`))
	}))
	defer server.Close()

	oldURL := subtitleURL
	subtitleURL = server.URL
	defer func() { subtitleURL = oldURL }()

	_, err := GetSubtitle(context.Background(), "Artist", "Title", "tok")
	if err == nil {
		t.Fatal("Expected error for restricted subtitle")
	}
}

func TestGetSubtitle_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"header":{"status_code":404},"body":{}}}`))
	}))
	defer server.Close()

	oldURL := subtitleURL
	subtitleURL = server.URL
	defer func() { subtitleURL = oldURL }()

	_, err := GetSubtitle(context.Background(), "Artist", "Title", "tok")
	if err == nil {
		t.Fatal("Expected error for non-200 status code")
	}
}

func TestGetLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"header":{"status_code":200},"body":{"lyrics":{"lyrics_body":"plain words","restricted":0,"instrumental":0}}}}`))
	}))
	defer server.Close()

	oldURL := lyricsURL
	lyricsURL = server.URL
	defer func() { lyricsURL = oldURL }()

	body, err := GetLyrics(context.Background(), "Artist", "Title", "tok")
	if err != nil {
		t.Fatalf("GetLyrics failed: %v", err)
	}
	if body != "plain words" {
		t.Errorf("Unexpected lyrics body: %q", body)
	}
}
