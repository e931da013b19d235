package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestElevenLabs_Synthesize(t *testing.T) {
	fakeAudio := []byte("ID3fake-mp3-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/text-to-speech/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var payload struct {
			Text          string `json:"text"`
			ModelID       string `json:"model_id"`
			VoiceSettings struct {
				Stability       float64 `json:"stability"`
				SimilarityBoost float64 `json:"similarity_boost"`
			} `json:"voice_settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.ModelID != "eleven_monolingual_v1" {
			t.Errorf("unexpected model %q", payload.ModelID)
		}
		if payload.VoiceSettings.Stability != 0.5 {
			t.Errorf("unexpected stability %.2f", payload.VoiceSettings.Stability)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(fakeAudio)
	}))
	defer srv.Close()

	e := NewElevenLabs("test-key", "voice-1", 5*time.Second)
	e.baseURL = srv.URL

	audio, err := e.Synthesize(context.Background(), "Organic Apples detected")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != string(fakeAudio) {
		t.Error("audio bytes do not match server response")
	}
}

func TestElevenLabs_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "invalid voice"}`))
	}))
	defer srv.Close()

	e := NewElevenLabs("test-key", "bad-voice", 5*time.Second)
	e.baseURL = srv.URL

	if _, err := e.Synthesize(context.Background(), "text"); err == nil {
		t.Fatal("expected an error on non-200 status")
	}
}

func TestElevenLabs_NoKey(t *testing.T) {
	e := NewElevenLabs("", "voice-1", time.Second)
	if _, err := e.Synthesize(context.Background(), "text"); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestStore_SaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Save("price_1700000000000.mp3", []byte("audio")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	path, err := store.Open("price_1700000000000.mp3")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestStore_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	bad := []string{
		"../escape.mp3",
		"sub/escape.mp3",
		"..",
		"",
		`..\escape.mp3`,
	}
	for _, name := range bad {
		if err := store.Save(name, []byte("x")); err == nil {
			t.Errorf("Save(%q) should be rejected", name)
		}
		if _, err := store.Open(name); err == nil {
			t.Errorf("Open(%q) should be rejected", name)
		}
	}

	// nothing escaped the asset dir
	parent := filepath.Dir(dir)
	if _, err := os.Stat(filepath.Join(parent, "escape.mp3")); err == nil {
		t.Error("a traversal write escaped the asset directory")
	}
}
