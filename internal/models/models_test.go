package models

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSeenSet(t *testing.T) {
	t.Run("Add keeps order and skips duplicates", func(t *testing.T) {
		var seen SeenSet
		seen = seen.Add("a").Add("b").Add("a").Add("c")

		want := []string{"a", "b", "c"}
		if len(seen) != len(want) {
			t.Fatalf("expected %v, got %v", want, seen)
		}
		for i := range want {
			if seen[i] != want[i] {
				t.Errorf("index %d: expected %s, got %s", i, want[i], seen[i])
			}
		}
	})

	t.Run("Add does not mutate the receiver", func(t *testing.T) {
		base := make(SeenSet, 1, 4)
		base[0] = "a"

		next := base.Add("b")
		other := base.Add("c")

		if len(base) != 1 {
			t.Errorf("receiver changed: %v", base)
		}
		if next[1] != "b" || other[1] != "c" {
			t.Errorf("sibling sets share storage: %v %v", next, other)
		}
	})

	t.Run("Add ignores empty ids", func(t *testing.T) {
		if got := (SeenSet{}).Add(""); len(got) != 0 {
			t.Errorf("expected empty set, got %v", got)
		}
	})

	t.Run("Merge", func(t *testing.T) {
		seen := SeenSet{"a"}.Merge("b", "a", "c", "b")
		if len(seen) != 3 || !seen.Contains("c") {
			t.Errorf("unexpected merge result %v", seen)
		}
	})
}

func TestTrack(t *testing.T) {
	track := Track{ID: "abc", Name: "Song", Artists: []string{"First", "Second"}}

	if track.Artist() != "First" {
		t.Errorf("expected primary artist First, got %s", track.Artist())
	}
	if track.ArtistLine() != "First, Second" {
		t.Errorf("unexpected artist line %q", track.ArtistLine())
	}
	if track.URI() != "spotify:track:abc" {
		t.Errorf("unexpected uri %s", track.URI())
	}
	if (Track{}).Artist() != "" {
		t.Error("expected empty artist for uncredited track")
	}
}

func TestPlaylistValidate(t *testing.T) {
	tc := []struct {
		name    string
		p       Playlist
		wantErr bool
	}{
		{name: "valid", p: Playlist{Name: "Road trip", RemoteID: "r1", UserID: "u1"}},
		{name: "blank name", p: Playlist{Name: "  ", RemoteID: "r1", UserID: "u1"}, wantErr: true},
		{name: "missing remote id", p: Playlist{Name: "n", UserID: "u1"}, wantErr: true},
		{name: "missing owner", p: Playlist{Name: "n", RemoteID: "r1"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSession(t *testing.T) {
	s := &Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}

	if s.Authenticated() {
		t.Error("new session should not be authenticated")
	}
	if s.Dirty() {
		t.Error("new session should be clean")
	}

	s.SetToken(&oauth2.Token{AccessToken: "tok"})
	if !s.Authenticated() || !s.Dirty() {
		t.Error("expected authenticated dirty session after SetToken")
	}

	s.MarkClean()
	s.SetSeen(SeenSet{"a"})
	s.ResetSeen()
	if len(s.Seen) != 0 || !s.Dirty() {
		t.Errorf("expected empty dirty seen-set, got %v", s.Seen)
	}

	if s.Expired(time.Now()) {
		t.Error("session should not be expired yet")
	}
	if !s.Expired(time.Now().Add(2 * time.Hour)) {
		t.Error("session should be expired after its expiry")
	}
}
