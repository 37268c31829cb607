package format

import (
	"testing"
	"time"
)

func TestMessage(t *testing.T) {
	u := UserFields{ID: 42, FirstName: "Ada", LastName: "Lovelace", Username: "ada"}

	got := Message("Hi {first} {last} ({id}, @{username})", u)
	want := "Hi Ada Lovelace (42, @ada)"
	if got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestMessageMention(t *testing.T) {
	u := UserFields{ID: 7, FirstName: "Ada"}
	got := Message("{mention}", u)
	want := `<a href="tg://user?id=7">Ada</a>`
	if got != want {
		t.Errorf("mention = %q, want %q", got, want)
	}
}

func TestMessageEmptyTemplate(t *testing.T) {
	if got := Message("", UserFields{ID: 1}); got != "" {
		t.Errorf("empty template produced %q", got)
	}
}

func TestCaption(t *testing.T) {
	got := Caption("{filename}: {previouscaption}", "a.pdf", "original")
	if got != "a.pdf: original" {
		t.Errorf("Caption = %q", got)
	}

	// No template passes the original through.
	if got := Caption("", "a.pdf", "original"); got != "original" {
		t.Errorf("empty template Caption = %q, want original", got)
	}
}

func TestSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tc := range cases {
		if got := Size(tc.bytes); got != tc.want {
			t.Errorf("Size(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{hms(1, 2, 3), "1h 2m 3s"},
		{25*time.Hour + 61*time.Second, "1d 1h 1m 1s"},
		{-5 * time.Second, "0s"},
	}

	for _, tc := range cases {
		if got := Duration(tc.d); got != tc.want {
			t.Errorf("Duration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func hms(h, m, s int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}
