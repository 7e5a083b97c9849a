package legacy

import (
	"encoding/base64"
	"errors"
	"testing"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestDecodeField(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		want          string
		wantRecovered bool
	}{
		{"ascii", b64("hello"), "hello", false},
		{"korean", b64("안녕하세요"), "안녕하세요", false},
		{"wrapped across lines", "aGVs\n  bG8=\n", "hello", false},
		{"empty", "", "", false},
		{"whitespace only", " \n\t", "", false},
		{"invalid base64", "!!!not-base64", "", true},
		{"bad padding", "aGVsbG8", "", true},
		{"not utf-8", base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeField(tt.raw)
			if got.Value != tt.want {
				t.Errorf("Expected value %q, got %q", tt.want, got.Value)
			}
			if got.Recovered != tt.wantRecovered {
				t.Errorf("Expected recovered=%v, got %v", tt.wantRecovered, got.Recovered)
			}
			if got.Recovered && got.Err == nil {
				t.Error("Recovered field should carry the reason")
			}
		})
	}
}

func TestDecodeField_InvalidUTF8Reason(t *testing.T) {
	got := DecodeField(base64.StdEncoding.EncodeToString([]byte{0xc3, 0x28}))
	if !errors.Is(got.Err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", got.Err)
	}
}

func TestDecodeAuthor(t *testing.T) {
	tests := []struct {
		name          string
		nick          string
		userID        string
		want          string
		wantRecovered bool
	}{
		{"nickname wins", b64("닉네임"), b64("user1"), "닉네임", false},
		{"empty nickname falls back to user id", "", b64("user1"), "user1", false},
		{"blank nickname falls back to user id", b64(""), b64("user1"), "user1", false},
		{"corrupt nickname falls back to user id", "@@@", b64("user1"), "user1", false},
		{"both missing", "", "", "", false},
		{"corrupt nickname and no user id", "@@@", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeAuthor(tt.nick, tt.userID)
			if got.Value != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got.Value)
			}
			if got.Recovered != tt.wantRecovered {
				t.Errorf("Expected recovered=%v, got %v", tt.wantRecovered, got.Recovered)
			}
		})
	}
}

func TestLegacyDoubleUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"&amp;lt;img src=&amp;quot;a.jpg&amp;quot;&amp;gt;", `<img src="a.jpg">`},
		{"&lt;p&gt;hi&lt;/p&gt;", "<p>hi</p>"},
		{"<p>plain</p>", "<p>plain</p>"},
		{"a < b && c", "a < b && c"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := LegacyDoubleUnescape(tt.in); got != tt.want {
			t.Errorf("LegacyDoubleUnescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// A fully unescaped value stays put
		if again := LegacyDoubleUnescape(tt.want); again != tt.want && tt.want != "" {
			t.Errorf("LegacyDoubleUnescape(%q) changed an unescaped value to %q", tt.want, again)
		}
	}
}

func TestDecodeContent(t *testing.T) {
	got := DecodeContent(b64("&amp;lt;p&amp;gt;본문&amp;lt;/p&amp;gt;"))
	if got.Value != "<p>본문</p>" {
		t.Errorf("Expected <p>본문</p>, got %q", got.Value)
	}

	corrupt := DecodeContent("%%%")
	if corrupt.Value != "" || !corrupt.Recovered {
		t.Errorf("Expected empty recovered content, got %+v", corrupt)
	}
}

func TestFieldTrimmed(t *testing.T) {
	f := DecodeField(b64("  제목  \n"))
	if f.Trimmed() != "제목" {
		t.Errorf("Expected trimmed title, got %q", f.Trimmed())
	}
}
