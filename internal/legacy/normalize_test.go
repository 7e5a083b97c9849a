package legacy

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultRestorePrefix)

	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "relative source",
			in:       `<p><img src="files/attach/images/128/a.jpg"></p>`,
			contains: []string{`src="/static/restore_images/a.jpg"`},
			excludes: []string{"files/attach"},
		},
		{
			name:     "bare file name",
			in:       `<img src="photo.png" alt="x">`,
			contains: []string{`src="/static/restore_images/photo.png"`, `alt="x"`},
		},
		{
			name:     "backslash path",
			in:       `<img src="files\attach\images\b.gif">`,
			contains: []string{`src="/static/restore_images/b.gif"`},
		},
		{
			name:     "absolute url untouched",
			in:       `<img src="http://example.com/c.jpg">`,
			contains: []string{`src="http://example.com/c.jpg"`},
		},
		{
			name:     "https url untouched",
			in:       `<img src="https://example.com/c.jpg">`,
			contains: []string{`src="https://example.com/c.jpg"`},
		},
		{
			name:     "root path untouched",
			in:       `<img src="/static/uploads/d.jpg">`,
			contains: []string{`src="/static/uploads/d.jpg"`},
		},
		{
			name:     "empty source untouched",
			in:       `<img src="">`,
			contains: []string{`src=""`},
			excludes: []string{"restore_images"},
		},
		{
			name:     "nested images all rewritten",
			in:       `<div><p>text<img src="e.jpg"></p><span><img src="f.jpg"></span></div>`,
			contains: []string{`/static/restore_images/e.jpg`, `/static/restore_images/f.jpg`, "text"},
		},
		{
			name:     "unclosed markup is closed",
			in:       `<p><b>bold`,
			contains: []string{"<p><b>bold</b></p>"},
		},
		{
			name:     "document wrappers kept",
			in:       `<html><body><p>a &amp; b</p><img src="g.jpg"></body></html>`,
			contains: []string{"<html>", "<body><p>a &amp; b</p>", `<img src="/static/restore_images/g.jpg"/>`, "</body></html>"},
		},
		{
			name:     "head kept",
			in:       `<html><head><title>t</title></head><body>x</body></html>`,
			contains: []string{"<head><title>t</title></head>", "<body>x</body>"},
		},
		{
			name:     "void image rendered self-closed",
			in:       `<p><img src="h.jpg"></p>`,
			contains: []string{`<p><img src="/static/restore_images/h.jpg"/></p>`},
		},
		{
			name:     "plain text",
			in:       "just words",
			contains: []string{"just words"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expected %q in %q", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("Did not expect %q in %q", unwanted, got)
				}
			}
		})
	}
}

func TestHasDocumentWrapper(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`<html><body>x</body></html>`, true},
		{`<BODY>x`, true},
		{`<head><title>t</title></head>`, true},
		{`<p>body text &lt;body&gt;</p>`, false},
		{`<div class="html">x</div>`, false},
	}

	for _, tt := range tests {
		if got := hasDocumentWrapper(tt.in); got != tt.want {
			t.Errorf("hasDocumentWrapper(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewNormalizer_Prefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "/static/restore_images/a.jpg"},
		{"/img", "/img/a.jpg"},
		{"/img/", "/img/a.jpg"},
	}

	for _, tt := range tests {
		if got := NewNormalizer(tt.prefix).RestorePath("dir/a.jpg"); got != tt.want {
			t.Errorf("prefix %q: expected %q, got %q", tt.prefix, tt.want, got)
		}
	}
}

func TestRepairLegacyPaths(t *testing.T) {
	n := NewNormalizer(DefaultRestorePrefix)

	content := `<p><img src="/static/uploads/freeboard/a.jpg"><img src="http://x.com/b.jpg"><img src="c.png"></p>`
	got, changed := n.RepairLegacyPaths(content, DefaultLegacyUploadPrefixes)
	if !changed {
		t.Fatal("Expected content to change")
	}
	for _, want := range []string{
		`src="/static/restore_images/a.jpg"`,
		`src="http://x.com/b.jpg"`,
		`src="/static/restore_images/c.png"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}

	clean := `<p><img src="/static/restore_images/a.jpg"></p>`
	got, changed = n.RepairLegacyPaths(clean, DefaultLegacyUploadPrefixes)
	if changed {
		t.Errorf("Did not expect a change for %q, got %q", clean, got)
	}
	if got != clean {
		t.Errorf("Unchanged content should be returned as is, got %q", got)
	}
}

func TestFirstImageSource(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{`<p>text<img src="a.jpg"><img src="b.jpg"></p>`, "a.jpg"},
		{`<div><p></p></div><p><img src=""><img src="/static/restore_images/c.jpg"></p>`, "/static/restore_images/c.jpg"},
		{`<p>no images</p>`, ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FirstImageSource(tt.content); got != tt.want {
			t.Errorf("FirstImageSource(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
