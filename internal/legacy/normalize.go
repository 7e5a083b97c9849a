package legacy

import (
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultRestorePrefix is where restored legacy images are served from
const DefaultRestorePrefix = "/static/restore_images/"

// DefaultLegacyUploadPrefixes are upload directories used by earlier
// migrations whose files were later moved to the restore directory.
var DefaultLegacyUploadPrefixes = []string{
	"/static/uploads/unknown/",
	"/static/uploads/freeboard/",
	"/static/uploads/storyboard/",
}

// Normalizer rewrites image references in imported post bodies
type Normalizer struct {
	restorePrefix string
}

// NewNormalizer creates a Normalizer that points images at restorePrefix
func NewNormalizer(restorePrefix string) *Normalizer {
	if restorePrefix == "" {
		restorePrefix = DefaultRestorePrefix
	}
	if !strings.HasSuffix(restorePrefix, "/") {
		restorePrefix += "/"
	}
	return &Normalizer{restorePrefix: restorePrefix}
}

// Normalize parses decoded post HTML, points every relative <img src> at the
// restore directory and serializes the tree back. The output is well-formed
// even when the input is not.
func (n *Normalizer) Normalize(decoded string) string {
	out, _ := n.rewrite(decoded, isRelativeSource)
	return out
}

// RepairLegacyPaths rewrites images that still point at a relative path or at
// one of the given upload prefixes. It reports whether anything changed.
func (n *Normalizer) RepairLegacyPaths(content string, prefixes []string) (string, bool) {
	out, rewritten := n.rewrite(content, func(src string) bool {
		if isRelativeSource(src) {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(src, prefix) {
				return true
			}
		}
		return false
	})
	if rewritten == 0 {
		return content, false
	}
	return out, true
}

// RestorePath maps an image source onto the restore directory, keeping only
// the file's base name.
func (n *Normalizer) RestorePath(src string) string {
	name := strings.ReplaceAll(strings.TrimSpace(src), `\`, "/")
	return n.restorePrefix + path.Base(name)
}

func (n *Normalizer) rewrite(fragment string, match func(string) bool) (string, int) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return fragment, 0
	}

	rewritten := 0
	for _, node := range nodes {
		rewritten += n.rewriteImages(node, match)
	}

	var b strings.Builder
	for _, node := range nodes {
		if err := html.Render(&b, node); err != nil {
			return fragment, 0
		}
	}
	return b.String(), rewritten
}

func (n *Normalizer) rewriteImages(node *html.Node, match func(string) bool) int {
	count := 0
	if node.Type == html.ElementNode && node.DataAtom == atom.Img {
		for i, attr := range node.Attr {
			if attr.Key == "src" && match(attr.Val) {
				node.Attr[i].Val = n.RestorePath(attr.Val)
				count++
			}
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		count += n.rewriteImages(c, match)
	}
	return count
}

// FirstImageSource returns the src of the first <img> in content, or "".
// Gallery boards use it as the thumbnail.
func FirstImageSource(content string) string {
	nodes, err := parseFragment(content)
	if err != nil {
		return ""
	}
	for _, node := range nodes {
		if src := firstImage(node); src != "" {
			return src
		}
	}
	return ""
}

func firstImage(node *html.Node) string {
	if node.Type == html.ElementNode && node.DataAtom == atom.Img {
		for _, attr := range node.Attr {
			if attr.Key == "src" && attr.Val != "" {
				return attr.Val
			}
		}
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if src := firstImage(c); src != "" {
			return src
		}
	}
	return ""
}

func isRelativeSource(src string) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}
	return !strings.HasPrefix(src, "http") && !strings.HasPrefix(src, "/")
}

// parseFragment parses content in a <body> context. Content that carries its
// own <html>, <head> or <body> element is parsed as a whole document so those
// wrappers survive serialization.
func parseFragment(fragment string) ([]*html.Node, error) {
	if hasDocumentWrapper(fragment) {
		doc, err := html.Parse(strings.NewReader(fragment))
		if err != nil {
			return nil, err
		}
		return []*html.Node{doc}, nil
	}

	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	return html.ParseFragment(strings.NewReader(fragment), body)
}

func hasDocumentWrapper(fragment string) bool {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html, atom.Head, atom.Body:
				return true
			}
		}
	}
}
