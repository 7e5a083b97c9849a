package legacy

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is reported when a field decodes to bytes that are not text
var ErrInvalidUTF8 = errors.New("decoded bytes are not valid UTF-8")

// Field is the outcome of decoding one export field.
// Recovered is set when the raw value was corrupt and Value fell back to "".
type Field struct {
	Value     string
	Recovered bool
	Err       error
}

// Trimmed returns the decoded value without surrounding whitespace
func (f Field) Trimmed() string {
	return strings.TrimSpace(f.Value)
}

// DecodeField reverses the base64 encoding the legacy board applied to every
// text field. Corrupt input never fails the caller: it yields an empty,
// recovered Field carrying the reason.
func DecodeField(raw string) Field {
	// Exports wrap long payloads across lines
	compact := strings.Join(strings.Fields(raw), "")
	if compact == "" {
		return Field{}
	}

	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return Field{Recovered: true, Err: fmt.Errorf("invalid base64: %w", err)}
	}
	if !utf8.Valid(decoded) {
		return Field{Recovered: true, Err: ErrInvalidUTF8}
	}

	return Field{Value: string(decoded)}
}

// Decode is DecodeField without the outcome details
func Decode(raw string) string {
	return DecodeField(raw).Value
}

// DecodeAuthor decodes the nickname, falling back to the user id when the
// nickname is empty or corrupt.
func DecodeAuthor(nickName, userID string) Field {
	nick := DecodeField(nickName)
	if nick.Value != "" {
		return nick
	}

	user := DecodeField(userID)
	if user.Value == "" && nick.Recovered {
		return nick
	}
	return user
}

// DecodeContent decodes a post body and undoes the entity double-encoding
func DecodeContent(raw string) Field {
	field := DecodeField(raw)
	field.Value = LegacyDoubleUnescape(field.Value)
	return field
}

// LegacyDoubleUnescape reverses HTML entity encoding twice. The legacy board
// escaped post bodies once on save and once more on export, so a single
// pass leaves sequences like "&lt;img" in the content.
func LegacyDoubleUnescape(s string) string {
	return html.UnescapeString(html.UnescapeString(s))
}
