package legacy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bulletin-board-api/internal/models"
	"golang.org/x/net/html/charset"
)

// ParseError reports a legacy export that is not well-formed XML.
// The whole file must be abandoned when it is returned.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed legacy export at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errNoRoot        = errors.New("no root element")
	errJunkAfterRoot = errors.New("junk after document element")
	errTextOutside   = errors.New("text outside the document element")
)

type postElement struct {
	Title       string           `xml:"title"`
	NickName    string           `xml:"nick_name"`
	UserID      string           `xml:"user_id"`
	RegDate     string           `xml:"regdate"`
	ReadedCount string           `xml:"readed_count"`
	Content     string           `xml:"content"`
	Comments    []commentElement `xml:"comments>comment"`
}

type commentElement struct {
	NickName string `xml:"nick_name"`
	UserID   string `xml:"user_id"`
	Content  string `xml:"content"`
	RegDate  string `xml:"regdate"`
}

// Reader streams post records out of a legacy board export.
// It is single-pass: once Next returns an error every later call returns it too.
type Reader struct {
	dec        *xml.Decoder
	count      int
	depth      int
	sawRoot    bool
	rootClosed bool
	err        error
}

// NewReader creates a Reader over an export document
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(r)
	// Exports may declare a legacy encoding such as EUC-KR
	dec.CharsetReader = charset.NewReaderLabel
	return &Reader{dec: dec}
}

// Next returns the next <post> element found at any depth, io.EOF when the
// document is exhausted, or a *ParseError when it is malformed.
func (r *Reader) Next() (*models.LegacyPostRecord, error) {
	if r.err != nil {
		return nil, r.err
	}

	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if !r.sawRoot {
				return nil, r.fail(errNoRoot)
			}
			if r.depth > 0 {
				return nil, r.fail(io.ErrUnexpectedEOF)
			}
			r.err = io.EOF
			return nil, io.EOF
		}
		if err != nil {
			return nil, r.fail(err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			if r.depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				if r.rootClosed {
					return nil, r.fail(errJunkAfterRoot)
				}
				return nil, r.fail(errTextOutside)
			}
		case xml.EndElement:
			r.leave()
		case xml.StartElement:
			if r.rootClosed {
				return nil, r.fail(errJunkAfterRoot)
			}
			r.sawRoot = true
			r.depth++
			if t.Name.Local != "post" {
				continue
			}

			var el postElement
			if err := r.dec.DecodeElement(&el, &t); err != nil {
				return nil, r.fail(err)
			}
			// DecodeElement consumed the matching end tag
			r.leave()
			r.count++
			return el.record(r.count), nil
		}
	}
}

func (r *Reader) leave() {
	r.depth--
	if r.depth == 0 {
		r.rootClosed = true
	}
}

// Count returns how many posts have been read so far
func (r *Reader) Count() int {
	return r.count
}

func (r *Reader) fail(err error) error {
	r.err = &ParseError{Offset: r.dec.InputOffset(), Err: err}
	return r.err
}

func (el *postElement) record(ordinal int) *models.LegacyPostRecord {
	rec := &models.LegacyPostRecord{
		Title:     el.Title,
		NickName:  el.NickName,
		UserID:    el.UserID,
		RegDate:   el.RegDate,
		ReadCount: parseReadCount(el.ReadedCount),
		Content:   el.Content,
		Ordinal:   ordinal,
	}
	for _, c := range el.Comments {
		rec.Comments = append(rec.Comments, models.LegacyCommentRecord{
			NickName: c.NickName,
			UserID:   c.UserID,
			Content:  c.Content,
			RegDate:  c.RegDate,
		})
	}
	return rec
}

// parseReadCount decodes readed_count, defaulting to 0 when it is missing,
// corrupt or not a number. Negative counts are kept as written.
func parseReadCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(Decode(raw)))
	if err != nil {
		return 0
	}
	return n
}
