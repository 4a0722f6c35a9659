// Package fb2 parses FictionBook 2 documents into canonical book content.
//
// The parser is a pure transformation of bytes into a ParsedBook: metadata
// from the description block, body sections as the canonical pagination
// unit, and an optional embedded cover image. Unknown tags are skipped and
// trailing garbage after the root element is ignored; only a document that
// cannot be read at all is rejected.
package fb2

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrBadDocument indicates the input is not a readable FictionBook
	// document: undecodable bytes, unparseable XML, or a different format
	// altogether. Permanent, not retryable.
	ErrBadDocument = errors.New("fb2: malformed document")

	// ErrNoContent indicates a structurally valid document whose body
	// holds no readable text. Such a book is unusable and must not be
	// committed. Permanent, not retryable.
	ErrNoContent = errors.New("fb2: no readable content")
)

// Fallback metadata used when the description block omits a field.
const (
	DefaultTitle  = "Untitled"
	DefaultAuthor = "Unknown"
)

// ParsedBook is the canonical result of parsing one document. Immutable
// after creation.
type ParsedBook struct {
	Title    string
	Author   string
	Sections []string // ordered, each non-empty
	Cover    []byte   // nil when the document embeds no cover
}

// Parser parses FictionBook 2 documents. The zero value is ready to use.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse parses raw document bytes using the package-level fallback metadata.
func (p *Parser) Parse(data []byte) (*ParsedBook, error) {
	return p.ParseWithFallback(data, DefaultTitle, DefaultAuthor)
}

// ParseWithFallback parses raw document bytes, substituting the given
// fallbacks for a missing title or author. Missing metadata is never a
// parse failure; a body with zero readable sections is.
func (p *Parser) ParseWithFallback(data []byte, fallbackTitle, fallbackAuthor string) (*ParsedBook, error) {
	text, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	doc, err := scanDocument(text)
	if err != nil {
		return nil, err
	}

	book := &ParsedBook{
		Title:    strings.TrimSpace(doc.description.TitleInfo.BookTitle),
		Author:   doc.description.TitleInfo.authorName(),
		Sections: doc.sections,
	}
	if book.Title == "" {
		book.Title = fallbackTitle
	}
	if book.Author == "" {
		book.Author = fallbackAuthor
	}

	if len(book.Sections) == 0 {
		return nil, ErrNoContent
	}

	book.Cover = doc.coverImage()

	return book, nil
}

// description block structs. Field shapes follow the FB2 schema; everything
// is optional because real-world files omit or mangle most of it.
type description struct {
	TitleInfo titleInfo `xml:"title-info"`
}

type titleInfo struct {
	Genre     []string  `xml:"genre"`
	Authors   []author  `xml:"author"`
	BookTitle string    `xml:"book-title"`
	Lang      string    `xml:"lang"`
	Coverpage coverpage `xml:"coverpage"`
}

type author struct {
	FirstName  string `xml:"first-name"`
	MiddleName string `xml:"middle-name"`
	LastName   string `xml:"last-name"`
	Nickname   string `xml:"nickname"`
}

type coverpage struct {
	Image inlineImage `xml:"image"`
}

type inlineImage struct {
	Href string `xml:"href,attr"`
}

type binary struct {
	ID          string `xml:"id,attr"`
	ContentType string `xml:"content-type,attr"`
	Data        string `xml:",chardata"`
}

// authorName assembles a display name from the first author entry.
func (ti titleInfo) authorName() string {
	if len(ti.Authors) == 0 {
		return ""
	}
	a := ti.Authors[0]
	parts := make([]string, 0, 3)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(a.Nickname)
	}
	return strings.Join(parts, " ")
}

// document is the raw scan result before metadata defaulting.
type document struct {
	description description
	sections    []string
	binaries    []binary
}

// coverImage resolves the coverpage href against the embedded binaries and
// decodes it. A missing or undecodable cover yields nil; absence of a cover
// is not an error.
func (d *document) coverImage() []byte {
	href := strings.TrimSpace(d.description.TitleInfo.Coverpage.Image.Href)
	href = strings.TrimPrefix(href, "#")
	if href == "" {
		return nil
	}

	for _, b := range d.binaries {
		if b.ID != href {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(stripWhitespace(b.Data))
		if err != nil || len(data) == 0 {
			return nil
		}
		return data
	}
	return nil
}

// scanDocument walks the document token stream, collecting the description
// block, the body sections in document order, and the embedded binaries.
func scanDocument(text string) (*document, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = false
	// The bytes were already converted to UTF-8, but the prolog may still
	// declare the original charset.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	doc := &document{}
	sawRoot := false
	bodyCount := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A document that broke down after yielding content is
			// tolerated (trailing garbage); one that never yielded a
			// root element is not a document at all.
			if sawRoot {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			if se.Name.Local != "FictionBook" {
				return nil, fmt.Errorf("%w: root element %q is not a FictionBook", ErrBadDocument, se.Name.Local)
			}
			sawRoot = true
			continue
		}

		switch se.Name.Local {
		case "description":
			// Best effort: a mangled description block costs metadata,
			// not the whole book.
			var desc description
			if err := dec.DecodeElement(&desc, &se); err == nil {
				doc.description = desc
			}
		case "body":
			// The first body carries the readable text; later bodies
			// hold footnotes and comments.
			bodyCount++
			if bodyCount > 1 {
				if err := dec.Skip(); err != nil {
					return doc, nil
				}
				continue
			}
			sections, err := scanBody(dec)
			doc.sections = sections
			if err != nil {
				return doc, nil
			}
		case "binary":
			var b binary
			if err := dec.DecodeElement(&b, &se); err == nil && b.ID != "" {
				doc.binaries = append(doc.binaries, b)
			}
		default:
			if err := dec.Skip(); err != nil {
				return doc, nil
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element", ErrBadDocument)
	}
	return doc, nil
}

// scanBody consumes tokens until the body's end element, turning each
// top-level <section> into one canonical section string.
func scanBody(dec *xml.Decoder) ([]string, error) {
	var sections []string
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			return sections, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "section" && depth == 0 {
				text, err := scanSection(dec)
				if err != nil {
					return sections, err
				}
				if text != "" {
					sections = append(sections, text)
				}
				continue
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				// end of body
				return sections, nil
			}
			depth--
		}
	}
}

// paragraphTags are FB2 elements that terminate a line of inline text.
var paragraphTags = map[string]bool{
	"p":           true,
	"v":           true,
	"subtitle":    true,
	"text-author": true,
}

// scanSection consumes tokens until the section's end element, concatenating
// inline text content. Paragraph-level elements become newline-separated
// lines; nested sections fold into their parent. Unknown tags contribute
// their text and are otherwise ignored.
func scanSection(dec *xml.Decoder) (string, error) {
	var lines []string
	var para strings.Builder
	depth := 0
	inPara := 0

	flush := func() {
		if line := strings.TrimSpace(para.String()); line != "" {
			lines = append(lines, line)
		}
		para.Reset()
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			flush()
			return strings.Join(lines, "\n"), err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if paragraphTags[t.Name.Local] {
				inPara++
			}
		case xml.EndElement:
			if depth == 0 {
				flush()
				return strings.Join(lines, "\n"), nil
			}
			depth--
			if paragraphTags[t.Name.Local] && inPara > 0 {
				inPara--
				if inPara == 0 {
					flush()
				}
			}
		case xml.CharData:
			// Character data outside paragraph-level elements is markup
			// indentation, not book text.
			if inPara > 0 {
				para.Write(t)
			}
		}
	}
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
