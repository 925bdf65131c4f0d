package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// The fallback parser is a deliberately lax encoding/xml pass used when the
// primary parser rejects a feed. Real-world feeds carry undeclared entities,
// legacy charsets and missing namespace declarations, so the decoder runs in
// non-strict mode and element matching ignores namespaces entirely.

// textNode captures element text whether it arrives as plain chardata or
// wrapped in a CDATA section.
type textNode struct {
	Value string `xml:",chardata"`
}

func (t textNode) Text() string {
	return strings.TrimSpace(t.Value)
}

// rssDocument covers RSS 2.0 and, via the root-level item list, RDF (RSS 1.0)
// documents where items sit beside the channel instead of inside it.
type rssDocument struct {
	Channel rssChannel `xml:"channel"`
	Items   []rssItem  `xml:"item"`
}

type rssChannel struct {
	Title       textNode      `xml:"title"`
	Description textNode      `xml:"description"`
	Link        textNode      `xml:"link"`
	Image       *rssImage     `xml:"image"`
	Categories  []rssCategory `xml:"category"`
	Items       []rssItem     `xml:"item"`
}

type rssImage struct {
	URL   textNode `xml:"url"`
	Title textNode `xml:"title"`
	Link  textNode `xml:"link"`
}

type rssCategory struct {
	Domain string `xml:"domain,attr"`
	Value  string `xml:",chardata"`
}

func (c rssCategory) Text() string {
	return strings.TrimSpace(c.Value)
}

// rssItem matches both plain RSS 2.0 elements and the common extension
// elements (dc:creator, dc:date, content:encoded) by local name.
type rssItem struct {
	Title       textNode      `xml:"title"`
	Link        textNode      `xml:"link"`
	GUID        textNode      `xml:"guid"`
	Description textNode      `xml:"description"`
	Encoded     textNode      `xml:"encoded"`
	Content     textNode      `xml:"content"`
	PubDate     textNode      `xml:"pubDate"`
	Date        textNode      `xml:"date"`
	Author      textNode      `xml:"author"`
	Creator     textNode      `xml:"creator"`
	Categories  []rssCategory `xml:"category"`
}

type atomDocument struct {
	Title    textNode    `xml:"title"`
	Subtitle textNode    `xml:"subtitle"`
	Logo     textNode    `xml:"logo"`
	Icon     textNode    `xml:"icon"`
	Links    []atomLink  `xml:"link"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Title      textNode       `xml:"title"`
	ID         textNode       `xml:"id"`
	Published  textNode       `xml:"published"`
	Updated    textNode       `xml:"updated"`
	Content    textNode       `xml:"content"`
	Summary    textNode       `xml:"summary"`
	Links      []atomLink     `xml:"link"`
	Authors    []atomPerson   `xml:"author"`
	Categories []atomCategory `xml:"category"`
}

type atomPerson struct {
	Name textNode `xml:"name"`
}

type atomCategory struct {
	Term  string `xml:"term,attr"`
	Value string `xml:",chardata"`
}

// resolveLink picks the best href from a set of Atom links: a human-facing
// alternate first, then the feed's self link, then whatever has an href.
func resolveLink(links []atomLink) string {
	for _, l := range links {
		if l.Href == "" {
			continue
		}
		if (l.Rel == "alternate" || l.Rel == "") && (l.Type == "" || l.Type == "text/html") {
			return l.Href
		}
	}
	for _, l := range links {
		if l.Rel == "self" && l.Href != "" {
			return l.Href
		}
	}
	for _, l := range links {
		if l.Href != "" {
			return l.Href
		}
	}
	return ""
}

func newLaxDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	d.Entity = xml.HTMLEntity
	d.Strict = false
	return d
}

// parseFallback decodes raw feed bytes with the lax decoder, dispatching on
// the document's root element.
func parseFallback(data []byte, feedURL string) (*Feed, error) {
	d := newLaxDecoder(bytes.NewReader(data))

	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to locate feed root element: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "rss", "RDF":
			var doc rssDocument
			if err := d.DecodeElement(&doc, &start); err != nil {
				return nil, fmt.Errorf("failed to decode RSS document: %w", err)
			}
			return fromRSSDocument(&doc, feedURL)
		case "feed":
			var doc atomDocument
			if err := d.DecodeElement(&doc, &start); err != nil {
				return nil, fmt.Errorf("failed to decode Atom document: %w", err)
			}
			return fromAtomDocument(&doc, feedURL)
		default:
			return nil, fmt.Errorf("unsupported feed root element %q", start.Name.Local)
		}
	}
}

func fromRSSDocument(doc *rssDocument, feedURL string) (*Feed, error) {
	ch := doc.Channel
	items := append(ch.Items, doc.Items...)
	if ch.Title.Text() == "" && len(items) == 0 {
		return nil, fmt.Errorf("document has no recognizable channel content")
	}

	f := &Feed{
		Title:       ch.Title.Text(),
		Description: ch.Description.Text(),
		Link:        ch.Link.Text(),
		FeedURL:     feedURL,
	}

	// RSS only advertises a publisher when the channel carries an image block.
	if ch.Image != nil {
		f.Publisher = &Publisher{
			Name: ch.Title.Text(),
			URL:  ch.Link.Text(),
			Logo: ch.Image.URL.Text(),
		}
	}

	for _, c := range ch.Categories {
		if name := cleanName(c.Text()); name != "" {
			f.Categories = append(f.Categories, name)
		}
	}

	for _, raw := range items {
		f.Items = append(f.Items, normalizeRSSItem(raw))
	}

	return f, nil
}

func fromAtomDocument(doc *atomDocument, feedURL string) (*Feed, error) {
	if doc.Title.Text() == "" && len(doc.Entries) == 0 {
		return nil, fmt.Errorf("document has no recognizable feed content")
	}

	logo := doc.Logo.Text()
	if logo == "" {
		logo = doc.Icon.Text()
	}

	f := &Feed{
		Title:       doc.Title.Text(),
		Description: doc.Subtitle.Text(),
		Link:        resolveLink(doc.Links),
		FeedURL:     feedURL,
		Publisher: &Publisher{
			Name: doc.Title.Text(),
			URL:  resolveLink(doc.Links),
			Logo: logo,
		},
	}

	for _, raw := range doc.Entries {
		f.Items = append(f.Items, normalizeAtomEntry(raw))
	}

	return f, nil
}
