// Package dom hosts the rendered third-party page: its current URL, its document tree,
// and the mutation batches observers receive when either changes.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Batch is one delivery of mutations to an observer.
type Batch struct {
	Records int    // Number of structural mutations in the batch.
	URL     string // Page URL at delivery time.
}

// Page is the host document. All reads and writes of the tree go through Do, which
// serialises access the way the browser's single UI thread does.
type Page struct {
	mu        sync.Mutex
	url       string
	doc       *goquery.Document
	observers map[int]chan Batch
	nextID    int
}

// NewPage parses r as the document displayed at rawURL.
func NewPage(rawURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Page{
		url:       rawURL,
		doc:       doc,
		observers: make(map[int]chan Batch),
	}, nil
}

// NewPageFromHTML is NewPage over a string.
func NewPageFromHTML(rawURL, markup string) (*Page, error) {
	return NewPage(rawURL, strings.NewReader(markup))
}

// URL returns the current page URL.
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Tx is the view of the page handed to Do callbacks.
type Tx struct {
	page      *Page
	mutations int
}

// Doc returns the live document.
func (tx *Tx) Doc() *goquery.Document {
	return tx.page.doc
}

// URL returns the page URL.
func (tx *Tx) URL() string {
	return tx.page.url
}

// Exists reports whether an element with the given id is in the document.
func (tx *Tx) Exists(id string) bool {
	return tx.ByID(id).Length() > 0
}

// ByID returns the element with the given id, or an empty selection.
func (tx *Tx) ByID(id string) *goquery.Selection {
	return tx.page.doc.Find(fmt.Sprintf(`[id=%q]`, id)).First()
}

// Append adds node as the last child of the first element of container.
func (tx *Tx) Append(container *goquery.Selection, node *html.Node) {
	container.First().AppendNodes(node)
	tx.mutations++
}

// Mutate runs fn on sel and records it as one mutation when sel is not empty.
func (tx *Tx) Mutate(sel *goquery.Selection, fn func(*goquery.Selection)) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	fn(sel)
	tx.mutations++
	return true
}

// Do runs fn with exclusive access to the document. Mutations made through the Tx are
// delivered to observers as one batch after fn returns.
func (p *Page) Do(fn func(tx *Tx)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx := &Tx{page: p}
	fn(tx)
	if tx.mutations > 0 {
		p.notifyLocked(tx.mutations)
	}
}

// Navigate replaces URL and document together, like a client-side route change that
// re-renders the body.
func (p *Page) Navigate(rawURL string, r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = rawURL
	p.doc = doc
	p.notifyLocked(1)
	return nil
}

// Render replaces the document and keeps the URL.
func (p *Page) Render(r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = doc
	p.notifyLocked(1)
	return nil
}

// PushState changes the URL without touching the document. Observers are not notified;
// the change is noticed on the next mutation, as in the browser.
func (p *Page) PushState(rawURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = rawURL
}

// HTML renders the current document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	for _, n := range p.doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("failed to render page: %w", err)
		}
	}
	return buf.String(), nil
}

// Observe subscribes to mutation batches. Batches coalesce while the observer is busy.
// The returned function unsubscribes and closes the channel.
func (p *Page) Observe() (<-chan Batch, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan Batch, 1)
	p.observers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.observers, id)
			close(ch)
		})
	}
}

func (p *Page) notifyLocked(records int) {
	batch := Batch{Records: records, URL: p.url}
	for _, ch := range p.observers {
		select {
		case ch <- batch:
		default:
		}
	}
}
