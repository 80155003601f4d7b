package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const songPage = `<html><head><title>t</title></head><body><div class="soundActions"></div></body></html>`

func newButton(id string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
}

func TestPage_AppendNotifiesObservers(t *testing.T) {
	page, err := NewPageFromHTML("https://soundcloud.com/a/b", songPage)
	if err != nil {
		t.Fatalf("NewPageFromHTML failed: %v", err)
	}

	batches, cancel := page.Observe()
	defer cancel()

	page.Do(func(tx *Tx) {
		if tx.Exists("btn") {
			t.Error("Button should not exist yet")
		}
		tx.Append(tx.Doc().Find(".soundActions"), newButton("btn"))
		if !tx.Exists("btn") {
			t.Error("Button should exist after append")
		}
	})

	select {
	case b := <-batches:
		if b.Records != 1 {
			t.Errorf("Batch records = %d, expected 1", b.Records)
		}
		if b.URL != "https://soundcloud.com/a/b" {
			t.Errorf("Batch URL = %q", b.URL)
		}
	default:
		t.Fatal("Expected a mutation batch after append")
	}
}

func TestPage_ReadOnlyDoDoesNotNotify(t *testing.T) {
	page, _ := NewPageFromHTML("https://soundcloud.com/a", songPage)
	batches, cancel := page.Observe()
	defer cancel()

	page.Do(func(tx *Tx) {
		_ = tx.Doc().Find("div").Length()
	})

	select {
	case <-batches:
		t.Error("Read-only Do should not deliver a batch")
	default:
	}
}

func TestPage_NavigateReplacesDocumentAndURL(t *testing.T) {
	page, _ := NewPageFromHTML("https://soundcloud.com/a", songPage)
	batches, cancel := page.Observe()
	defer cancel()

	err := page.Navigate("https://soundcloud.com/a/sets/x", strings.NewReader(`<ul><li class="trackList__item"></li></ul>`))
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	if page.URL() != "https://soundcloud.com/a/sets/x" {
		t.Errorf("URL() = %q", page.URL())
	}

	b := <-batches
	if b.URL != "https://soundcloud.com/a/sets/x" {
		t.Errorf("Batch URL = %q", b.URL)
	}

	page.Do(func(tx *Tx) {
		if tx.Doc().Find(".soundActions").Length() != 0 {
			t.Error("Old document content should be gone after navigation")
		}
	})
}

func TestPage_PushStateIsSilent(t *testing.T) {
	page, _ := NewPageFromHTML("https://soundcloud.com/a", songPage)
	batches, cancel := page.Observe()
	defer cancel()

	page.PushState("https://soundcloud.com/b")

	select {
	case <-batches:
		t.Error("PushState should not deliver a batch")
	default:
	}
	if page.URL() != "https://soundcloud.com/b" {
		t.Errorf("URL() = %q", page.URL())
	}
}

func TestPage_BatchesCoalesce(t *testing.T) {
	page, _ := NewPageFromHTML("https://soundcloud.com/a", songPage)
	batches, cancel := page.Observe()
	defer cancel()

	for i := 0; i < 5; i++ {
		_ = page.Render(strings.NewReader(songPage))
	}

	<-batches
	select {
	case <-batches:
		t.Error("Undelivered batches should coalesce into one")
	default:
	}
}

func TestPage_CancelClosesChannel(t *testing.T) {
	page, _ := NewPageFromHTML("https://soundcloud.com/a", songPage)
	batches, cancel := page.Observe()
	cancel()
	cancel()

	if _, ok := <-batches; ok {
		t.Error("Channel should be closed after cancel")
	}
}

func TestPage_HTML(t *testing.T) {
	page, _ := NewPageFromHTML("https://soundcloud.com/a", songPage)
	out, err := page.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(out, `class="soundActions"`) {
		t.Errorf("HTML() missing content: %s", out)
	}
}
