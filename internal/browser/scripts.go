package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"scexport/internal/inject"
	"scexport/internal/ui"
)

// bindingName is the function the live page calls to report a button press.
const bindingName = "scexportPress"

// press is the payload the live page sends through the binding.
type press struct {
	ID     string `json:"id"`
	HeldMs int64  `json:"heldMs"`
	Shift  bool   `json:"shift"`
}

func (p press) held() time.Duration {
	return time.Duration(p.HeldMs) * time.Millisecond
}

func parsePress(payload string) (press, error) {
	var p press
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return press{}, fmt.Errorf("failed to decode press: %w", err)
	}
	if p.ID == "" {
		return press{}, fmt.Errorf("press without button id")
	}
	if p.HeldMs < 0 {
		p.HeldMs = 0
	}
	return p, nil
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render node: %w", err)
	}
	return buf.String(), nil
}

// listenerScript records press duration and shift on injected buttons and hands them to
// the binding. Native clicks on the buttons are swallowed.
func listenerScript() string {
	return fmt.Sprintf(`(() => {
  if (window.__scexportListening) return;
  window.__scexportListening = true;
  const attr = %[1]s;
  const target = (e) => e.target && e.target.closest ? e.target.closest("[" + attr + "]") : null;
  let pressed = null;
  document.addEventListener("mousedown", (e) => {
    const btn = target(e);
    if (!btn || e.button !== 0) return;
    pressed = { id: btn.getAttribute(attr), at: performance.now() };
  }, true);
  document.addEventListener("mouseup", (e) => {
    if (!pressed) return;
    const p = pressed;
    pressed = null;
    const btn = target(e);
    if (!btn || btn.getAttribute(attr) !== p.id) return;
    e.preventDefault();
    e.stopPropagation();
    window[%[2]s](JSON.stringify({ id: p.id, heldMs: Math.round(performance.now() - p.at), shift: e.shiftKey }));
  }, true);
  document.addEventListener("click", (e) => {
    if (target(e)) {
      e.preventDefault();
      e.stopPropagation();
    }
  }, true);
})();`, jsString(ui.ButtonAttr), jsString(bindingName))
}

// mountScript inserts markup into the live container of ev unless the element is already
// there. It evaluates to whether the element is on the page afterwards.
func mountScript(ev inject.MountEvent, markup string) string {
	return fmt.Sprintf(`(() => {
  if (document.getElementById(%[1]s)) return true;
  let scope = document;
  const rowSelector = %[2]s;
  if (rowSelector) {
    scope = document.querySelectorAll(rowSelector)[%[3]d];
    if (!scope) return false;
  }
  const container = scope.querySelector(%[4]s);
  if (!container) return false;
  container.insertAdjacentHTML("beforeend", %[5]s);
  return true;
})()`, jsString(ev.ID), jsString(ev.RowSelector), ev.RowIndex, jsString(ev.ContainerSelector), jsString(markup))
}

// buttonScript sets the label text and feedback state of a live button. An empty kind
// clears the feedback state.
func buttonScript(id, text, style string, kind ui.FeedbackKind) string {
	return fmt.Sprintf(`(() => {
  const btn = document.getElementById(%[1]s);
  if (!btn) return false;
  const label = btn.querySelector("." + %[2]s);
  if (label) label.textContent = %[3]s;
  const style = %[4]s;
  const kind = %[5]s;
  if (style) btn.setAttribute("style", style); else btn.removeAttribute("style");
  if (kind) btn.setAttribute(%[6]s, kind); else btn.removeAttribute(%[6]s);
  return true;
})()`, jsString(id), jsString(ui.LabelClass), jsString(text), jsString(style), jsString(string(kind)), jsString(ui.FeedbackAttr))
}

func confirmScript(prompt string) string {
	return fmt.Sprintf("window.confirm(%s)", jsString(prompt))
}
