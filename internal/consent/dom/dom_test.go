package dom

import (
	"strings"
	"testing"
)

func TestParseDocumentCollectsScripts(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head>
  <script src="https://googletagmanager.com/gtm.js"></script>
  <script type="module" src="/app.js" async></script>
</head>
<body>
  <p>hello</p>
  <script>var inline = true;</script>
</body>
</html>`

	doc, err := ParseDocument("example.com", strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	scripts := doc.Scripts()
	if len(scripts) != 3 {
		t.Fatalf("expected 3 script elements, got %d", len(scripts))
	}
	if scripts[0].Src() != "https://googletagmanager.com/gtm.js" {
		t.Errorf("unexpected first src: %q", scripts[0].Src())
	}
	if scripts[1].Type() != "module" || !scripts[1].Async {
		t.Errorf("second script lost attributes: type=%q async=%v", scripts[1].Type(), scripts[1].Async)
	}
	if scripts[2].Src() != "" {
		t.Errorf("inline script should have no src, got %q", scripts[2].Src())
	}
	if doc.Hostname() != "example.com" {
		t.Errorf("unexpected hostname %q", doc.Hostname())
	}
}

func TestWrapAssignSrcIntercepts(t *testing.T) {
	doc := NewDocument("example.com")

	var seen []string
	installed := doc.WrapAssignSrc("test", func(next AssignSrcFunc) AssignSrcFunc {
		return func(e *Element, src string) {
			seen = append(seen, src)
			if strings.Contains(src, "blocked") {
				return
			}
			next(e, src)
		}
	})
	if !installed {
		t.Fatal("expected first install to succeed")
	}
	if doc.WrapAssignSrc("test", func(next AssignSrcFunc) AssignSrcFunc { return next }) {
		t.Error("expected duplicate install to be rejected")
	}

	s := doc.CreateElement("script")
	s.SetSrc("https://blocked.example/t.js")
	if s.Src() != "" {
		t.Errorf("expected intercepted src to stay empty, got %q", s.Src())
	}

	s.SetAttribute("src", "https://ok.example/app.js")
	if s.Src() != "https://ok.example/app.js" {
		t.Errorf("expected attribute write to pass through, got %q", s.Src())
	}

	if len(seen) != 2 {
		t.Errorf("expected hook to see both writes, saw %d", len(seen))
	}
}

func TestAppendToHeadOrdersFirst(t *testing.T) {
	doc := NewDocument("example.com")
	body := doc.CreateElement("script")
	doc.Append(body)
	head := doc.CreateElement("script")
	doc.AppendToHead(head)

	els := doc.Elements()
	if len(els) != 2 || els[0] != head {
		t.Fatal("expected head-inserted element first")
	}

	doc.Remove(body)
	if len(doc.Elements()) != 1 {
		t.Error("expected removal to detach the element")
	}
	doc.Remove(body) // no-op
}
