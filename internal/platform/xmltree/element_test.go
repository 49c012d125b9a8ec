package xmltree

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="utf-8"?>
<ClinicalDocument xmlns="urn:hl7-org:v3" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <templateId root="2.16.840.1.113883.10.20.27.1.1" extension="2017-06-01"/>
  <title>QRDA Report</title>
  <component>
    <section>
      <entry><observation><value xsi:type="REAL" value="0.842"/></observation></entry>
    </section>
  </component>
  <component>
    <section>
      <entry><observation><value xsi:type="INT" value="12"/></observation></entry>
    </section>
  </component>
</ClinicalDocument>`

func TestParse_BuildsTree(t *testing.T) {
	root, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.Local() != "ClinicalDocument" {
		t.Errorf("expected root ClinicalDocument, got %q", root.Local())
	}
	if root.Name.Space != NamespaceHL7 {
		t.Errorf("expected HL7 namespace, got %q", root.Name.Space)
	}
	if root.Parent() != nil {
		t.Error("expected root to have no parent")
	}

	title := root.Child("title")
	if title == nil || title.Text != "QRDA Report" {
		t.Fatalf("expected title text, got %+v", title)
	}

	if got := len(root.ChildrenNamed("component")); got != 2 {
		t.Errorf("expected 2 components, got %d", got)
	}
}

func TestElement_FindFollowsDocumentOrder(t *testing.T) {
	root, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value := root.Find("component/section/entry/observation/value")
	if value == nil {
		t.Fatal("expected value element")
	}
	if v, _ := value.Attr("value"); v != "0.842" {
		t.Errorf("expected first value 0.842, got %q", v)
	}

	all := root.FindAll("component/section/entry/observation/value")
	if len(all) != 2 {
		t.Fatalf("expected 2 values, got %d", len(all))
	}
	if v, _ := all[1].Attr("value"); v != "12" {
		t.Errorf("expected second value 12, got %q", v)
	}

	if root.Find("component/missing") != nil {
		t.Error("expected nil for a missing path")
	}
}

func TestElement_AttrPrefersUnqualified(t *testing.T) {
	root, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value := root.Find("component/section/entry/observation/value")
	typ, ok := value.Attr("type")
	if !ok || typ != "REAL" {
		t.Errorf("expected xsi:type REAL via fallback, got %q (%v)", typ, ok)
	}
	typ, ok = value.AttrNS(NamespaceXSI, "type")
	if !ok || typ != "REAL" {
		t.Errorf("expected namespaced type REAL, got %q", typ)
	}
	if _, ok := value.Attr("nullFlavor"); ok {
		t.Error("expected missing attribute to report false")
	}
}

func TestElement_Path(t *testing.T) {
	root, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := root.FindAll("component/section")
	want := "/ClinicalDocument/component[2]/section[1]"
	if got := all[1].Path(); got != want {
		t.Errorf("expected path %q, got %q", want, got)
	}
}

func TestElement_WalkSkipsSubtree(t *testing.T) {
	root, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	root.Walk(func(e *Element) bool {
		names = append(names, e.Local())
		return e.Local() != "component"
	})

	joined := strings.Join(names, ",")
	if strings.Contains(joined, "section") {
		t.Errorf("expected component subtrees to be skipped, got %s", joined)
	}
	if !strings.HasPrefix(joined, "ClinicalDocument,templateId,title,component") {
		t.Errorf("unexpected walk order: %s", joined)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated tag", `<ClinicalDocument><component>`},
		{"mismatched end tag", `<a><b></a></b>`},
		{"not xml", `this is not valid xml`},
		{"two roots", `<a/><b/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("expected error, got tree rooted at %q", root.Local())
			}
			if root != nil {
				t.Error("expected no tree on error")
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := ParseBytes([]byte("   "))
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}
