package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"sizekit/css"
	"sizekit/units"
)

const sample = `
/* generated */
:root {
  --font-size-base: 1rem;
  --spacing-4: 1rem;
  color: red;
  --line-height-normal: 1.5;
}

@font-face {
  font-family: "Test";
  src: url(test.woff);
}

.compact, .dense {
  --spacing-4: 0.75rem;
}

@media (min-width: 768px) {
  :root {
    --font-size-base: 1.125rem;
  }
}

:root {
  --font-size-base: 18px;
}
`

func TestReader_CustomProperties(t *testing.T) {
	sheet := css.NewReader(zap.NewNop()).Read([]byte(sample), "sample")

	if len(sheet.Properties) != 6 {
		for _, p := range sheet.Properties {
			t.Logf("%+v", p)
		}
		t.Fatalf("expected 6 custom properties, got %d", len(sheet.Properties))
	}

	first := sheet.Properties[0]
	if first.Name != "--font-size-base" || first.Value != "1rem" || first.Selector != ":root" || first.Media != "" {
		t.Errorf("unexpected first property %+v", first)
	}

	media := sheet.Properties[4]
	if !strings.Contains(media.Media, "min-width") {
		t.Errorf("expected media query on %+v", media)
	}
	if media.Value != "1.125rem" {
		t.Errorf("media value = %q", media.Value)
	}
}

func TestReader_LookupLastWins(t *testing.T) {
	sheet := css.NewReader(nil).Read([]byte(sample))

	p, ok := sheet.Lookup("--font-size-base")
	if !ok {
		t.Fatal("expected --font-size-base")
	}
	if p.Value != "18px" {
		t.Errorf("Lookup value = %q, want 18px", p.Value)
	}
	v, ok := p.Size()
	if !ok || v != units.Px(18) {
		t.Errorf("Size() = %v, %v", v, ok)
	}

	if _, ok := sheet.Lookup("--missing"); ok {
		t.Error("unexpected property found")
	}
}

func TestReader_ValuesBySelector(t *testing.T) {
	sheet := css.NewReader(nil).Read([]byte(sample))

	root := sheet.Values(":root")
	if root["--font-size-base"] != "18px" {
		t.Errorf(":root --font-size-base = %q", root["--font-size-base"])
	}
	if root["--line-height-normal"] != "1.5" {
		t.Errorf(":root --line-height-normal = %q", root["--line-height-normal"])
	}
	if _, ok := root["color"]; ok {
		t.Error("regular declarations must be skipped")
	}

	dense := sheet.Values(".dense")
	if dense["--spacing-4"] != "0.75rem" {
		t.Errorf(".dense --spacing-4 = %q", dense["--spacing-4"])
	}
}

func TestReader_ComplexValues(t *testing.T) {
	in := `:root { --fluid: clamp(1rem, calc(0.8000rem + 1.0000vw), 2rem); --empty-ish: 0; }`
	sheet := css.NewReader(nil).Read([]byte(in))

	p, ok := sheet.Lookup("--fluid")
	if !ok {
		t.Fatal("expected --fluid")
	}
	if !strings.HasPrefix(p.Value, "clamp(") || !strings.HasSuffix(p.Value, ")") {
		t.Errorf("fluid value = %q", p.Value)
	}
	if _, ok := p.Size(); ok {
		t.Error("clamp() is not a plain size")
	}

	zero, _ := sheet.Lookup("--empty-ish")
	if v, ok := zero.Size(); !ok || !v.IsZero() {
		t.Errorf("zero Size() = %v, %v", v, ok)
	}
}

func TestReader_ReadFromAndEmpty(t *testing.T) {
	sheet, err := css.NewReader(nil).ReadFrom(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadFrom error = %v", err)
	}
	if len(sheet.Properties) != 0 || len(sheet.Warnings) != 0 {
		t.Errorf("expected empty sheet, got %+v", sheet)
	}
}
