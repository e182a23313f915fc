package extract

import (
	"strings"
	"testing"
)

func TestVisibleText_StripsScripts(t *testing.T) {
	markup := `<html><head><style>body{color:red}</style></head>
	<body>
		<script>var hidden = "secret";</script>
		<h1>Detached house</h1>
		<p>Plot area: 2,640 m²</p>
	</body></html>`

	text := VisibleText(markup)
	if !strings.Contains(text, "Plot area: 2,640 m²") {
		t.Fatalf("expected visible text to keep the listing line, got %q", text)
	}
	if strings.Contains(text, "secret") || strings.Contains(text, "color:red") {
		t.Fatalf("script/style content leaked into text: %q", text)
	}
}

func TestVisibleText_FeedsExtractor(t *testing.T) {
	markup := `<html><body><ul><li>Εμβαδόν οικοπέδου: 500</li><li>€ 350,000</li></ul></body></html>`

	e := newTestExtractor(t)
	fields := e.Fields(VisibleText(markup))
	if fields.LandM2 == nil || *fields.LandM2 != 500 {
		t.Fatalf("expected land 500 from derived text, got %v", fields.LandM2)
	}
	if fields.PriceEUR == nil || *fields.PriceEUR != 350000 {
		t.Fatalf("expected price 350000 from derived text, got %v", fields.PriceEUR)
	}
}

func TestVisibleText_NoBody(t *testing.T) {
	if got := VisibleText("just plain text"); !strings.Contains(got, "just plain text") {
		t.Fatalf("expected passthrough for bodyless markup, got %q", got)
	}
}
