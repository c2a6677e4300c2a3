package i18n

import (
	"slices"
	"testing"
	"testing/fstest"
)

func TestNewEmbeddedManager(t *testing.T) {
	manager, err := NewEmbeddedManager("es-MX")
	if err != nil {
		t.Fatalf("NewEmbeddedManager() unexpected error: %v", err)
	}
	if manager.DefaultLanguage() != LangES {
		t.Fatalf("expected es default, got %q", manager.DefaultLanguage())
	}
	if got := manager.SupportedLanguages(); !slices.Equal(got, []string{LangEN, LangES}) {
		t.Fatalf("unexpected supported languages %v", got)
	}
	if got := manager.Translate("en", "nav.logout"); got != "Sign out" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := manager.Translate("es", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo for unknown key, got %q", got)
	}
	if got := manager.Translatef("en", "dashboard.welcome", "Cora"); got != "Welcome, Cora" {
		t.Fatalf("unexpected formatted translation %q", got)
	}
}

func TestNewManagerFallsBackToEnglish(t *testing.T) {
	locales := fstest.MapFS{
		"en.json":   {Data: []byte(`{"greeting": "Hello", "farewell": "Bye"}`)},
		"es.json":   {Data: []byte(`{"greeting": "Hola", "farewell": ""}`)},
		"notes.txt": {Data: []byte("ignored")},
	}

	manager, err := NewManager("fr", locales)
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}
	if manager.DefaultLanguage() != LangEN {
		t.Fatalf("expected unsupported default to fall back to en, got %q", manager.DefaultLanguage())
	}

	messages := manager.Messages("es")
	if messages["greeting"] != "Hola" || messages["farewell"] != "Bye" {
		t.Fatalf("unexpected merged messages %v", messages)
	}
}

func TestNewManagerRequiresEnglish(t *testing.T) {
	locales := fstest.MapFS{"es.json": {Data: []byte(`{"greeting": "Hola"}`)}}
	if _, err := NewManager("es", locales); err == nil {
		t.Fatal("expected missing en locale to fail")
	}
	if _, err := NewManager("en", fstest.MapFS{"en.json": {Data: []byte(`{}`)}}); err == nil {
		t.Fatal("expected empty locale to fail")
	}
}

func TestDetectFromAcceptLanguage(t *testing.T) {
	manager, err := NewEmbeddedManager("en")
	if err != nil {
		t.Fatalf("NewEmbeddedManager() unexpected error: %v", err)
	}

	tests := []struct {
		header string
		want   string
	}{
		{header: "es-ES,es;q=0.9,en;q=0.8", want: LangES},
		{header: "fr-FR, en-GB;q=0.7", want: LangEN},
		{header: "de", want: LangEN},
		{header: "", want: LangEN},
	}
	for _, testCase := range tests {
		if got := manager.DetectFromAcceptLanguage(testCase.header); got != testCase.want {
			t.Errorf("DetectFromAcceptLanguage(%q) = %q, want %q", testCase.header, got, testCase.want)
		}
	}
}
