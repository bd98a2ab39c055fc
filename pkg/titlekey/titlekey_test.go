package titlekey

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Yönetmelik X", "yonetmelik x"},
		{"Özel  Yönetmelik!", "ozel yonetmelik"},
		{"  ÇEVRE ŞEHİRCİLİK  ", "cevre sehircilik"},
		{"5651 Sayılı Kanun", "5651 sayili kanun"},
		{"İnsan Hakları (Genelge)", "insan haklari genelge"},
		{"ığüşöç IĞÜŞÖÇ İ", "igusoc igusoc i"},
	}

	for _, c := range cases {
		got := Normalize(c.in)
		if got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Özel  Yönetmelik!",
		"İSTANBUL Büyükşehir Belediyesi - Yönerge",
		"Tebliğ (Sıra No: 123)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeCrossSourceEquality(t *testing.T) {
	if Normalize("Özel  Yönetmelik!") != Normalize("ozel yonetmelik") {
		t.Fatalf("expected punctuation/diacritic variants to normalize equal")
	}
	if Normalize("YÖNETMELİK x") != Normalize("yönetmelik X") {
		t.Fatalf("expected case variants to normalize equal")
	}
}
