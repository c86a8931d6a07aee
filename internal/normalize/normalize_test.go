package normalize

import "testing"

func TestKey_FoldsDiacritics(t *testing.T) {
	if Key("Müller") != Key("Muller") {
		t.Errorf("Key(Müller)=%q, Key(Muller)=%q", Key("Müller"), Key("Muller"))
	}
	if got := Key("Kylian Mbappé"); got != "kylian mbappe" {
		t.Errorf("Key(Kylian Mbappé) = %q", got)
	}
	if got := Key("Ødegaard"); got != "ødegaard" {
		t.Errorf("base letters without marks must survive, got %q", got)
	}
}

func TestKey_KeepsPunctuationAndDigits(t *testing.T) {
	if got := Key("Nott'ham Forest-2 FC."); got != "nott'ham forest-2 fc." {
		t.Errorf("got %q", got)
	}
}

func TestKey_Idempotent(t *testing.T) {
	inputs := []string{"", "Arsenal", "Jérôme Boateng", "ÇAĞLAR SÖYÜNCÜ", "Son Heung-min", "São Paulo", "Ångström"}
	for _, in := range inputs {
		once := Key(in)
		if twice := Key(once); twice != once {
			t.Errorf("Key not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestKey_Empty(t *testing.T) {
	if Key("") != "" {
		t.Error("empty input must stay empty")
	}
}
