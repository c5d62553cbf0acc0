package detector

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vendó 5000 USDT", "vendo 5000 usdt"},
		{"  TRANSFERÉNCIA  ", "transferencia"},
		{"Pura Vida ¡ÑOÑO!", "pura vida ¡nono!"},
		{"", ""},
		{"ya normalizado", "ya normalizado"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
