package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifySpam(t *testing.T) {
	cases := []struct {
		name     string
		honeypot string
		fields   map[string]string
		want     bool
	}{
		{
			name:     "HoneypotFilled",
			honeypot: "_website",
			fields:   map[string]string{"name": "Bot", "_website": "http://spam.example"},
			want:     true,
		},
		{
			name:     "HoneypotAbsent",
			honeypot: "_website",
			fields:   map[string]string{"name": "John"},
			want:     false,
		},
		{
			name:     "HoneypotEmpty",
			honeypot: "_website",
			fields:   map[string]string{"name": "John", "_website": ""},
			want:     false,
		},
		{
			name:     "HoneypotWhitespaceOnly",
			honeypot: "_website",
			fields:   map[string]string{"_website": "   \t "},
			want:     false,
		},
		{
			name:     "CustomHoneypotField",
			honeypot: "fax_number",
			fields:   map[string]string{"fax_number": "555", "_website": ""},
			want:     true,
		},
		{
			name:     "EmptyHoneypotNameFallsBackToDefault",
			honeypot: "",
			fields:   map[string]string{"_website": "x"},
			want:     true,
		},
		{
			name:     "NilFields",
			honeypot: "_website",
			fields:   nil,
			want:     false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifySpam(tc.honeypot, tc.fields))
		})
	}
}
