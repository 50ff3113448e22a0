package model

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"recipes":[]}`,
			want: `{"recipes":[]}`,
		},
		{
			name: "leading and trailing commentary",
			raw:  "Sure, here you go:\n```json\n{\"a\":1}\n```\nHope that helps!",
			want: `{"a":1}`,
		},
		{
			name: "nested objects",
			raw:  `prefix {"a":{"b":{"c":1}}} suffix`,
			want: `{"a":{"b":{"c":1}}}`,
		},
		{
			name: "braces inside strings are ignored",
			raw:  `{"text":"a } b { c","n":2}`,
			want: `{"text":"a } b { c","n":2}`,
		},
		{
			name: "escaped quotes inside strings",
			raw:  `{"text":"she said \"}\"","n":1}`,
			want: `{"text":"she said \"}\"","n":1}`,
		},
		{
			name: "first object wins",
			raw:  `{"first":1} {"second":2}`,
			want: `{"first":1}`,
		},
		{
			name:    "no object at all",
			raw:     "I could not generate recipes today.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			raw:     `{"a": [1, 2`,
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSON) {
					t.Errorf("error = %v, want ErrNoJSON", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
