package export

import (
	"reflect"
	"testing"
)

func TestSplitMarkup(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "plain text",
			text: "Define slope.",
			want: []Segment{{Text: "Define slope."}},
		},
		{
			name: "single math segment",
			text: "Solve $x^2=4$ for x.",
			want: []Segment{
				{Text: "Solve "},
				{Text: "x^2=4", Math: true},
				{Text: " for x."},
			},
		},
		{
			name: "leading math",
			text: "$a+b$ is a sum",
			want: []Segment{
				{Text: "a+b", Math: true},
				{Text: " is a sum"},
			},
		},
		{
			name: "two math segments",
			text: "$a$ and $b$",
			want: []Segment{
				{Text: "a", Math: true},
				{Text: " and "},
				{Text: "b", Math: true},
			},
		},
		{
			name: "unmatched delimiter renders literally",
			text: "price is $5",
			want: []Segment{{Text: "price is $5"}},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitMarkup(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitMarkup(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
