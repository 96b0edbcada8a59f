package keyword

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "punctuation and case",
			text: "Comfortable, noise-cancelling travel Headphones!",
			want: []string{"cancelling", "comfortable", "headphones", "noise", "travel"},
		},
		{
			name: "short words dropped",
			text: "a big red car for me",
			want: []string{},
		},
		{
			name: "exactly four letters kept",
			text: "cozy wool",
			want: []string{"cozy", "wool"},
		},
		{
			name: "duplicates removed",
			text: "Quiet quiet QUIET blender",
			want: []string{"blender", "quiet"},
		},
		{
			name: "unicode letters",
			text: "Très légère écharpe",
			want: []string{"légère", "très", "écharpe"},
		},
		{
			name: "digits count as word characters",
			text: "usb-c 1080p webcam",
			want: []string{"1080p", "webcam"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
