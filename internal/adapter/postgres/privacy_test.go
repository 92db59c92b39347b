package postgres

import (
	"testing"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
)

func TestDecodeVisibleFields(t *testing.T) {
	defaults := models.VisibleFields{Name: true, Photo: true, Bio: true, Program: true}

	tests := []struct {
		name    string
		raw     string
		want    models.VisibleFields
		wantErr bool
	}{
		{name: "empty", raw: "", want: defaults},
		{name: "null", raw: "null", want: defaults},
		{
			name: "full object",
			raw:  `{"name":false,"photo":false,"bio":false,"program":false,"courses":true,"contact":true}`,
			want: models.VisibleFields{Courses: true, Contact: true},
		},
		{
			name: "partial object keeps defaults",
			raw:  `{"bio":false,"contact":true}`,
			want: models.VisibleFields{Name: true, Photo: true, Program: true, Contact: true},
		},
		{
			name: "object encoded as a string",
			raw:  `"{\"photo\":false}"`,
			want: models.VisibleFields{Name: true, Bio: true, Program: true},
		},
		{name: "garbage", raw: `[1,2`, want: defaults, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeVisibleFields([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
