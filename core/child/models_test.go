package child

import (
	"reflect"
	"testing"
)

func TestParsePicturePassword(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "oso", want: []string{"oso"}},
		{in: " ajolote , oso,perro ,borrego ", want: []string{"ajolote", "oso", "perro", "borrego"}},
		{in: "oso,,perro,", want: []string{"oso", "perro"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParsePicturePassword(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePicturePassword(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestChild_PicturePassword(t *testing.T) {
	var c Child
	if err := c.SetPicturePassword("ajolote, oso, perro, borrego"); err != nil {
		t.Fatalf("SetPicturePassword() error = %v", err)
	}
	if err := c.CheckPicturePassword("ajolote,oso,perro,borrego"); err != nil {
		t.Errorf("CheckPicturePassword() canonical form error = %v", err)
	}
	if err := c.CheckPicturePassword("borrego,perro,oso,ajolote"); err == nil {
		t.Error("CheckPicturePassword() accepted the tokens in another order")
	}
}
