package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Key     string `json:"app_key" validate:"required"`
	Retries int    `validate:"gte=0"`
	Skipped string `json:"-" validate:"required"`
}

func TestStruct(t *testing.T) {
	testCases := []struct {
		name      string
		val       sample
		expFields map[string]string
	}{
		{
			name: "valid",
			val:  sample{BaseURL: "https://api.example.com", Key: "k", Skipped: "x"},
		},
		{
			name: "missing required fields",
			val:  sample{Retries: 1, Skipped: "x"},
			expFields: map[string]string{
				"base_url": "This field is required",
				"app_key":  "This field is required",
			},
		},
		{
			name: "translated messages",
			val:  sample{BaseURL: "not a url", Key: "k", Retries: -1, Skipped: "x"},
			expFields: map[string]string{
				"base_url": "base_url must be a valid URL",
				"Retries":  "Retries must be 0 or greater",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.val)
			if tc.expFields == nil {
				if err != nil {
					t.Fatalf("exp nil err, got: %v", err)
				}
				return
			}

			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("exp FieldErrors, got: %T %v", err, err)
			}

			if diff := cmp.Diff(tc.expFields, fe.Fields()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{{Field: "token", Err: "This field is required"}}

	exp := `[{"field":"token","error":"This field is required"}]`
	if got := fe.Error(); got != exp {
		t.Errorf("exp %s, got %s", exp, got)
	}
}
