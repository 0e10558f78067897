package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type siretRequest struct {
	Siret string `validate:"required,siret"`
	Label string `validate:"strNotEmpty,cmin=2,cmax=5"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterCustomValidations(v); err != nil {
		t.Fatalf("RegisterCustomValidations() error = %v", err)
	}
	return v
}

func TestCustomValidations(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		req     siretRequest
		wantTag string
	}{
		{"valid", siretRequest{Siret: "44011762001530", Label: "abc"}, ""},
		{"siret with spaces", siretRequest{Siret: "440 1176 2001 530", Label: "abc"}, ""},
		{"siret too short", siretRequest{Siret: "1", Label: "abc"}, "siret"},
		{"siret with letters", siretRequest{Siret: "4401176200153A", Label: "abc"}, "siret"},
		{"blank label", siretRequest{Siret: "44011762001530", Label: "   "}, "strNotEmpty"},
		{"label too short once trimmed", siretRequest{Siret: "44011762001530", Label: " a  "}, "cmin"},
		{"label too long", siretRequest{Siret: "44011762001530", Label: "abcdef"}, "cmax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("Struct() unexpected error: %v", err)
				}
				return
			}

			var ve validator.ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("Struct() error = %v, want validation errors", err)
			}
			if ve[0].Tag() != tt.wantTag {
				t.Errorf("failed tag = %s, want %s", ve[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestGenerateErrorMessages(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(siretRequest{Siret: "1", Label: "abc"})

	msgs := GenerateErrorMessages(err, map[string]string{"Siret": "siret"})
	if len(msgs) != 1 || msgs[0].Field != "siret" || msgs[0].Message != "siret must be a siret of 14 digits" {
		t.Errorf("GenerateErrorMessages() = %+v", msgs)
	}

	notFound := fmt.Errorf("dossier 12: %w", dossier.ErrNotFound)
	if msgs := GenerateErrorMessages(notFound); msgs[0].Message != "Record not found" {
		t.Errorf("domain not found message = %q", msgs[0].Message)
	}
	if msgs := GenerateErrorMessages(gorm.ErrRecordNotFound); msgs[0].Message != "Record not found" {
		t.Errorf("gorm not found message = %q", msgs[0].Message)
	}

	msgs = GenerateErrorMessages(errors.New("boom"), "dossierId")
	if msgs[0].Field != "dossierId" || msgs[0].Message != "boom" {
		t.Errorf("plain error = %+v", msgs[0])
	}
}
