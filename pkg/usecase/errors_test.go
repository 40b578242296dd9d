package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/healthbot/pkg/usecase"
)

func TestErrors_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrPatientNotFound", usecase.ErrPatientNotFound},
		{"ErrEmptyMessage", usecase.ErrEmptyMessage},
		{"ErrInvalidPatient", usecase.ErrInvalidPatient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.err).NotNil()
		})
	}
}

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	gt.Bool(t, errors.Is(usecase.ErrPatientNotFound, usecase.ErrEmptyMessage)).False()
	gt.Bool(t, errors.Is(usecase.ErrEmptyMessage, usecase.ErrInvalidPatient)).False()
	gt.Bool(t, errors.Is(usecase.ErrInvalidPatient, usecase.ErrPatientNotFound)).False()
}
