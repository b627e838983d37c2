// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithoutCancel(t *testing.T) {
	flush := errors.New("flushing de-dup cache: disk full")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"canceled alone", context.Canceled, nil},
		{"wrapped canceled", fmt.Errorf("draining: %w", context.Canceled), nil},
		{"canceled joined with clean stop", errors.Join(context.Canceled, nil), nil},
		{"other error kept", flush, flush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withoutCancel(tt.err))
		})
	}

	t.Run("stop failure survives interrupt", func(t *testing.T) {
		got := withoutCancel(errors.Join(context.Canceled, flush))
		assert.ErrorIs(t, got, flush)
		assert.NotErrorIs(t, got, context.Canceled)
	})
}
