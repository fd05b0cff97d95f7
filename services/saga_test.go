package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSagaCompensatesInReverse(t *testing.T) {
	var trail []string
	step := func(name string, fail bool) sagaStep {
		return sagaStep{
			name: name,
			forward: func(context.Context) error {
				trail = append(trail, "do "+name)
				if fail {
					return errors.New(name + " failed")
				}
				return nil
			},
			compensate: func(context.Context) error {
				trail = append(trail, "undo "+name)
				if name == "b" {
					return errors.New("undo b failed")
				}
				return nil
			},
		}
	}

	err := runSaga(context.Background(), step("a", false), step("b", false), step("c", true), step("d", false))

	assert.EqualError(t, err, "c: c failed")
	assert.Equal(t, []string{"do a", "do b", "do c", "undo b", "undo a"}, trail)
}

func TestRunSagaSuccess(t *testing.T) {
	calls := 0
	s := sagaStep{
		name:       "only",
		forward:    func(context.Context) error { calls++; return nil },
		compensate: func(context.Context) error { t.Fatal("unexpected compensation"); return nil },
	}

	assert.NoError(t, runSaga(context.Background(), s, s))
	assert.Equal(t, 2, calls)
}

func TestRunSagaCompensatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var undoErr error
	steps := []sagaStep{
		{
			name:       "create",
			forward:    func(context.Context) error { return nil },
			compensate: func(ctx context.Context) error { undoErr = ctx.Err(); return nil },
		},
		{
			name:    "fail",
			forward: func(context.Context) error { cancel(); return context.Canceled },
		},
	}

	err := runSaga(ctx, steps...)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, undoErr)
}

func TestValidateNamesJSONFields(t *testing.T) {
	err := Validate(struct {
		Count int `json:"count" validate:"min=1"`
	}{})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "count must be at least 1")
}

func TestLocalPartName(t *testing.T) {
	for email, want := range map[string]string{
		"jo.smith@x.com": "Jo smith",
		"jo@x.com":       "",
		"_abc@x.com":     "",
		"plain":          "Plain",
	} {
		assert.Equal(t, want, localPartName(email), email)
	}
}
