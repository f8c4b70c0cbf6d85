package instance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binrent/internal/opt"
)

func TestValidateAcceptsWellFormed(t *testing.T) {
	inst := opt.Instance{
		Items:  []opt.Item{{ID: "a", Profit: 0, Weight: 1, Compulsory: true}},
		Bins:   []opt.Bin{opt.NewBin("b", 1, 5, 1)},
		Budget: 0,
	}
	assert.NoError(t, Validate(inst))
}

func TestValidateCollectsProblems(t *testing.T) {
	inst := opt.Instance{
		Items: []opt.Item{
			{ID: "a", Profit: -1, Weight: 1},
			{ID: "a", Profit: 1, Weight: 0},
			{ID: "", Profit: math.NaN(), Weight: 1},
		},
		Bins: []opt.Bin{
			opt.NewBin("b", 1, 0, 1),
			opt.NewBin("b", 1, 5, -3),
		},
		Budget: -1,
	}
	err := Validate(inst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 9)
	assert.Contains(t, err.Error(), `duplicate id "a"`)
	assert.Contains(t, err.Error(), "budget must be >= 0")
}
