package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Notes  Field[string]  `json:"notes,omitzero"`
	Price  Field[float64] `json:"price,omitzero"`
	Active Field[bool]    `json:"active,omitzero"`
}

func TestFieldDistinguishesAbsentFromNull(t *testing.T) {
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null,"price":12.5}`), &p))

	assert.True(t, p.Notes.Set)
	assert.Nil(t, p.Notes.Value)
	assert.True(t, p.Price.Present())
	assert.Equal(t, 12.5, *p.Price.Value)
	assert.False(t, p.Active.Set)
}

func TestFieldApply(t *testing.T) {
	existing := "keep"
	target := &existing

	Field[string]{}.Apply(&target)
	require.NotNil(t, target)
	assert.Equal(t, "keep", *target)

	Null[string]().Apply(&target)
	assert.Nil(t, target)

	Of("new").Apply(&target)
	require.NotNil(t, target)
	assert.Equal(t, "new", *target)

	flag := true
	Field[bool]{}.ApplyValue(&flag)
	assert.True(t, flag)
	Of(false).ApplyValue(&flag)
	assert.False(t, flag)
}

func TestFieldMarshalOmitsAbsent(t *testing.T) {
	body, err := json.Marshal(payload{Notes: Null[string](), Active: Of(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"notes":null,"active":true}`, string(body))
}
