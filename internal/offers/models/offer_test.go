package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Offer {
	notes := "wants a payment plan"
	return &Offer{
		ID:        "o1",
		DomainID:  "d1",
		Name:      "Ada",
		Email:     "ada@example.com",
		Amount:    12000,
		Status:    StatusNew,
		Notes:     &notes,
		CreatedAt: time.Now(),
	}
}

func TestApplyToIsIdempotent(t *testing.T) {
	var req UpdateOfferRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"o1","status":"negotiating","notes":"call back friday"}`), &req))
	once := sample()
	req.ApplyTo(once)
	twice := once.Clone()
	req.ApplyTo(twice)
	assert.Equal(t, once, twice)
	assert.Equal(t, StatusNegotiating, twice.Status)
}

func TestApplyToIgnoresNullStatus(t *testing.T) {
	var req UpdateOfferRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"o1","status":null,"notes":null}`), &req))
	o := sample()
	req.ApplyTo(o)
	assert.Equal(t, StatusNew, o.Status)
	assert.Nil(t, o.Notes)
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusClosed.IsValid())
	assert.False(t, Status("bogus").IsValid())
}
