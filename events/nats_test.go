package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDisabledPublisherDropsEvents(t *testing.T) {
	p, err := Connect("", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish("listing.created", map[string]string{"listing_id": "1"}))
	p.Close()
}

func TestNilPublisher(t *testing.T) {
	var p *Publisher
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish("listing.deleted", nil))
}
