package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAirportSuggest(t *testing.T) {
	svc := NewAirportService()

	got := svc.Suggest("sha")
	require.Len(t, got, 2)
	assert.Equal(t, "PVG", got[0].AirportCode)
	assert.True(t, got[0].Hot)

	got = svc.Suggest("  PEK ")
	require.Len(t, got, 1)
	assert.Equal(t, "Beijing", got[0].City)

	got = svc.Suggest("daxing")
	require.Len(t, got, 1)
	assert.Equal(t, "PKX", got[0].AirportCode)

	assert.Empty(t, svc.Suggest("zzz"))
	assert.NotNil(t, svc.Suggest(""))
	assert.LessOrEqual(t, len(svc.Suggest("international")), maxAirportSuggestions)
}
