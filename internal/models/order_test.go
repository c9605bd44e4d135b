package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPendingPayment, OrderPendingTravel, OrderPendingReview, OrderCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestVerificationTypeValid(t *testing.T) {
	assert.True(t, VerificationLogin.Valid())
	assert.True(t, VerificationRegister.Valid())
	assert.False(t, VerificationType("reset").Valid())
}

func TestOrderDetailsScan(t *testing.T) {
	var d OrderDetails
	require.NoError(t, d.Scan([]byte(`{"productInfo":{"flight":"MU5101"}}`)))
	assert.JSONEq(t, `{"flight":"MU5101"}`, string(d.ProductInfo))
	assert.Empty(t, d.TravelerInfo)

	require.NoError(t, d.Scan(`{"contactInfo":{"name":"Li"}}`))
	assert.Empty(t, d.ProductInfo)
	assert.JSONEq(t, `{"name":"Li"}`, string(d.ContactInfo))

	require.NoError(t, d.Scan("{broken"))
	assert.Equal(t, OrderDetails{}, d)

	require.NoError(t, d.Scan(nil))
	assert.Equal(t, OrderDetails{}, d)

	assert.Error(t, d.Scan(42))
}

func TestOrderDetailsValueOmitsEmptySections(t *testing.T) {
	v, err := OrderDetails{PriceDetails: []byte(`{"total":5.5}`)}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"priceDetails":{"total":5.5}}`, v.(string))
}
