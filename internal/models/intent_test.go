package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentWireForm(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		wire   string
	}{
		{"deadline", DeliveryDeadlineQuery{}, `{"intent":"query_delivery_deadline"}`},
		{"per item", DeliveryPerItemQuery{ProductCodes: []string{"ZA509", "ZA026"}}, `{"intent":"query_delivery_per_item","product_codes":["ZA509","ZA026"]}`},
		{"per item without codes", DeliveryPerItemQuery{}, `{"intent":"query_delivery_per_item","product_codes":[]}`},
		{"date and tags", DateTagFilter{Date: "2024-05-01", Tags: []string{"#출고"}}, `{"intent":"filter_by_date_and_tags","filters":{"date":"2024-05-01","tags":["#출고"]}}`},
		{"summary", SummaryRequest{}, `{"intent":"summary_request"}`},
		{"unknown", Unknown{}, `{"intent":"unknown"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.intent)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wire, string(data))

			decoded, err := UnmarshalIntent(data)
			require.NoError(t, err)
			assert.Equal(t, tt.intent.Kind(), decoded.Kind())
			assert.Equal(t, IsTemplateAnswerable(tt.intent), IsTemplateAnswerable(decoded))
		})
	}
}

func TestUnmarshalIntent_Fields(t *testing.T) {
	decoded, err := UnmarshalIntent([]byte(`{"intent":"query_delivery_per_item","product_codes":["ZA509"]}`))
	require.NoError(t, err)
	assert.Equal(t, DeliveryPerItemQuery{ProductCodes: []string{"ZA509"}}, decoded)

	decoded, err = UnmarshalIntent([]byte(`{"intent":"filter_by_date_and_tags","filters":{"date":"2024-05-01","tags":["#입고"]}}`))
	require.NoError(t, err)
	assert.Equal(t, DateTagFilter{Date: "2024-05-01", Tags: []string{"#입고"}}, decoded)
}

func TestUnmarshalIntent_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		wire string
	}{
		{"unrecognised kind", `{"intent":"refund_request"}`},
		{"filter without filters", `{"intent":"filter_by_date_and_tags"}`},
		{"missing kind", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalIntent([]byte(tt.wire))
			require.NoError(t, err)
			assert.Equal(t, Unknown{}, decoded)
		})
	}

	_, err := UnmarshalIntent([]byte(`not json`))
	assert.Error(t, err)
}
