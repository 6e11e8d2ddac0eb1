// internal/models/intent.go
package models

import "encoding/json"

// IntentKind is the wire name of an Intent variant.
type IntentKind string

const (
	IntentDeliveryDeadline IntentKind = "query_delivery_deadline"
	IntentDeliveryPerItem  IntentKind = "query_delivery_per_item"
	IntentDateTagFilter    IntentKind = "filter_by_date_and_tags"
	IntentSummaryRequest   IntentKind = "summary_request"
	IntentUnknown          IntentKind = "unknown"
)

// Intent is the closed set of question classifications. Only the types in
// this file implement it.
type Intent interface {
	Kind() IntentKind
	isIntent()
}

// DeliveryDeadlineQuery asks for the maximum delivery deadline.
type DeliveryDeadlineQuery struct{}

// DeliveryPerItemQuery asks for the delivery deadline of specific products.
type DeliveryPerItemQuery struct {
	ProductCodes []string
}

// DateTagFilter asks for records of a date carrying the given tags.
type DateTagFilter struct {
	Date string
	Tags []string
}

// SummaryRequest asks for a summary of recent records.
type SummaryRequest struct{}

// Unknown is any question no rule recognised.
type Unknown struct{}

func (DeliveryDeadlineQuery) Kind() IntentKind { return IntentDeliveryDeadline }
func (DeliveryPerItemQuery) Kind() IntentKind  { return IntentDeliveryPerItem }
func (DateTagFilter) Kind() IntentKind         { return IntentDateTagFilter }
func (SummaryRequest) Kind() IntentKind        { return IntentSummaryRequest }
func (Unknown) Kind() IntentKind               { return IntentUnknown }

func (DeliveryDeadlineQuery) isIntent() {}
func (DeliveryPerItemQuery) isIntent()  {}
func (DateTagFilter) isIntent()         {}
func (SummaryRequest) isIntent()        {}
func (Unknown) isIntent()               {}

// IsTemplateAnswerable reports whether the intent is served from the
// delivery lookup table instead of the generation service.
func IsTemplateAnswerable(intent Intent) bool {
	switch intent.(type) {
	case DeliveryDeadlineQuery, DeliveryPerItemQuery:
		return true
	default:
		return false
	}
}

type intentFilters struct {
	Date string   `json:"date"`
	Tags []string `json:"tags"`
}

type intentPayload struct {
	Intent       IntentKind     `json:"intent"`
	ProductCodes []string       `json:"product_codes,omitempty"`
	Filters      *intentFilters `json:"filters,omitempty"`
}

func (i DeliveryDeadlineQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(intentPayload{Intent: i.Kind()})
}

func (i DeliveryPerItemQuery) MarshalJSON() ([]byte, error) {
	codes := i.ProductCodes
	if codes == nil {
		codes = []string{}
	}
	// product_codes is always present for this variant, even when empty
	return json.Marshal(struct {
		Intent       IntentKind `json:"intent"`
		ProductCodes []string   `json:"product_codes"`
	}{Intent: i.Kind(), ProductCodes: codes})
}

func (i DateTagFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(intentPayload{
		Intent:  i.Kind(),
		Filters: &intentFilters{Date: i.Date, Tags: i.Tags},
	})
}

func (i SummaryRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(intentPayload{Intent: i.Kind()})
}

func (i Unknown) MarshalJSON() ([]byte, error) {
	return json.Marshal(intentPayload{Intent: i.Kind()})
}

// UnmarshalIntent decodes the wire form produced by the MarshalJSON methods.
// Unrecognised kinds decode to Unknown.
func UnmarshalIntent(data []byte) (Intent, error) {
	var p intentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	switch p.Intent {
	case IntentDeliveryDeadline:
		return DeliveryDeadlineQuery{}, nil
	case IntentDeliveryPerItem:
		return DeliveryPerItemQuery{ProductCodes: p.ProductCodes}, nil
	case IntentDateTagFilter:
		if p.Filters == nil {
			return Unknown{}, nil
		}
		return DateTagFilter{Date: p.Filters.Date, Tags: p.Filters.Tags}, nil
	case IntentSummaryRequest:
		return SummaryRequest{}, nil
	default:
		return Unknown{}, nil
	}
}
