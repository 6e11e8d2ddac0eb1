// internal/workers/ai-conversation/answer-question/templates.go
package answerquestion

import (
	"fmt"
	"strings"

	"smartdm-service/internal/models"
)

// DeliveryTemplates answers delivery questions straight from the lookup table.
type DeliveryTemplates struct {
	table map[string]int
}

func NewDeliveryTemplates(table map[string]int) *DeliveryTemplates {
	return &DeliveryTemplates{table: table}
}

// Answer returns the templated text, or false when the intent is not a
// delivery question.
func (d *DeliveryTemplates) Answer(intent models.Intent) (string, bool) {
	switch q := intent.(type) {
	case models.DeliveryDeadlineQuery:
		return d.deadline(), true
	case models.DeliveryPerItemQuery:
		return d.perItem(q.ProductCodes), true
	default:
		return "", false
	}
}

// deadline reports the longest lead time in the table.
func (d *DeliveryTemplates) deadline() string {
	if len(d.table) == 0 {
		return noDeliveryData
	}
	longest := 0
	for _, days := range d.table {
		if days > longest {
			longest = days
		}
	}
	return fmt.Sprintf(deadlineTemplate, longest)
}

func (d *DeliveryTemplates) perItem(codes []string) string {
	if len(codes) == 0 {
		return noProductCodeAnswer
	}
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		if days, ok := d.table[strings.ToUpper(code)]; ok {
			parts = append(parts, fmt.Sprintf(perItemTemplate, code, days))
			continue
		}
		parts = append(parts, fmt.Sprintf(perItemUnknown, code))
	}
	return strings.Join(parts, " ")
}
