// internal/workers/ai-conversation/parse-user-intent/classify.go
package parseuserintent

import (
	"regexp"
	"strings"

	"smartdm-service/internal/models"
)

// Token sets are matched as case-insensitive substrings of the question.
var (
	deadlineTokens    = []string{"납기", "deadline"}
	maximumTokens     = []string{"최대", "maximum", "max"}
	productCodeMarker = []string{"상품 코드", "상품코드", "제품 코드", "제품코드", "product code"}
	productTokens     = []string{"상품", "제품", "product"}
	deliveryTokens    = []string{"납기", "배송", "delivery"}
	recentTokens      = []string{"최근", "recent"}
)

const (
	fieldSeparator = "|"
	itemSeparator  = ","
)

// productCodePattern is a one-to-three letter prefix followed by three digits.
var productCodePattern = regexp.MustCompile(`\b[A-Za-z]{1,3}[0-9]{3}\b`)

// Classify maps a question to an Intent. Rules are evaluated in order and the
// first match wins. It is total: every input, including "", yields an Intent.
func Classify(question string) models.Intent {
	q := strings.ToLower(strings.TrimSpace(question))

	switch {
	case containsAny(q, deadlineTokens) && containsAny(q, maximumTokens):
		return models.DeliveryDeadlineQuery{}

	case containsAny(q, productCodeMarker) ||
		(containsAny(q, productTokens) && containsAny(q, deliveryTokens)):
		return models.DeliveryPerItemQuery{ProductCodes: ExtractProductCodes(question)}

	case strings.Contains(q, fieldSeparator) || strings.Contains(q, itemSeparator):
		return parseDateTagFilter(strings.TrimSpace(question))

	case containsAny(q, recentTokens):
		return models.SummaryRequest{}

	default:
		return models.Unknown{}
	}
}

// ExtractProductCodes returns every product code in the question in order of
// appearance. Duplicates are kept.
func ExtractProductCodes(question string) []string {
	codes := productCodePattern.FindAllString(question, -1)
	if codes == nil {
		return []string{}
	}
	return codes
}

// parseDateTagFilter expects "<date>|<tag>,<tag>,...". Anything malformed
// degrades to Unknown.
func parseDateTagFilter(question string) models.Intent {
	datePart, tagPart, found := strings.Cut(question, fieldSeparator)
	if !found {
		return models.Unknown{}
	}

	date := strings.TrimSpace(datePart)
	if date == "" {
		return models.Unknown{}
	}

	var tags []string
	for _, tag := range strings.Split(tagPart, itemSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return models.Unknown{}
	}

	return models.DateTagFilter{Date: date, Tags: tags}
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
