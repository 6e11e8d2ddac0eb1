// internal/workers/knowledge/load-manual/models.go
package loadmanual

// MissingManual is returned in place of manual text whenever no usable
// manual exists. Callers compare against it; it is never wrapped in an error.
const MissingManual = "상담 매뉴얼을 찾을 수 없습니다."

// Entry is one Q/A pair or one key/value pair from the manual, in file order.
type Entry struct {
	Question string
	Answer   string
}

// manualSchema accepts a list of {question, answer} objects or a flat mapping
// of scalar values.
const manualSchema = `{
	"oneOf": [
		{
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"question": {"type": ["string", "number", "boolean"]},
					"answer": {"type": ["string", "number", "boolean"]}
				}
			}
		},
		{
			"type": "object",
			"additionalProperties": {"type": ["string", "number", "boolean"]}
		}
	]
}`
