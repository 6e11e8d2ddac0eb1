// internal/workers/knowledge/normalize-document/models.go
package normalizedocument

import (
	"errors"
	"fmt"
)

// BlockKind is the structural role of a document block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockListItem  BlockKind = "list_item"
)

// Block is one heading, paragraph or list item in document order.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

const (
	notConfiguredText  = "문서 URL이 설정되지 않았습니다."
	noBodyText         = "문서 구조 분석 실패: body 태그 없음"
	accessFailedPrefix = "문서 접근 실패: "
	parseFailedPrefix  = "문서 파싱 실패: "
)

var (
	ErrNotConfigured = errors.New("DOCUMENT_NOT_CONFIGURED")
	ErrNoBody        = errors.New("DOCUMENT_NO_BODY")
)

// StatusError is a non-success transport status from the document backend.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.StatusCode)
}

// esBlock is the document shape stored in the block index.
type esBlock struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source esBlock `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
