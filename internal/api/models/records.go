package models

import "github.com/kitsunedns/kitsunedns/internal/database"

// RecordCreateRequest is the POST /records body. RData is in presentation
// form: "192.0.2.1", "10 mail.example.com", a quoted TXT string. Class
// defaults to IN when empty.
type RecordCreateRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required"`
	Class string `json:"class"`
	TTL   uint32 `json:"ttl"`
	RData string `json:"rdata" binding:"required"`
}

// RecordListResponse contains persisted records.
type RecordListResponse struct {
	Records []database.Record `json:"records"`
	Count   int               `json:"count"`
}
