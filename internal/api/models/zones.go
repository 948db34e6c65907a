package models

// ZoneSummary is a brief zone description.
type ZoneSummary struct {
	Origin      string `json:"origin"`
	File        string `json:"file,omitempty"`
	RecordCount int    `json:"record_count"`
}

// ZoneListResponse contains a list of loaded zones.
type ZoneListResponse struct {
	Zones []ZoneSummary `json:"zones"`
	Count int           `json:"count"`
}

// ZoneDetailResponse contains full zone details.
type ZoneDetailResponse struct {
	Origin     string       `json:"origin"`
	File       string       `json:"file,omitempty"`
	DefaultTTL uint32       `json:"default_ttl"`
	Records    []ZoneRecord `json:"records"`
}

// ZoneRecord represents a single record of a zone in presentation form.
type ZoneRecord struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
	TTL   uint32 `json:"ttl"`
	RData string `json:"rdata"`
}
