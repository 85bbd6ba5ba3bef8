package models

import (
	"sort"
	"strconv"
	"time"
)

// backend timestamps are ISO-8601 local date-times without a zone
var auditTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// AuditRecord is one API call logged by the backend
type AuditRecord struct {
	ID                  int64   `json:"id"`
	TimestampRequisicao string  `json:"timestampRequisicao"`
	MetodoHTTP          string  `json:"metodoHttp"`
	Endpoint            string  `json:"endpoint"`
	IPOrigem            string  `json:"ipOrigem"`
	UserAgent           string  `json:"userAgent,omitempty"`
	StatusResposta      int     `json:"statusResposta"`
	TempoProcessamento  int64   `json:"tempoProcessamento"`
	Erro                *string `json:"erro,omitempty"`
} // @name AuditRecord

// Timestamp parses TimestampRequisicao; ok is false when it cannot be parsed
func (r AuditRecord) Timestamp() (t time.Time, ok bool) {
	for _, layout := range auditTimestampLayouts {
		if parsed, err := time.Parse(layout, r.TimestampRequisicao); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// HasError reports whether the backend recorded an error text
func (r AuditRecord) HasError() bool {
	return r.Erro != nil && *r.Erro != ""
}

// AuditStats aggregates the audit log over a time window
type AuditStats struct {
	TotalRequisicoes   int64            `json:"totalRequisicoes"`
	DistribuicaoStatus map[string]int64 `json:"distribuicaoStatus"`
	PeriodoHoras       int              `json:"periodoHoras"`
	TimestampConsulta  string           `json:"timestampConsulta"`
} // @name AuditStats

// StatusCount is one entry of the status distribution
type StatusCount struct {
	Status int
	Count  int64
}

// SortedDistribution returns the status distribution ordered by status code.
// Keys that are not numeric are skipped.
func (s AuditStats) SortedDistribution() []StatusCount {
	out := make([]StatusCount, 0, len(s.DistribuicaoStatus))
	for k, v := range s.DistribuicaoStatus {
		status, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, StatusCount{Status: status, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}
