package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/google/uuid"
)

// SnapshotObject is one encoded file of a budget export
type SnapshotObject struct {
	Name        string
	ContentType string
	Body        []byte
}

// SnapshotRepository persists encoded budget snapshots
type SnapshotRepository interface {
	// Write stores the objects under <prefix>/<snapshotID> and returns that path
	Write(ctx context.Context, snapshotID string, objects []SnapshotObject) (string, error)
}

// snapshotHeader is written as budget.json alongside the entity streams
type snapshotHeader struct {
	SystemAvailableCategoryID string         `json:"system_available_category_id"`
	TakenAt                   time.Time      `json:"taken_at"`
	Counts                    map[string]int `json:"counts"`
}

// EncodeSnapshot renders a budget as one NDJSON stream per entity kind plus
// a budget.json header. Records keep insertion order.
func EncodeSnapshot(b *domain.Budget, takenAt time.Time) ([]SnapshotObject, error) {
	streams := []struct {
		kind    domain.EntityKind
		records []interface{}
	}{
		{domain.EntityAccount, toRecords(b.Accounts)},
		{domain.EntityCategory, toRecords(b.Categories)},
		{domain.EntityTransaction, toRecords(b.Transactions)},
		{domain.EntityCategoryTransfer, toRecords(b.CategoryTransfers)},
		{domain.EntityAccountTransfer, toRecords(b.AccountTransfers)},
		{domain.EntityCategoryGroup, toRecords(b.CategoryGroups)},
	}

	header := snapshotHeader{
		SystemAvailableCategoryID: b.SystemAvailableCategoryID.String(),
		TakenAt:                   takenAt.UTC(),
		Counts:                    make(map[string]int, len(streams)),
	}

	objects := make([]SnapshotObject, 0, len(streams)+1)
	for _, s := range streams {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for _, r := range s.records {
			if err := enc.Encode(r); err != nil {
				return nil, fmt.Errorf("encode %s: %w", s.kind, err)
			}
		}
		header.Counts[string(s.kind)] = len(s.records)
		objects = append(objects, SnapshotObject{
			Name:        string(s.kind) + ".ndjson",
			ContentType: "application/x-ndjson",
			Body:        buf.Bytes(),
		})
	}

	headerBody, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode budget header: %w", err)
	}
	objects = append(objects, SnapshotObject{
		Name:        "budget.json",
		ContentType: "application/json",
		Body:        headerBody,
	})

	return objects, nil
}

// NewSnapshotID names one export: the UTC time to the millisecond plus the
// first eight hex digits of nonce, so exports in the same instant stay apart.
func NewSnapshotID(takenAt time.Time, nonce uuid.UUID) string {
	return takenAt.UTC().Format("20060102T150405.000Z") + "-" + nonce.String()[:8]
}

// SnapshotPrefix returns <prefix>/<snapshotID>
func SnapshotPrefix(prefix, snapshotID string) string {
	return path.Join(prefix, snapshotID)
}

func toRecords[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
