package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stackbill/stackbill/internal/audit/domain"
	"github.com/stackbill/stackbill/internal/clock"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry domain.Entry) {
	var metadata []byte
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			s.log.Warn("failed to encode audit metadata",
				zap.String("action", entry.Action), zap.Error(err))
		} else {
			metadata = raw
		}
	}

	row := &domain.AuditLog{
		ID:        s.genID.Generate().Int64(),
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Metadata:  metadata,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: s.clock.Now(ctx),
	}
	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		// An audit write must not fail the mutation it describes.
		s.log.Error("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error) {
	logs, err := s.repo.ListForExport(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch req.Format {
	case domain.ExportFormatCSV:
		data, err = formatCSV(logs)
	case domain.ExportFormatJSON:
		data, err = formatJSON(logs)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", req.Format)
	}
	if err != nil {
		return nil, err
	}

	checksum := sha256.Sum256(data)
	return &domain.ExportResult{
		Data:     data,
		Checksum: hex.EncodeToString(checksum[:]),
		Format:   req.Format,
		Count:    len(logs),
	}, nil
}

func formatCSV(logs []domain.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"timestamp", "actor_id", "action", "entity", "entity_id", "ip_address", "user_agent", "metadata"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range logs {
		record := []string{
			row.CreatedAt.Format(time.RFC3339),
			row.ActorID,
			row.Action,
			row.Entity,
			row.EntityID,
			row.IPAddress,
			row.UserAgent,
			string(row.Metadata),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatJSON(logs []domain.AuditLog) ([]byte, error) {
	type exportRecord struct {
		Timestamp string          `json:"timestamp"`
		ActorID   string          `json:"actor_id,omitempty"`
		Action    string          `json:"action"`
		Entity    string          `json:"entity"`
		EntityID  string          `json:"entity_id,omitempty"`
		IPAddress string          `json:"ip_address,omitempty"`
		UserAgent string          `json:"user_agent,omitempty"`
		Metadata  json.RawMessage `json:"metadata,omitempty"`
	}

	records := make([]exportRecord, 0, len(logs))
	for _, row := range logs {
		records = append(records, exportRecord{
			Timestamp: row.CreatedAt.Format(time.RFC3339),
			ActorID:   row.ActorID,
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  row.EntityID,
			IPAddress: row.IPAddress,
			UserAgent: row.UserAgent,
			Metadata:  json.RawMessage(row.Metadata),
		})
	}
	return json.MarshalIndent(records, "", "  ")
}
