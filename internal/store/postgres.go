package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KofuCodes/ReMind/internal/config"
	logging "github.com/KofuCodes/ReMind/internal/logging"
	"github.com/KofuCodes/ReMind/internal/models"
)

// ArchivedSession is the flattened row shape for one archived record.
type ArchivedSession struct {
	ID              string `gorm:"primaryKey"`
	Source          string
	SequenceLength  int
	RoundsPlayed    int
	RoundsCorrect   int
	AvgReactionMs   float64
	Score           float64
	Accuracy        float64
	DeviationScore  float64
	RiskLevel       string
	PatientID       string
	PatientName     string
	PatientAge      int
	PatientLocation string
	PatientNotes    string
	Timestamp       time.Time
	CreatedAt       time.Time
}

// Archive is an append-only postgres mirror of ingested records. It is an
// optional driver behind the Archiver interface; the in-memory store stays
// authoritative and an archive failure never fails ingestion.
type Archive struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenArchive(dbConf config.DatabaseConfig, log *zap.Logger) (*Archive, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to archive database: %w", err)
	}

	if err := db.AutoMigrate(&ArchivedSession{}); err != nil {
		return nil, fmt.Errorf("failed to run archive migrations: %w", err)
	}

	// AutoMigrate will not create this composite index.
	historyIndex := `CREATE INDEX IF NOT EXISTS idx_archived_sessions_history ON archived_sessions (patient_id, timestamp DESC);`
	if err := db.Exec(historyIndex).Error; err != nil {
		return nil, fmt.Errorf("failed to create archive index: %w", err)
	}

	log.Info("Archive database connection established successfully.")
	return &Archive{db: db, log: log}, nil
}

// Save inserts one record. Replayed IDs (e.g. a poll mirror seeing the
// same record twice) are ignored rather than erroring.
func (a *Archive) Save(rec models.SessionRecord) error {
	row := ArchivedSession{
		ID:              rec.ID,
		Source:          string(rec.Source),
		SequenceLength:  rec.SequenceLength,
		RoundsPlayed:    rec.RoundsPlayed,
		RoundsCorrect:   rec.RoundsCorrect,
		AvgReactionMs:   rec.AvgReactionMs,
		Score:           rec.Score,
		Accuracy:        rec.Accuracy,
		DeviationScore:  rec.DeviationScore,
		RiskLevel:       string(rec.RiskLevel),
		PatientID:       rec.Patient.ID,
		PatientName:     rec.Patient.Name,
		PatientAge:      rec.Patient.Age,
		PatientLocation: rec.Patient.Location,
		PatientNotes:    rec.Patient.Notes,
		Timestamp:       rec.Timestamp,
	}

	return a.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// ListByRisk returns archived sessions in any of the given tiers,
// most-recent first.
func (a *Archive) ListByRisk(ctx context.Context, levels []string) ([]ArchivedSession, error) {
	var rows []ArchivedSession
	err := a.db.WithContext(ctx).
		Where("risk_level = ANY(?)", pq.Array(levels)).
		Order("timestamp DESC").
		Find(&rows).Error
	return rows, err
}

// ListByPatient returns a patient's archived sessions, most-recent first.
func (a *Archive) ListByPatient(ctx context.Context, patientID string) ([]ArchivedSession, error) {
	var rows []ArchivedSession
	err := a.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("timestamp DESC").
		Find(&rows).Error
	return rows, err
}
