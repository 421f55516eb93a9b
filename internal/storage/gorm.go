package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"anonpair/backend/internal/models"
)

// claimAttempts bounds the retry loop when a selected candidate is claimed
// by a concurrent caller between the read and the delete.
const claimAttempts = 3

// Service is the gorm-backed Storage. The same code serves the embedded
// SQLite backend and the remote PostgreSQL backend; the dialector is chosen
// by the caller when opening the *gorm.DB.
type Service struct {
	DB *gorm.DB
}

// NewService runs migrations and returns a Service.
func NewService(db *gorm.DB) (*Service, error) {
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Service{DB: db}, nil
}

func (s *Service) AddToQueue(userID int64, interest string) error {
	entry := models.QueueEntry{
		UserID:     userID,
		Interest:   interest,
		EnqueuedAt: time.Now(),
	}
	// Keep the existing entry (and its queue position) on conflict.
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}

func (s *Service) RemoveFromQueue(userID int64) error {
	return s.DB.Delete(&models.QueueEntry{}, "user_id = ?", userID).Error
}

func (s *Service) IsInQueue(userID int64) (bool, error) {
	var count int64
	err := s.DB.Model(&models.QueueEntry{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// ClaimFromQueue selects the oldest eligible entry and claims it with a
// conditional delete: the DELETE by primary key either removes the row (we
// won) or affects nothing (a concurrent caller won), so no queued user can
// be handed to two callers regardless of backend.
func (s *Service) ClaimFromQueue(userID int64, interest string) (int64, bool, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		candidate, found, err := s.pickCandidate(userID, interest)
		if err != nil {
			return 0, false, err
		}
		if !found {
			return 0, false, nil
		}

		res := s.DB.Delete(&models.QueueEntry{}, "user_id = ?", candidate)
		if res.Error != nil {
			return 0, false, res.Error
		}
		if res.RowsAffected == 1 {
			return candidate, true, nil
		}
		// Lost the race for this entry, select again.
	}
	return 0, false, nil
}

func (s *Service) pickCandidate(userID int64, interest string) (int64, bool, error) {
	blocked := s.DB.Model(&models.BlockRelation{}).
		Select("blocked_id").Where("blocker_id = ?", userID)
	blockedBy := s.DB.Model(&models.BlockRelation{}).
		Select("blocker_id").Where("blocked_id = ?", userID)

	q := s.DB.Model(&models.QueueEntry{}).
		Where("user_id <> ?", userID).
		Where("user_id NOT IN (?)", blocked).
		Where("user_id NOT IN (?)", blockedBy)
	if interest != "" {
		q = q.Where("interest = ?", interest)
	}

	var entry models.QueueEntry
	err := q.Order("enqueued_at asc, user_id asc").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return entry.UserID, true, nil
}

func (s *Service) CreateChat(userID, partnerID int64) error {
	sessionID := newSessionID()
	now := time.Now()
	rows := []models.ChatSession{
		{UserID: userID, PartnerID: partnerID, SessionID: sessionID, StartedAt: now},
		{UserID: partnerID, PartnerID: userID, SessionID: sessionID, StartedAt: now},
	}
	// Both directions in one transaction so the pair exists atomically.
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&rows).Error
	})
}

func (s *Service) GetPartner(userID int64) (int64, bool, error) {
	var session models.ChatSession
	err := s.DB.First(&session, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return session.PartnerID, true, nil
}

func (s *Service) EndChat(userID int64) (int64, bool, error) {
	partnerID, ok, err := s.GetPartner(userID)
	if err != nil || !ok {
		return 0, false, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ChatSession{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, "user_id = ?", partnerID).Error
	})
	if err != nil {
		return 0, false, err
	}
	return partnerID, true, nil
}

func (s *Service) BlockUser(blockerID, blockedID int64) error {
	rel := models.BlockRelation{BlockerID: blockerID, BlockedID: blockedID}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel).Error
}

func (s *Service) UnblockUser(blockerID, blockedID int64) error {
	return s.DB.Delete(&models.BlockRelation{}, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Error
}

func (s *Service) IsBlockedEither(a, b int64) (bool, error) {
	var count int64
	err := s.DB.Model(&models.BlockRelation{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) SaveReport(reporterID, reportedID int64, reason string) error {
	report := models.Report{ReporterID: reporterID, ReportedID: reportedID, Reason: reason}
	if err := s.DB.Create(&report).Error; err != nil {
		log.Printf("ERROR: Failed to save report from %d against %d: %v", reporterID, reportedID, err)
		return err
	}
	return nil
}

func (s *Service) ListReports(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Order("created_at desc").Limit(limit).Find(&reports).Error
	return reports, err
}

func (s *Service) LogMessage(senderID int64, senderMsgID int, receiverID int64, receiverMsgID int) error {
	link := models.MessageLink{
		SenderID:      senderID,
		SenderMsgID:   senderMsgID,
		ReceiverID:    receiverID,
		ReceiverMsgID: receiverMsgID,
	}
	return s.DB.Create(&link).Error
}

func (s *Service) FindReceiverMsgID(senderID int64, senderMsgID int) (int, bool, error) {
	var link models.MessageLink
	err := s.DB.Where("sender_id = ? AND sender_msg_id = ?", senderID, senderMsgID).
		Last(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return link.ReceiverMsgID, true, nil
}

func (s *Service) FindSenderMsgID(receiverID int64, receiverMsgID int) (int, bool, error) {
	var link models.MessageLink
	err := s.DB.Where("receiver_id = ? AND receiver_msg_id = ?", receiverID, receiverMsgID).
		Last(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return link.SenderMsgID, true, nil
}

func (s *Service) SetInterest(userID int64, interest string) error {
	return s.upsertSettings(userID, map[string]interface{}{"interest": interest})
}

func (s *Service) GetInterest(userID int64) (string, error) {
	settings, err := s.getSettings(userID)
	if err != nil {
		return "", err
	}
	return settings.Interest, nil
}

func (s *Service) SetLanguage(userID int64, language string) error {
	return s.upsertSettings(userID, map[string]interface{}{"language": language})
}

func (s *Service) GetLanguage(userID int64) (string, error) {
	settings, err := s.getSettings(userID)
	if err != nil || settings.Language == "" {
		return "en", err
	}
	return settings.Language, nil
}

func (s *Service) getSettings(userID int64) (models.UserSettings, error) {
	var settings models.UserSettings
	err := s.DB.First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserSettings{UserID: userID, Language: "en"}, nil
	}
	return settings, err
}

func (s *Service) upsertSettings(userID int64, values map[string]interface{}) error {
	res := s.DB.Model(&models.UserSettings{}).Where("user_id = ?", userID).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	settings := models.UserSettings{UserID: userID, Language: "en"}
	if v, ok := values["interest"]; ok {
		settings.Interest = v.(string)
	}
	if v, ok := values["language"]; ok {
		settings.Language = v.(string)
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error
}

func (s *Service) ListUsers() ([]int64, error) {
	var ids []int64
	err := s.DB.Model(&models.UserSettings{}).Pluck("user_id", &ids).Error
	return ids, err
}

func (s *Service) GetStats() (Stats, error) {
	var stats Stats
	if err := s.DB.Model(&models.UserSettings{}).Count(&stats.TotalUsers).Error; err != nil {
		return Stats{}, err
	}
	var sessions int64
	if err := s.DB.Model(&models.ChatSession{}).Count(&sessions).Error; err != nil {
		return Stats{}, err
	}
	// Two rows per pair.
	stats.ActiveChats = sessions / 2
	if err := s.DB.Model(&models.QueueEntry{}).Count(&stats.InQueue).Error; err != nil {
		return Stats{}, err
	}
	return stats, nil
}
