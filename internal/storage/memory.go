package storage

import (
	"sort"
	"sync"
	"time"

	"anonpair/backend/internal/models"
)

// Memory is the in-memory reference Storage. A single mutex covers every
// table, which makes the queue claim trivially serializable. It backs tests
// and single-process deployments that do not need durability.
type Memory struct {
	mu       sync.Mutex
	queue    map[int64]models.QueueEntry
	sessions map[int64]models.ChatSession
	blocks   map[[2]int64]struct{}
	reports  []models.Report
	links    []models.MessageLink
	settings map[int64]models.UserSettings
}

func NewMemory() *Memory {
	return &Memory{
		queue:    make(map[int64]models.QueueEntry),
		sessions: make(map[int64]models.ChatSession),
		blocks:   make(map[[2]int64]struct{}),
		settings: make(map[int64]models.UserSettings),
	}
}

func (m *Memory) AddToQueue(userID int64, interest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.queue[userID]; ok {
		return nil
	}
	m.queue[userID] = models.QueueEntry{
		UserID:     userID,
		Interest:   interest,
		EnqueuedAt: time.Now(),
	}
	return nil
}

func (m *Memory) RemoveFromQueue(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queue, userID)
	return nil
}

func (m *Memory) IsInQueue(userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.queue[userID]
	return ok, nil
}

func (m *Memory) ClaimFromQueue(userID int64, interest string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := make([]models.QueueEntry, 0, len(m.queue))
	for id, entry := range m.queue {
		if id == userID {
			continue
		}
		if m.blockedEitherLocked(userID, id) {
			continue
		}
		if interest != "" && entry.Interest != interest {
			continue
		}
		candidates = append(candidates, entry)
	}
	if len(candidates) == 0 {
		return 0, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].EnqueuedAt.Equal(candidates[j].EnqueuedAt) {
			return candidates[i].UserID < candidates[j].UserID
		}
		return candidates[i].EnqueuedAt.Before(candidates[j].EnqueuedAt)
	})

	// Claim under the same lock as the scan; no other caller can take it.
	partnerID := candidates[0].UserID
	delete(m.queue, partnerID)
	return partnerID, true, nil
}

func (m *Memory) CreateChat(userID, partnerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessionID := newSessionID()
	now := time.Now()
	m.sessions[userID] = models.ChatSession{UserID: userID, PartnerID: partnerID, SessionID: sessionID, StartedAt: now}
	m.sessions[partnerID] = models.ChatSession{UserID: partnerID, PartnerID: userID, SessionID: sessionID, StartedAt: now}
	return nil
}

func (m *Memory) GetPartner(userID int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		return 0, false, nil
	}
	return session.PartnerID, true, nil
}

func (m *Memory) EndChat(userID int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		return 0, false, nil
	}
	delete(m.sessions, userID)
	delete(m.sessions, session.PartnerID)
	return session.PartnerID, true, nil
}

func (m *Memory) BlockUser(blockerID, blockedID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks[[2]int64{blockerID, blockedID}] = struct{}{}
	return nil
}

func (m *Memory) UnblockUser(blockerID, blockedID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, [2]int64{blockerID, blockedID})
	return nil
}

func (m *Memory) IsBlockedEither(a, b int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockedEitherLocked(a, b), nil
}

func (m *Memory) blockedEitherLocked(a, b int64) bool {
	if _, ok := m.blocks[[2]int64{a, b}]; ok {
		return true
	}
	_, ok := m.blocks[[2]int64{b, a}]
	return ok
}

func (m *Memory) SaveReport(reporterID, reportedID int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, models.Report{
		ID:         uint(len(m.reports) + 1),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (m *Memory) ListReports(limit int) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Report, 0, limit)
	for i := len(m.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.reports[i])
	}
	return out, nil
}

// Reports returns a copy of the stored reports, oldest first.
func (m *Memory) Reports() []models.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Report, len(m.reports))
	copy(out, m.reports)
	return out
}

func (m *Memory) LogMessage(senderID int64, senderMsgID int, receiverID int64, receiverMsgID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, models.MessageLink{
		ID:            uint(len(m.links) + 1),
		SenderID:      senderID,
		SenderMsgID:   senderMsgID,
		ReceiverID:    receiverID,
		ReceiverMsgID: receiverMsgID,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (m *Memory) FindReceiverMsgID(senderID int64, senderMsgID int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.links) - 1; i >= 0; i-- {
		link := m.links[i]
		if link.SenderID == senderID && link.SenderMsgID == senderMsgID {
			return link.ReceiverMsgID, true, nil
		}
	}
	return 0, false, nil
}

func (m *Memory) FindSenderMsgID(receiverID int64, receiverMsgID int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.links) - 1; i >= 0; i-- {
		link := m.links[i]
		if link.ReceiverID == receiverID && link.ReceiverMsgID == receiverMsgID {
			return link.SenderMsgID, true, nil
		}
	}
	return 0, false, nil
}

func (m *Memory) SetInterest(userID int64, interest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings := m.settingsLocked(userID)
	settings.Interest = interest
	m.settings[userID] = settings
	return nil
}

func (m *Memory) GetInterest(userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsLocked(userID).Interest, nil
}

func (m *Memory) SetLanguage(userID int64, language string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings := m.settingsLocked(userID)
	settings.Language = language
	m.settings[userID] = settings
	return nil
}

func (m *Memory) GetLanguage(userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsLocked(userID).Language, nil
}

func (m *Memory) settingsLocked(userID int64) models.UserSettings {
	if settings, ok := m.settings[userID]; ok {
		return settings
	}
	return models.UserSettings{UserID: userID, Language: "en"}
}

func (m *Memory) ListUsers() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.settings))
	for id := range m.settings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *Memory) GetStats() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		TotalUsers:  int64(len(m.settings)),
		ActiveChats: int64(len(m.sessions) / 2),
		InQueue:     int64(len(m.queue)),
	}, nil
}
