package amqp

import (
	"encoding/json"
	"time"
)

// Backup message actions.
const (
	BackupActionSync   = "sync"
	BackupActionDelete = "delete"
)

// AlarmRequest asks the alarm worker to fire one local notification after
// DelaySeconds elapse. There is no delivery acknowledgment back to the
// producer and no cancellation id.
type AlarmRequest struct {
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	DelaySeconds int64     `json:"delay_seconds"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewAlarmRequest(title, body string, delaySeconds int64) *AlarmRequest {
	return &AlarmRequest{
		Title:        title,
		Body:         body,
		DelaySeconds: delaySeconds,
		Timestamp:    time.Now(),
	}
}

func (m *AlarmRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlarmRequestFromJSON(data []byte) (*AlarmRequest, error) {
	var msg AlarmRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BackupMessage is a lightweight pointer to a transaction that the backup
// worker should mirror to (or remove from) the backup sheet. The worker
// fetches the full record from storage by id.
type BackupMessage struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewBackupMessage(transactionID, userID, action string) *BackupMessage {
	return &BackupMessage{
		TransactionID: transactionID,
		UserID:        userID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

func (m *BackupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BackupMessageFromJSON(data []byte) (*BackupMessage, error) {
	var msg BackupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
