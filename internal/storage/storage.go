// Package storage keeps per-guild records: the command history written by
// the command-logger middleware. Playback state is deliberately not
// persisted; sessions are rebuilt from scratch after a restart.
package storage

import (
	"encoding/json"
	"time"

	"github.com/SamOutabrae/Sprocket-music/datastore"
)

const commandHistoryLimit = 20

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything stored for one guild.
type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

type Storage struct {
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// LogCommand appends a command execution to the guild's capped history.
func (s *Storage) LogCommand(guildID, channelID, userID, username, command string) error {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, CommandHistoryRecord{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Command:   command,
		Datetime:  time.Now(),
	})
	if excess := len(record.CommandsHistoryList) - commandHistoryLimit; excess > 0 {
		record.CommandsHistoryList = record.CommandsHistoryList[excess:]
	}

	s.ds.Set(guildID, record)
	return nil
}

// CommandHistory returns the guild's recorded command executions, oldest
// first.
func (s *Storage) CommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}

// guildRecord loads the guild's record, creating an empty one on first use.
// Values read back from disk arrive as generic maps, so they go through a
// JSON round-trip.
func (s *Storage) guildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		return &Record{}, nil
	}
	if r, ok := data.(*Record); ok {
		return r, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
