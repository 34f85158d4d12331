// Package settings persists per-channel configuration, including whether a
// channel learns passively from unaddressed messages.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChannelSettings is one channel's stored configuration row. The Settings
// JSON column keeps the schema open for per-channel options.
type ChannelSettings struct {
	ChannelID   string         `json:"channel_id" gorm:"primaryKey;size:64"`
	CommunityID string         `json:"community_id" gorm:"index;size:64"`
	Settings    datatypes.JSON `json:"settings"`
}

func (ChannelSettings) TableName() string {
	return "channel_settings"
}

// Options is the decoded shape of the Settings column.
type Options struct {
	// Learning defaults to true when absent: every channel learns unless
	// someone turned it off.
	Learning *bool `json:"learning,omitempty"`
}

// Manager reads and writes channel settings rows.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Get fetches a channel's settings, creating a default row the first time a
// channel is seen.
func (m *Manager) Get(channelID, communityID string) (*ChannelSettings, error) {
	var cs ChannelSettings
	err := m.db.Where("channel_id = ?", channelID).First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cs = ChannelSettings{ChannelID: channelID, CommunityID: communityID, Settings: datatypes.JSON("{}")}
		if err := m.db.Create(&cs).Error; err != nil {
			return nil, fmt.Errorf("settings create failed: %w", err)
		}
		return &cs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings lookup failed: %w", err)
	}
	return &cs, nil
}

// LearningEnabled reports whether a channel learns from unaddressed
// messages. Lookup or decode failures land on the default (true) so a bad
// row never mutes a channel.
func (m *Manager) LearningEnabled(channelID, communityID string) bool {
	cs, err := m.Get(channelID, communityID)
	if err != nil {
		log.Printf("[Settings] WARNING: lookup failed for channel %s: %v", channelID, err)
		return true
	}
	var opts Options
	if len(cs.Settings) > 0 {
		if err := json.Unmarshal(cs.Settings, &opts); err != nil {
			log.Printf("[Settings] WARNING: bad settings row for channel %s: %v", channelID, err)
			return true
		}
	}
	if opts.Learning == nil {
		return true
	}
	return *opts.Learning
}

// SetLearning flips the learning flag for a channel.
func (m *Manager) SetLearning(channelID, communityID string, enabled bool) error {
	cs, err := m.Get(channelID, communityID)
	if err != nil {
		return err
	}
	var opts Options
	if len(cs.Settings) > 0 {
		_ = json.Unmarshal(cs.Settings, &opts)
	}
	opts.Learning = &enabled
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return m.db.Model(&ChannelSettings{}).Where("channel_id = ?", channelID).
		Update("settings", datatypes.JSON(raw)).Error
}

// DeleteChannel removes a channel's row when the channel goes away.
func (m *Manager) DeleteChannel(channelID string) error {
	return m.db.Where("channel_id = ?", channelID).Delete(&ChannelSettings{}).Error
}

// DeleteCommunity removes every row for a departed community.
func (m *Manager) DeleteCommunity(communityID string) error {
	return m.db.Where("community_id = ?", communityID).Delete(&ChannelSettings{}).Error
}
