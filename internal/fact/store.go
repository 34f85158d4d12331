package fact

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLocked is returned for writes against a locked fact. Only Lock/Unlock
// may touch a locked row.
var ErrLocked = errors.New("fact is locked against changes")

// Store is the persistence facade for facts. All lookups and writes
// normalize the key first; an empty normalized key is never stored.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the fact for key, or nil when there is no such fact.
func (s *Store) Get(key string) (*Fact, error) {
	key = NormalizeKey(key)
	if key == "" {
		return nil, nil
	}
	var f Fact
	err := s.db.Where("key_word = ?", key).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fact lookup failed: %w", err)
	}
	return &f, nil
}

// Set upserts a fact by key. Writes against a locked fact fail with ErrLocked.
func (s *Store) Set(key, value, word, setBy string, when int64, locked bool) error {
	key = NormalizeKey(key)
	if key == "" {
		return errors.New("empty key")
	}
	existing, err := s.Get(key)
	if err != nil {
		return err
	}
	if existing != nil && existing.Locked {
		return ErrLocked
	}
	f := Fact{Key: key, Value: value, Word: word, SetBy: setBy, WhenSet: when, Locked: locked}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key_word"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "word", "set_by", "when_set", "locked"}),
	}).Create(&f).Error
	if err != nil {
		return fmt.Errorf("fact upsert failed: %w", err)
	}
	return nil
}

// Delete removes a fact by key. Deleting a locked fact fails with ErrLocked.
func (s *Store) Delete(key string) error {
	key = NormalizeKey(key)
	if key == "" {
		return nil
	}
	existing, err := s.Get(key)
	if err != nil {
		return err
	}
	if existing != nil && existing.Locked {
		return ErrLocked
	}
	if err := s.db.Where("key_word = ?", key).Delete(&Fact{}).Error; err != nil {
		return fmt.Errorf("fact delete failed: %w", err)
	}
	return nil
}

// Count returns the number of stored facts.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&Fact{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("fact count failed: %w", err)
	}
	return count, nil
}

// SetLocked is the privileged path that flips the locked flag regardless of
// its current state.
func (s *Store) SetLocked(key string, locked bool) error {
	key = NormalizeKey(key)
	if key == "" {
		return errors.New("empty key")
	}
	err := s.db.Model(&Fact{}).Where("key_word = ?", key).Update("locked", locked).Error
	if err != nil {
		return fmt.Errorf("fact lock update failed: %w", err)
	}
	return nil
}
