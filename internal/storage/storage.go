// Package storage persists seat preferences and finished games in BadgerDB.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	keyGameSeq     = "seq/game"
	gamePrefix     = "game/"
)

// Preferences stores who sits at each color and how strong the bots are.
type Preferences struct {
	Username   string    `json:"username"`
	WhiteIsBot bool      `json:"white_is_bot"`
	BlackIsBot bool      `json:"black_is_bot"`
	WhiteLevel string    `json:"white_level"`
	BlackLevel string    `json:"black_level"`
	Flipped    bool      `json:"flipped"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns a human playing white against a medium bot.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Username:   "Player",
		BlackIsBot: true,
		WhiteLevel: "medium",
		BlackLevel: "medium",
	}
}

// GameRecord is a finished (or abandoned) game.
type GameRecord struct {
	ID       uint64        `json:"id"`
	StartFEN string        `json:"start_fen"`
	Moves    []string      `json:"moves"`
	SAN      []string      `json:"san"`
	Result   string        `json:"result"`
	Reason   string        `json:"reason,omitempty"`
	White    string        `json:"white"`
	Black    string        `json:"black"`
	PlayedAt time.Time     `json:"played_at"`
	Duration time.Duration `json:"duration"`
}

// GameStats aggregates the saved games.
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	WhiteWins     int           `json:"white_wins"`
	BlackWins     int           `json:"black_wins"`
	Draws         int           `json:"draws"`
	Unfinished    int           `json:"unfinished"`
	TotalPlayTime time.Duration `json:"total_play_time"`
	LongestGame   int           `json:"longest_game_plies"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	seq *badger.Sequence
	log zerolog.Logger
}

// Option configures Open.
type Option func(*config)

type config struct {
	log      zerolog.Logger
	inMemory bool
}

// WithLogger routes storage and badger messages to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) { c.log = logger }
}

// InMemory keeps the database in memory; nothing is written to disk.
func InMemory() Option {
	return func(c *config) { c.inMemory = true }
}

// NewStorage opens the database in the platform data directory.
func NewStorage(opts ...Option) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, opts...)
}

// Open opens (or creates) the database in dir. dir is ignored in memory mode.
func Open(dir string, opts ...Option) (*Storage, error) {
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	bopts := badger.DefaultOptions(dir).WithLogger(badgerLogger{cfg.log})
	if cfg.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{cfg.log})
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	seq, err := db.GetSequence([]byte(keyGameSeq), 16)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("game id sequence: %w", err)
	}

	cfg.log.Debug().Str("dir", dir).Bool("in_memory", cfg.inMemory).Msg("storage opened")
	return &Storage{db: db, seq: seq, log: cfg.log}, nil
}

// Close releases the id sequence and closes the database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.seq.Release(); err != nil {
		s.log.Warn().Err(err).Msg("release game sequence")
	}
	return s.db.Close()
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves seat preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put([]byte(keyPreferences), prefs)
}

// LoadPreferences loads seat preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.get([]byte(keyPreferences), prefs)
	if errors.Is(err, ErrNotFound) {
		return prefs, nil
	}
	return prefs, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := &GameStats{}
	err := s.get([]byte(keyStats), stats)
	if errors.Is(err, ErrNotFound) {
		return stats, nil
	}
	return stats, err
}

// SaveGame stores rec under a new id and folds it into the statistics in
// the same transaction. It returns the assigned id.
func (s *Storage) SaveGame(rec *GameRecord) (uint64, error) {
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next game id: %w", err)
	}
	rec.ID = n + 1
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		stats := &GameStats{}
		if err := getTxn(txn, []byte(keyStats), stats); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		stats.add(rec)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		if err := txn.Set(gameKey(rec.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
	if err != nil {
		return 0, fmt.Errorf("save game %d: %w", rec.ID, err)
	}

	s.log.Info().Uint64("id", rec.ID).Str("result", rec.Result).Int("plies", len(rec.Moves)).Msg("game saved")
	return rec.ID, nil
}

// LoadGame returns the game with the given id.
func (s *Storage) LoadGame(id uint64) (*GameRecord, error) {
	rec := &GameRecord{}
	if err := s.get(gameKey(id), rec); err != nil {
		return nil, fmt.Errorf("load game %d: %w", id, err)
	}
	return rec, nil
}

// RecentGames returns up to limit games, newest first. A limit of zero or
// less returns all of them.
func (s *Storage) RecentGames(limit int) ([]*GameRecord, error) {
	var out []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(gamePrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(gamePrefix)); it.Next() {
			rec := &GameRecord{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})

	return out, err
}

func (st *GameStats) add(rec *GameRecord) {
	st.GamesPlayed++
	st.TotalPlayTime += rec.Duration
	if len(rec.Moves) > st.LongestGame {
		st.LongestGame = len(rec.Moves)
	}
	switch rec.Result {
	case "1-0":
		st.WhiteWins++
	case "0-1":
		st.BlackWins++
	case "1/2-1/2":
		st.Draws++
	default:
		st.Unfinished++
	}
}

// gameKey orders games by id under the game prefix.
func gameKey(id uint64) []byte {
	key := make([]byte, len(gamePrefix)+8)
	copy(key, gamePrefix)
	binary.BigEndian.PutUint64(key[len(gamePrefix):], id)
	return key
}

func (s *Storage) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *Storage) get(key []byte, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		return getTxn(txn, key, v)
	})
}

func getTxn(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// badgerLogger adapts zerolog to badger's Logger interface. Badger's info
// chatter goes to debug level.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(trimNewline(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(trimNewline(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(trimNewline(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(trimNewline(format), args...)
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}
