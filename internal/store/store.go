// Package store persists user accounts and search history in a local bbolt
// database.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"

	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/news"
)

var (
	usersBucket   = []byte("users")
	emailsBucket  = []byte("emails") // email -> username index
	historyBucket = []byte("search_history")
)

var (
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an account record. PasswordHash never leaves this package.
type User struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	PasswordHash []byte `json:"password_hash,omitempty"`
}

// SearchRecord is one logged search, including the articles it returned so
// past results can be reviewed without re-aggregating.
type SearchRecord struct {
	UserID      uint64         `json:"user_id"`
	Query       string         `json:"query"`
	ResultCount int            `json:"result_count"`
	Articles    []news.Article `json:"articles,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Store wraps the bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database and its buckets.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{usersBucket, emailsBucket, historyBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser registers an account. Usernames and emails are unique,
// compared case-insensitively.
func (s *Store) CreateUser(username, email, password, role string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}
	if role == "" {
		role = "user"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
		PasswordHash: hash,
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(usersBucket)
		emails := tx.Bucket(emailsBucket)

		if users.Get([]byte(username)) != nil || emails.Get([]byte(email)) != nil {
			return ErrUserExists
		}

		id, err := users.NextSequence()
		if err != nil {
			return err
		}
		user.ID = id

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := users.Put([]byte(username), data); err != nil {
			return err
		}
		return emails.Put([]byte(email), []byte(username))
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user created", "username", username, "role", role)
	return user.sanitized(), nil
}

// VerifyUser checks a username-or-email identifier against a password and
// updates the last-login timestamp on success.
func (s *Store) VerifyUser(identifier, password string) (*User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	var user *User
	err := s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(usersBucket)

		key := []byte(identifier)
		data := users.Get(key)
		if data == nil {
			if username := tx.Bucket(emailsBucket).Get(key); username != nil {
				key = username
				data = users.Get(key)
			}
		}
		if data == nil {
			return ErrInvalidCredentials
		}

		var u User
		if err := json.Unmarshal(data, &u); err != nil {
			return fmt.Errorf("decode user record: %w", err)
		}
		if !u.Active {
			return ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
			return ErrInvalidCredentials
		}

		now := time.Now()
		u.LastLogin = &now
		updated, err := json.Marshal(&u)
		if err != nil {
			return err
		}
		if err := users.Put(key, updated); err != nil {
			return err
		}

		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user.sanitized(), nil
}

// EnsureAdmin creates the admin account on first run; an existing admin is
// left untouched.
func (s *Store) EnsureAdmin(username, email, password string) error {
	_, err := s.CreateUser(username, email, password, "admin")
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}

// LogSearch appends a search to the history.
func (s *Store) LogSearch(userID uint64, query string, resultCount int, articles []news.Article) error {
	record := SearchRecord{
		UserID:      userID,
		Query:       query,
		ResultCount: resultCount,
		Articles:    articles,
		Timestamp:   time.Now(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		history := tx.Bucket(historyBucket)
		seq, err := history.NextSequence()
		if err != nil {
			return err
		}
		return history.Put(seqKey(seq), data)
	})
}

// SearchHistory returns a user's searches, newest first, up to limit.
func (s *Store) SearchHistory(userID uint64, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []SearchRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var r SearchRecord
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			if r.UserID == userID {
				records = append(records, r)
			}
		}
		return nil
	})
	return records, err
}

// RecentQueries returns the distinct queries searched since the given time,
// across all users. The cache warmer re-runs these.
func (s *Store) RecentQueries(since time.Time) ([]string, error) {
	seen := make(map[string]bool)
	var queries []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(historyBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r SearchRecord
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			if r.Timestamp.Before(since) {
				break
			}
			q := strings.ToLower(strings.TrimSpace(r.Query))
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			queries = append(queries, r.Query)
		}
		return nil
	})
	return queries, err
}

func (u *User) sanitized() *User {
	out := *u
	out.PasswordHash = nil
	return &out
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
