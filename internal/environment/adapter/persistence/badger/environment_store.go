package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"docdb-dashboard/internal/environment/adapter/security"
	"docdb-dashboard/internal/environment/config"
	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/environment/domain/repository"
	sharederrors "docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"

	"github.com/dgraph-io/badger/v4"
)

const (
	environmentPrefix = "env:"
	saltKey           = "meta:salt"
)

// storedEnvironment is the on-disk form. Passwords only ever appear sealed.
type storedEnvironment struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Hostname       string    `json:"hostname"`
	Port           string    `json:"port"`
	Username       string    `json:"username"`
	SealedPassword []byte    `json:"sealedPassword,omitempty"`
	Database       string    `json:"database"`
	SSL            bool      `json:"ssl"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EnvironmentStore keeps connection profiles in Badger.
type EnvironmentStore struct {
	db     *badger.DB
	sealer repository.PasswordSealer // nil without ENVIRONMENTS_SECRET
	logger logger.Logger
}

var _ repository.EnvironmentRepository = (*EnvironmentStore)(nil)

// NewEnvironmentStore opens the store described by cfg.
func NewEnvironmentStore(cfg *config.EnvironmentStoreConfig, log logger.Logger) (*EnvironmentStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory() {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{log: log}
	opts.NumVersionsToKeep = 1

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open environment store: %w", err)
	}

	s := &EnvironmentStore{db: db, logger: log}

	if cfg.CanSealPasswords() {
		salt, err := s.loadOrCreateSalt()
		if err != nil {
			db.Close()
			return nil, err
		}
		sealer, err := security.NewSecretboxSealer(cfg.Secret, salt)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to derive sealing key: %w", err)
		}
		s.sealer = sealer
	} else {
		log.Warn("ENVIRONMENTS_SECRET is not set; environments with passwords cannot be saved")
	}

	log.WithFields(map[string]interface{}{"path": cfg.Path, "in_memory": cfg.InMemory()}).Info("Environment store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *EnvironmentStore) Close() error {
	return s.db.Close()
}

func (s *EnvironmentStore) loadOrCreateSalt() ([]byte, error) {
	var salt []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(saltKey))
		if err == nil {
			salt, err = item.ValueCopy(nil)
			return err
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		salt, err = security.NewSalt()
		if err != nil {
			return err
		}
		return txn.Set([]byte(saltKey), salt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sealing salt: %w", err)
	}
	return salt, nil
}

func environmentKey(id string) []byte {
	return []byte(environmentPrefix + id)
}

func notFound(id string) error {
	return sharederrors.NewNotFoundError("environment").
		WithCause(sharederrors.ErrEnvironmentGone).
		WithDetail("id", id)
}

// List returns all profiles sorted by name. A password that cannot be
// unsealed is logged and left empty so one bad record does not hide the rest.
func (s *EnvironmentStore) List(ctx context.Context) ([]*model.Environment, error) {
	var records []storedEnvironment
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = scanEnvironments(txn)
		return err
	})
	if err != nil {
		return nil, sharederrors.WrapError(err, "failed to list environments")
	}

	envs := make([]*model.Environment, 0, len(records))
	for i := range records {
		env, err := s.toModel(&records[i])
		if err != nil {
			s.logger.WithFields(map[string]interface{}{"id": records[i].ID, "error": err.Error()}).Warn("Failed to unseal environment password")
			env.Password = ""
		}
		envs = append(envs, env)
	}

	sort.SliceStable(envs, func(i, j int) bool {
		if envs[i].Name == envs[j].Name {
			return envs[i].ID < envs[j].ID
		}
		return envs[i].Name < envs[j].Name
	})
	return envs, nil
}

// Get returns one profile with its password in clear.
func (s *EnvironmentStore) Get(ctx context.Context, id string) (*model.Environment, error) {
	var rec *storedEnvironment
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getEnvironment(txn, id)
		return err
	})
	if err != nil {
		return nil, s.translate(err, id, "failed to load environment")
	}
	return s.toModelStrict(rec)
}

// Save inserts or replaces a profile.
func (s *EnvironmentStore) Save(ctx context.Context, env *model.Environment) error {
	rec, err := s.toStored(env)
	if err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return sharederrors.WrapError(err, "failed to encode environment")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(environmentKey(env.ID), data)
	})
	if err != nil {
		return sharederrors.WrapError(err, "failed to save environment")
	}
	return nil
}

// Delete removes a profile.
func (s *EnvironmentStore) Delete(ctx context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(environmentKey(id)); err != nil {
			return err
		}
		return txn.Delete(environmentKey(id))
	})
	if err != nil {
		return s.translate(err, id, "failed to delete environment")
	}
	return nil
}

// SetActive flips the active flag to id in a single transaction.
func (s *EnvironmentStore) SetActive(ctx context.Context, id string) (*model.Environment, error) {
	now := time.Now().UTC()
	var target *storedEnvironment

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := getEnvironment(txn, id); err != nil {
			return err
		}

		records, err := scanEnvironments(txn)
		if err != nil {
			return err
		}

		for i := range records {
			rec := &records[i]
			want := rec.ID == id
			if rec.IsActive == want {
				if want {
					target = rec
				}
				continue
			}

			rec.IsActive = want
			rec.UpdatedAt = now
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := txn.Set(environmentKey(rec.ID), data); err != nil {
				return err
			}
			if want {
				target = rec
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.translate(err, id, "failed to activate environment")
	}
	return s.toModelStrict(target)
}

// Active returns the active profile, or nil if none is marked.
func (s *EnvironmentStore) Active(ctx context.Context) (*model.Environment, error) {
	var active *storedEnvironment
	err := s.db.View(func(txn *badger.Txn) error {
		records, err := scanEnvironments(txn)
		if err != nil {
			return err
		}
		for i := range records {
			if records[i].IsActive {
				active = &records[i]
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, sharederrors.WrapError(err, "failed to load active environment")
	}
	if active == nil {
		return nil, nil
	}
	return s.toModelStrict(active)
}

func (s *EnvironmentStore) translate(err error, id, message string) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound(id)
	}
	return sharederrors.WrapError(err, message)
}

func getEnvironment(txn *badger.Txn, id string) (*storedEnvironment, error) {
	item, err := txn.Get(environmentKey(id))
	if err != nil {
		return nil, err
	}

	var rec storedEnvironment
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanEnvironments(txn *badger.Txn) ([]storedEnvironment, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(environmentPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var records []storedEnvironment
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		var rec storedEnvironment
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
		if err != nil {
			return nil, fmt.Errorf("corrupt environment record %q: %w", it.Item().Key(), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *EnvironmentStore) toStored(env *model.Environment) (*storedEnvironment, error) {
	rec := &storedEnvironment{
		ID:        env.ID,
		Name:      env.Name,
		Hostname:  env.Hostname,
		Port:      env.Port,
		Username:  env.Username,
		Database:  env.Database,
		SSL:       env.SSL,
		IsActive:  env.IsActive,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
	}

	if env.Password == "" {
		return rec, nil
	}
	if s.sealer == nil {
		return nil, sharederrors.NewConfigurationError("ENVIRONMENTS_SECRET is not configured; refusing to store passwords in clear")
	}

	sealed, err := s.sealer.Seal(env.Password)
	if err != nil {
		return nil, sharederrors.WrapError(err, "failed to seal password")
	}
	rec.SealedPassword = sealed
	return rec, nil
}

// toModel always returns a usable environment; err reports only a password
// that could not be unsealed.
func (s *EnvironmentStore) toModel(rec *storedEnvironment) (*model.Environment, error) {
	env := &model.Environment{
		ID:        rec.ID,
		Name:      rec.Name,
		Hostname:  rec.Hostname,
		Port:      rec.Port,
		Username:  rec.Username,
		Database:  rec.Database,
		SSL:       rec.SSL,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	if len(rec.SealedPassword) == 0 {
		return env, nil
	}
	if s.sealer == nil {
		return env, sharederrors.NewConfigurationError("ENVIRONMENTS_SECRET is not configured; stored passwords cannot be read")
	}

	password, err := s.sealer.Open(rec.SealedPassword)
	if err != nil {
		return env, sharederrors.NewConfigurationError("stored password cannot be unsealed; was ENVIRONMENTS_SECRET changed?").WithCause(err)
	}
	env.Password = password
	return env, nil
}

func (s *EnvironmentStore) toModelStrict(rec *storedEnvironment) (*model.Environment, error) {
	env, err := s.toModel(rec)
	if err != nil {
		return nil, err
	}
	return env, nil
}
