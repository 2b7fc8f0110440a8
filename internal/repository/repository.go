// Package repository implements the Encrypted State-Check Repository
// (spec §3.6): client-resident persistence over a bbolt embedded store,
// with AES-256-GCM-at-rest encryption, retry-with-jittered-backoff on
// writes and single-record reads, and per-id write serialization.
package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/crypto"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

var (
	stateChecksBucket     = []byte("state_checks")
	baselineBucket        = []byte("facial_baseline")
	baselineHistoryBucket = []byte("facial_baseline_history")
	metaBucket            = []byte("meta")
	activeBaselineKey     = []byte("active")
	schemaVersionKey      = []byte("schema_version")
)

// StateCheckView is the decrypted read-side projection of a StateCheckRecord.
type StateCheckView struct {
	ID        string
	Timestamp time.Time
	Analysis  domain.FacialAnalysis
	Image     []byte
	UserNote  string
}

// Repository is the bbolt-backed State-Check Repository.
type Repository struct {
	db                    *bolt.DB
	cipher                *crypto.Cipher
	locks                 *keyedLock
	baselineMu            sync.Mutex
	baselineHistoryLimit  int
	recentStateCheckLimit int
	logger                *slog.Logger
	// readOnly is set at Open when the store's recorded schema version is
	// newer than domain.CurrentSchemaVersion (spec §4.5, §9): the store
	// opens successfully for reads, but every write is refused with
	// ErrSchemaMismatch so an older build never destroys newer records.
	readOnly bool
}

// Open opens (creating if absent) the bbolt database at path, prepares the
// buckets the repository needs, and reconciles the store's schema version.
// A nil logger defaults to slog.Default().
func Open(path string, cipher *crypto.Cipher, baselineHistoryLimit, recentStateCheckLimit int, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, domain.ErrStorage.WithError(fmt.Errorf("open store: %w", err))
	}

	var readOnly bool
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{stateChecksBucket, baselineBucket, baselineHistoryBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}

		meta := tx.Bucket(metaBucket)
		raw := meta.Get(schemaVersionKey)
		switch {
		case raw == nil:
			return meta.Put(schemaVersionKey, encodeSchemaVersion(domain.CurrentSchemaVersion))
		case decodeSchemaVersion(raw) > domain.CurrentSchemaVersion:
			readOnly = true
			return nil
		case decodeSchemaVersion(raw) < domain.CurrentSchemaVersion:
			return meta.Put(schemaVersionKey, encodeSchemaVersion(domain.CurrentSchemaVersion))
		default:
			return nil
		}
	})
	if err != nil {
		_ = db.Close()
		return nil, domain.ErrStorage.WithError(fmt.Errorf("create buckets: %w", err))
	}

	if readOnly {
		logger.Warn("store schema is newer than this build understands; opening read-only")
	}

	if baselineHistoryLimit <= 0 {
		baselineHistoryLimit = 30
	}
	if recentStateCheckLimit <= 0 {
		recentStateCheckLimit = 7
	}

	return &Repository{
		db:                    db,
		cipher:                cipher,
		locks:                 newKeyedLock(),
		baselineHistoryLimit:  baselineHistoryLimit,
		recentStateCheckLimit: recentStateCheckLimit,
		logger:                logger,
		readOnly:              readOnly,
	}, nil
}

func encodeSchemaVersion(v int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

func decodeSchemaVersion(raw []byte) int {
	return int(binary.BigEndian.Uint64(raw))
}

// classifyStorageErr maps a raw withRetry/db error onto the core's error
// taxonomy (spec §4.5, §7): context cancellation, quota exhaustion (fails
// fast, never retried — §6.3's contractual QuotaExceeded), and the
// generic storage-error fallback (§6.3's TransactionAborted).
func classifyStorageErr(err error) *domain.CoreError {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCanceled.WithError(err)
	case errors.Is(err, syscall.ENOSPC):
		return domain.ErrStorageQuota.WithError(err)
	default:
		return domain.ErrStorage.WithError(err)
	}
}

// Close releases the underlying bbolt file handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveStateCheck encrypts the analysis (and optional image) and persists
// the record, serialized per-id and retried with jittered backoff on
// transient failures.
func (r *Repository) SaveStateCheck(ctx context.Context, input domain.StateCheckInput) (domain.StateCheckRecord, error) {
	if r.readOnly {
		return domain.StateCheckRecord{}, domain.ErrSchemaMismatch
	}

	id := input.ID
	if id == "" {
		id = fmt.Sprintf("state_%d_%s", time.Now().UnixMilli(), uuid.NewString())
	}
	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	analysis := domain.OfflineFallback()
	if input.Analysis != nil {
		analysis = *input.Analysis
	}

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return domain.StateCheckRecord{}, domain.ErrStorage.WithError(fmt.Errorf("marshal analysis: %w", err))
	}

	analysisCipher, iv, err := r.cipher.Encrypt(analysisJSON)
	if err != nil {
		return domain.StateCheckRecord{}, domain.ErrStorage.WithError(err)
	}

	record := domain.StateCheckRecord{
		ID:             id,
		Timestamp:      ts,
		AnalysisCipher: analysisCipher,
		IV:             iv,
		UserNote:       input.UserNote,
		SchemaVersion:  domain.CurrentSchemaVersion,
	}

	if len(input.ImageBytes) > 0 {
		imgCipher, imgIV, err := r.cipher.Encrypt(input.ImageBytes)
		if err != nil {
			return domain.StateCheckRecord{}, domain.ErrStorage.WithError(err)
		}
		record.ImageCipher = imgCipher
		record.ImageIV = imgIV
	}

	err = r.locks.withLock(id, func() error {
		return withRetry(ctx, func() error {
			return r.db.Update(func(tx *bolt.Tx) error {
				encoded, err := json.Marshal(record)
				if err != nil {
					return err
				}
				return tx.Bucket(stateChecksBucket).Put([]byte(id), encoded)
			})
		})
	})
	if err != nil {
		return domain.StateCheckRecord{}, classifyStorageErr(err)
	}

	return record, nil
}

// GetStateCheck retrieves and decrypts a single record by id, retrying the
// underlying read alongside saveStateCheck per spec §4.5.
func (r *Repository) GetStateCheck(ctx context.Context, id string) (*StateCheckView, error) {
	var record domain.StateCheckRecord
	found := false

	err := withRetry(ctx, func() error {
		found = false
		return r.db.View(func(tx *bolt.Tx) error {
			raw := tx.Bucket(stateChecksBucket).Get([]byte(id))
			if raw == nil {
				return nil
			}
			found = true
			return json.Unmarshal(raw, &record)
		})
	})
	if err != nil {
		return nil, classifyStorageErr(err)
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	return r.decryptRecord(record)
}

// ListStateCheckIDs returns every persisted record id, unfiltered and
// undecrypted — used by internal/repair to walk the full store even when
// individual records fail to decrypt.
func (r *Repository) ListStateCheckIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateChecksBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}
	return ids, nil
}

// GetRecentStateChecks returns up to limit records (most recent first). A
// limit of 0 uses the configured default.
func (r *Repository) GetRecentStateChecks(ctx context.Context, limit int) ([]StateCheckView, error) {
	if limit <= 0 {
		limit = r.recentStateCheckLimit
	}

	var records []domain.StateCheckRecord
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(stateChecksBucket).ForEach(func(_, v []byte) error {
			var rec domain.StateCheckRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if len(records) > limit {
		records = records[:limit]
	}

	views := make([]StateCheckView, 0, len(records))
	var skipped []string
	for _, rec := range records {
		view, err := r.decryptRecord(rec)
		if err != nil {
			if errors.Is(err, domain.ErrDecrypt) {
				skipped = append(skipped, rec.ID)
				continue
			}
			return nil, err
		}
		views = append(views, *view)
	}
	if len(skipped) > 0 {
		r.logger.Warn("skipped undecryptable state-check records on bulk read", "count", len(skipped), "ids", skipped)
	}
	return views, nil
}

func (r *Repository) decryptRecord(record domain.StateCheckRecord) (*StateCheckView, error) {
	if record.SchemaVersion > domain.CurrentSchemaVersion {
		return nil, domain.ErrSchemaMismatch
	}

	plain, err := r.cipher.Decrypt(record.AnalysisCipher, record.IV)
	if err != nil {
		return nil, domain.ErrDecrypt.WithError(err)
	}

	var analysis domain.FacialAnalysis
	if err := json.Unmarshal(plain, &analysis); err != nil {
		return nil, domain.ErrStorage.WithError(fmt.Errorf("unmarshal analysis: %w", err))
	}

	view := &StateCheckView{
		ID:        record.ID,
		Timestamp: record.Timestamp,
		Analysis:  analysis,
		UserNote:  record.UserNote,
	}

	if len(record.ImageCipher) > 0 {
		image, err := r.cipher.Decrypt(record.ImageCipher, record.ImageIV)
		if err != nil {
			return nil, domain.ErrDecrypt.WithError(err)
		}
		view.Image = image
	}

	return view, nil
}

// SaveBaseline writes the new active baseline, moving the previous active
// baseline into the history bucket (Open Question 4: retained for audit,
// see DESIGN.md).
func (r *Repository) SaveBaseline(ctx context.Context, b domain.Baseline) error {
	if r.readOnly {
		return domain.ErrSchemaMismatch
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}

	r.baselineMu.Lock()
	defer r.baselineMu.Unlock()

	err := withRetry(ctx, func() error {
		return r.db.Update(func(tx *bolt.Tx) error {
			active := tx.Bucket(baselineBucket)
			history := tx.Bucket(baselineHistoryBucket)

			if prev := active.Get(activeBaselineKey); prev != nil {
				if err := history.Put([]byte(fmt.Sprintf("%d", time.Now().UnixNano())), prev); err != nil {
					return err
				}
				if err := trimHistory(history, r.baselineHistoryLimit); err != nil {
					return err
				}
			}

			encoded, err := json.Marshal(b)
			if err != nil {
				return err
			}
			return active.Put(activeBaselineKey, encoded)
		})
	})
	if err != nil {
		return classifyStorageErr(err)
	}
	return nil
}

// GetBaseline returns the active baseline, or nil if none has been set.
func (r *Repository) GetBaseline(ctx context.Context) (*domain.Baseline, error) {
	var baseline *domain.Baseline

	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(baselineBucket).Get(activeBaselineKey)
		if raw == nil {
			return nil
		}
		var b domain.Baseline
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		baseline = &b
		return nil
	})
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}
	return baseline, nil
}

// GetBaselineHistory returns superseded baselines, oldest first, capped at
// the configured retention limit.
func (r *Repository) GetBaselineHistory(ctx context.Context) ([]domain.Baseline, error) {
	var out []domain.Baseline

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(baselineHistoryBucket).ForEach(func(_, v []byte) error {
			var b domain.Baseline
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			out = append(out, b)
			return nil
		})
	})
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}
	return out, nil
}

// trimHistory deletes the oldest entries once the history bucket exceeds
// limit. Must be called inside an *bolt.Tx.Update.
func trimHistory(bucket *bolt.Bucket, limit int) error {
	count := bucket.Stats().KeyN
	if count <= limit {
		return nil
	}

	c := bucket.Cursor()
	toDelete := count - limit
	for k, _ := c.First(); k != nil && toDelete > 0; k, _ = c.Next() {
		if err := bucket.Delete(k); err != nil {
			return err
		}
		toDelete--
	}
	return nil
}
