package registry

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sdko-org/stream-gate/internal/config"
	"github.com/sdko-org/stream-gate/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	codeLength    = 8
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	usageLogLimit = 50
)

var ErrNotFound = errors.New("code not found")

// ValidationOutcome is the result of a single validation attempt.
type ValidationOutcome int

const (
	ValidationOK ValidationOutcome = iota
	ValidationNotFound
	ValidationInactive
	ValidationExpired
)

// Registry owns the mapping from code string to access code plus the
// append-only usage log. A single mutex guards all state, so every
// operation is one atomic read-check-write transition.
type Registry struct {
	mu    sync.Mutex
	codes map[string]*models.AccessCode
	log   []models.UsageLogEntry

	defaultMinutes int
	maxMinutes     int
	logger         *logrus.Entry
	now            func() time.Time
}

func New(logger *logrus.Logger, cfg *config.Config) *Registry {
	return &Registry{
		codes:          make(map[string]*models.AccessCode),
		defaultMinutes: cfg.DefaultCodeMinutes,
		maxMinutes:     cfg.MaxCodeMinutes,
		logger:         logger.WithField("component", "registry"),
		now:            time.Now,
	}
}

type GenerateResult struct {
	Code      string
	ExpiresAt time.Time
	Minutes   int
}

// Generate issues a new active code. A non-positive duration falls back to
// the configured default; durations above the configured maximum are
// clamped.
func (r *Registry) Generate(durationMinutes int) (GenerateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireDue()

	minutes := durationMinutes
	if minutes <= 0 {
		minutes = r.defaultMinutes
	}
	if minutes > r.maxMinutes {
		minutes = r.maxMinutes
	}

	code, err := r.newCode()
	if err != nil {
		return GenerateResult{}, err
	}

	now := r.now()
	expiresAt := now.Add(time.Duration(minutes) * time.Minute)
	r.codes[code] = &models.AccessCode{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	r.appendLog(code, models.ActionGenerated, fmt.Sprintf("Expires in %d minutes", minutes))

	r.logger.WithFields(logrus.Fields{
		"code":    code,
		"minutes": minutes,
	}).Info("Generated access code")

	return GenerateResult{Code: code, ExpiresAt: expiresAt, Minutes: minutes}, nil
}

// Validate redeems a code on behalf of usedBy (caller identity, typically
// the client IP). Matching is case-insensitive. A successful validation
// records the first redemption and leaves the code active until it expires
// or is revoked.
func (r *Registry) Validate(code, usedBy string) ValidationOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	justExpired := r.expireDue()

	key := strings.ToUpper(strings.TrimSpace(code))
	ac, ok := r.codes[key]
	if !ok {
		return ValidationNotFound
	}
	if !ac.IsActive {
		for _, expired := range justExpired {
			if expired == key {
				return ValidationExpired
			}
		}
		return ValidationInactive
	}

	if usedBy == "" {
		usedBy = "unknown"
	}
	if ac.UsedAt == nil {
		usedAt := r.now()
		ac.UsedAt = &usedAt
		ac.UsedBy = usedBy
	}
	r.appendLog(key, models.ActionUsed, "Used by "+usedBy)

	r.logger.WithFields(logrus.Fields{
		"code":    key,
		"used_by": usedBy,
	}).Info("Access code validated")

	return ValidationOK
}

// Revoke deactivates a code. Revoking an already-inactive code still
// succeeds and appends another log entry.
func (r *Registry) Revoke(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireDue()

	key := strings.ToUpper(strings.TrimSpace(code))
	ac, ok := r.codes[key]
	if !ok {
		return ErrNotFound
	}

	ac.IsActive = false
	r.appendLog(key, models.ActionRevoked, "Manually revoked by admin")

	r.logger.WithField("code", key).Info("Access code revoked")
	return nil
}

// AdminView returns all active codes (oldest first), the total number of
// codes ever issued, and the most recent usage log entries in insertion
// order.
func (r *Registry) AdminView() models.AdminView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireDue()

	active := make([]models.ActiveCodeView, 0, len(r.codes))
	for _, ac := range r.codes {
		if !ac.IsActive {
			continue
		}
		active = append(active, models.ActiveCodeView{
			Code:      ac.Code,
			ExpiresAt: ac.ExpiresAt,
			CreatedAt: ac.CreatedAt,
			UsedAt:    ac.UsedAt,
			UsedBy:    ac.UsedBy,
		})
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	logs := r.log
	if len(logs) > usageLogLimit {
		logs = logs[len(logs)-usageLogLimit:]
	}
	usage := make([]models.UsageLogEntry, len(logs))
	copy(usage, logs)

	return models.AdminView{
		ActiveCodes: active,
		TotalCodes:  len(r.codes),
		UsageLogs:   usage,
	}
}

// Sweep runs the expiry pass on its own, outside any request. Used by the
// background sweeper so idle servers still log expirations.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.expireDue())
}

// expireDue deactivates every active code whose expiry has passed and logs
// the transition. Idempotent: already-inactive codes are skipped. Returns
// the codes expired by this pass. Callers must hold r.mu.
func (r *Registry) expireDue() []string {
	now := r.now()
	var expired []string
	for code, ac := range r.codes {
		if ac.IsActive && ac.ExpiresAt.Before(now) {
			ac.IsActive = false
			r.appendLog(code, models.ActionExpired, "")
			expired = append(expired, code)
		}
	}
	return expired
}

// newCode draws 8 uniformly random characters from the 36-symbol alphabet
// using crypto/rand and retries on the (negligible) chance of a collision
// with an existing code. Callers must hold r.mu.
func (r *Registry) newCode() (string, error) {
	const maxAttempts = 10
	for attempt := 0; attempt < maxAttempts; attempt++ {
		buf := make([]byte, codeLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				return "", fmt.Errorf("random source failed: %w", err)
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		code := string(buf)
		if _, exists := r.codes[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unique code after %d attempts", maxAttempts)
}

func (r *Registry) appendLog(code string, action models.Action, details string) {
	r.log = append(r.log, models.UsageLogEntry{
		ID:        uuid.NewString(),
		Code:      code,
		Action:    action,
		Timestamp: r.now(),
		Details:   details,
	})
}
