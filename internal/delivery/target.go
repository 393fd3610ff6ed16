// internal/delivery/target.go
package delivery

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const maxSinkURLLength = 500

var sinkURLPattern = regexp.MustCompile(`^https?://[\w\-.]+(:\d+)?(/[\w\-.~:/?#\[\]@!$&'()*+,;=%]+)?$`)

// ValidateSinkURL checks an operator-supplied sink URL and returns it trimmed.
func ValidateSinkURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	switch {
	case !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://"):
		return "", apperrors.NewInvalidSinkURLError("URL deve começar com http:// ou https://")
	case len(u) > maxSinkURLLength:
		return "", apperrors.NewInvalidSinkURLError("URL é muito longa")
	case !sinkURLPattern.MatchString(u):
		return "", apperrors.NewInvalidSinkURLError("URL contém caracteres inválidos")
	}
	return u, nil
}

// hostAllowed reports whether host is one of domains or a subdomain of one.
func hostAllowed(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// TargetStore persists the sink URL across restarts.
type TargetStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, sinkURL string) error
}

type RedisTargetStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisTargetStore(client redis.Cmdable, prefix string) *RedisTargetStore {
	return &RedisTargetStore{client: client, key: prefix + ":webhook_url"}
}

// Load returns "" when no URL was ever saved.
func (s *RedisTargetStore) Load(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewExternalServiceError("redis", fmt.Errorf("load sink url: %w", err))
	}
	return v, nil
}

func (s *RedisTargetStore) Save(ctx context.Context, sinkURL string) error {
	if err := s.client.Set(ctx, s.key, sinkURL, 0).Err(); err != nil {
		return apperrors.NewExternalServiceError("redis", fmt.Errorf("save sink url: %w", err))
	}
	return nil
}

// MemoryTargetStore keeps the URL for the life of the process.
type MemoryTargetStore struct {
	mu  sync.Mutex
	url string
}

func (s *MemoryTargetStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *MemoryTargetStore) Save(_ context.Context, sinkURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = sinkURL
	return nil
}

// Target is the current sink URL shared by every delivery.
type Target struct {
	mu      sync.RWMutex
	url     string
	store   TargetStore
	allowed []string
	logger  logger.Logger
}

func NewTarget(store TargetStore, initial string, allowedDomains []string, log logger.Logger) *Target {
	return &Target{
		url:     strings.TrimSpace(initial),
		store:   store,
		allowed: allowedDomains,
		logger:  logger.ForComponent(log, "sink-target"),
	}
}

// Init replaces the configured URL with the persisted one, if any.
func (t *Target) Init(ctx context.Context) error {
	saved, err := t.store.Load(ctx)
	if err != nil {
		return err
	}
	if saved == "" {
		return nil
	}

	t.mu.Lock()
	t.url = saved
	t.mu.Unlock()
	t.logger.Info("sink url loaded", map[string]interface{}{"url": saved})
	return nil
}

func (t *Target) URL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.url
}

// Update validates, persists and activates a new sink URL. Hosts outside the
// allowed domains are accepted with a warning.
func (t *Target) Update(ctx context.Context, raw string) (string, error) {
	u, err := ValidateSinkURL(raw)
	if err != nil {
		return "", err
	}

	if parsed, perr := url.Parse(u); perr == nil && !hostAllowed(parsed.Hostname(), t.allowed) {
		t.logger.Warn("sink url outside allowed domains", map[string]interface{}{
			"host":    parsed.Hostname(),
			"allowed": t.allowed,
		})
	}

	if err := t.store.Save(ctx, u); err != nil {
		return "", err
	}

	t.mu.Lock()
	t.url = u
	t.mu.Unlock()
	t.logger.Info("sink url updated", map[string]interface{}{"url": u})
	return u, nil
}
