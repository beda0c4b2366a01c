package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	cport "github.com/ruturajs19/chat-app/internal/infrastructure/cache/port"
	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/repository/port"
)

const profileKeyPrefix = "chat:profile:"

// ProfileClientConfig configures HTTPProfileRepository.
type ProfileClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// HTTPProfileRepository looks profiles up in the user service, fronted by a
// process-local LRU and the shared cache.
type HTTPProfileRepository struct {
	http   *resty.Client
	shared cport.Cache
	ttl    time.Duration
	log    zerolog.Logger

	mu    sync.Mutex
	local *lru.Cache
}

type localEntry struct {
	profile   chat.Profile
	expiresAt time.Time
}

// userDocument mirrors the user service response body.
type userDocument struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewHTTPProfileRepository(cfg ProfileClientConfig, shared cport.Cache, log zerolog.Logger) (*HTTPProfileRepository, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("profile: base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	local, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("profile: create lru: %w", err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &HTTPProfileRepository{
		http:   client,
		shared: shared,
		ttl:    cfg.CacheTTL,
		log:    log.With().Str("component", "profiles").Logger(),
		local:  local,
	}, nil
}

var _ repository.ProfileRepository = (*HTTPProfileRepository)(nil)

func (r *HTTPProfileRepository) FindByID(ctx context.Context, id string) (chat.Profile, error) {
	if id == "" {
		return chat.Profile{}, repository.ErrProfileNotFound
	}
	if p, ok := r.getLocal(id); ok {
		metrics.RecordProfileLookup("local")
		return p, nil
	}
	if p, ok := r.getShared(ctx, id); ok {
		metrics.RecordProfileLookup("shared")
		r.putLocal(p)
		return p, nil
	}

	var doc userDocument
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&doc).
		Get("/api/v1/user/" + url.PathEscape(id))
	if err != nil {
		metrics.RecordProfileLookup("error")
		return chat.Profile{}, fmt.Errorf("profile: request user %s: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		metrics.RecordProfileLookup("missing")
		return chat.Profile{}, repository.ErrProfileNotFound
	}
	if resp.IsError() {
		metrics.RecordProfileLookup("error")
		return chat.Profile{}, fmt.Errorf("profile: user service returned %d", resp.StatusCode())
	}

	p := chat.Profile{ID: doc.ID, Name: doc.Name, Email: doc.Email}
	if p.ID == "" {
		p.ID = id
	}
	metrics.RecordProfileLookup("remote")
	r.putLocal(p)
	r.putShared(ctx, p)
	return p, nil
}

func (r *HTTPProfileRepository) getLocal(id string) (chat.Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.local.Get(id)
	if !ok {
		return chat.Profile{}, false
	}
	e := v.(localEntry)
	if r.ttl > 0 && time.Now().After(e.expiresAt) {
		r.local.Remove(id)
		return chat.Profile{}, false
	}
	return e.profile, true
}

func (r *HTTPProfileRepository) putLocal(p chat.Profile) {
	r.mu.Lock()
	r.local.Add(p.ID, localEntry{profile: p, expiresAt: time.Now().Add(r.ttl)})
	r.mu.Unlock()
}

func (r *HTTPProfileRepository) getShared(ctx context.Context, id string) (chat.Profile, bool) {
	if r.shared == nil {
		return chat.Profile{}, false
	}
	raw, err := r.shared.Get(ctx, profileKeyPrefix+id)
	if err != nil {
		if !errors.Is(err, cport.ErrMiss) {
			r.log.Warn().Err(err).Str("user_id", id).Msg("shared profile cache read failed")
		}
		return chat.Profile{}, false
	}
	var doc userDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return chat.Profile{}, false
	}
	return chat.Profile{ID: doc.ID, Name: doc.Name, Email: doc.Email}, true
}

func (r *HTTPProfileRepository) putShared(ctx context.Context, p chat.Profile) {
	if r.shared == nil {
		return
	}
	raw, err := json.Marshal(userDocument{ID: p.ID, Name: p.Name, Email: p.Email})
	if err != nil {
		return
	}
	if err := r.shared.Set(ctx, profileKeyPrefix+p.ID, string(raw), r.ttl); err != nil {
		r.log.Warn().Err(err).Str("user_id", p.ID).Msg("shared profile cache write failed")
	}
}
