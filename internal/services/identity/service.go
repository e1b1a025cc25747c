// Package identity resolves guest sign-ins by name: exact matches return,
// near-duplicates are challenged with suggestions, unknown names provision
// a fresh guest.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snapfest/snapfest/internal/dependencies/clock"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/namekey"
	"github.com/snapfest/snapfest/internal/similarity"
	"github.com/snapfest/snapfest/internal/storage"
)

// Errors
var (
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrUnknownRole       = errors.New("role cannot be granted by access code")
)

// NicknamePolicy decides what a sign-in does with the submitted nickname
// when the guest already has one.
type NicknamePolicy string

const (
	// NicknameOverwrite replaces the stored nickname whenever a non-empty
	// one is submitted.
	NicknameOverwrite NicknamePolicy = "overwrite"
	// NicknameFillEmpty only sets a nickname the guest doesn't have yet.
	NicknameFillEmpty NicknamePolicy = "fill-empty"
)

// Config holds configuration for the identity service
type Config struct {
	NicknamePolicy NicknamePolicy

	// Bcrypt hashes of the role access codes. An empty hash disables
	// elevation to that role.
	HostCodeHash       string
	AuthorizedCodeHash string
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		NicknamePolicy: NicknameOverwrite,
	}
}

// SignInResult is the outcome of a resolved sign-in.
type SignInResult struct {
	Guest *model.Guest
	// Returning is true when the name matched an existing guest rather
	// than provisioning a new one.
	Returning bool
}

// Service handles guest identity resolution
type Service struct {
	store  storage.Store
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// New creates a new identity Service
func New(store storage.Store, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.NicknamePolicy == "" {
		cfg.NicknamePolicy = DefaultConfig().NicknamePolicy
	}
	return &Service{
		store:  store,
		clock:  clock,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "identity")),
	}
}

// SignIn resolves rawName to a guest. An exact normalized match returns the
// existing guest; similar existing names surface as *model.AmbiguousNameError
// so the caller can offer suggestions; otherwise a new guest is provisioned.
func (s *Service) SignIn(ctx context.Context, rawName, rawNickname string) (*SignInResult, error) {
	key := namekey.Normalize(rawName)
	if key == "" {
		return nil, model.ErrEmptyName
	}

	existing, err := s.store.GetGuestByNormalizedName(ctx, key)
	if err == nil {
		guest, err := s.welcomeBack(ctx, existing, rawNickname)
		if err != nil {
			return nil, err
		}
		return &SignInResult{Guest: guest, Returning: true}, nil
	}
	if !errors.Is(err, model.ErrGuestNotFound) {
		return nil, err
	}

	suggestions, err := s.findSimilar(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(suggestions) > 0 {
		return nil, &model.AmbiguousNameError{Suggestions: suggestions}
	}

	return s.provision(ctx, rawName, key, rawNickname)
}

// ConfirmSuggestion signs in as a suggested guest directly, bypassing
// similarity. This is the only sanctioned path onto a near-duplicate name.
func (s *Service) ConfirmSuggestion(ctx context.Context, id model.GuestID, rawNickname string) (*model.Guest, error) {
	guest, err := s.store.GetGuest(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.welcomeBack(ctx, guest, rawNickname)
}

// ElevateRole grants a privileged role in exchange for its access code.
func (s *Service) ElevateRole(ctx context.Context, id model.GuestID, accessCode string, role model.Role) (*model.Guest, error) {
	var hash string
	switch role {
	case model.RoleHost:
		hash = s.cfg.HostCodeHash
	case model.RoleAuthorized:
		hash = s.cfg.AuthorizedCodeHash
	default:
		return nil, ErrUnknownRole
	}

	if hash == "" {
		return nil, ErrInvalidAccessCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(accessCode)); err != nil {
		return nil, ErrInvalidAccessCode
	}

	if err := s.store.SetGuestRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role elevated",
		slog.String("guest_id", string(id)),
		slog.String("role", string(role)))
	return s.store.GetGuest(ctx, id)
}

// welcomeBack records activity on an existing guest and applies the
// nickname policy, returning the refreshed record.
func (s *Service) welcomeBack(ctx context.Context, guest *model.Guest, rawNickname string) (*model.Guest, error) {
	if err := s.store.TouchGuest(ctx, guest.ID, s.clock.Now()); err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(rawNickname)
	if nickname != "" && nickname != guest.Nickname {
		overwrite := s.cfg.NicknamePolicy == NicknameOverwrite
		if overwrite || guest.Nickname == "" {
			if err := s.store.SetGuestNickname(ctx, guest.ID, nickname); err != nil {
				return nil, err
			}
		}
	}

	return s.store.GetGuest(ctx, guest.ID)
}

// findSimilar collects existing guests whose normalized names are close
// enough to key to suspect a typo or partial name.
func (s *Service) findSimilar(ctx context.Context, key string) ([]*model.Guest, error) {
	guests, err := s.store.ListGuests(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]similarity.Entry, len(guests))
	byID := make(map[model.GuestID]*model.Guest, len(guests))
	for i, g := range guests {
		pool[i] = similarity.Entry{ID: g.ID, Key: g.NormalizedName}
		byID[g.ID] = g
	}

	ids := similarity.FindCandidates(key, pool)
	suggestions := make([]*model.Guest, 0, len(ids))
	for _, id := range ids {
		suggestions = append(suggestions, byID[id])
	}
	return suggestions, nil
}

// provision creates a brand-new guest for an unclaimed name. The store's
// create-if-absent name claim makes this safe under concurrent sign-ins:
// the loser of a race signs in as the guest the winner just created.
func (s *Service) provision(ctx context.Context, rawName, key, rawNickname string) (*SignInResult, error) {
	now := s.clock.Now()
	guest := &model.Guest{
		ID:             model.GuestID(uuid.NewString()),
		DisplayName:    namekey.FormatDisplay(rawName),
		NormalizedName: key,
		Nickname:       strings.TrimSpace(rawNickname),
		Role:           model.RoleGuest,
		CreatedAt:      now,
		LastActiveAt:   now,
	}

	err := s.store.CreateGuest(ctx, guest)
	if err == nil {
		s.logger.InfoContext(ctx, "guest provisioned",
			slog.String("guest_id", string(guest.ID)),
			slog.String("display_name", guest.DisplayName))
		return &SignInResult{Guest: guest, Returning: false}, nil
	}
	if !errors.Is(err, model.ErrNameTaken) {
		return nil, err
	}

	winner, err := s.store.GetGuestByNormalizedName(ctx, key)
	if err != nil {
		return nil, err
	}
	refreshed, err := s.welcomeBack(ctx, winner, rawNickname)
	if err != nil {
		return nil, err
	}
	return &SignInResult{Guest: refreshed, Returning: true}, nil
}
