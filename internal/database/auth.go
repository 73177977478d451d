package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"family-fund-go/internal/models"
	"family-fund-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type identityRow struct {
	Id           string
	Email        string
	PasswordHash string
	Metadata     string
}

func (r *identityRow) session(token string) (*models.Session, error) {
	metadata := make(map[string]string)
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unable to decode identity metadata: %w", err)
		}
	}
	return &models.Session{
		Token:    token,
		UserId:   r.Id,
		Email:    r.Email,
		Metadata: metadata,
	}, nil
}

func (s *Service) SignUp(ctx context.Context, params store.SignUpParams) (*models.Session, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return nil, store.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("unable to hash password: %w", err)
	}

	metadata := map[string]string{}
	if params.Name != "" {
		metadata["name"] = params.Name
	}
	if params.Avatar != "" {
		metadata["avatar"] = params.Avatar
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("unable to encode identity metadata: %w", err)
	}

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertIdentity, id, email, string(hash), string(metadataJSON)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, store.ErrDuplicate
		}
		return nil, fmt.Errorf("unable to create identity: %w", err)
	}

	// The hosted platform's sign-up trigger creates the profile row with
	// the identity; mirror that here so the row is addressable before the
	// first refresh. The lazy resolver covers identities that predate it.
	name := params.Name
	if name == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		} else {
			name = "User"
		}
	}
	if err := s.EnsureProfile(ctx, models.Profile{
		Id:     id,
		Email:  email,
		Name:   name,
		Avatar: params.Avatar,
		Role:   models.RoleMember,
	}); err != nil {
		return nil, fmt.Errorf("unable to create profile: %w", err)
	}

	zap.L().Info("Registered identity", zap.String("identity_id", id), zap.String("email", email))
	return s.openSession(ctx, &identityRow{Id: id, Email: email, Metadata: string(metadataJSON)})
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var row identityRow
	err := s.db.QueryRowContext(ctx, queryGetIdentityByEmail, email).Scan(
		&row.Id, &row.Email, &row.PasswordHash, &row.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query identity: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return nil, store.ErrInvalidCredentials
	}

	return s.openSession(ctx, &row)
}

func (s *Service) openSession(ctx context.Context, row *identityRow) (*models.Session, error) {
	token := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertSession, token, row.Id); err != nil {
		return nil, fmt.Errorf("unable to create session: %w", err)
	}

	session, err := row.session(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.currentToken = token
	s.mu.Unlock()

	zap.L().Info("Session established", zap.String("identity_id", row.Id))
	s.notifyAuthChange(store.AuthSignedIn, session)
	return session, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	token := s.currentToken
	s.currentToken = ""
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, queryDeleteSession, token); err != nil {
		return fmt.Errorf("unable to delete session: %w", err)
	}

	zap.L().Info("Session terminated")
	s.notifyAuthChange(store.AuthSignedOut, nil)
	return nil
}

// CurrentSession returns the live session, or (nil, nil) when signed out.
func (s *Service) CurrentSession(ctx context.Context) (*models.Session, error) {
	s.mu.RLock()
	token := s.currentToken
	s.mu.RUnlock()

	if token == "" {
		return nil, nil
	}

	var row identityRow
	err := s.db.QueryRowContext(ctx, queryGetIdentityBySession, token).Scan(
		&row.Id, &row.Email, &row.PasswordHash, &row.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query session: %w", err)
	}
	return row.session(token)
}

// RequestPasswordReset is a no-op locally: there is no mail delivery. The
// hosted platform sends the reset link out of band.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	var row identityRow
	err := s.db.QueryRowContext(ctx, queryGetIdentityByEmail, strings.ToLower(strings.TrimSpace(email))).Scan(
		&row.Id, &row.Email, &row.PasswordHash, &row.Metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("unable to query identity: %w", err)
	}
	zap.L().Info("Password reset requested", zap.String("identity_id", row.Id))
	return nil
}

func (s *Service) OnAuthStateChange(fn func(store.AuthEvent, *models.Session)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notifyAuthChange(event store.AuthEvent, session *models.Session) {
	s.mu.RLock()
	fns := make([]func(store.AuthEvent, *models.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event, session)
	}
}
