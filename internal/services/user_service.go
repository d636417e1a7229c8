package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"meloon/internal/core"
	"meloon/internal/log"
	"meloon/internal/storage"
)

type UserOptions struct {
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

// UserService registers ledger owners and checks their passwords.
type UserService struct {
	storage *storage.SQLiteRepository
	cost    int

	decoyOnce sync.Once
	decoy     []byte
}

func NewUserService(repo *storage.SQLiteRepository, opts UserOptions) *UserService {
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &UserService{storage: repo, cost: opts.HashCost}
}

// Register creates the user together with its system categories.
func (s *UserService) Register(ctx context.Context, cmd core.Registration) (core.User, error) {
	cmd.Email = core.NormalizeEmail(cmd.Email)
	cmd.Nickname = strings.TrimSpace(cmd.Nickname)
	if err := cmd.Validate(); err != nil {
		return core.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := core.User{
		Email:        cmd.Email,
		PasswordHash: string(hash),
		Nickname:     cmd.Nickname,
		Language:     cmd.Language,
	}
	if u.Nickname == "" {
		u.Nickname = core.DefaultNickname
	}
	if u.Language == "" {
		u.Language = core.DefaultLanguage
	}

	err = s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if u, err = q.CreateUser(ctx, u); err != nil {
			return err
		}
		_, err = q.SeedSystemCategories(ctx, u.ID, core.DefaultCategories())
		return err
	})
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}

	slog.InfoContext(ctx, "User registered",
		log.FieldComponent, log.ComponentAuth,
		log.FieldOwnerID, u.ID)
	return u, nil
}

// Login returns the user whose password matches. Unknown emails and wrong
// passwords fail alike with core.ErrBadCredentials.
func (s *UserService) Login(ctx context.Context, cmd core.Credentials) (core.User, error) {
	if err := cmd.Validate(); err != nil {
		return core.User{}, err
	}
	u, err := s.storage.Queries().FindUserByEmail(ctx, core.NormalizeEmail(cmd.Email))
	if err != nil {
		if core.KindOf(err) != core.KindNotFound {
			return core.User{}, fmt.Errorf("login: %w", err)
		}
		// Spend a hash comparison anyway so response time does not reveal
		// which emails are registered.
		_ = bcrypt.CompareHashAndPassword(s.decoyHash(), []byte(cmd.Password))
		return core.User{}, core.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(cmd.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.WarnContext(ctx, "Login rejected",
				log.FieldComponent, log.ComponentAuth,
				log.FieldOwnerID, u.ID)
			return core.User{}, core.ErrBadCredentials
		}
		return core.User{}, fmt.Errorf("login: %w", err)
	}
	return u, nil
}

func (s *UserService) decoyHash() []byte {
	s.decoyOnce.Do(func() {
		s.decoy, _ = bcrypt.GenerateFromPassword([]byte("meloon-decoy-password"), s.cost)
	})
	return s.decoy
}
