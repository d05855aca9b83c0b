package account

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/mylog"
	"github.com/MarcGrol/cafeshop/lib/mytoken"
	"github.com/MarcGrol/cafeshop/services/accountapi"
)

func (s *service) register(c context.Context, req RegisterRequest) (User, error) {
	email := accountapi.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return User{}, myerrors.NewInvalidInputError(ErrMissingCredentials)
	}

	s.logger.Log(c, email, mylog.SeverityInfo, "Registering user %s", email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return User{}, myerrors.NewInvalidInputError(err)
		}
		return User{}, myerrors.NewInternalError(fmt.Errorf("error hashing password: %s", err))
	}

	user := User{
		UID:          s.uuider.Create(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.nower.Now(),
	}

	err = s.userStore.RunInTransaction(c, func(c context.Context) error {
		_, exists, err := s.userStore.Get(c, email)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if exists {
			return myerrors.NewConflictError(fmt.Errorf("%w: %s", ErrConflict, email))
		}

		err = s.userStore.Put(c, email, user)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, TopicName, UserRegistered{
			UserUID: user.UID,
			Email:   user.Email,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

func (s *service) authenticate(c context.Context, email string, password string) (User, bool, error) {
	email = accountapi.NormalizeEmail(email)
	if email == "" || password == "" {
		return User{}, false, nil
	}

	user, exists, err := s.userStore.Get(c, email)
	if err != nil {
		return User{}, false, myerrors.NewInternalError(err)
	}
	if !exists || user.PasswordHash == "" {
		s.logger.Log(c, email, mylog.SeverityInfo, "Authentication failed: unknown user %s", email)
		return User{}, false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		s.logger.Log(c, email, mylog.SeverityInfo, "Authentication failed: password mismatch for %s", email)
		return User{}, false, nil
	}

	return user, true, nil
}

func (s *service) signIn(c context.Context, email string, password string) (string, Session, error) {
	user, ok, err := s.authenticate(c, email, password)
	if err != nil {
		return "", Session{}, err
	}
	if !ok {
		return "", Session{}, myerrors.NewUnauthorizedError(ErrInvalidCredentials)
	}

	token, err := s.tokener.Create()
	if err != nil {
		return "", Session{}, myerrors.NewInternalError(err)
	}
	fingerprint, err := mytoken.Fingerprint(token)
	if err != nil {
		return "", Session{}, myerrors.NewInternalError(err)
	}

	now := s.nower.Now()
	session := Session{
		UID:       fingerprint,
		UserUID:   user.UID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionMaxAge),
	}
	err = s.sessionStore.Put(c, fingerprint, session)
	if err != nil {
		return "", Session{}, myerrors.NewInternalError(err)
	}

	s.logger.Log(c, user.Email, mylog.SeverityInfo, "User %s signed in", user.Email)

	return token, session, nil
}

func (s *service) signOut(c context.Context, token string) error {
	if token == "" {
		return nil
	}

	fingerprint, err := mytoken.Fingerprint(token)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		session, exists, err := s.sessionStore.Get(c, fingerprint)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !exists {
			return nil
		}

		session.ExpiresAt = s.nower.Now()
		err = s.sessionStore.Put(c, fingerprint, session)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		s.logger.Log(c, session.Email, mylog.SeverityInfo, "User %s signed out", session.Email)

		return nil
	})
}

func (s *service) resolveSession(c context.Context, token string) (Session, bool, error) {
	if token == "" {
		return Session{}, false, nil
	}

	fingerprint, err := mytoken.Fingerprint(token)
	if err != nil {
		return Session{}, false, myerrors.NewInternalError(err)
	}

	session, exists, err := s.sessionStore.Get(c, fingerprint)
	if err != nil {
		return Session{}, false, myerrors.NewInternalError(err)
	}
	if !exists || !session.isValidAt(s.nower.Now()) {
		return Session{}, false, nil
	}

	return session, true, nil
}

// Authenticate implements accountapi.IdentityVerifier
func (s *service) Authenticate(c context.Context, email string, password string) (accountapi.Identity, bool, error) {
	user, ok, err := s.authenticate(c, email, password)
	if err != nil || !ok {
		return accountapi.Identity{}, false, err
	}

	return accountapi.Identity{
		UserUID: user.UID,
		Email:   user.Email,
		Name:    user.Name,
	}, true, nil
}

// ResolveSession implements accountapi.IdentityVerifier
func (s *service) ResolveSession(c context.Context, token string) (accountapi.Identity, bool, error) {
	session, ok, err := s.resolveSession(c, token)
	if err != nil || !ok {
		return accountapi.Identity{}, false, err
	}

	return session.toIdentity(), true, nil
}

// LookupUser implements accountapi.IdentityVerifier
func (s *service) LookupUser(c context.Context, email string) (accountapi.User, bool, error) {
	user, exists, err := s.userStore.Get(c, accountapi.NormalizeEmail(email))
	if err != nil {
		return accountapi.User{}, false, myerrors.NewInternalError(err)
	}
	if !exists {
		return accountapi.User{}, false, nil
	}

	return user.toAPI(), true, nil
}
