package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/pkg/model"
	"golang.org/x/crypto/scrypt"
)

func NewService(repository *repository) *Service {
	return &Service{
		repository: repository,
	}
}

type Service struct {
	repository *repository
}

// NewUser holds the attributes of a user to be created.
type NewUser struct {
	Username     string
	Password     string
	FirstName    string
	LastName     string
	Email        string
	Affiliations []string
	IsBot        bool
}

func (s Service) Save(ctx context.Context, user *model.User) error {
	return s.repository.save(ctx, user)
}

func (s Service) Create(ctx context.Context, newUser NewUser) (*model.User, error) {
	if newUser.Password == "" && !newUser.IsBot {
		return nil, errdef.NewBadRequest("password is required for non bot users")
	}

	var hashedPassword string
	if newUser.Password != "" {
		var err error
		hashedPassword, err = hashPassword(newUser.Password)
		if err != nil {
			return nil, fmt.Errorf("password hashing failed: %s", err)
		}
	}

	user := &model.User{
		Username:     newUser.Username,
		Password:     hashedPassword,
		FirstName:    newUser.FirstName,
		LastName:     newUser.LastName,
		Email:        newUser.Email,
		Affiliations: cleanAffiliations(newUser.Affiliations),
		IsBot:        newUser.IsBot,
	}

	err := s.repository.create(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func cleanAffiliations(affiliations []string) []string {
	cleaned := make([]string, 0, len(affiliations))
	for _, affiliation := range affiliations {
		affiliation = strings.TrimSpace(affiliation)
		if affiliation != "" {
			cleaned = append(cleaned, affiliation)
		}
	}
	return cleaned
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 32)
	_, err := rand.Read(salt)
	if err != nil {
		return "", err
	}

	// using recommended cost parameters from - https://godoc.org/golang.org/x/crypto/scrypt
	hash, err := scrypt.Key([]byte(password), salt, 32768, 8, 1, 32)
	if err != nil {
		return "", err
	}

	hashedPassword := fmt.Sprintf("%s.%s", hex.EncodeToString(hash), hex.EncodeToString(salt))

	return hashedPassword, nil
}

func (s Service) SignIn(ctx context.Context, username string, password string) (*model.User, error) {
	const unauthorizedError = "invalid username and password combination"

	user, err := s.repository.findByUsername(ctx, username)
	if err != nil {
		if errdef.IsNotFound(err) {
			return nil, errdef.NewUnauthorized(unauthorizedError)
		}
		return nil, err
	}

	if user.IsBot {
		return nil, errdef.NewForbidden("bot accounts can't sign in")
	}

	match, err := comparePasswords(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %s", err)
	}

	if !match {
		return nil, errdef.NewUnauthorized(unauthorizedError)
	}

	return user, nil
}

func comparePasswords(storedPassword string, suppliedPassword string) (bool, error) {
	passwordAndSalt := strings.Split(storedPassword, ".")
	if len(passwordAndSalt) != 2 {
		return false, fmt.Errorf("wrong password/salt format")
	}

	salt, err := hex.DecodeString(passwordAndSalt[1])
	if err != nil {
		return false, fmt.Errorf("unable to verify user password")
	}

	hash, err := scrypt.Key([]byte(suppliedPassword), salt, 32768, 8, 1, 32)
	if err != nil {
		return false, err
	}

	return hex.EncodeToString(hash) == passwordAndSalt[0], nil
}

func (s Service) FindAll(ctx context.Context) ([]*model.User, error) {
	return s.repository.findAll(ctx)
}

func (s Service) FindById(ctx context.Context, id uint) (*model.User, error) {
	return s.repository.findById(ctx, id)
}

func (s Service) FindOrCreate(ctx context.Context, username string, password string) (*model.User, error) {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %s", err)
	}

	user := &model.User{
		Username: username,
		Password: hashedPassword,
	}

	return s.repository.findOrCreate(ctx, user)
}

func (s Service) Delete(ctx context.Context, id uint) error {
	return s.repository.delete(ctx, id)
}

// UserUpdate holds the attributes to change. Nil fields are left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Affiliations []string
	Password     string
}

func (s Service) Update(ctx context.Context, id uint, update UserUpdate) (*model.User, error) {
	user, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}

	if update.LastName != nil {
		user.LastName = *update.LastName
	}

	if update.Email != nil {
		user.Email = *update.Email
	}

	if update.Affiliations != nil {
		user.Affiliations = cleanAffiliations(update.Affiliations)
	}

	if update.Password != "" {
		user.Password, err = hashPassword(update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %s", err)
		}
	}

	return s.repository.update(ctx, user)
}
