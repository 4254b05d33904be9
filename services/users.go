package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tournament-platform/apperrors"
	"tournament-platform/models"
)

const DefaultBcryptCost = 12

type UserService struct {
	DB *gorm.DB
	// BcryptCost is the hashing cost for new passwords.
	BcryptCost int

	now func() time.Time
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, BcryptCost: DefaultBcryptCost, now: time.Now}
}

type SignupInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

// Signup validates input and creates an active account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = normalizeIdentity(in.Username)
	in.Email = normalizeIdentity(in.Email)

	var f apperrors.FieldErrors
	validatePersonName(&f, "first_name", in.FirstName, true)
	validatePersonName(&f, "last_name", in.LastName, false)
	validateUsername(&f, "username", in.Username)
	validateEmail(&f, "email", in.Email, true)
	validatePassword(&f, "password", in.Password)
	f.Check(in.AccountType == models.AccountParticipant || in.AccountType == models.AccountHost,
		"account_type", "account type must be participant or host")
	if err := f.Err("invalid signup data"); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	if taken, err := s.exists(db, "email = ?", in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Conflict("email already registered")
	}
	if taken, err := s.exists(db, "username = ?", in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Conflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("could not hash password", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		AccountType:  in.AccountType,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("username or email already registered")
		}
		return nil, apperrors.Internal("could not create user", err)
	}
	log.Printf("👤 [Users] Signed up %s (%s)", user.Username, user.AccountType)
	return user, nil
}

// Login accepts either an email or a username as identifier.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = normalizeIdentity(identifier)
	if identifier == "" || password == "" {
		var f apperrors.FieldErrors
		f.Check(identifier != "", "identifier", "email or username is required")
		f.Check(password != "", "password", "password is required")
		return nil, f.Err("invalid login data")
	}

	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated")
	}

	now := s.now().UTC()
	if err := s.DB.WithContext(ctx).Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		return nil, apperrors.Internal("could not record login", err)
	}
	user.LastLogin = &now
	return &user, nil
}

// GetByID loads any account, active or not.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load user", err)
	}
	return &user, nil
}

// GetByUsername loads an active account for public display.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("username = ? AND is_active = ?", normalizeIdentity(username), true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Internal("could not load user", err)
	}
	return &user, nil
}

// publicProfiles loads the public view of several users keyed by id.
func (s *UserService) publicProfiles(ctx context.Context, ids []string) (map[string]*models.PublicProfile, error) {
	out := make(map[string]*models.PublicProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperrors.Internal("could not load users", err)
	}
	for i := range users {
		p := users[i].Public()
		out[users[i].ID] = &p
	}
	return out, nil
}

// ProfileInput holds the editable account fields. Nil means unchanged.
type ProfileInput struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Avatar      *string    `json:"avatar"`
	Bio         *string    `json:"bio"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Location    *string    `json:"location"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var f apperrors.FieldErrors
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
		validatePersonName(&f, "first_name", user.FirstName, true)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
		validatePersonName(&f, "last_name", user.LastName, false)
	}
	if in.Avatar != nil {
		user.Profile.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Bio != nil {
		user.Profile.Bio = strings.TrimSpace(*in.Bio)
		f.Check(maxLen(user.Profile.Bio, 500), "bio", "bio must be at most 500 characters")
	}
	if in.Phone != nil {
		user.Profile.Phone = strings.TrimSpace(*in.Phone)
		validatePhone(&f, "phone", user.Profile.Phone)
	}
	if in.DateOfBirth != nil {
		dob := in.DateOfBirth.UTC()
		f.Check(dob.Before(s.now()), "date_of_birth", "date of birth must be in the past")
		user.Profile.DateOfBirth = &dob
	}
	if in.Location != nil {
		user.Profile.Location = strings.TrimSpace(*in.Location)
		f.Check(maxLen(user.Profile.Location, 100), "location", "location must be at most 100 characters")
	}
	if err := f.Err("invalid profile data"); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Model(user).
		Select("first_name", "last_name", "profile_avatar", "profile_bio", "profile_phone", "profile_date_of_birth", "profile_location").
		Updates(user).Error
	if err != nil {
		return nil, apperrors.Internal("could not update profile", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next, confirm string) error {
	var f apperrors.FieldErrors
	f.Check(current != "", "current_password", "current password is required")
	validatePassword(&f, "new_password", next)
	f.Check(next == confirm, "confirm_password", "password confirmation does not match")
	if err := f.Err("invalid password data"); err != nil {
		return err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperrors.Validation("current password is incorrect",
			apperrors.FieldError{Field: "current_password", Message: "current password is incorrect"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.BcryptCost)
	if err != nil {
		return apperrors.Internal("could not hash password", err)
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("password_hash", string(hash)).Error; err != nil {
		return apperrors.Internal("could not change password", err)
	}
	return nil
}

// Deactivate disables an account; existing tokens stop working on the next request.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return apperrors.Internal("could not deactivate account", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}
	log.Printf("👤 [Users] Deactivated %s", id)
	return nil
}

func (s *UserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = normalizeIdentity(username)
	var f apperrors.FieldErrors
	validateUsername(&f, "username", username)
	if err := f.Err("invalid username"); err != nil {
		return false, err
	}
	taken, err := s.exists(s.DB.WithContext(ctx), "username = ?", username)
	return !taken, err
}

func (s *UserService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	email = normalizeIdentity(email)
	var f apperrors.FieldErrors
	validateEmail(&f, "email", email, true)
	if err := f.Err("invalid email"); err != nil {
		return false, err
	}
	taken, err := s.exists(s.DB.WithContext(ctx), "email = ?", email)
	return !taken, err
}

// Search finds active users whose username or name contains query.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.PublicProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	db := s.DB.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true).Order("username ASC").Limit(limit)
	if q := strings.TrimSpace(query); q != "" {
		term := likePattern(q)
		db = db.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\'`, term, term, term)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, apperrors.Internal("search failed", err)
	}
	res := make([]models.PublicProfile, len(users))
	for i := range users {
		res[i] = users[i].Public()
	}
	return res, nil
}

func (s *UserService) exists(db *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, apperrors.Internal("could not check user", err)
	}
	return count > 0, nil
}
