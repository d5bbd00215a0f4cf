// Package user manages the accounts of applicants and staff.
package user

import (
	"context"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists if another user than the excluded ones
		// already has the username or email.
		CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		QueryUsers(ctx context.Context, filter *QueryFilter, orderings []core.DBOrdering) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		validate *validator.Validate
		trans    ut.Translator
		tokens   tokenGenerator
	}
)

func NewService(
	repo Repository,
	mailSvc core.EmailService,
	validate *validator.Validate,
	uni *ut.UniversalTranslator,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
		trans:    core.GetTranslator(uni, core.LocaleEn),
		tokens:   tokenGenerator{secretKey: conf.SecretKey, timeout: conf.PasswordResetTimeoutDelta},
	}
}

// validationError turns validator errors into a core.ValidationError, in English.
func (svc *Service) validationError(err error) error {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]core.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, core.FieldError{Field: fe.Field(), Error: fe.Translate(svc.trans), Code: fe.Tag()})
	}
	return core.NewValidationError(nil, flds...)
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// ValidateNew cleans and validates the data of a new user.
func (svc *Service) ValidateNew(ctx context.Context, nu *NewUser) error {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return svc.validationError(err)
	}
	return svc.checkUniqueness(ctx, nu.Username, nu.Email)
}

// ValidateUpdate cleans and validates the changes to a user.
func (svc *Service) ValidateUpdate(ctx context.Context, origUsr User, uu *UpdateUser) error {
	uu.Clean(origUsr)
	if err := svc.validate.Struct(uu); err != nil {
		return svc.validationError(err)
	}
	return svc.checkUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

// Create validates the new user before creating it.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.ValidateNew(ctx, &nu); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(usr.Roles) == 0 {
		usr.Roles = []string{RoleApplicant}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, orderings []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, orderings)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

// Update applies validated changes to a user.
func (svc *Service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	usr.Name = uu.Name
	usr.Username = uu.Username
	usr.Email = uu.Email
	if uu.Roles != nil {
		usr.Roles = uu.Roles
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// RequestPasswordReset emails a password reset link to the active user with that email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	svc.mailSvc.SendMessages(svc.newPasswordResetMail(usr))
	return nil
}

func (svc *Service) newPasswordResetMail(usr User) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{usr.Address()},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"Name":  usr.Name,
			"Token": svc.tokens.makeToken(usr),
			"UID":   EncodeUID(usr),
		},
		Locale: core.LocaleEn,
	}
}

// ResetPassword sets the new password of the user identified by the reset token.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) (User, error) {
	if err := data.Validate(svc.validate); err != nil {
		return User{}, svc.validationError(err)
	}

	badToken := core.NewValidationError(nil, core.FieldError{Field: "token", Error: "Invalid or expired token"})
	id, err := decodeUID(data.UID)
	if err != nil {
		return User{}, badToken
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, badToken
		}
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return User{}, badToken
	}
	if tag := PasswordPolicyError(data.Password, usr.Name, usr.Username, usr.Email); tag != "" {
		msg, _ := svc.trans.T(tag)
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: msg, Code: tag})
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
