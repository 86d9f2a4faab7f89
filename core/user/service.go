package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	appfs "github.com/trezcool/ustawi/fs"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("user not found")
	ErrUserExists = errors.New("a user with this email already exists")

	passwordResetTmpl = mustLoadTemplate("password_reset")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrUserExists if a user, other than excludedUsers, has the email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		Create(ctx context.Context, usr User) (User, error)
		// Query applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.FirstName, User.LastName or User.Email.
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Register(ctx context.Context, reg Registration) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		tokens  TokenGenerator
		clock   clockwork.Clock
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, clock clockwork.Clock) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
		tokens:  NewTokenGenerator(conf, clock),
		clock:   clock,
	}
}

func mustLoadTemplate(name string) core.EmailTemplate {
	text, err := appfs.FS.ReadFile("templates/" + name + ".txt")
	if err != nil {
		panic(fmt.Sprintf("reading %s.txt: %v", name, err))
	}
	html, err := appfs.FS.ReadFile("templates/" + name + ".gohtml")
	if err != nil {
		panic(fmt.Sprintf("reading %s.gohtml: %v", name, err))
	}
	return core.NewEmailTemplate(name, string(text), string(html))
}

func (svc *Service) CheckUniqueness(ctx context.Context, email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedUsers...); err != nil {
		if errors.Cause(err) == ErrUserExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := svc.clock.Now().UTC()
	usr := User{
		ID:              uuid.NewString(),
		FirstName:       nu.FirstName,
		LastName:        nu.LastName,
		Email:           nu.Email,
		IsActive:        true,
		Roles:           nu.Roles,
		Year:            nu.Year,
		Major:           nu.Major,
		Specializations: nu.Specializations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.Create(ctx, usr)
}

// Register creates a self-service account; it cannot grant admin rights.
func (svc *Service) Register(ctx context.Context, reg Registration) (User, error) {
	return svc.Create(ctx, reg.ToNewUser())
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.Query(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update applies the validated changes in uu to the user with the given id.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	usr.FirstName = uu.FirstName
	usr.LastName = uu.LastName
	usr.Email = uu.Email
	usr.Major = uu.Major
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Roles != nil {
		usr.Roles = uu.Roles
	}
	if uu.Year != nil {
		usr.Year = uu.Year
	}
	if uu.Specializations != nil {
		usr.Specializations = uu.Specializations
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = svc.clock.Now().UTC()
	return svc.repo.Update(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = svc.clock.Now().UTC()
	return svc.repo.Update(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.Delete(ctx, ids...)
}

// RequestPasswordReset emails a password reset link to the active user with the given email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}

	token, err := svc.tokens.MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{usr.Address()},
		Subject: "Password Reset",
	}
	data := map[string]string{"Name": usr.FirstName, "UID": EncodeUID(usr), "Token": token}
	if err := msg.Render(passwordResetTmpl, svc.conf, data); err != nil {
		return errors.Wrap(err, "rendering password reset email")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// ResetPassword sets a new password if data holds a valid reset token for an active user.
func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) (User, error) {
	invalidErr := core.NewValidationError(errors.New("invalid token"))

	id, err := decodeUID(data.UID)
	if err != nil {
		return User{}, invalidErr
	}
	usr, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, invalidErr
		}
		return User{}, err
	}
	if !usr.IsActive {
		return User{}, invalidErr
	}
	if err := svc.tokens.verifyToken(usr, data.Token); err != nil {
		return User{}, core.NewValidationError(err)
	}

	if err := usr.SetPassword(data.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = svc.clock.Now().UTC()
	return svc.repo.Update(ctx, usr)
}
