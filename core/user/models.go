package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/ustawi/core"
)

// Roles
const (
	RoleAdmin     = "admin:"
	RoleCounselor = "counselor:"
	RoleStudent   = "student:"
)

var (
	AdminRoles     = []string{RoleAdmin}
	CounselorRoles = []string{RoleCounselor}
	StudentRoles   = []string{RoleStudent}
	AllRoles       = getAllRoles()

	// SelfServiceRoles are the roles one may pick when registering.
	SelfServiceRoles = []string{RoleStudent, RoleCounselor}

	rolePriorities = map[string]int{
		RoleAdmin:     30,
		RoleCounselor: 20,
		RoleStudent:   10,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Counselor", Value: RoleCounselor},
		{Name: "Admin", Value: RoleAdmin},
	}

	defaultSpecializations = []string{"academic"}
)

func getAllRoles() []string {
	all := make([]string, 0, 3)
	all = append(all, AdminRoles...)
	all = append(all, CounselorRoles...)
	all = append(all, StudentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	IsActive        bool      `json:"is_active"`
	Roles           []string  `json:"roles"`
	Year            *int      `json:"year,omitempty"`  // students
	Major           string    `json:"major,omitempty"` // students
	Specializations []string  `json:"specializations,omitempty"` // counselors
	PasswordHash    []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
	LastLogin       time.Time `json:"last_login"` // UTC
}

func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) Address() mail.Address {
	return mail.Address{Name: u.Name(), Address: u.Email}
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsCounselor() bool {
	return u.RoleStartsWith(RoleCounselor)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName       string   `json:"first_name" validate:"required,max=100,alpha_space"`
	LastName        string   `json:"last_name" validate:"required,max=100,alpha_space"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Year            *int     `json:"year" validate:"omitempty,min=1,max=10"`
	Major           string   `json:"major" validate:"max=200"`
	Specializations []string `json:"specializations"`
}

func (nu *NewUser) clean() {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Major = core.CleanString(nu.Major)
	nu.Roles = core.CleanStrings(nu.Roles, true /* lower */)
	nu.Specializations = core.CleanStrings(nu.Specializations, true /* lower */)
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.clean()
	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// Registration is a self-service sign-up: one of SelfServiceRoles, picked by Role.
type Registration struct {
	NewUser
	Role string `json:"role" validate:"required,oneof=student counselor"`
}

func (r *Registration) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	r.clean()
	r.Role = core.CleanString(r.Role, true /* lower */)
	if err := validate.Struct(r); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, r.Email)
}

// ToNewUser returns the NewUser to create for the registration, with role-specific fields only.
func (r Registration) ToNewUser() NewUser {
	nu := r.NewUser
	switch r.Role {
	case "counselor":
		nu.Roles = []string{RoleCounselor}
		nu.Year, nu.Major = nil, ""
		if len(nu.Specializations) == 0 {
			nu.Specializations = defaultSpecializations
		}
	default:
		nu.Roles = []string{RoleStudent}
		nu.Specializations = nil
	}
	return nu
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName       string   `json:"first_name" validate:"omitempty,max=100,alpha_space"`
	LastName        string   `json:"last_name" validate:"omitempty,max=100,alpha_space"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Year            *int     `json:"year" validate:"omitempty,min=1,max=10"`
	Major           string   `json:"major" validate:"max=200"`
	Specializations []string `json:"specializations"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc ServiceInterface) error {
	if name := core.CleanString(uu.FirstName); name != "" {
		uu.FirstName = name
	} else {
		uu.FirstName = origUsr.FirstName
	}
	if name := core.CleanString(uu.LastName); name != "" {
		uu.LastName = name
	} else {
		uu.LastName = origUsr.LastName
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if major := core.CleanString(uu.Major); major != "" {
		uu.Major = major
	} else {
		uu.Major = origUsr.Major
	}
	uu.Roles = core.CleanStrings(uu.Roles, true /* lower */)
	uu.Specializations = core.CleanStrings(uu.Specializations, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Roles = core.CleanStrings(qf.Roles, true /* lower */)
}

// OrderingFields maps the fields users may be ordered by to their column names.
var OrderingFields = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
	"created_at": "created_at",
	"last_login": "last_login",
}

// DefaultOrdering is applied when no valid ordering is requested.
var DefaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
