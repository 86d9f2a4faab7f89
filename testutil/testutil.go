// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/journal"
	"github.com/trezcool/ustawi/core/sentiment"
	"github.com/trezcool/ustawi/core/user"
	logsvc "github.com/trezcool/ustawi/services/logger"
)

// NewLogger returns a logger that discards everything and never reports to Rollbar.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every application validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		FirstName: firstName,
		LastName:  "Test",
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.Create(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

// CreateEntry stores a journal entry with the rule-based sentiment of content.
func CreateEntry(
	t *testing.T,
	repo journal.Repository,
	userID, title, content string,
	createdAt time.Time,
	isPinned ...bool,
) journal.Entry {
	t.Helper()
	entry := journal.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Sentiment: sentiment.RuleBased(content),
		Tags:      []string{},
		IsPrivate: true,
		IsPinned:  len(isPinned) > 0 && isPinned[0],
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	entry, err := repo.Create(context.Background(), entry)
	if err != nil {
		t.Fatalf("CreateEntry(): %v", err)
	}
	return entry
}

// StubAnalyzer always returns Result, counting its calls.
type StubAnalyzer struct {
	Result sentiment.Result
	Calls  int
}

func (a *StubAnalyzer) Analyze(_ context.Context, _ string) sentiment.Result {
	a.Calls++
	return a.Result
}
