// Package assistant answers students' questions with a hosted chat model, falling back to canned advice.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/trezcool/ustawi/core"
)

const (
	chatSystemPrompt = `You are "StudyMate", an empathetic and supportive academic and well-being assistant for students.
You help with academic guidance, productivity and time management, emotional well-being and motivation, and personal growth.
Respond in a calm, encouraging and student-friendly tone.
Keep your answers concise (3 to 6 sentences), practical and easy to understand.
Present steps or strategies as short bullet points. Avoid long essays and technical jargon.`

	assignmentSystemPrompt = `You are a concise and helpful academic tutor.
Keep answers short and focused (3 to 6 sentences). Use bullet points or numbered steps when possible.
Only give code if needed. Always sound friendly and confident.`

	assignmentPromptTmpl = `Assignment details:
- Title: %s
- Subject: %s
- Description: %s

Student question: %s

Please provide a clear, encouraging, step-by-step explanation.
If code is required, include comments and example output.
Avoid academic dishonesty; teach and explain the concepts instead.`

	emptyReply = "I couldn't generate a response right now."
)

var errNoMessage = core.NewValidationError(nil, core.FieldError{Field: "message", Error: "no message received"})

// Completer answers a prompt given a system prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type ServiceInterface interface {
	Chat(ctx context.Context, message string) (string, error)
	AssignmentHelp(ctx context.Context, title, subject, description, question string) string
}

// Assistant never fails on the remote model: canned advice is used whenever it is disabled or unavailable.
type Assistant struct {
	remote Completer
	logger core.Logger
}

var _ ServiceInterface = (*Assistant)(nil)

// New returns an Assistant; a nil remote always uses canned advice.
func New(remote Completer, logger core.Logger) *Assistant {
	return &Assistant{remote: remote, logger: logger}
}

// Chat answers a free-form message.
func (a *Assistant) Chat(ctx context.Context, message string) (string, error) {
	message = core.CleanString(message)
	if message == "" {
		return "", errNoMessage
	}

	reply, ok := a.complete(ctx, kindChat, chatSystemPrompt, message)
	if !ok {
		reply = pickReply(chatReplies, chatDefaultReply, message)
	}
	return FormatReply(reply), nil
}

// AssignmentHelp answers a question about an assignment.
func (a *Assistant) AssignmentHelp(ctx context.Context, title, subject, description, question string) string {
	if description == "" {
		description = "N/A"
	}
	prompt := fmt.Sprintf(assignmentPromptTmpl, title, subject, description, question)

	reply, ok := a.complete(ctx, kindAssignment, assignmentSystemPrompt, prompt)
	if !ok {
		return pickReply(assignmentReplies, assignmentDefaultReply, question)
	}
	return TidyMarkdown(reply)
}

func (a *Assistant) complete(ctx context.Context, kind, system, prompt string) (string, bool) {
	if a.remote != nil {
		reply, err := a.remote.Complete(ctx, system, prompt)
		if err == nil {
			repliesTotal.WithLabelValues(kind, sourceRemote).Inc()
			return reply, true
		}
		a.logger.Warn(fmt.Sprintf("remote assistant failed, falling back: %v", err), err)
	}
	repliesTotal.WithLabelValues(kind, sourceFallback).Inc()
	return "", false
}

var (
	reMarkup        = regexp.MustCompile(`\*\*|\||#|\r`)
	reBullet        = regexp.MustCompile(`\s*•\s*`)
	reDashBullet    = regexp.MustCompile(`\s*-\s+`)
	reLabeledStep   = regexp.MustCompile(`(• (?:Step|What to Do|Why It Helps|How to Start):)`)
	reSpaces        = regexp.MustCompile(`[ \t]{2,}`)
	reBlankLines    = regexp.MustCompile(`\n\s*\n(\s*\n)+`)
	reDoubledFence  = regexp.MustCompile("```cppcpp")
	reEmptyFence    = regexp.MustCompile("```([a-z]*)\\s*```")
	reBoldSpace     = regexp.MustCompile(`\*\*\s+`)
	reExtraNewlines = regexp.MustCompile(`\n{3,}`)
)

// FormatReply strips markdown markup from a chat reply and puts every bullet on its own line.
func FormatReply(text string) string {
	text = strings.TrimSpace(reMarkup.ReplaceAllString(text, ""))
	if text == "" {
		return emptyReply
	}
	text = reBullet.ReplaceAllString(text, "\n• ")
	text = reDashBullet.ReplaceAllString(text, "\n• ")
	text = reLabeledStep.ReplaceAllString(text, "\n$1")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TidyMarkdown keeps the markdown of an assignment help reply but fixes common model glitches.
func TidyMarkdown(text string) string {
	text = reExtraNewlines.ReplaceAllString(text, "\n\n")
	text = reDoubledFence.ReplaceAllString(text, "```cpp")
	text = reEmptyFence.ReplaceAllString(text, "```")
	text = reBoldSpace.ReplaceAllString(text, "**")
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyReply
	}
	return text
}
