package emailsvc

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ustawi/core"
	logsvc "github.com/trezcool/ustawi/services/logger"
)

var testMsg = core.EmailMessage{
	To:          []mail.Address{{Name: "Amani Kariuki", Address: "amani@test.com"}},
	Subject:     "Password Reset",
	TextContent: "reset it",
	HTMLContent: "<p>reset it</p>",
}

func Test_consoleService_format(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleService(log.New(ioutil.Discard, "", 0), conf).(*consoleService)
	svc.clock = clockwork.NewFakeClockAt(time.Date(2021, time.March, 10, 12, 0, 0, 0, time.UTC))

	body, err := svc.format(testMsg)
	require.NoError(t, err)

	for _, want := range []string{
		"From: " + conf.DefaultFromEmail.String() + "\r\n",
		"Date: Wed, 10 Mar 2021 12:00:00 +0000\r\n",
		"Subject: [Ustawi] Password Reset\r\n",
		"To: \"Amani Kariuki\" <amani@test.com>\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n\r\nreset it\r\n",
		"Content-Type: text/html; charset=utf-8\r\n\r\n<p>reset it</p>\r\n",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "CC:")
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock()
	svc.SendMessages(&testMsg, &core.EmailMessage{Subject: "no recipients", TextContent: "x"})

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, testMsg.Subject, sent[0].Subject)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func Test_sendgridService_send(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	conf := core.NewTestConfig()
	conf.SendgridApiKey = "sg-key"
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	svc := newSendgridService(conf, logger, srv.URL)

	code := svc.send(testMsg)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "Bearer sg-key", gotAuth)

	personalizations, _ := gotBody["personalizations"].([]interface{})
	require.Len(t, personalizations, 1)
	p := personalizations[0].(map[string]interface{})
	assert.Equal(t, "[Ustawi] Password Reset", p["subject"])

	contents, _ := gotBody["content"].([]interface{})
	types := make([]string, 0, len(contents))
	for _, c := range contents {
		types = append(types, c.(map[string]interface{})["type"].(string))
	}
	assert.Equal(t, "text/plain,text/html", strings.Join(types, ","))
}
