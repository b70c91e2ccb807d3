package collection

import (
	"net/mail"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/escolaware/secretaria/core"
)

// memRepo is an in-memory Repository with a failable Save.
type memRepo struct {
	records []Record
	saveErr error
	saves   int
}

func (r *memRepo) Load() ([]Record, error) {
	return r.records, nil
}

func (r *memRepo) Save(recs []Record) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	out := make([]Record, len(recs))
	copy(out, recs)
	r.records = out
	r.saves++
	return nil
}

type mailSvcMock struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

func (m *mailSvcMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.sent = append(m.sent, *msg)
	}
}

func setup(t *testing.T, def Definition, opts ...ServiceOption) (*Service, *memRepo) {
	repo := &memRepo{}
	svc, err := NewService(def, repo, newValidate(), opts...)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return svc, repo
}

func Test_Service_Create(t *testing.T) {
	svc, repo := setup(t, Students)

	rec, err := svc.Create(validStudent())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "Bingo Heeler", rec["name"])
	assert.Equal(t, 1, repo.saves)

	// round-trip: fetching by id returns the submitted payload plus the id
	got, err := svc.GetByID(rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// ids are unique across creates
	rec2, err := svc.Create(validStudent())
	require.NoError(t, err)
	assert.NotEqual(t, rec.ID(), rec2.ID())

	// a client-submitted id is never honored
	payload := validStudent()
	payload["id"] = "custom-id"
	rec3, err := svc.Create(payload)
	require.NoError(t, err)
	assert.NotEqual(t, "custom-id", rec3.ID())
}

func Test_Service_Create_validationDoesNotMutate(t *testing.T) {
	svc, repo := setup(t, Students)

	payload := validStudent()
	delete(payload, "status")
	_, err := svc.Create(payload)
	assert.Error(t, err)
	assert.Empty(t, svc.QueryAll())
	assert.Equal(t, 0, repo.saves)

	payload = validStudent()
	payload["intruder"] = "x"
	_, err = svc.Create(payload)
	assert.Error(t, err)
	assert.Empty(t, svc.QueryAll())
	assert.Equal(t, 0, repo.saves)
}

func Test_Service_Create_persistFailureRollsBack(t *testing.T) {
	svc, repo := setup(t, Students)
	repo.saveErr = errors.New("disk full")

	_, err := svc.Create(validStudent())
	assert.Error(t, err)
	assert.Empty(t, svc.QueryAll())
}

func Test_Service_Replace(t *testing.T) {
	svc, _ := setup(t, Students)

	rec, err := svc.Create(validStudent())
	require.NoError(t, err)

	updated := validStudent()
	updated["status"] = "off"
	updated["id"] = "forged-id" // must be ignored
	got, err := svc.Replace(rec.ID(), updated)
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), got.ID())
	assert.Equal(t, "off", got["status"])

	// replacement is wholesale
	all := svc.QueryAll()
	require.Len(t, all, 1)
	assert.Equal(t, got, all[0])

	// unknown id
	_, err = svc.Replace("nope", validStudent())
	if assert.Error(t, err) {
		assert.IsType(t, &core.NotFoundError{}, errors.Cause(err))
	}
}

func Test_Service_Replace_invalidPayloadLeavesRecordUnchanged(t *testing.T) {
	svc, _ := setup(t, Teachers)

	rec, err := svc.Create(Record{
		"name":            "Calypso",
		"school_subjects": "Todas",
		"contact":         "calypso@escola.br",
		"phone_number":    "48 8787 8787",
		"status":          "on",
	})
	require.NoError(t, err)

	payload := Record{
		"name":            "Calypso",
		"school_subjects": "Todas",
		"contact":         "calypso@escola.br",
		"phone_number":    "48 8787 8787",
	}
	_, err = svc.Replace(rec.ID(), payload)
	assert.Error(t, err)

	got, err := svc.GetByID(rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func Test_Service_Remove(t *testing.T) {
	svc, _ := setup(t, Appointments)

	rec, err := svc.Create(Record{
		"specialty":    "Fonoaudiologia",
		"comments":     "Acompanhamento mensal",
		"date":         "10/09/2026",
		"student":      "Bingo Heeler",
		"professional": "Dra. Alice",
	})
	require.NoError(t, err)

	removed, err := svc.Remove(rec.ID())
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), removed.ID())

	// deletion is terminal
	_, err = svc.GetByID(rec.ID())
	assert.Error(t, err)
	assert.Empty(t, svc.QueryAll())

	_, err = svc.Remove(rec.ID())
	assert.Error(t, err)
}

func Test_Service_FindByField(t *testing.T) {
	svc, _ := setup(t, Students)

	rec, err := svc.Create(validStudent())
	require.NoError(t, err)

	// case-insensitive exact match
	got := svc.FindByField("name", "bingo heeler")
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID(), got[0].ID())

	assert.Empty(t, svc.FindByField("name", "bingo"))
	assert.Empty(t, svc.FindByField("name", "Muffin Heeler"))
}

func Test_Service_passwordHashing(t *testing.T) {
	svc, _ := setup(t, Users, WithPasswordHashing("password"))

	rec, err := svc.Create(Record{
		"name":     "Admin",
		"email":    "admin@escola.br",
		"password": "s3cr3t",
	})
	require.NoError(t, err)

	hash, ok := rec["password"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "s3cr3t", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cr3t")))
}

func Test_Service_createNotification(t *testing.T) {
	mailSvc := new(mailSvcMock)
	inbox := mail.Address{Name: "Secretaria", Address: "secretaria@escola.br"}
	svc, _ := setup(t, Appointments, WithCreateNotification(mailSvc, inbox, "Nova consulta agendada"))

	_, err := svc.Create(Record{
		"specialty":    "Psicologia",
		"comments":     "Primeira sessão",
		"date":         "01/10/2026",
		"student":      "Bluey Heeler",
		"professional": "Dr. Busca",
	})
	require.NoError(t, err)

	require.Len(t, mailSvc.sent, 1)
	msg := mailSvc.sent[0]
	assert.Equal(t, "Nova consulta agendada", msg.Subject)
	assert.Equal(t, []mail.Address{inbox}, msg.To)
	assert.Contains(t, msg.Body, "professional: Dr. Busca")
	assert.NotContains(t, msg.Body, "id:")
}
