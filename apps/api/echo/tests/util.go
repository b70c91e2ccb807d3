package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/escolaware/secretaria/apps/api/echo"
	"github.com/escolaware/secretaria/core"
	"github.com/escolaware/secretaria/core/collection"
	emailsvc "github.com/escolaware/secretaria/services/email"
	"github.com/escolaware/secretaria/storage/jsonfile"
	testutil "github.com/escolaware/secretaria/tests"
)

type services struct {
	students     *collection.Service
	teachers     *collection.Service
	users        *collection.Service
	appointments *collection.Service
	events       *collection.Service
}

func setup(t *testing.T) (Server, *services) {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.DataDir = t.TempDir()

	db, err := jsonfile.Open(conf)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	validate := validator.New()
	translator := newTranslator()
	collection.InitValidators(validate, translator)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	newSvc := func(def collection.Definition, opts ...collection.ServiceOption) *collection.Service {
		svc, err := collection.NewService(def, db.Collection(def.Name), validate, opts...)
		if err != nil {
			t.Fatalf("setup() failed: %v", err)
		}
		return svc
	}

	svcs := &services{
		students: newSvc(collection.Students),
		teachers: newSvc(collection.Teachers),
		users:    newSvc(collection.Users, collection.WithPasswordHashing("password")),
		appointments: newSvc(
			collection.Appointments,
			collection.WithCreateNotification(mailSvc, conf.AppointmentsInbox(), "Nova consulta agendada"),
		),
		events: newSvc(collection.Events),
	}

	server := NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     testutil.NewLogger(t),
			Translator: translator,
			Services: []*collection.Service{
				svcs.students, svcs.teachers, svcs.users, svcs.appointments, svcs.events,
			},
		},
	)
	return server, svcs
}

func newTranslator() ut.Translator {
	ptBR := pt_BR.New()
	uni := ut.New(ptBR, ptBR)
	translator, _ := uni.GetTranslator("pt_BR")
	return translator
}

type httpErr struct {
	Erro string `json:"erro"`
	Code string `json:"code"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
