package tests

import (
	"context"
	"net/http"
	"testing"

	. "github.com/tutorpost/backend/apps/api/echo"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
	testutil "github.com/tutorpost/backend/tests"
)

func TestTutorSignup(t *testing.T) {
	db.Reset()

	body := []byte(`{
		"name": "Espoir Kalenga",
		"email": "Espoir@test.cd",
		"age": 34,
		"state": "Lubumbashi",
		"password": "LongSecret1!",
		"password_confirm": "LongSecret1!"
	}`)
	req, rec := newRequest(http.MethodPost, "/v1/tutors", body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)

	var resp struct {
		Tutor tutor.Tutor `json:"currentTutor"`
		Token string      `json:"token"`
	}
	decodeBody(t, rec, &resp)

	if resp.Token == "" {
		t.Error("signup did not open a session")
	}
	if resp.Tutor.ID == "" {
		t.Error("tutor id is empty")
	}
	if resp.Tutor.Email != "espoir@test.cd" {
		t.Errorf("email = %q; want lowercased", resp.Tutor.Email)
	}
	if resp.Tutor.Role != tutor.Role {
		t.Errorf("role = %q; want %q", resp.Tutor.Role, tutor.Role)
	}
	if !resp.Tutor.FirstLogin {
		t.Error("FirstLogin should be true on signup")
	}

	// the token works against the session endpoint
	req, rec = newAuthRequest(http.MethodGet, "/v1/tutors/loggedin", resp.Token)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
}

func TestTutorSignupValidation(t *testing.T) {
	db.Reset()

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     []byte(`{"name": "X"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid email",
			body:     []byte(`{"name": "X", "email": "nope", "password": "LongSecret1!", "password_confirm": "LongSecret1!"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "password mismatch",
			body:     []byte(`{"name": "X", "email": "x@test.cd", "password": "LongSecret1!", "password_confirm": "other"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/tutors", tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, tt.wantCode, rec)
		})
	}
}

func TestTutorSignupDuplicateEmail(t *testing.T) {
	db.Reset()
	testutil.CreateTutor(t, tutorRepo, "Taken", "taken@test.cd", "LongSecret1!")

	body := []byte(`{"name": "X", "email": "taken@test.cd", "password": "LongSecret1!", "password_confirm": "LongSecret1!"}`)
	req, rec := newRequest(http.MethodPost, "/v1/tutors", body)
	app.ServeHTTP(rec, req)

	// the persistence error message is surfaced to the caller
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusInternalServerError,
		wantData: marchallObj(t, httpErr{Error: tutor.ErrEmailExists.Error()}),
	}, rec)
}

func TestTutorLogin(t *testing.T) {
	db.Reset()
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!")

	tests := []httpTest{
		{
			name:     "ok",
			body:     []byte(`{"email": "espoir@test.cd", "password": "LongSecret1!"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "mixed-case email",
			body:     []byte(`{"email": "ESPOIR@test.cd", "password": "LongSecret1!"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "espoir@test.cd", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "ghost@test.cd", "password": "LongSecret1!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/tutors/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code != http.StatusOK {
				return
			}
			var resp struct {
				Tutor tutor.Tutor `json:"currentTutor"`
				Token string      `json:"token"`
			}
			decodeBody(t, rec, &resp)
			if resp.Tutor.ID != tut.ID {
				t.Errorf("id = %q; want %q", resp.Tutor.ID, tut.ID)
			}
			if resp.Token == "" {
				t.Error("login did not return a token")
			}
		})
	}
}

func TestTutorLoggedIn(t *testing.T) {
	db.Reset()
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!")
	stu := testutil.CreateStudent(t, studentRepo, "Grace", "grace@test.cd", "LongSecret1!")

	tests := []httpTest{
		{
			name:     "ok",
			token:    getToken(t, KindTutor, tut.ID, tut.Email),
			wantCode: http.StatusOK,
		},
		{
			name:     "no token",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "garbage token",
			token:    "not.a.jwt",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "wrong kind",
			token:    getToken(t, KindStudent, stu.ID, stu.Email),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "deleted tutor",
			token:    getToken(t, KindTutor, "11111111-1111-4111-8111-111111111111", "gone@test.cd"),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/tutors/loggedin", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestTutorUpdate(t *testing.T) {
	db.Reset()
	adm := testutil.CreateAdmin(t, adminRepo, "Root", "root@test.cd", "LongSecret1!")
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!")
	other := testutil.CreateTutor(t, tutorRepo, "Other", "other@test.cd", "LongSecret1!")

	adminToken := getToken(t, KindAdmin, adm.ID, adm.Email)
	selfToken := getToken(t, KindTutor, tut.ID, tut.Email)
	otherToken := getToken(t, KindTutor, other.ID, other.Email)

	tests := []httpTest{
		{
			name:     "self",
			path:     "/v1/tutors/" + tut.ID,
			body:     []byte(`{"state": "Kinshasa"}`),
			token:    selfToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "admin",
			path:     "/v1/tutors/" + tut.ID,
			body:     []byte(`{"age": 35}`),
			token:    adminToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "another tutor",
			path:     "/v1/tutors/" + tut.ID,
			body:     []byte(`{"state": "Goma"}`),
			token:    otherToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "no token",
			path:     "/v1/tutors/" + tut.ID,
			body:     []byte(`{"state": "Goma"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "unknown id",
			path:     "/v1/tutors/11111111-1111-4111-8111-111111111111",
			body:     []byte(`{"state": "Goma"}`),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "malformed id",
			path:     "/v1/tutors/not-a-uuid",
			body:     []byte(`{"state": "Goma"}`),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	got, err := tutorRepo.GetTutorByID(context.Background(), tut.ID)
	if err != nil {
		t.Fatalf("GetTutorByID(): %v", err)
	}
	if got.State != "Kinshasa" {
		t.Errorf("State = %q; want %q", got.State, "Kinshasa")
	}
	if got.Age != 35 {
		t.Errorf("Age = %v; want 35", got.Age)
	}
	if err = got.CheckPassword("LongSecret1!"); err != nil {
		t.Error("password should survive updates that do not set one")
	}
}

func TestTutorCoursePermissions(t *testing.T) {
	db.Reset()
	adm := testutil.CreateAdmin(t, adminRepo, "Root", "root@test.cd", "LongSecret1!")
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!", "Old")

	adminToken := getToken(t, KindAdmin, adm.ID, adm.Email)
	tutorToken := getToken(t, KindTutor, tut.ID, tut.Email)

	tests := []httpTest{
		{
			name:     "replaces and sanitizes",
			path:     "/v1/tutors/" + tut.ID + "/courses",
			body:     []byte(`{"courseIds": ["Math", " Math", "", "CS", "Math"]}`),
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"coursePermissions": ["Math", "CS"]}`),
		},
		{
			name:     "empty list clears",
			path:     "/v1/tutors/" + tut.ID + "/courses",
			body:     []byte(`{"courseIds": []}`),
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"coursePermissions": []}`),
		},
		{
			name:     "missing list",
			path:     "/v1/tutors/" + tut.ID + "/courses",
			body:     []byte(`{}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"courseIds": "must be a list"}`),
		},
		{
			name:     "malformed id",
			path:     "/v1/tutors/not-a-uuid/courses",
			body:     []byte(`{"courseIds": ["Math"]}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"tutorID": "invalid identifier"}`),
		},
		{
			name:     "unknown tutor",
			path:     "/v1/tutors/11111111-1111-4111-8111-111111111111/courses",
			body:     []byte(`{"courseIds": ["Math"]}`),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "tutor may not self-grant",
			path:     "/v1/tutors/" + tut.ID + "/courses",
			body:     []byte(`{"courseIds": ["Math"]}`),
			token:    tutorToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestTutorDemote(t *testing.T) {
	db.Reset()
	adm := testutil.CreateAdmin(t, adminRepo, "Root", "root@test.cd", "LongSecret1!")
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!", "Math")
	adminToken := getToken(t, KindAdmin, adm.ID, adm.Email)

	req, rec := newAuthRequest(http.MethodPost, "/v1/tutors/"+tut.ID+"/demote", adminToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusCreated, rec)

	var resp struct {
		User student.Student `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.User.Email != tut.Email {
		t.Errorf("email = %q; want %q", resp.User.Email, tut.Email)
	}
	if resp.User.Role != student.Role {
		t.Errorf("role = %q; want %q", resp.User.Role, student.Role)
	}

	// the tutor account is gone
	if _, err := tutorRepo.GetTutorByID(context.Background(), tut.ID); err != tutor.ErrNotFound {
		t.Errorf("tutor lookup err = %v; want ErrNotFound", err)
	}

	// the old password opens the new user account
	body := []byte(`{"email": "espoir@test.cd", "password": "LongSecret1!"}`)
	req, rec = newRequest(http.MethodPost, "/v1/users/login", body)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)
}

func TestTutorDemoteEmailConflict(t *testing.T) {
	db.Reset()
	adm := testutil.CreateAdmin(t, adminRepo, "Root", "root@test.cd", "LongSecret1!")
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!")
	testutil.CreateStudent(t, studentRepo, "Squatter", "espoir@test.cd", "LongSecret1!")
	adminToken := getToken(t, KindAdmin, adm.ID, adm.Email)

	req, rec := newAuthRequest(http.MethodPost, "/v1/tutors/"+tut.ID+"/demote", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: student.ErrEmailExists.Error()}),
	}, rec)

	// nothing moved: the tutor survives and no second user appeared
	if _, err := tutorRepo.GetTutorByID(context.Background(), tut.ID); err != nil {
		t.Errorf("tutor should still exist; err = %v", err)
	}
	students, err := studentRepo.QueryAllStudents(context.Background())
	if err != nil {
		t.Fatalf("QueryAllStudents(): %v", err)
	}
	if len(students) != 1 {
		t.Errorf("len(students) = %d; want 1", len(students))
	}
}

func TestTutorDeleteCascades(t *testing.T) {
	db.Reset()
	adm := testutil.CreateAdmin(t, adminRepo, "Root", "root@test.cd", "LongSecret1!")
	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!")
	keep := testutil.CreateTutor(t, tutorRepo, "Keep", "keep@test.cd", "LongSecret1!")
	stu := testutil.CreateStudent(t, studentRepo, "Grace", "grace@test.cd", "LongSecret1!", tut.ID, keep.ID)
	adminToken := getToken(t, KindAdmin, adm.ID, adm.Email)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/tutors/remove/"+tut.ID, adminToken)
	app.ServeHTTP(rec, req)
	checkCode(t, http.StatusOK, rec)

	// the ref to the deleted tutor was pulled; the other one survived
	got, err := studentRepo.GetStudentByID(context.Background(), stu.ID)
	if err != nil {
		t.Fatalf("GetStudentByID(): %v", err)
	}
	if len(got.Tutors) != 1 || got.Tutors[0] != keep.ID {
		t.Errorf("Tutors = %v; want [%s]", got.Tutors, keep.ID)
	}
}

func TestTutorList(t *testing.T) {
	db.Reset()

	req, rec := newRequest(http.MethodGet, "/v1/tutors")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)

	tut := testutil.CreateTutor(t, tutorRepo, "Espoir", "espoir@test.cd", "LongSecret1!")

	req, rec = newRequest(http.MethodGet, "/v1/tutors")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, tut)}, rec)
}
