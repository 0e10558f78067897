package route

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/DossierFlow/internal/app_context"
	"github.com/SeakMengs/DossierFlow/internal/auth"
	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/controller"
	"github.com/SeakMengs/DossierFlow/internal/database"
	"github.com/SeakMengs/DossierFlow/internal/entreprise"
	"github.com/SeakMengs/DossierFlow/internal/middleware"
	"github.com/SeakMengs/DossierFlow/internal/model"
	ratelimiter "github.com/SeakMengs/DossierFlow/internal/rate_limiter"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidations sync.Once

type fakeLookup struct{}

func (fakeLookup) Lookup(ctx context.Context, siret string) (*entreprise.Result, error) {
	switch util.NormalizeSiret(siret) {
	case "44011762001530":
		return &entreprise.Result{
			Entreprise:    dossier.Entreprise{Siren: "440117620", RaisonSociale: "GRTGAZ"},
			Etablissement: dossier.Etablissement{Siret: "44011762001530", CodePostal: "92270"},
		}, nil
	case "22222222222222":
		return nil, fmt.Errorf("registry returned 502: %w", dossier.ErrExternalLookup)
	}
	return nil, fmt.Errorf("registry returned 404: %w", dossier.ErrEntrepriseNotFound)
}

type stateChange struct {
	dossierID string
	from, to  dossier.State
}

type recordingNotifier struct {
	mu           sync.Mutex
	changes      []stateChange
	commentaires []string
}

func (n *recordingNotifier) StateChanged(ctx context.Context, dossierID string, from, to dossier.State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, stateChange{dossierID, from, to})
}

func (n *recordingNotifier) NewCommentaire(ctx context.Context, dossierID, author, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.commentaires = append(n.commentaires, body)
}

type server struct {
	t         *testing.T
	router    *gin.Engine
	jwt       *auth.JWT
	repo      *repository.Repository
	notifier  *recordingNotifier
	procedure *model.Procedure
	owner     *model.User
	stranger  *model.User
	g         *model.Gestionnaire
	admin     *model.Administrateur
}

// newServer mounts every route on an in-memory database holding a published
// procedure with an assigned gestionnaire.
func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerValidations.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := util.RegisterCustomValidations(v); err != nil {
				t.Fatalf("register validations: %v", err)
			}
		}
	})

	db, err := database.ConnectSqlite(database.InMemoryDSN(t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := util.NewTestLogger()
	repo := repository.NewRepository(db, logger, nil)
	ctx := context.Background()

	admin, _ := repo.Administrateur.Create(ctx, nil, &model.Administrateur{Email: "admin@example.com"})
	g, _ := repo.Gestionnaire.Create(ctx, nil, &model.Gestionnaire{Email: "instructeur@example.com", AdministrateurID: admin.ID})
	owner, _ := repo.User.Create(ctx, nil, &model.User{Email: "owner@example.com"})
	stranger, _ := repo.User.Create(ctx, nil, &model.User{Email: "stranger@example.com"})

	p, err := repo.Procedure.Create(ctx, nil, &model.Procedure{
		Libelle:          "Aide 2017",
		Description:      "d",
		AdministrateurID: admin.ID,
		TypesDeChamp:     []model.TypeDeChamp{{Libelle: "Nom du projet"}},
	})
	if err != nil {
		t.Fatalf("create procedure: %v", err)
	}
	if _, err := repo.Procedure.Publish(ctx, nil, p.ID, admin.ID, ""); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := repo.Procedure.ChangeAssignment(ctx, nil, p.ID, admin.ID, g.ID, repository.Assign); err != nil {
		t.Fatalf("assign: %v", err)
	}

	cfg := config.Config{
		Minio: config.MinioConfig{BUCKET: "test"},
		Auth:  config.AuthConfig{JWT_SECRET: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour},
	}
	jwtService := auth.NewJwt(cfg.Auth, logger)
	rec := &recordingNotifier{}
	app := &appcontext.Application{
		Config:     &cfg,
		Logger:     logger,
		Repository: repo,
		JWTService: jwtService,
		Entreprise: fakeLookup{},
		Notifier:   rec,
	}

	m := middleware.NewMiddleware(app, ratelimiter.NewRateLimiter(config.RateLimiterConfig{Enabled: false}, logger))
	r := gin.New()
	r.Use(m.RateLimiterMiddleware)
	Register(r, controller.NewController(app), m)

	return &server{t: t, router: r, jwt: jwtService, repo: repo, notifier: rec, procedure: p, owner: owner, stranger: stranger, g: g, admin: admin}
}

func (s *server) token(id, email string, role dossier.ActorRole) string {
	s.t.Helper()
	_, access, err := s.jwt.GenerateRefreshAndAccessToken(auth.JWTPayload{ID: id, Email: email, Role: role})
	if err != nil {
		s.t.Fatalf("sign token: %v", err)
	}
	return *access
}

func (s *server) ownerToken() string {
	return s.token(s.owner.ID, s.owner.Email, dossier.ActorUser)
}

func (s *server) gestionnaireToken() string {
	return s.token(s.g.ID, s.g.Email, dossier.ActorGestionnaire)
}

type response struct {
	code   int
	header http.Header
	raw    []byte
	body   struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
}

func (s *server) do(method, path, token string, body any, headers ...string) response {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := response{code: w.Code, header: w.Header(), raw: w.Body.Bytes()}
	_ = json.Unmarshal(res.raw, &res.body)
	return res
}

func (r response) dossierState(t *testing.T) (string, dossier.State) {
	t.Helper()
	var data struct {
		Dossier struct {
			ID    string        `json:"id"`
			State dossier.State `json:"state"`
		} `json:"dossier"`
	}
	if err := json.Unmarshal(r.body.Data, &data); err != nil {
		t.Fatalf("decode dossier: %v (%s)", err, r.raw)
	}
	return data.Dossier.ID, data.Dossier.State
}

func TestDossierLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	owner := s.ownerToken()
	gestionnaire := s.gestionnaireToken()

	res := s.do(http.MethodPost, "/api/v1/procedures/"+s.procedure.ID+"/dossiers", owner, nil)
	if res.code != http.StatusOK {
		t.Fatalf("create dossier = %d %s", res.code, res.raw)
	}
	id, state := res.dossierState(t)
	if state != dossier.StateDraft {
		t.Fatalf("new dossier state = %s", state)
	}
	base := "/api/v1/dossiers/" + id

	steps := []struct {
		name        string
		method      string
		path        string
		token       string
		body        any
		headers     []string
		wantCode    int
		wantMessage string
		wantState   dossier.State
	}{
		{"draft has no recapitulatif", http.MethodGet, base + "/recapitulatif", owner, nil, nil, http.StatusForbidden, dossier.MessageStateNotAllowed, ""},
		{"stranger cannot see the dossier", http.MethodGet, base + "/recapitulatif", s.token(s.stranger.ID, s.stranger.Email, dossier.ActorUser), nil, nil, http.StatusNotFound, dossier.MessageDossierNotAccessible, ""},
		{"unknown siret", http.MethodPut, base + "/entreprise", owner, gin.H{"siret": "11111111111111"}, nil, http.StatusUnprocessableEntity, "", ""},
		{"registry down", http.MethodPut, base + "/entreprise", owner, gin.H{"siret": "22222222222222"}, nil, http.StatusServiceUnavailable, "", ""},
		{"malformed siret", http.MethodPut, base + "/entreprise", owner, gin.H{"siret": "123"}, nil, http.StatusBadRequest, "", ""},
		{"entreprise filled", http.MethodPut, base + "/entreprise", owner, gin.H{"siret": "440 117 620 01530"}, nil, http.StatusOK, "", dossier.StateDraft},
		{"stale version", http.MethodPost, base + "/recapitulatif/initiate", owner, nil, []string{"If-Match", "99"}, http.StatusConflict, "", ""},
		{"gestionnaire on a user route", http.MethodPost, base + "/recapitulatif/initiate", gestionnaire, nil, nil, http.StatusForbidden, "", ""},
		{"initiate", http.MethodPost, base + "/recapitulatif/initiate", owner, nil, nil, http.StatusOK, "", dossier.StateInitiated},
		{"entreprise locked after initiate", http.MethodDelete, base + "/entreprise", owner, nil, nil, http.StatusForbidden, dossier.MessageStateNotAllowed, ""},
		{"submit before validation keeps the state", http.MethodPost, base + "/recapitulatif/submit", owner, nil, nil, http.StatusOK, "", dossier.StateInitiated},
		{"user on a backoffice route", http.MethodPost, "/api/v1/backoffice/dossiers/" + id + "/valid", owner, nil, nil, http.StatusForbidden, "", ""},
		{"valid", http.MethodPost, "/api/v1/backoffice/dossiers/" + id + "/valid", gestionnaire, nil, nil, http.StatusOK, "", dossier.StateValidated},
		{"submit", http.MethodPost, base + "/recapitulatif/submit", owner, nil, nil, http.StatusOK, "", dossier.StateSubmitted},
		{"receive", http.MethodPost, "/api/v1/backoffice/dossiers/" + id + "/receive", gestionnaire, nil, nil, http.StatusOK, "", dossier.StateReceived},
		{"refuse", http.MethodPost, "/api/v1/backoffice/dossiers/" + id + "/refuse", gestionnaire, nil, nil, http.StatusOK, "", dossier.StateRefused},
		{"no decision after a decision", http.MethodPost, "/api/v1/backoffice/dossiers/" + id + "/without_continuation", gestionnaire, nil, nil, http.StatusUnprocessableEntity, "", ""},
	}

	for _, st := range steps {
		res := s.do(st.method, st.path, st.token, st.body, st.headers...)
		if res.code != st.wantCode {
			t.Fatalf("%s: status = %d, want %d (%s)", st.name, res.code, st.wantCode, res.raw)
		}
		if st.wantMessage != "" && res.body.Message != st.wantMessage {
			t.Errorf("%s: message = %q, want %q", st.name, res.body.Message, st.wantMessage)
		}
		if st.wantState != "" {
			if _, got := res.dossierState(t); got != st.wantState {
				t.Errorf("%s: state = %s, want %s", st.name, got, st.wantState)
			}
		}
	}

	want := []dossier.State{dossier.StateInitiated, dossier.StateValidated, dossier.StateSubmitted, dossier.StateReceived, dossier.StateRefused}
	if len(s.notifier.changes) != len(want) {
		t.Fatalf("notified %d state changes, want %d: %+v", len(s.notifier.changes), len(want), s.notifier.changes)
	}
	for i, c := range s.notifier.changes {
		if c.dossierID != id || c.to != want[i] {
			t.Errorf("change %d = %+v, want to %s", i, c, want[i])
		}
	}
}

func TestAuthenticationIsRequired(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"administrateur on a user route", s.token(s.admin.ID, s.admin.Email, dossier.ActorAdministrateur), http.StatusForbidden},
		{"user", s.ownerToken(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.do(http.MethodGet, "/api/v1/me/dossiers", tt.token, nil)
			if res.code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", res.code, tt.wantCode, res.raw)
			}
		})
	}
}

func TestBackofficeDownload(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	d, err := s.repo.Dossier.Create(ctx, nil, s.procedure.ID, s.owner.ID)
	if err != nil {
		t.Fatalf("create dossier: %v", err)
	}
	if _, err := s.repo.Dossier.ApplyAction(ctx, nil, repository.Request{
		DossierID: d.ID,
		Actor:     dossier.Actor{ID: s.owner.ID, Email: s.owner.Email, Role: dossier.ActorUser},
		Route:     dossier.RouteWorkflow,
		Action:    dossier.ActionInitiate,
	}); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	path := "/api/v1/backoffice/procedures/" + s.procedure.ID + "/download"

	res := s.do(http.MethodGet, path+"?format=csv", s.gestionnaireToken(), nil)
	if res.code != http.StatusOK {
		t.Fatalf("download = %d %s", res.code, res.raw)
	}
	if ct := res.header.Get("Content-Type"); ct != dossier.FormatCSV.ContentType() {
		t.Errorf("content type = %q", ct)
	}
	if cd := res.header.Get("Content-Disposition"); !strings.Contains(cd, `filename="dossiers_aide_2017_`) || !strings.HasSuffix(cd, `.csv"`) {
		t.Errorf("content disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(string(res.raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want a header and one dossier:\n%s", len(lines), res.raw)
	}
	if !strings.Contains(lines[0], "Nom du projet") || !strings.Contains(lines[1], d.ID) {
		t.Errorf("csv = %s", res.raw)
	}

	if res := s.do(http.MethodGet, path+"?format=pdf", s.gestionnaireToken(), nil); res.code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d", res.code)
	}

	other, _ := s.repo.Gestionnaire.Create(ctx, nil, &model.Gestionnaire{Email: "other@example.com", AdministrateurID: s.admin.ID})
	if res := s.do(http.MethodGet, path, s.token(other.ID, other.Email, dossier.ActorGestionnaire), nil); res.code != http.StatusNotFound {
		t.Errorf("unassigned gestionnaire status = %d", res.code)
	}
}

func TestCommentairesOverHTTP(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	d, err := s.repo.Dossier.Create(ctx, nil, s.procedure.ID, s.owner.ID)
	if err != nil {
		t.Fatalf("create dossier: %v", err)
	}
	if _, err := s.repo.Dossier.ApplyAction(ctx, nil, repository.Request{
		DossierID: d.ID,
		Actor:     dossier.Actor{ID: s.owner.ID, Email: s.owner.Email, Role: dossier.ActorUser},
		Route:     dossier.RouteWorkflow,
		Action:    dossier.ActionInitiate,
	}); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	owner := s.ownerToken()
	gestionnaire := s.gestionnaireToken()

	steps := []struct {
		name      string
		path      string
		token     string
		body      any
		wantCode  int
		wantState dossier.State
	}{
		{"empty body", "/api/v1/dossiers/" + d.ID + "/commentaires", owner, gin.H{"body": "   "}, http.StatusBadRequest, ""},
		{"gestionnaire replies", "/api/v1/backoffice/dossiers/" + d.ID + "/commentaires", gestionnaire, gin.H{"body": "Pièce manquante"}, http.StatusOK, dossier.StateReplied},
		{"owner answers", "/api/v1/dossiers/" + d.ID + "/commentaires", owner, gin.H{"body": "Voici la pièce"}, http.StatusOK, dossier.StateUpdated},
		{"stranger", "/api/v1/dossiers/" + d.ID + "/commentaires", s.token(s.stranger.ID, s.stranger.Email, dossier.ActorUser), gin.H{"body": "?"}, http.StatusNotFound, ""},
	}

	for _, st := range steps {
		res := s.do(http.MethodPost, st.path, st.token, st.body)
		if res.code != st.wantCode {
			t.Fatalf("%s: status = %d, want %d (%s)", st.name, res.code, st.wantCode, res.raw)
		}
		if st.wantState != "" {
			if _, got := res.dossierState(t); got != st.wantState {
				t.Errorf("%s: state = %s, want %s", st.name, got, st.wantState)
			}
		}
	}

	if len(s.notifier.commentaires) != 2 {
		t.Errorf("notified %d commentaires, want 2", len(s.notifier.commentaires))
	}

	res := s.do(http.MethodGet, "/api/v1/dossiers/"+d.ID+"/commentaires", owner, nil)
	if res.code != http.StatusOK {
		t.Fatalf("list = %d %s", res.code, res.raw)
	}
	var data struct {
		Commentaires []struct {
			Body string `json:"body"`
		} `json:"commentaires"`
	}
	if err := json.Unmarshal(res.body.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data.Commentaires) != 2 || data.Commentaires[0].Body != "Pièce manquante" {
		t.Errorf("commentaires = %+v", data.Commentaires)
	}
}

func TestBackofficeRefusesDrafts(t *testing.T) {
	s := newServer(t)

	d, err := s.repo.Dossier.Create(context.Background(), nil, s.procedure.ID, s.owner.ID)
	if err != nil {
		t.Fatalf("create dossier: %v", err)
	}
	base := "/api/v1/backoffice/dossiers/" + d.ID
	gestionnaire := s.gestionnaireToken()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"read", http.MethodGet, base, nil},
		{"list commentaires", http.MethodGet, base + "/commentaires", nil},
		{"comment", http.MethodPost, base + "/commentaires", gin.H{"body": "Trop tot"}},
		{"invite", http.MethodPost, base + "/invites", gin.H{"email": "expert@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.do(tt.method, tt.path, gestionnaire, tt.body)
			if res.code != http.StatusForbidden {
				t.Fatalf("status = %d, want %d (%s)", res.code, http.StatusForbidden, res.raw)
			}
			if res.body.Message != dossier.MessageStateNotAllowed {
				t.Errorf("message = %q, want %q", res.body.Message, dossier.MessageStateNotAllowed)
			}
		})
	}

	after, err := s.repo.Dossier.GetById(context.Background(), nil, d.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.State != dossier.StateDraft || len(after.Invites) != 0 {
		t.Errorf("draft changed: state %s, %d invites", after.State, len(after.Invites))
	}
}
